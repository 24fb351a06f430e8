// Package watcher watches terminfo directories and reports, after a quiet
// period, which terminal descriptions changed.
package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/intermix/internal/log"
)

// ErrNoDirectories is returned by Start when none of the configured
// directories could be watched.
var ErrNoDirectories = errors.New("no watchable directories")

// Change lists the terminal names whose description files changed.
type Change struct {
	Terms []string
}

// Watcher monitors terminfo directories and sends debounced notifications.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dirs      []string
	debounce  time.Duration
	log       log.Sink
	onChange  chan Change
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Dirs        []string
	DebounceDur time.Duration
	Logger      log.Sink
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(dirs ...string) Config {
	return Config{
		Dirs:        dirs,
		DebounceDur: 500 * time.Millisecond,
	}
}

// New creates a new watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	sink := cfg.Logger
	if sink == nil {
		sink = log.Discard
	}

	return &Watcher{
		fsWatcher: fsw,
		dirs:      cfg.Dirs,
		debounce:  cfg.DebounceDur,
		log:       sink,
		onChange:  make(chan Change),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching every configured directory and its immediate
// subdirectories (terminfo stores descriptions under one level of
// first-letter directories). Missing directories are skipped.
func (w *Watcher) Start() (<-chan Change, error) {
	watched := 0
	for _, dir := range w.dirs {
		for _, d := range withSubdirs(dir) {
			if err := w.fsWatcher.Add(d); err != nil {
				w.log.Debug(log.CatWatcher, "skipping directory", "dir", d, "error", err)
				continue
			}
			watched++
		}
	}
	if watched == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDirectories, strings.Join(w.dirs, ", "))
	}
	w.log.Debug(log.CatWatcher, "watching terminfo directories", "count", watched)

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func withSubdirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{dir}
	}
	out := []string{dir}
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out
}

// loop processes file system events with debouncing. Debounced terms the
// consumer has not taken yet are merged into the next notification.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending = make(map[string]struct{})
		ready   = make(map[string]struct{})
	)

	for {
		var (
			out  chan<- Change
			next Change
		)
		if len(ready) > 0 {
			out = w.onChange
			next = changeOf(ready)
		}

		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !isRelevantEvent(event) {
				continue
			}

			// A new first-letter directory needs its own watch.
			if event.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					_ = w.fsWatcher.Add(event.Name)
					continue
				}
			}

			pending[filepath.Base(event.Name)] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if len(pending) == 0 {
				continue
			}
			w.log.Info(log.CatWatcher, "terminfo changed", "terms", changeOf(pending).Terms)
			if len(ready) > 0 {
				w.log.Debug(log.CatWatcher, "merging into undelivered change", "waiting", len(ready))
			}
			for name := range pending {
				ready[name] = struct{}{}
			}
			pending = make(map[string]struct{})

		case out <- next:
			ready = make(map[string]struct{})

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.ErrorErr(log.CatWatcher, "watch error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func changeOf(terms map[string]struct{}) Change {
	change := Change{Terms: make([]string, 0, len(terms))}
	for name := range terms {
		change.Terms = append(change.Terms, name)
	}
	sort.Strings(change.Terms)
	return change
}

// isRelevantEvent checks if the event should trigger a notification.
func isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	return base != "" && !strings.HasPrefix(base, ".")
}
