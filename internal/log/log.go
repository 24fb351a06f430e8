// Package log provides structured, leveled diagnostics for intermix.
// Components receive a Sink instead of reaching for a global logger, so a run
// can be observed by a file, an in-memory Recorder or a live subscriber.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/intermix/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a case-insensitive level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q (must be debug, info, warn or error)", s)
	}
}

// Category groups related log messages.
type Category string

const (
	CatDriver   Category = "driver"   // process lifecycle, PTY reads, signals
	CatDispatch Category = "dispatch" // sequence dispatch decisions
	CatCapDB    Category = "capdb"    // capability database resolution
	CatConfig   Category = "config"   // configuration loading/saving
	CatCache    Category = "cache"    // cache operations
	CatWatcher  Category = "watcher"  // terminfo directory watcher
	CatCLI      Category = "cli"
)

// Sink is the diagnostics surface every component depends on.
type Sink interface {
	Debug(cat Category, msg string, fields ...any)
	Info(cat Category, msg string, fields ...any)
	Warn(cat Category, msg string, fields ...any)
	Error(cat Category, msg string, fields ...any)
	ErrorErr(cat Category, msg string, err error, fields ...any)
}

// Entry is one structured diagnostics record.
type Entry struct {
	Time     time.Time
	Level    Level
	Category Category
	Message  string
	// Fields holds alternating key/value pairs as passed by the caller.
	Fields []any
}

// Field returns the value recorded for key.
func (e Entry) Field(key string) (any, bool) {
	for i := 0; i+1 < len(e.Fields); i += 2 {
		if k, ok := e.Fields[i].(string); ok && k == key {
			return e.Fields[i+1], true
		}
	}
	return nil, false
}

// Format renders the entry as a single log line without the trailing newline.
// Format: 2025-12-06T10:45:00 [ERROR] [driver] message key=value key2=value2
func (e Entry) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", e.Time.Format("2006-01-02T15:04:05"), e.Level, e.Category, e.Message)
	for i := 0; i+1 < len(e.Fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", e.Fields[i], e.Fields[i+1])
	}
	// Odd field count: orphan key with no value
	if len(e.Fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", e.Fields[len(e.Fields)-1])
	}
	return b.String()
}

// Options configures a Logger.
type Options struct {
	// Writer receives formatted lines. Nil means lines are only published.
	Writer   io.Writer
	MinLevel Level
	// Prefix is written in front of every line.
	Prefix string
}

// Logger provides structured logging to a writer and to subscribers.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	prefix   string
	minLevel Level
	now      func() time.Time
	broker   *pubsub.Broker[Entry]
}

var _ Sink = (*Logger)(nil)

// New creates a logger writing to opts.Writer.
func New(opts Options) *Logger {
	return &Logger{
		writer:   opts.Writer,
		prefix:   opts.Prefix,
		minLevel: opts.MinLevel,
		now:      time.Now,
		broker:   pubsub.NewBroker[Entry](),
	}
}

// Open creates a logger appending to the file at path.
// Returns a cleanup function that closes the file and the subscriber fan-out.
func Open(path string, opts Options) (*Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: path is the user-chosen log path
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	opts.Writer = f
	l := New(opts)
	return l, func() {
		l.broker.Close()
		_ = f.Close()
	}, nil
}

// SetMinLevel sets the minimum log level.
func (l *Logger) SetMinLevel(level Level) {
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

// Subscribe streams every entry at or above the minimum level until ctx is
// cancelled.
func (l *Logger) Subscribe(ctx context.Context) <-chan pubsub.Event[Entry] {
	return l.broker.Subscribe(ctx)
}

// Debug logs at debug level.
func (l *Logger) Debug(cat Category, msg string, fields ...any) {
	l.log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func (l *Logger) Info(cat Category, msg string, fields ...any) {
	l.log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func (l *Logger) Warn(cat Category, msg string, fields ...any) {
	l.log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func (l *Logger) Error(cat Category, msg string, fields ...any) {
	l.log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func (l *Logger) ErrorErr(cat Category, msg string, err error, fields ...any) {
	l.log(LevelError, cat, msg, withError(fields, err)...)
}

func (l *Logger) log(level Level, cat Category, msg string, fields ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.minLevel {
		return
	}

	entry := Entry{Time: l.now(), Level: level, Category: cat, Message: msg, Fields: fields}
	if l.writer != nil {
		_, _ = io.WriteString(l.writer, l.prefix+entry.Format()+"\n")
	}
	l.broker.Publish(entry)
}

func withError(fields []any, err error) []any {
	if err != nil {
		return append(fields, "error", err.Error())
	}
	return append(fields, "error", "<nil>")
}

type discard struct{}

func (discard) Debug(Category, string, ...any)           {}
func (discard) Info(Category, string, ...any)            {}
func (discard) Warn(Category, string, ...any)            {}
func (discard) Error(Category, string, ...any)           {}
func (discard) ErrorErr(Category, string, error, ...any) {}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}
