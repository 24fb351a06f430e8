package log

import (
	"sync"
	"time"
)

// Recorder is an in-memory Sink that keeps every entry in arrival order.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

var _ Sink = (*Recorder)(nil)

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Debug(cat Category, msg string, fields ...any) {
	r.add(LevelDebug, cat, msg, fields)
}

func (r *Recorder) Info(cat Category, msg string, fields ...any) {
	r.add(LevelInfo, cat, msg, fields)
}

func (r *Recorder) Warn(cat Category, msg string, fields ...any) {
	r.add(LevelWarn, cat, msg, fields)
}

func (r *Recorder) Error(cat Category, msg string, fields ...any) {
	r.add(LevelError, cat, msg, fields)
}

func (r *Recorder) ErrorErr(cat Category, msg string, err error, fields ...any) {
	r.add(LevelError, cat, msg, withError(fields, err))
}

func (r *Recorder) add(level Level, cat Category, msg string, fields []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{
		Time:     time.Now(),
		Level:    level,
		Category: cat,
		Message:  msg,
		Fields:   append([]any(nil), fields...),
	})
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Filter returns the entries with the given level and category.
// An empty category matches every category.
func (r *Recorder) Filter(level Level, cat Category) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, e := range r.entries {
		if e.Level == level && (cat == "" || e.Category == cat) {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops all recorded entries.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
}

// Forward returns a Sink that writes to both r and next.
func (r *Recorder) Forward(next Sink) Sink {
	return Tee(r, next)
}

// Tee returns a Sink that writes every record to each of sinks in order.
// Nil sinks are skipped.
func Tee(sinks ...Sink) Sink {
	var t tee
	for _, s := range sinks {
		if s != nil {
			t = append(t, s)
		}
	}
	if len(t) == 1 {
		return t[0]
	}
	return t
}

type tee []Sink

func (t tee) Debug(cat Category, msg string, fields ...any) {
	for _, s := range t {
		s.Debug(cat, msg, fields...)
	}
}

func (t tee) Info(cat Category, msg string, fields ...any) {
	for _, s := range t {
		s.Info(cat, msg, fields...)
	}
}

func (t tee) Warn(cat Category, msg string, fields ...any) {
	for _, s := range t {
		s.Warn(cat, msg, fields...)
	}
}

func (t tee) Error(cat Category, msg string, fields ...any) {
	for _, s := range t {
		s.Error(cat, msg, fields...)
	}
}

func (t tee) ErrorErr(cat Category, msg string, err error, fields ...any) {
	for _, s := range t {
		s.ErrorErr(cat, msg, err, fields...)
	}
}
