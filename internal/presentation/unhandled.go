package presentation

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zjrosen/intermix/internal/log"
)

const unhandledPrefix = "unhandled "

type unhandledKey struct{ kind, seq string }

// UnhandledCounter is a log.Sink that tallies the dispatcher's unhandled
// records as they arrive. Only one counter per distinct sequence is kept,
// so memory does not grow with the length of a run.
type UnhandledCounter struct {
	mu     sync.Mutex
	counts map[unhandledKey]int
	order  []unhandledKey
}

var _ log.Sink = (*UnhandledCounter)(nil)

// NewUnhandledCounter returns an empty counter.
func NewUnhandledCounter() *UnhandledCounter {
	return &UnhandledCounter{counts: make(map[unhandledKey]int)}
}

func (c *UnhandledCounter) Debug(cat log.Category, msg string, fields ...any) {
	c.observe(cat, msg, fields)
}

func (c *UnhandledCounter) Info(cat log.Category, msg string, fields ...any) {
	c.observe(cat, msg, fields)
}

func (c *UnhandledCounter) Warn(cat log.Category, msg string, fields ...any) {
	c.observe(cat, msg, fields)
}

func (c *UnhandledCounter) Error(cat log.Category, msg string, fields ...any) {
	c.observe(cat, msg, fields)
}

func (c *UnhandledCounter) ErrorErr(cat log.Category, msg string, _ error, fields ...any) {
	c.observe(cat, msg, fields)
}

func (c *UnhandledCounter) observe(cat log.Category, msg string, fields []any) {
	if cat != log.CatDispatch {
		return
	}
	kind, ok := strings.CutPrefix(msg, unhandledPrefix)
	if !ok {
		return
	}
	k := unhandledKey{kind: kind, seq: describe(log.Entry{Fields: fields})}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[k] == 0 {
		c.order = append(c.order, k)
	}
	c.counts[k]++
}

// Len reports how many distinct sequences have been counted.
func (c *UnhandledCounter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Summary returns the counts, most frequent first. Ties keep first-seen
// order.
func (c *UnhandledCounter) Summary() []UnhandledDTO {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]UnhandledDTO, len(c.order))
	for i, k := range c.order {
		out[i] = UnhandledDTO{Kind: k.kind, Sequence: k.seq, Count: c.counts[k]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// FromUnhandled counts the dispatcher's unhandled records among entries,
// most frequent first.
func FromUnhandled(entries []log.Entry) []UnhandledDTO {
	c := NewUnhandledCounter()
	for _, e := range entries {
		c.observe(e.Category, e.Message, e.Fields)
	}
	return c.Summary()
}

// describe names the sequence recorded in a dispatch entry.
func describe(e log.Entry) string {
	if absent, _ := e.Field("absent"); absent == true {
		return "<absent>"
	}
	name, _ := e.Field("cap")
	param, _ := e.Field("param")
	s := fmt.Sprint(name)
	if p := fmt.Sprint(param); param != nil && p != "" {
		s += "/" + p
	}
	return s
}
