// Package flags provides feature flag support for controlled feature rollout.
// Flags are read-only after initialization and provide safe defaults for unknown flags.
package flags

import (
	"maps"

	"github.com/zjrosen/intermix/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagBuiltinTerminfo lets the capability resolver fall back to the
	// compiled-in terminal descriptions when no terminfo file is found.
	FlagBuiltinTerminfo = "builtin-terminfo"

	// FlagUnhandledSummary controls whether `intermix run` reports the
	// sequences the dispatcher did not handle.
	FlagUnhandledSummary = "unhandled-summary"

	// FlagTransitionLog streams driver state transitions to the log.
	FlagTransitionLog = "transition-log"
)

// Defaults returns the flag values used when the config sets none.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagBuiltinTerminfo:  true,
		FlagUnhandledSummary: true,
		FlagTransitionLog:    false,
	}
}

// Registry holds feature flag state loaded from configuration.
// Flags are read-only after initialization.
type Registry struct {
	flags map[string]bool
	log   log.Sink
}

// New creates a Registry from a config map.
// If flags is nil, an empty registry is created (all flags disabled).
func New(flags map[string]bool, sink log.Sink) *Registry {
	if sink == nil {
		sink = log.Discard
	}
	r := &Registry{flags: maps.Clone(flags), log: sink}
	if r.flags == nil {
		r.flags = make(map[string]bool)
	}
	sink.Debug(log.CatConfig, "Feature flags initialized", "count", len(r.flags), "flags", r.All())
	return r
}

// Enabled returns true if the named flag is enabled.
// Returns false for unknown flags (safe default).
// Returns false when called on nil registry (nil-safe).
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		r.log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name, "result", false)
		return false
	}
	return value
}

// All returns a copy of all flags (for debugging/logging).
// Returns an empty map if the registry is nil.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	result := make(map[string]bool, len(r.flags))
	maps.Copy(result, r.flags)
	return result
}
