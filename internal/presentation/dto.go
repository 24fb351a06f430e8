package presentation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zjrosen/intermix/internal/capdb"
)

// CapabilityDTO represents one string capability for presentation
type CapabilityDTO struct {
	Name          string `json:"name" yaml:"name"`
	LongName      string `json:"long_name" yaml:"long_name"`
	Value         string `json:"value" yaml:"value"`
	Hex           string `json:"hex" yaml:"hex"`
	Parameterized bool   `json:"parameterized" yaml:"parameterized"`
}

// DatabaseDTO represents a resolved capability database
type DatabaseDTO struct {
	Term         string          `json:"term" yaml:"term"`
	Count        int             `json:"count" yaml:"count"`
	Capabilities []CapabilityDTO `json:"capabilities" yaml:"capabilities"`
}

// UnhandledDTO counts one sequence the dispatcher had no rule for
type UnhandledDTO struct {
	Kind     string `json:"kind" yaml:"kind"`
	Sequence string `json:"sequence" yaml:"sequence"`
	Count    int    `json:"count" yaml:"count"`
}

// RunSummaryDTO describes a finished run
type RunSummaryDTO struct {
	Command   string         `json:"command" yaml:"command"`
	Term      string         `json:"term" yaml:"term"`
	RunID     string         `json:"run_id" yaml:"run_id"`
	PID       int            `json:"pid" yaml:"pid"`
	State     string         `json:"state" yaml:"state"`
	ExitCause string         `json:"exit_cause,omitempty" yaml:"exit_cause,omitempty"`
	Rows      int            `json:"rows" yaml:"rows"`
	Cols      int            `json:"cols" yaml:"cols"`
	Screen    []string       `json:"screen" yaml:"screen"`
	Unhandled []UnhandledDTO `json:"unhandled,omitempty" yaml:"unhandled,omitempty"`
}

// EncodeBytes renders raw capability bytes as a quoted string and as
// space separated hex, e.g. "\x1b[1m" and "1B 5B 31 6D".
func EncodeBytes(b []byte) (quoted, hex string) {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02X", c)
	}
	return strconv.Quote(string(b)), strings.Join(parts, " ")
}

// FromDatabase converts a capability database to a DTO sorted by name.
func FromDatabase(db *capdb.Database) DatabaseDTO {
	entries := db.Entries()
	caps := make([]CapabilityDTO, len(entries))
	for i, e := range entries {
		quoted, hex := EncodeBytes(e.Value)
		caps[i] = CapabilityDTO{
			Name:          e.Name,
			LongName:      e.LongName,
			Value:         quoted,
			Hex:           hex,
			Parameterized: e.Parameterized(),
		}
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i].Name < caps[j].Name })
	return DatabaseDTO{Term: db.Term(), Count: len(caps), Capabilities: caps}
}
