// Package capdb resolves raw terminal control sequences to terminfo
// capability names for a given terminal type.
package capdb

import (
	"bytes"
	"sort"

	"github.com/zjrosen/intermix/internal/vt"
)

// Entry is one string capability of a terminal description.
type Entry struct {
	Name     string
	LongName string
	// Value is the raw capability string, possibly holding terminfo
	// parameter operations such as %p1%d.
	Value []byte
}

// Parameterized reports whether Value contains terminfo parameter operations.
func (e Entry) Parameterized() bool {
	return bytes.IndexByte(e.Value, '%') >= 0
}

type shapeKey struct {
	prefix, intermediate, final byte
}

// Database maps control sequences of one terminal type to capabilities.
// It is immutable once built and safe for concurrent use.
type Database struct {
	term    string
	entries []Entry
	exact   map[string]vt.Sequence
	shapes  map[shapeKey]vt.Sequence
}

// New indexes entries for term.
//
// A capability string made of several sequences is indexed by its first
// sequence. When two capabilities share a key, a capability consisting of
// exactly one sequence wins over a compound one, then the name that sorts
// first wins.
func New(term string, entries []Entry) *Database {
	sorted := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" || len(e.Value) == 0 {
			continue
		}
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	db := &Database{
		term:    term,
		entries: sorted,
		exact:   make(map[string]vt.Sequence),
		shapes:  make(map[shapeKey]vt.Sequence),
	}

	var compound []Entry
	for _, e := range sorted {
		parts := split(e.Value)
		if len(parts) != 1 {
			compound = append(compound, e)
			continue
		}
		db.index(e, parts[0])
	}
	for _, e := range compound {
		if parts := split(e.Value); len(parts) > 0 {
			db.index(e, parts[0])
		}
	}
	return db
}

func (db *Database) index(e Entry, seq []byte) {
	s := vt.Sequence{Name: e.Name, LongName: e.LongName}
	if bytes.IndexByte(seq, '%') < 0 {
		if _, taken := db.exact[string(seq)]; !taken {
			db.exact[string(seq)] = s
		}
		return
	}
	key, ok := shapeOf(seq)
	if !ok {
		return
	}
	if _, taken := db.shapes[key]; !taken {
		db.shapes[key] = s
	}
}

// Term returns the terminal type the database describes.
func (db *Database) Term() string {
	return db.term
}

// Entries returns the capabilities sorted by name.
func (db *Database) Entries() []Entry {
	return append([]Entry(nil), db.entries...)
}

// Len returns the number of string capabilities.
func (db *Database) Len() int {
	return len(db.entries)
}

// Lookup returns the capability indexed under the exact raw sequence.
func (db *Database) Lookup(raw []byte) (vt.Sequence, bool) {
	s, ok := db.exact[string(raw)]
	return s, ok
}
