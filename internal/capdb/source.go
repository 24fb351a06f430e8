package capdb

import (
	"errors"
	"fmt"

	tcellinfo "github.com/gdamore/tcell/v2/terminfo"
	// Registers the built-in descriptions of common terminals.
	_ "github.com/gdamore/tcell/v2/terminfo/base"
	"github.com/xo/terminfo"
)

// ErrUnknownTerminal is returned when no source describes a terminal type.
var ErrUnknownTerminal = errors.New("unknown terminal type")

// Source loads the string capabilities of a terminal type.
type Source interface {
	Name() string
	Load(term string) ([]Entry, error)
}

// SystemSource reads compiled terminfo files. With no Dirs it searches the
// locations named by $TERMINFO, $TERMINFO_DIRS and the system defaults.
type SystemSource struct {
	Dirs []string
}

func (SystemSource) Name() string { return "terminfo" }

func (s SystemSource) Load(term string) ([]Entry, error) {
	ti, err := s.open(term)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrUnknownTerminal, term, err)
	}

	entries := make([]Entry, 0, len(ti.Strings))
	for i, v := range ti.Strings {
		if len(v) == 0 {
			continue
		}
		entries = append(entries, Entry{
			Name:     terminfo.StringCapNameShort(i),
			LongName: terminfo.StringCapName(i),
			Value:    append([]byte(nil), v...),
		})
	}
	return entries, nil
}

func (s SystemSource) open(term string) (*terminfo.Terminfo, error) {
	if len(s.Dirs) == 0 {
		return terminfo.Load(term)
	}
	var errs []error
	for _, dir := range s.Dirs {
		ti, err := terminfo.Open(dir, term)
		if err == nil {
			return ti, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// BuiltinSource serves the descriptions compiled into tcell. It covers
// fewer capabilities than SystemSource but needs no files on disk.
type BuiltinSource struct{}

func (BuiltinSource) Name() string { return "builtin" }

func (BuiltinSource) Load(term string) ([]Entry, error) {
	ti, err := tcellinfo.LookupTerminfo(term)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrUnknownTerminal, term, err)
	}

	caps := []struct {
		name, long, value string
	}{
		{"bold", "enter_bold_mode", ti.Bold},
		{"dim", "enter_dim_mode", ti.Dim},
		{"blink", "enter_blink_mode", ti.Blink},
		{"rev", "enter_reverse_mode", ti.Reverse},
		{"smul", "enter_underline_mode", ti.Underline},
		{"sgr0", "exit_attribute_mode", ti.AttrOff},
		{"smcup", "enter_ca_mode", ti.EnterCA},
		{"rmcup", "exit_ca_mode", ti.ExitCA},
		{"clear", "clear_screen", ti.Clear},
		{"cup", "cursor_address", ti.SetCursor},
	}
	entries := make([]Entry, 0, len(caps))
	for _, c := range caps {
		if c.value == "" {
			continue
		}
		entries = append(entries, Entry{Name: c.name, LongName: c.long, Value: []byte(c.value)})
	}
	return entries, nil
}

// StaticSource serves fixed descriptions, keyed by terminal type.
type StaticSource map[string][]Entry

func (StaticSource) Name() string { return "static" }

func (s StaticSource) Load(term string) ([]Entry, error) {
	entries, ok := s[term]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTerminal, term)
	}
	return entries, nil
}
