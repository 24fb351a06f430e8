// Package vt holds the decoded control-event vocabulary shared by the
// tokenizer, the dispatcher and the driver.
package vt

import "fmt"

// Sequence names a terminal capability. Param and LongName are empty when
// the decode did not produce them.
type Sequence struct {
	Name     string
	Param    string
	LongName string
}

func (s Sequence) String() string {
	out := s.Name
	if s.Param != "" {
		out += "/" + s.Param
	}
	if s.LongName != "" {
		out += " (" + s.LongName + ")"
	}
	return out
}

// Decoded is an optional Sequence. The zero value is absent.
type Decoded struct {
	seq     Sequence
	present bool
}

// Present wraps a decoded capability.
func Present(s Sequence) Decoded {
	return Decoded{seq: s, present: true}
}

// Absent reports that no capability could be identified.
func Absent() Decoded {
	return Decoded{}
}

// Get returns the sequence and whether it is present.
func (d Decoded) Get() (Sequence, bool) {
	return d.seq, d.present
}

// IsAbsent reports whether the decode produced no capability.
func (d Decoded) IsAbsent() bool {
	return !d.present
}

// Fields returns the sequence as alternating log key/value pairs.
func (d Decoded) Fields() []any {
	if !d.present {
		return []any{"absent", true}
	}
	return []any{"cap", d.seq.Name, "param", d.seq.Param, "long", d.seq.LongName}
}

func (d Decoded) String() string {
	if !d.present {
		return "<absent>"
	}
	return d.seq.String()
}

// Kind tags an Event.
type Kind int

const (
	KindPrint Kind = iota
	KindCSI
	KindESC
	KindExecute
)

func (k Kind) String() string {
	switch k {
	case KindPrint:
		return "print"
	case KindCSI:
		return "csi"
	case KindESC:
		return "esc"
	case KindExecute:
		return "execute"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is one decoded control event. The set of implementations is closed.
type Event interface {
	Kind() Kind
	event()
}

// Print carries a printable code point.
type Print struct{ Rune rune }

// CSIDispatch carries a decoded control sequence.
type CSIDispatch struct{ Seq Decoded }

// ESCDispatch carries a decoded escape sequence.
type ESCDispatch struct{ Seq Decoded }

// Execute carries a decoded C0 control.
type Execute struct{ Seq Decoded }

func (Print) Kind() Kind       { return KindPrint }
func (CSIDispatch) Kind() Kind { return KindCSI }
func (ESCDispatch) Kind() Kind { return KindESC }
func (Execute) Kind() Kind     { return KindExecute }

func (Print) event()       {}
func (CSIDispatch) event() {}
func (ESCDispatch) event() {}
func (Execute) event()     {}
