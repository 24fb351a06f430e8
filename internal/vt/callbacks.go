package vt

// Callbacks are the four handler categories a Tokenizer reports to.
// Nil handlers are skipped.
type Callbacks struct {
	Print       func(r rune)
	CSIDispatch func(seq Decoded)
	ESCDispatch func(seq Decoded)
	Execute     func(seq Decoded)
}

// Emit routes ev to the matching handler.
func (c Callbacks) Emit(ev Event) {
	switch ev := ev.(type) {
	case Print:
		if c.Print != nil {
			c.Print(ev.Rune)
		}
	case CSIDispatch:
		if c.CSIDispatch != nil {
			c.CSIDispatch(ev.Seq)
		}
	case ESCDispatch:
		if c.ESCDispatch != nil {
			c.ESCDispatch(ev.Seq)
		}
	case Execute:
		if c.Execute != nil {
			c.Execute(ev.Seq)
		}
	}
}

// Tokenizer decodes a raw output stream into events.
//
// Write invokes the configured callbacks synchronously for every complete
// event in p before it returns. Incomplete trailing sequences are kept and
// finished by later writes.
type Tokenizer interface {
	Configure(cb Callbacks)
	Write(p []byte) (int, error)
}

// Collector records emitted events in order. Useful as a Tokenizer target
// in tests and tools.
type Collector struct {
	Events []Event
}

// Callbacks returns handlers appending to c.Events.
func (c *Collector) Callbacks() Callbacks {
	return Callbacks{
		Print:       func(r rune) { c.Events = append(c.Events, Print{Rune: r}) },
		CSIDispatch: func(d Decoded) { c.Events = append(c.Events, CSIDispatch{Seq: d}) },
		ESCDispatch: func(d Decoded) { c.Events = append(c.Events, ESCDispatch{Seq: d}) },
		Execute:     func(d Decoded) { c.Events = append(c.Events, Execute{Seq: d}) },
	}
}
