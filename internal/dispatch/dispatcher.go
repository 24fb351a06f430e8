// Package dispatch maps decoded control events to screen model operations.
//
// Dispatch is by capability name only. Events that match no rule are
// recorded at debug level and otherwise ignored; the dispatcher never fails.
package dispatch

import (
	"github.com/zjrosen/intermix/internal/log"
	"github.com/zjrosen/intermix/internal/vt"
)

// Dispatcher drives a Screen from tokenizer callbacks.
type Dispatcher struct {
	screen Screen
	log    log.Sink
}

// New returns a dispatcher bound to screen. A nil sink discards diagnostics.
func New(screen Screen, sink log.Sink) *Dispatcher {
	if sink == nil {
		sink = log.Discard
	}
	return &Dispatcher{screen: screen, log: sink}
}

// Callbacks returns tokenizer callbacks bound to d.
func (d *Dispatcher) Callbacks() vt.Callbacks {
	return vt.Callbacks{
		Print:       d.Print,
		CSIDispatch: d.CSIDispatch,
		ESCDispatch: d.ESCDispatch,
		Execute:     d.Execute,
	}
}

// Dispatch handles a single event.
func (d *Dispatcher) Dispatch(ev vt.Event) {
	d.Callbacks().Emit(ev)
}

// Print forwards r to the screen unchanged.
func (d *Dispatcher) Print(r rune) {
	d.screen.Print(r)
}

func (d *Dispatcher) CSIDispatch(seq vt.Decoded) {
	d.run(csiTable, seq)
}

func (d *Dispatcher) ESCDispatch(seq vt.Decoded) {
	d.run(escTable, seq)
}

func (d *Dispatcher) Execute(seq vt.Decoded) {
	d.run(executeTable, seq)
}

// run applies the first matching rule of t and writes exactly one debug
// record for the event.
func (d *Dispatcher) run(t table, decoded vt.Decoded) {
	fields := decoded.Fields()

	seq, ok := decoded.Get()
	if !ok {
		if t.absentIsNoop {
			d.log.Debug(log.CatDispatch, t.label, fields...)
		} else {
			d.log.Debug(log.CatDispatch, "unhandled "+t.label, fields...)
		}
		return
	}

	r, ok := t.lookup(seq)
	if !ok {
		d.log.Debug(log.CatDispatch, "unhandled "+t.label, fields...)
		return
	}

	d.log.Debug(log.CatDispatch, t.label, append(fields, "rule", r.name)...)
	r.apply(d.screen)
}
