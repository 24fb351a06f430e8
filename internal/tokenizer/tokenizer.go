// Package tokenizer decodes a terminal output stream into vt events, naming
// each control sequence through a capability database.
package tokenizer

import (
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/intermix/internal/capdb"
	"github.com/zjrosen/intermix/internal/vt"
)

// Tokenizer implements vt.Tokenizer on top of the ansi parser state machine.
// OSC, DCS, APC, PM and SOS strings are consumed without producing events.
type Tokenizer struct {
	db     *capdb.Database
	parser *ansi.Parser
	cb     vt.Callbacks
}

var _ vt.Tokenizer = (*Tokenizer)(nil)

// New returns a tokenizer resolving names through db. A nil db only names
// C0 controls.
func New(db *capdb.Database) *Tokenizer {
	if db == nil {
		db = capdb.New("", nil)
	}
	t := &Tokenizer{db: db, parser: ansi.NewParser()}
	t.parser.SetHandler(ansi.Handler{
		Print:     t.print,
		Execute:   t.execute,
		HandleCsi: t.csi,
		HandleEsc: t.esc,
	})
	return t
}

// Configure replaces the callbacks events are reported to.
func (t *Tokenizer) Configure(cb vt.Callbacks) {
	t.cb = cb
}

// Write feeds p to the parser. It never fails.
func (t *Tokenizer) Write(p []byte) (int, error) {
	for _, b := range p {
		t.parser.Advance(b)
	}
	return len(p), nil
}

// Reset drops any partially parsed sequence.
func (t *Tokenizer) Reset() {
	t.parser.Reset()
}

func (t *Tokenizer) print(r rune) {
	if t.cb.Print != nil {
		t.cb.Print(r)
	}
}

func (t *Tokenizer) execute(b byte) {
	if t.cb.Execute != nil {
		t.cb.Execute(t.db.DecodeControl(b))
	}
}

func (t *Tokenizer) csi(cmd ansi.Cmd, params ansi.Params) {
	if t.cb.CSIDispatch == nil {
		return
	}
	c := capdb.CSI{
		Prefix:       cmd.Prefix(),
		Intermediate: cmd.Intermediate(),
		Final:        cmd.Final(),
	}
	if len(params) > 0 {
		c.Params = make([]int, len(params))
		for i, p := range params {
			c.Params[i] = p.Param(capdb.Missing)
		}
	}
	t.cb.CSIDispatch(t.db.DecodeCSI(c))
}

func (t *Tokenizer) esc(cmd ansi.Cmd) {
	if t.cb.ESCDispatch != nil {
		t.cb.ESCDispatch(t.db.DecodeESC(cmd.Intermediate(), cmd.Final()))
	}
}
