package capdb

import (
	"strconv"
	"strings"

	"github.com/zjrosen/intermix/internal/vt"
)

// Missing marks an omitted CSI parameter.
const Missing = -1

// CSI is a control sequence as reported by a parser: ESC [ prefix params
// intermediate final. Zero Prefix and Intermediate mean none.
type CSI struct {
	Prefix       byte
	Intermediate byte
	Final        byte
	Params       []int
}

// Bytes renders the sequence in canonical form.
func (c CSI) Bytes() []byte {
	var b strings.Builder
	b.WriteByte(esc)
	b.WriteByte('[')
	if c.Prefix != 0 {
		b.WriteByte(c.Prefix)
	}
	for i, p := range c.Params {
		if i > 0 {
			b.WriteByte(';')
		}
		if p != Missing {
			b.WriteString(strconv.Itoa(p))
		}
	}
	if c.Intermediate != 0 {
		b.WriteByte(c.Intermediate)
	}
	b.WriteByte(c.Final)
	return []byte(b.String())
}

func (c CSI) plain() bool {
	return c.Prefix == 0 && c.Intermediate == 0
}

// param returns parameter i, with def for omitted or out of range values.
func (c CSI) param(i, def int) int {
	if i >= len(c.Params) || c.Params[i] == Missing {
		return def
	}
	return c.Params[i]
}

var sgrAttributes = map[int]vt.Sequence{
	1: {Name: "bold", LongName: "enter_bold_mode"},
	2: {Name: "dim", LongName: "enter_dim_mode"},
	3: {Name: "sitm", LongName: "enter_italics_mode"},
	4: {Name: "smul", LongName: "enter_underline_mode"},
	5: {Name: "blink", LongName: "enter_blink_mode"},
	7: {Name: "rev", LongName: "enter_reverse_mode"},
	8: {Name: "invis", LongName: "enter_secure_mode"},
}

var eraseInLine = map[int]vt.Sequence{
	0: {Name: "elr", LongName: "clr_eol"},
	1: {Name: "el1", LongName: "clr_bol"},
	2: {Name: "el2", LongName: "clr_line"},
}

// DecodeCSI names a control sequence. Select graphic rendition and erase in
// line are decoded by parameter; everything else by exact match against the
// database, then by the shape of its parameterized capabilities.
func (db *Database) DecodeCSI(c CSI) vt.Decoded {
	if c.plain() {
		switch c.Final {
		case 'm':
			return decodeSGR(c)
		case 'K':
			if len(c.Params) <= 1 {
				if s, ok := eraseInLine[c.param(0, 0)]; ok {
					return vt.Present(s)
				}
			}
		}
	}

	if s, ok := db.exact[string(c.Bytes())]; ok {
		return vt.Present(s)
	}
	if s, ok := db.shapes[shapeKey{prefix: c.Prefix, intermediate: c.Intermediate, final: c.Final}]; ok {
		return vt.Present(s)
	}
	return vt.Absent()
}

func decodeSGR(c CSI) vt.Decoded {
	sgr := vt.Sequence{Name: "sgr", LongName: "set_attributes"}
	switch len(c.Params) {
	case 0:
		sgr.Param = "normal"
		return vt.Present(sgr)
	case 1:
		p := c.param(0, 0)
		if p == 0 {
			sgr.Param = "normal"
			return vt.Present(sgr)
		}
		if s, ok := sgrAttributes[p]; ok {
			return vt.Present(s)
		}
	}
	return vt.Present(sgr)
}

// DecodeESC names an escape sequence ESC intermediate final. Zero
// intermediate means none.
func (db *Database) DecodeESC(intermediate, final byte) vt.Decoded {
	raw := []byte{esc}
	if intermediate != 0 {
		raw = append(raw, intermediate)
	}
	raw = append(raw, final)
	if s, ok := db.exact[string(raw)]; ok {
		return vt.Present(s)
	}
	return vt.Absent()
}

var controls = map[byte]vt.Sequence{
	0x07: {Name: "bel", LongName: "bell"},
	0x08: {Name: "bs", LongName: "backspace"},
	0x09: {Name: "ht", LongName: "tab"},
	0x0a: {Name: "nl", LongName: "newline"},
	0x0b: {Name: "vt", LongName: "vertical_tab"},
	0x0c: {Name: "ff", LongName: "form_feed"},
	0x0d: {Name: "cr", LongName: "carriage_return"},
	0x0e: {Name: "so", LongName: "shift_out"},
	0x0f: {Name: "si", LongName: "shift_in"},
}

// DecodeControl names a C0 control byte. The names do not depend on the
// terminal type.
func (db *Database) DecodeControl(b byte) vt.Decoded {
	if s, ok := controls[b]; ok {
		return vt.Present(s)
	}
	return vt.Absent()
}
