package dispatch

import "github.com/zjrosen/intermix/internal/vt"

// rule maps a matching capability to a screen operation.
type rule struct {
	name  string
	match func(vt.Sequence) bool
	apply func(Screen)
}

// table is an ordered rule list; the first matching rule wins.
type table struct {
	// label names the event category in diagnostics.
	label string
	rules []rule
	// absentIsNoop makes an absent sequence a silent no-op instead of an
	// unhandled event.
	absentIsNoop bool
}

func (t table) lookup(seq vt.Sequence) (rule, bool) {
	for _, r := range t.rules {
		if r.match(seq) {
			return r, true
		}
	}
	return rule{}, false
}

func capName(name string) func(vt.Sequence) bool {
	return func(s vt.Sequence) bool { return s.Name == name }
}

func longName(name string) func(vt.Sequence) bool {
	return func(s vt.Sequence) bool { return s.LongName == name }
}

var csiTable = table{
	label:        "csi dispatch",
	absentIsNoop: true,
	rules: []rule{
		{
			name:  "sgr-normal",
			match: func(s vt.Sequence) bool { return s.Name == "sgr" && s.Param == "normal" },
			apply: func(sc Screen) { sc.SetBold(false) },
		},
		{
			name:  "bold",
			match: capName("bold"),
			apply: func(sc Screen) { sc.SetBold(true) },
		},
		{
			name:  "smcup",
			match: capName("smcup"),
			apply: func(sc Screen) {
				sc.SaveCursor()
				sc.AlternateBuffer()
			},
		},
		{
			name:  "rmcup",
			match: capName("rmcup"),
			apply: func(sc Screen) {
				sc.SaveCursor()
				sc.NormalBuffer()
			},
		},
		{
			name:  "elr",
			match: capName("elr"),
			apply: func(sc Screen) { sc.EraseInLine() },
		},
	},
}

// escTable recognizes nothing yet. New escape handlers are added here.
var escTable = table{
	label: "esc dispatch",
}

var executeTable = table{
	label:        "execute",
	absentIsNoop: true,
	rules: []rule{
		{
			name:  "cr",
			match: capName("cr"),
			apply: func(sc Screen) { sc.MoveLeft(true) },
		},
		{
			name:  "nl",
			match: capName("nl"),
			apply: func(sc Screen) { sc.MoveDown() },
		},
		{
			name:  "backspace",
			match: longName("backspace"),
			apply: func(sc Screen) { sc.MoveLeft(false) },
		},
	},
}
