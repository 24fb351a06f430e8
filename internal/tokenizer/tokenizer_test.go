package tokenizer

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/intermix/internal/capdb"
	"github.com/zjrosen/intermix/internal/vt"
)

var testEntries = []capdb.Entry{
	{Name: "smcup", LongName: "enter_ca_mode", Value: []byte("\x1b[?1049h\x1b[22;0;0t")},
	{Name: "rmcup", LongName: "exit_ca_mode", Value: []byte("\x1b[?1049l\x1b[23;0;0t")},
	{Name: "sc", LongName: "save_cursor", Value: []byte("\x1b7")},
	{Name: "cup", LongName: "cursor_address", Value: []byte("\x1b[%i%p1%d;%p2%dH")},
}

func names(events []vt.Event) []string {
	var out []string
	for _, ev := range events {
		switch ev := ev.(type) {
		case vt.Print:
			out = append(out, "print:"+string(ev.Rune))
		case vt.CSIDispatch:
			out = append(out, "csi:"+ev.Seq.String())
		case vt.ESCDispatch:
			out = append(out, "esc:"+ev.Seq.String())
		case vt.Execute:
			out = append(out, "exec:"+ev.Seq.String())
		}
	}
	return out
}

func collect(t *testing.T, chunks ...string) []vt.Event {
	t.Helper()
	var c vt.Collector
	tok := New(capdb.New("xterm", testEntries))
	tok.Configure(c.Callbacks())
	for _, chunk := range chunks {
		n, err := tok.Write([]byte(chunk))
		require.NoError(t, err)
		require.Equal(t, len(chunk), n)
	}
	return c.Events
}

const sample = "hé\x1b[1mX\x1b[m\r\n\x1b[?1049h\x1b7\x1b[3;4H\x1b]0;title\x07\x1b[Kz\x1b[2J\x08"

func TestTokenizer_Events(t *testing.T) {
	got := names(collect(t, sample))

	require.Equal(t, []string{
		"print:h",
		"print:é",
		"csi:bold (enter_bold_mode)",
		"print:X",
		"csi:sgr/normal (set_attributes)",
		"exec:cr (carriage_return)",
		"exec:nl (newline)",
		"csi:smcup (enter_ca_mode)",
		"esc:sc (save_cursor)",
		"csi:cup (cursor_address)",
		"csi:elr (clr_eol)",
		"print:z",
		"csi:<absent>",
		"exec:bs (backspace)",
	}, got)
}

func TestTokenizer_PartialSequencesCarryOver(t *testing.T) {
	whole := collect(t, sample)

	var chunks []string
	for i := 0; i < len(sample); i++ {
		chunks = append(chunks, sample[i:i+1])
	}
	require.Equal(t, whole, collect(t, chunks...))
}

func TestTokenizer_ChunkingNeverChangesEvents(t *testing.T) {
	whole := collect(t, sample)
	rapid.Check(t, func(t *rapid.T) {
		cuts := rapid.SliceOfNDistinct(rapid.IntRange(1, len(sample)-1), 0, 8, rapid.ID[int]).Draw(t, "cuts")
		var c vt.Collector
		tok := New(capdb.New("xterm", testEntries))
		tok.Configure(c.Callbacks())

		prev := 0
		for _, cut := range sortedInts(cuts) {
			_, _ = tok.Write([]byte(sample[prev:cut]))
			prev = cut
		}
		_, _ = tok.Write([]byte(sample[prev:]))

		if len(c.Events) != len(whole) {
			t.Fatalf("got %d events, want %d", len(c.Events), len(whole))
		}
		for i := range whole {
			if c.Events[i] != whole[i] {
				t.Fatalf("event %d: got %v, want %v", i, c.Events[i], whole[i])
			}
		}
	})
}

func sortedInts(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	return out
}

func TestTokenizer_Reset(t *testing.T) {
	var c vt.Collector
	tok := New(nil)
	tok.Configure(c.Callbacks())

	_, _ = tok.Write([]byte("\x1b[1"))
	tok.Reset()
	_, _ = tok.Write([]byte("a"))

	assert.Equal(t, []string{"print:a"}, names(c.Events))
}

func TestTokenizer_NilDatabaseStillNamesControls(t *testing.T) {
	var c vt.Collector
	tok := New(nil)
	tok.Configure(c.Callbacks())

	_, _ = tok.Write([]byte("\r\x1b[?1049h"))

	assert.Equal(t, []string{"exec:cr (carriage_return)", "csi:<absent>"}, names(c.Events))
}

func TestTokenizer_UnconfiguredDropsEvents(t *testing.T) {
	tok := New(nil)
	require.NotPanics(t, func() {
		_, _ = tok.Write([]byte(sample))
	})
}
