package capdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single csi", "\x1b[1m", []string{"\x1b[1m"}},
		{"compound", "\x1b[?1049h\x1b[22;0;0t", []string{"\x1b[?1049h", "\x1b[22;0;0t"}},
		{"esc then csi", "\x1b(B\x1b[m", []string{"\x1b(B", "\x1b[m"}},
		{"parameterized", "\x1b[%i%p1%d;%p2%dH", []string{"\x1b[%i%p1%d;%p2%dH"}},
		{"padding stripped", "\x1b[?5h$<100/>\x1b[?5l", []string{"\x1b[?5h", "\x1b[?5l"}},
		{"plain bytes", "\r\n", []string{"\r", "\n"}},
		{"two byte esc", "\x1b7", []string{"\x1b7"}},
		{"truncated", "\x1b[12", []string{"\x1b[12"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range split([]byte(tt.in)) {
				got = append(got, string(p))
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestShapeOf(t *testing.T) {
	key, ok := shapeOf([]byte("\x1b[%i%p1%d;%p2%dH"))
	require.True(t, ok)
	assert.Equal(t, shapeKey{final: 'H'}, key)

	key, ok = shapeOf([]byte("\x1b[?%p1%dh"))
	require.True(t, ok)
	assert.Equal(t, shapeKey{prefix: '?', final: 'h'}, key)

	key, ok = shapeOf([]byte("\x1b[%p1%d q"))
	require.True(t, ok)
	assert.Equal(t, shapeKey{intermediate: ' ', final: 'q'}, key)

	_, ok = shapeOf([]byte("\x1b(B"))
	require.False(t, ok)
}

func TestNew_EntriesSortedAndEmptySkipped(t *testing.T) {
	db := New("xterm", xtermEntries)

	require.Equal(t, "xterm", db.Term())
	require.Equal(t, len(xtermEntries)-1, db.Len())
	entries := db.Entries()
	for i := 1; i < len(entries); i++ {
		require.Less(t, entries[i-1].Name, entries[i].Name)
	}
}

func TestNew_SingleSequenceBeatsCompound(t *testing.T) {
	db := New("t", []Entry{
		{Name: "aaa", Value: []byte("\x1b[?1049h\x1b[22t")},
		{Name: "zzz", Value: []byte("\x1b[?1049h")},
	})

	s, ok := db.Lookup([]byte("\x1b[?1049h"))
	require.True(t, ok)
	require.Equal(t, "zzz", s.Name)
}

func TestNew_SortedNameBreaksTies(t *testing.T) {
	db := New("t", []Entry{
		{Name: "kbs", Value: []byte("\x7f")},
		{Name: "del", Value: []byte("\x7f")},
	})

	s, ok := db.Lookup([]byte("\x7f"))
	require.True(t, ok)
	require.Equal(t, "del", s.Name)
}

func TestEntry_Parameterized(t *testing.T) {
	assert.True(t, Entry{Value: []byte("\x1b[%p1%dA")}.Parameterized())
	assert.False(t, Entry{Value: []byte("\x1b[A")}.Parameterized())
}
