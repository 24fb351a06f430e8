package presentation

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/intermix/internal/capdb"
	"github.com/zjrosen/intermix/internal/log"
)

func testDatabase() *capdb.Database {
	return capdb.New("xterm", []capdb.Entry{
		{Name: "smcup", LongName: "enter_ca_mode", Value: []byte("\x1b[?1049h")},
		{Name: "bold", LongName: "enter_bold_mode", Value: []byte("\x1b[1m")},
		{Name: "cup", LongName: "cursor_address", Value: []byte("\x1b[%i%p1%d;%p2%dH")},
	})
}

func TestEncodeBytes(t *testing.T) {
	quoted, hex := EncodeBytes([]byte("\x1b[1m"))
	assert.Equal(t, `"\x1b[1m"`, quoted)
	assert.Equal(t, "1B 5B 31 6D", hex)

	quoted, hex = EncodeBytes(nil)
	assert.Equal(t, `""`, quoted)
	assert.Empty(t, hex)
}

func TestFromDatabase(t *testing.T) {
	dto := FromDatabase(testDatabase())

	assert.Equal(t, "xterm", dto.Term)
	assert.Equal(t, 3, dto.Count)
	require.Len(t, dto.Capabilities, 3)
	assert.Equal(t, "bold", dto.Capabilities[0].Name)
	assert.Equal(t, "cup", dto.Capabilities[1].Name)
	assert.True(t, dto.Capabilities[1].Parameterized)
	assert.False(t, dto.Capabilities[2].Parameterized)
}

func TestFromUnhandled(t *testing.T) {
	rec := log.NewRecorder()
	rec.Debug(log.CatDispatch, "csi dispatch", "cap", "bold", "param", "", "long", "enter_bold_mode", "rule", "bold")
	rec.Debug(log.CatDispatch, "unhandled csi dispatch", "cap", "cup", "param", "", "long", "cursor_address")
	rec.Debug(log.CatDispatch, "unhandled esc dispatch", "absent", true)
	rec.Debug(log.CatDispatch, "unhandled csi dispatch", "cap", "sgr", "param", "", "long", "set_attributes")
	rec.Debug(log.CatDispatch, "unhandled csi dispatch", "cap", "cup", "param", "", "long", "cursor_address")
	rec.Debug(log.CatDriver, "unhandled csi dispatch", "cap", "ignored")

	got := FromUnhandled(rec.Entries())

	assert.Equal(t, []UnhandledDTO{
		{Kind: "csi dispatch", Sequence: "cup", Count: 2},
		{Kind: "esc dispatch", Sequence: "<absent>", Count: 1},
		{Kind: "csi dispatch", Sequence: "sgr", Count: 1},
	}, got)
}

func TestFromUnhandled_IncludesParam(t *testing.T) {
	e := log.Entry{Category: log.CatDispatch, Message: "unhandled execute", Fields: []any{"cap", "sgr", "param", "normal"}}
	got := FromUnhandled([]log.Entry{e})
	require.Len(t, got, 1)
	assert.Equal(t, "sgr/normal", got[0].Sequence)
}

func TestUnhandledCounter_KeepsOneCountPerSequence(t *testing.T) {
	c := NewUnhandledCounter()
	sink := log.Tee(c, log.Discard)

	for i := 0; i < 10000; i++ {
		sink.Debug(log.CatDispatch, "unhandled csi dispatch", "cap", "smul", "param", "", "long", "enter_underline_mode")
		sink.Debug(log.CatDispatch, "execute", "cap", "nl", "param", "", "long", "newline", "rule", "nl")
	}
	sink.Debug(log.CatDispatch, "unhandled esc dispatch", "absent", true)
	sink.Info(log.CatDriver, "process started", "pid", 1)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []UnhandledDTO{
		{Kind: "csi dispatch", Sequence: "smul", Count: 10000},
		{Kind: "esc dispatch", Sequence: "<absent>", Count: 1},
	}, c.Summary())
}

func TestUnhandledCounter_Empty(t *testing.T) {
	c := NewUnhandledCounter()
	assert.Zero(t, c.Len())
	assert.Empty(t, c.Summary())
}

func TestNewFormatter_RejectsUnknownFormat(t *testing.T) {
	_, err := NewFormatter(&bytes.Buffer{}, "xml")
	require.Error(t, err)
}

func TestFormatter_DatabaseYAML(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter(&buf, "")
	require.NoError(t, err)

	require.NoError(t, f.FormatDatabase(FromDatabase(testDatabase())))

	var back DatabaseDTO
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, FromDatabase(testDatabase()), back)
	assert.Contains(t, buf.String(), "long_name: enter_bold_mode")
}

func TestFormatter_SummaryJSON(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter(&buf, FormatJSON)
	require.NoError(t, err)

	s := RunSummaryDTO{Command: "ls", PID: 7, State: "exited", Screen: []string{"a", "b"}}
	require.NoError(t, f.FormatSummary(s))

	var back map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "ls", back["command"])
	assert.NotContains(t, back, "unhandled")
}

func TestFormatter_SummaryText(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter(&buf, FormatText)
	require.NoError(t, err)

	require.NoError(t, f.FormatSummary(RunSummaryDTO{
		Command:   "ls",
		PID:       7,
		RunID:     "r1",
		State:     "exited",
		ExitCause: "EOF",
		Screen:    []string{"hello", ""},
		Unhandled: []UnhandledDTO{{Kind: "csi dispatch", Sequence: "cup", Count: 3}},
	}))

	assert.Equal(t, "hello\n\n--- ls (pid 7, run r1) exited: EOF\nunhandled csi dispatch cup x3\n", buf.String())
}

func TestFormatter_DatabaseText(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter(&buf, FormatText)
	require.NoError(t, err)

	require.NoError(t, f.FormatDatabase(FromDatabase(testDatabase())))
	assert.Contains(t, buf.String(), "xterm (3 capabilities)\n")
	assert.Contains(t, buf.String(), `"\x1b[1m"(1B 5B 31 6D)`)
}
