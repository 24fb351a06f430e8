package vt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecoded_ZeroValueIsAbsent(t *testing.T) {
	var d Decoded
	require.True(t, d.IsAbsent())
	_, ok := d.Get()
	require.False(t, ok)
	require.Equal(t, Absent(), d)
	require.Equal(t, []any{"absent", true}, d.Fields())
}

func TestDecoded_Present(t *testing.T) {
	d := Present(Sequence{Name: "sgr", Param: "normal"})
	require.False(t, d.IsAbsent())
	seq, ok := d.Get()
	require.True(t, ok)
	require.Equal(t, "sgr", seq.Name)
	require.Equal(t, "normal", seq.Param)
	require.Equal(t, []any{"cap", "sgr", "param", "normal", "long", ""}, d.Fields())
	require.Equal(t, "sgr/normal", d.String())
}

func TestCallbacks_Emit(t *testing.T) {
	var c Collector
	cb := c.Callbacks()

	events := []Event{
		Print{Rune: 'x'},
		CSIDispatch{Seq: Present(Sequence{Name: "bold"})},
		ESCDispatch{Seq: Absent()},
		Execute{Seq: Present(Sequence{Name: "cr", LongName: "carriage_return"})},
	}
	for _, ev := range events {
		cb.Emit(ev)
	}

	require.Equal(t, events, c.Events)
}

func TestCallbacks_EmitSkipsNilHandlers(t *testing.T) {
	var cb Callbacks
	require.NotPanics(t, func() {
		cb.Emit(Print{Rune: 'a'})
		cb.Emit(CSIDispatch{})
		cb.Emit(ESCDispatch{})
		cb.Emit(Execute{})
	})
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "print", Print{}.Kind().String())
	require.Equal(t, "csi", CSIDispatch{}.Kind().String())
	require.Equal(t, "esc", ESCDispatch{}.Kind().String())
	require.Equal(t, "execute", Execute{}.Kind().String())
	require.Equal(t, "kind(9)", Kind(9).String())
}
