package dispatch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/intermix/internal/log"
	"github.com/zjrosen/intermix/internal/vt"
)

var sampleEvents = []vt.Event{
	vt.CSIDispatch{Seq: csi("sgr", "normal")},
	vt.CSIDispatch{Seq: csi("sgr", "")},
	vt.CSIDispatch{Seq: csi("bold", "")},
	vt.CSIDispatch{Seq: csi("smcup", "")},
	vt.CSIDispatch{Seq: csi("rmcup", "")},
	vt.CSIDispatch{Seq: csi("elr", "")},
	vt.CSIDispatch{Seq: csi("cup", "")},
	vt.CSIDispatch{Seq: vt.Absent()},
	vt.ESCDispatch{Seq: csi("smkx", "")},
	vt.ESCDispatch{Seq: vt.Absent()},
	vt.Execute{Seq: ctrl("cr", "carriage_return")},
	vt.Execute{Seq: ctrl("nl", "newline")},
	vt.Execute{Seq: ctrl("bs", "backspace")},
	vt.Execute{Seq: ctrl("bel", "bell")},
	vt.Execute{Seq: vt.Absent()},
}

// expectedOps is the dispatch table written out as a plain switch.
func expectedOps(ev vt.Event) []string {
	switch ev := ev.(type) {
	case vt.Print:
		return []string{fmt.Sprintf("print(%q)", ev.Rune)}
	case vt.CSIDispatch:
		seq, ok := ev.Seq.Get()
		switch {
		case !ok:
			return nil
		case seq.Name == "sgr" && seq.Param == "normal":
			return []string{"bold(false)"}
		case seq.Name == "bold":
			return []string{"bold(true)"}
		case seq.Name == "smcup":
			return []string{"save", "alt"}
		case seq.Name == "rmcup":
			return []string{"save", "normal"}
		case seq.Name == "elr":
			return []string{"el"}
		}
	case vt.Execute:
		seq, ok := ev.Seq.Get()
		switch {
		case !ok:
			return nil
		case seq.Name == "cr":
			return []string{"left(true)"}
		case seq.Name == "nl":
			return []string{"down"}
		case seq.LongName == "backspace":
			return []string{"left(false)"}
		}
	}
	return nil
}

func eventGen() *rapid.Generator[vt.Event] {
	return rapid.OneOf(
		rapid.SampledFrom(sampleEvents),
		rapid.Map(rapid.Rune(), func(r rune) vt.Event { return vt.Print{Rune: r} }),
	)
}

func TestDispatcher_OperationsFollowTableInOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		events := rapid.SliceOfN(eventGen(), 0, 64).Draw(t, "events")

		screen := &opScreen{}
		rec := log.NewRecorder()
		d := New(screen, rec)

		var want []string
		nonPrint := 0
		for _, ev := range events {
			d.Dispatch(ev)
			want = append(want, expectedOps(ev)...)
			if ev.Kind() != vt.KindPrint {
				nonPrint++
			}
		}

		require.Equal(t, want, screen.ops)
		require.Len(t, rec.Entries(), nonPrint, "one diagnostic per non-print event")
	})
}
