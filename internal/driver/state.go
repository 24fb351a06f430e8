package driver

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/intermix/internal/dispatch"
	"github.com/zjrosen/intermix/internal/vt"
)

// State is the lifecycle position of a Program. It only moves forward:
// NotStarted, Running, Exited.
type State int

const (
	NotStarted State = iota
	Running
	Exited
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Exited:
		return "exited"
	default:
		return "unknown"
	}
}

// Outcome reports what a single Poll did.
type Outcome int

const (
	// OutcomeIdle means the program was not running and nothing was read.
	OutcomeIdle Outcome = iota
	// OutcomeRead means bytes were read and fed to the tokenizer.
	OutcomeRead
	// OutcomeWouldBlock means no output was available.
	OutcomeWouldBlock
	// OutcomeExited means end of stream or a read failure ended the run.
	OutcomeExited
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeRead:
		return "read"
	case OutcomeWouldBlock:
		return "would_block"
	case OutcomeExited:
		return "exited"
	default:
		return "unknown"
	}
}

// Transition is published whenever a Program changes state.
type Transition struct {
	From, To State
	PID      int
	RunID    string
	// Cause is set on the transition to Exited.
	Cause error
	At    time.Time
}

// programState is the state-tagged data of a Program. Handles that only
// make sense while running live in running and nowhere else.
type programState interface {
	state() State
}

type notStarted struct{}

type running struct {
	child      Child
	screen     dispatch.Screen
	tokenizer  vt.Tokenizer
	dispatcher *dispatch.Dispatcher
	term       string
	runID      string
	span       trace.Span
	reads      int
	bytes      int
}

type exited struct {
	pid    int
	proc   reaper
	runID  string
	cause  error
	reaped bool
	closed bool
}

func (notStarted) state() State { return NotStarted }
func (*running) state() State   { return Running }
func (*exited) state() State    { return Exited }
