// Package driver runs a command on a pseudo-terminal and feeds its output,
// one bounded non-blocking read per Poll, through a tokenizer into a
// dispatcher driving a screen model.
//
// A Program is single threaded: the caller owns the poll loop and no method
// starts goroutines. Close is the scoped cleanup path (defer p.Close()); it
// is a safety net for orphaned children and explicit Terminate stays the
// normal way to stop a run.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sys/unix"

	"github.com/zjrosen/intermix/internal/capdb"
	"github.com/zjrosen/intermix/internal/dispatch"
	"github.com/zjrosen/intermix/internal/log"
	"github.com/zjrosen/intermix/internal/pubsub"
	"github.com/zjrosen/intermix/internal/screen"
	"github.com/zjrosen/intermix/internal/tokenizer"
	"github.com/zjrosen/intermix/internal/tracing"
	"github.com/zjrosen/intermix/internal/vt"
)

// DefaultReadQuantum bounds the bytes taken by a single Poll.
const DefaultReadQuantum = 100

// Resolver maps a terminal type to its capability database.
type Resolver interface {
	Resolve(ctx context.Context, term string) (*capdb.Database, error)
}

// ScreenFactory creates the screen model of a run.
type ScreenFactory func(rows, cols int, term string) dispatch.Screen

// TokenizerFactory creates the tokenizer of a run.
type TokenizerFactory func(db *capdb.Database) vt.Tokenizer

// SignalFunc delivers sig to pid.
type SignalFunc func(pid int, sig unix.Signal) error

// Option configures a Program.
type Option func(*Program)

func WithSpawner(s Spawner) Option {
	return func(p *Program) { p.spawner = s }
}

func WithResolver(r Resolver) Option {
	return func(p *Program) { p.resolver = r }
}

func WithScreenFactory(f ScreenFactory) Option {
	return func(p *Program) { p.newScreen = f }
}

func WithTokenizerFactory(f TokenizerFactory) Option {
	return func(p *Program) { p.newTokenizer = f }
}

func WithLogger(sink log.Sink) Option {
	return func(p *Program) { p.log = sink }
}

func WithTracer(t trace.Tracer) Option {
	return func(p *Program) { p.tracer = t }
}

// WithTransitions publishes every state change to pub.
func WithTransitions(pub pubsub.Publisher[Transition]) Option {
	return func(p *Program) { p.transitions = pub }
}

// WithReadQuantum sets the maximum bytes read per Poll. Values below 1
// keep the default.
func WithReadQuantum(n int) Option {
	return func(p *Program) {
		if n > 0 {
			p.quantum = n
		}
	}
}

// WithTerm sets the terminal type. Empty means $TERM, then dumb.
func WithTerm(term string) Option {
	return func(p *Program) { p.term = term }
}

// WithSignaler replaces signal delivery, which defaults to kill(2).
func WithSignaler(f SignalFunc) Option {
	return func(p *Program) { p.signal = f }
}

// Program drives one command on a pseudo-terminal. The dimensions and the
// command are fixed at construction.
type Program struct {
	rows, cols int
	command    string
	term       string
	quantum    int

	spawner      Spawner
	resolver     Resolver
	newScreen    ScreenFactory
	newTokenizer TokenizerFactory
	signal       SignalFunc
	log          log.Sink
	tracer       trace.Tracer
	transitions  pubsub.Publisher[Transition]
	now          func() time.Time

	state programState
	buf   []byte
}

// New returns a Program in NotStarted.
func New(rows, cols int, command string, opts ...Option) *Program {
	p := &Program{
		rows:    rows,
		cols:    cols,
		command: command,
		quantum: DefaultReadQuantum,
		spawner: PTYSpawner{},
		newScreen: func(rows, cols int, term string) dispatch.Screen {
			return screen.New(rows, cols, term)
		},
		newTokenizer: func(db *capdb.Database) vt.Tokenizer {
			return tokenizer.New(db)
		},
		signal: func(pid int, sig unix.Signal) error { return unix.Kill(pid, sig) },
		log:    log.Discard,
		tracer: noop.NewTracerProvider().Tracer("noop"),
		now:    time.Now,
		state:  notStarted{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = log.Discard
	}
	if p.resolver == nil {
		p.resolver = capdb.NewResolver(capdb.WithLogger(p.log))
	}
	p.buf = make([]byte, p.quantum)
	return p
}

func (p *Program) Rows() int       { return p.rows }
func (p *Program) Cols() int       { return p.cols }
func (p *Program) Command() string { return p.command }

// State returns the lifecycle state.
func (p *Program) State() State {
	return p.state.state()
}

// PID returns the child's process identifier while it may still be
// signalled: during Running and after Exited until the process is reaped.
func (p *Program) PID() (int, bool) {
	switch s := p.state.(type) {
	case *running:
		return s.child.PID(), true
	case *exited:
		if !s.reaped && s.pid > 0 {
			return s.pid, true
		}
	}
	return 0, false
}

// Screen returns the screen model of the current run. It is only held while
// Running.
func (p *Program) Screen() (dispatch.Screen, bool) {
	if r, ok := p.state.(*running); ok {
		return r.screen, true
	}
	return nil, false
}

// RunID identifies the current or last run. Empty before Start.
func (p *Program) RunID() string {
	switch s := p.state.(type) {
	case *running:
		return s.runID
	case *exited:
		return s.runID
	}
	return ""
}

// ExitCause is the error that ended the run, or nil when not Exited.
func (p *Program) ExitCause() error {
	if s, ok := p.state.(*exited); ok {
		return s.cause
	}
	return nil
}

// Start resolves the terminal capabilities, spawns the command on a
// pseudo-terminal and wires a fresh screen, tokenizer and dispatcher.
// On failure the program stays in NotStarted.
func (p *Program) Start(ctx context.Context) error {
	if _, ok := p.state.(notStarted); !ok {
		return ErrAlreadyStarted
	}

	term := capdb.TermName(p.term)
	startCtx, span := p.tracer.Start(ctx, tracing.SpanDriverStart, trace.WithAttributes(
		attribute.String(tracing.AttrProcessCommand, p.command),
		attribute.String(tracing.AttrTermName, term),
		attribute.Int(tracing.AttrPTYRows, p.rows),
		attribute.Int(tracing.AttrPTYCols, p.cols),
	))
	defer span.End()

	req := SpawnRequest{Command: p.command, Rows: p.rows, Cols: p.cols, Term: term}
	if err := req.validate(); err != nil {
		serr := &SpawnError{Command: p.command, Err: err}
		tracing.RecordError(span, serr)
		p.log.ErrorErr(log.CatDriver, "start failed", serr, "rows", p.rows, "cols", p.cols)
		return serr
	}

	db, err := p.resolver.Resolve(startCtx, term)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrCapabilities, err)
		tracing.RecordError(span, err)
		p.log.ErrorErr(log.CatDriver, "start failed", err, "term", term)
		return err
	}

	child, err := p.spawner.Spawn(req)
	if err != nil {
		serr := &SpawnError{Command: p.command, Err: err}
		tracing.RecordError(span, serr)
		p.log.ErrorErr(log.CatDriver, "start failed", serr, "command", p.command)
		return serr
	}

	sc := p.newScreen(p.rows, p.cols, term)
	tok := p.newTokenizer(db)
	d := dispatch.New(sc, p.log)
	tok.Configure(d.Callbacks())

	runID := uuid.NewString()
	pid := child.PID()
	span.SetAttributes(attribute.Int(tracing.AttrProcessPID, pid), attribute.String(tracing.AttrRunID, runID))
	span.AddEvent(tracing.EventSpawned)

	_, session := p.tracer.Start(ctx, tracing.SpanDriverSession, trace.WithAttributes(
		attribute.Int(tracing.AttrProcessPID, pid),
		attribute.String(tracing.AttrRunID, runID),
		attribute.String(tracing.AttrTermName, term),
	))

	p.state = &running{
		child:      child,
		screen:     sc,
		tokenizer:  tok,
		dispatcher: d,
		term:       term,
		runID:      runID,
		span:       session,
	}
	p.log.Info(log.CatDriver, "process started",
		"pid", pid, "command", p.command, "rows", p.rows, "cols", p.cols, "term", term, "run_id", runID)
	p.publish(NotStarted, Running, pid, runID, nil)
	return nil
}

// Poll performs one bounded, non-blocking read and feeds what it got to
// the tokenizer, which dispatches every complete event before Poll returns.
// It does nothing unless the program is Running.
func (p *Program) Poll() Outcome {
	r, ok := p.state.(*running)
	if !ok {
		return OutcomeIdle
	}

	n, err := r.child.ReadNonblock(p.buf)
	if n > 0 {
		r.reads++
		r.bytes += n
		if _, err := r.tokenizer.Write(p.buf[:n]); err != nil {
			p.log.Debug(log.CatDriver, "tokenizer write failed", "error", err, "pid", r.child.PID(), "run_id", r.runID)
		}
	}

	switch {
	case err == nil, errors.Is(err, ErrWouldBlock):
		if n > 0 {
			return OutcomeRead
		}
		return OutcomeWouldBlock
	default:
		p.exit(r, err)
		p.log.ErrorErr(log.CatDriver, "process exited", err, "pid", r.child.PID(), "run_id", r.runID)
		return OutcomeExited
	}
}

// exit is the single transition from Running to Exited. It releases the
// terminal handles and ends the session span.
func (p *Program) exit(r *running, cause error) {
	pid := r.child.PID()
	if err := r.child.Close(); err != nil {
		p.log.Warn(log.CatDriver, "closing pty", "pid", pid, "error", err)
	}
	reaped := r.child.TryReap()

	r.span.SetAttributes(
		attribute.Int(tracing.AttrBytesRead, r.bytes),
		attribute.Int(tracing.AttrReads, r.reads),
		attribute.String(tracing.AttrExitCause, cause.Error()),
	)
	r.span.AddEvent(tracing.EventExited)
	r.span.End()

	p.state = &exited{pid: pid, proc: r.child, runID: r.runID, cause: cause, reaped: reaped}
	p.publish(Running, Exited, pid, r.runID, cause)
}

// Terminate sends sig to the child. It does not change state; the run
// becomes Exited when a later Poll observes the end of output.
func (p *Program) Terminate(sig unix.Signal) error {
	var (
		pid    int
		parent = context.Background()
	)
	switch s := p.state.(type) {
	case notStarted:
		return ErrNotStarted
	case *running:
		pid = s.child.PID()
		parent = trace.ContextWithSpan(parent, s.span)
	case *exited:
		if !s.reaped {
			s.reaped = s.proc.TryReap()
		}
		if s.reaped {
			p.log.Info(log.CatDriver, "terminate skipped, process already reaped", "pid", s.pid, "signal", sig.String())
			return fmt.Errorf("%w: pid %d", ErrProcessNotFound, s.pid)
		}
		pid = s.pid
	}

	_, span := p.tracer.Start(parent, tracing.SpanDriverTerminate, trace.WithAttributes(
		attribute.Int(tracing.AttrProcessPID, pid),
		attribute.String(tracing.AttrSignal, sig.String()),
	))
	defer span.End()

	p.log.Info(log.CatDriver, "terminating process", "pid", pid, "signal", sig.String())
	if err := p.deliver(pid, sig); err != nil {
		tracing.RecordError(span, err)
		return err
	}
	return nil
}

func (p *Program) deliver(pid int, sig unix.Signal) error {
	err := p.signal(pid, sig)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ESRCH):
		return fmt.Errorf("%w: pid %d", ErrProcessNotFound, pid)
	default:
		return fmt.Errorf("signal %s to pid %d: %w", sig, pid, err)
	}
}

// Alive reports whether the held process identifier still refers to a
// process, by sending it signal 0.
func (p *Program) Alive() bool {
	pid, ok := p.PID()
	if !ok {
		return false
	}
	return p.signal(pid, 0) == nil
}

// Close is the scoped cleanup path. If a live process is still held it
// sends SIGTERM, releases the terminal handles (a Running program becomes
// Exited with ErrClosed) and tries once to reap the child without waiting.
// Calling Close again does nothing.
func (p *Program) Close() error {
	switch s := p.state.(type) {
	case *running:
		pid := s.child.PID()
		p.log.Info(log.CatDriver, "closing running process", "pid", pid, "signal", unix.SIGTERM.String())
		err := p.deliver(pid, unix.SIGTERM)
		p.exit(s, ErrClosed)
		if st, ok := p.state.(*exited); ok {
			st.closed = true
		}
		if errors.Is(err, ErrProcessNotFound) {
			return nil
		}
		return err

	case *exited:
		if s.closed {
			return nil
		}
		s.closed = true
		if s.reaped || s.proc.TryReap() {
			s.reaped = true
			return nil
		}
		p.log.Info(log.CatDriver, "closing exited process", "pid", s.pid, "signal", unix.SIGTERM.String())
		err := p.deliver(s.pid, unix.SIGTERM)
		s.reaped = s.proc.TryReap()
		if errors.Is(err, ErrProcessNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func (p *Program) publish(from, to State, pid int, runID string, cause error) {
	if p.transitions == nil {
		return
	}
	p.transitions.Publish(Transition{From: from, To: to, PID: pid, RunID: runID, Cause: cause, At: p.now()})
}
