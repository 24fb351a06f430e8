package driver

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/zjrosen/intermix/internal/capdb"
	"github.com/zjrosen/intermix/internal/vt"
)

// chunk is one scripted ReadNonblock result.
type chunk struct {
	data string
	err  error
}

type fakeChild struct {
	pid       int
	script    []chunk
	readSizes []int
	closed    bool
	reapable  bool
	reapCalls int
}

func (c *fakeChild) PID() int { return c.pid }

func (c *fakeChild) ReadNonblock(p []byte) (int, error) {
	c.readSizes = append(c.readSizes, len(p))
	if len(c.script) == 0 {
		return 0, ErrWouldBlock
	}
	next := c.script[0]
	n := copy(p, next.data)
	if n < len(next.data) {
		c.script[0].data = next.data[n:]
		return n, nil
	}
	c.script = c.script[1:]
	return n, next.err
}

func (c *fakeChild) Close() error {
	c.closed = true
	return nil
}

func (c *fakeChild) TryReap() bool {
	c.reapCalls++
	return c.reapable
}

type fakeSpawner struct {
	child *fakeChild
	err   error
	reqs  []SpawnRequest
}

func (s *fakeSpawner) Spawn(req SpawnRequest) (Child, error) {
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.child, nil
}

type signalCall struct {
	pid int
	sig unix.Signal
}

type fakeSignaler struct {
	mu    sync.Mutex
	calls []signalCall
	err   error
}

func (f *fakeSignaler) signal(pid int, sig unix.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, signalCall{pid, sig})
	return f.err
}

type failingResolver struct{}

func (failingResolver) Resolve(context.Context, string) (*capdb.Database, error) {
	return nil, capdb.ErrUnknownTerminal
}

func staticResolver() *capdb.Resolver {
	entries := []capdb.Entry{
		{Name: "smcup", LongName: "enter_ca_mode", Value: []byte("\x1b[?1049h")},
		{Name: "rmcup", LongName: "exit_ca_mode", Value: []byte("\x1b[?1049l")},
	}
	return capdb.NewResolver(capdb.WithSources(capdb.StaticSource{"xterm": entries}))
}

var errIO = errors.New("input/output error")

type failingTokenizer struct{ err error }

func (failingTokenizer) Configure(vt.Callbacks) {}

func (f failingTokenizer) Write(p []byte) (int, error) { return 0, f.err }
