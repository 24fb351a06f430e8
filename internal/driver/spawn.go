package driver

import (
	"fmt"
	"math"
)

// MaxDimension is the largest row or column count a terminal window can hold.
const MaxDimension = math.MaxUint16

// SpawnRequest describes the child to start.
type SpawnRequest struct {
	Command    string
	Rows, Cols int
	// Term is exported to the child as TERM.
	Term string
}

// validate rejects window sizes the terminal driver cannot represent.
func (r SpawnRequest) validate() error {
	if r.Rows < 1 || r.Rows > MaxDimension || r.Cols < 1 || r.Cols > MaxDimension {
		return fmt.Errorf("%w: %dx%d (rows and cols must be 1..%d)", ErrInvalidSize, r.Rows, r.Cols, MaxDimension)
	}
	return nil
}

// Child is a spawned process attached to a terminal.
type Child interface {
	PID() int
	// ReadNonblock performs one read of the child's output without
	// waiting. It returns ErrWouldBlock when nothing is available and
	// io.EOF or another error once the output is finished.
	ReadNonblock(p []byte) (int, error)
	// Close releases the terminal handles. It does not signal the child.
	Close() error
	reaper
}

type reaper interface {
	// TryReap collects the exit status if the process has finished,
	// without waiting. It reports whether the process is gone.
	TryReap() bool
}

// Spawner starts child processes.
type Spawner interface {
	Spawn(req SpawnRequest) (Child, error)
}

// SpawnerFunc adapts a function to Spawner.
type SpawnerFunc func(req SpawnRequest) (Child, error)

func (f SpawnerFunc) Spawn(req SpawnRequest) (Child, error) { return f(req) }
