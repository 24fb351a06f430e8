package driver

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyStarted is returned by Start once the program has left
	// NotStarted.
	ErrAlreadyStarted = errors.New("program already started")
	// ErrNotStarted is returned by Terminate before Start.
	ErrNotStarted = errors.New("program not started")
	// ErrProcessNotFound means the process identifier no longer refers to
	// a live process.
	ErrProcessNotFound = errors.New("process not found")
	// ErrCapabilities wraps a failure to resolve the terminal type.
	ErrCapabilities = errors.New("resolving terminal capabilities")
	// ErrSpawn matches every *SpawnError.
	ErrSpawn = errors.New("spawn failed")
	// ErrInvalidSize is wrapped by the SpawnError of a Start whose window
	// dimensions are out of range.
	ErrInvalidSize = errors.New("invalid window size")
	// ErrClosed is the exit cause of a run ended by Close.
	ErrClosed = errors.New("program closed")
	// ErrWouldBlock is returned by Child.ReadNonblock when no output is
	// available.
	ErrWouldBlock = errors.New("read would block")
)

// SpawnError reports that the child process could not be created.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSpawn) true for any SpawnError.
func (e *SpawnError) Is(target error) bool { return target == ErrSpawn }
