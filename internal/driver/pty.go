package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

const defaultShell = "/bin/sh"

// PTYSpawner runs commands through a shell on a new pseudo-terminal.
type PTYSpawner struct {
	// Shell interprets the command. Defaults to /bin/sh.
	Shell string
	// Env is added to the current environment.
	Env []string
	Dir string
}

var _ Spawner = PTYSpawner{}

// Spawn starts req.Command with the terminal window already sized to
// req.Rows by req.Cols, and switches the master side to non-blocking reads.
func (s PTYSpawner) Spawn(req SpawnRequest) (Child, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	shell := s.Shell
	if shell == "" {
		shell = defaultShell
	}

	cmd := exec.Command(shell, "-c", req.Command) //nolint:gosec // G204: running the user's command is the point
	cmd.Dir = s.Dir
	cmd.Env = append(os.Environ(), s.Env...)
	if req.Term != "" {
		cmd.Env = append(cmd.Env, "TERM="+req.Term)
	}

	master, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(req.Rows), Cols: uint16(req.Cols)}) //nolint:gosec // G115: validated above
	if err != nil {
		return nil, err
	}

	child := &ptyChild{cmd: cmd, master: master}
	if err := child.setNonblock(); err != nil {
		_ = master.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("non-blocking pty: %w", err)
	}
	return child, nil
}

type ptyChild struct {
	cmd    *exec.Cmd
	master *os.File
	raw    syscall.RawConn
	status unix.WaitStatus
	reaped bool
}

func (c *ptyChild) setNonblock() error {
	raw, err := c.master.SyscallConn()
	if err != nil {
		return err
	}
	var serr error
	if err := raw.Control(func(fd uintptr) {
		serr = unix.SetNonblock(int(fd), true)
	}); err != nil {
		return err
	}
	c.raw = raw
	return serr
}

func (c *ptyChild) PID() int {
	return c.cmd.Process.Pid
}

// ReadNonblock issues exactly one read(2) on the master. Linux reports EIO
// once every slave descriptor is closed, which is how a finished child
// usually shows up.
func (c *ptyChild) ReadNonblock(p []byte) (int, error) {
	var (
		n    int
		rerr error
	)
	err := c.raw.Read(func(fd uintptr) bool {
		n, rerr = unix.Read(int(fd), p)
		return true
	})
	if err != nil {
		return 0, err
	}

	switch {
	case errors.Is(rerr, unix.EAGAIN), errors.Is(rerr, unix.EINTR):
		return 0, ErrWouldBlock
	case rerr != nil:
		return 0, &os.PathError{Op: "read", Path: c.master.Name(), Err: rerr}
	case n == 0:
		return 0, io.EOF
	}
	return n, nil
}

func (c *ptyChild) Close() error {
	return c.master.Close()
}

func (c *ptyChild) TryReap() bool {
	if c.reaped {
		return true
	}
	pid, err := unix.Wait4(c.cmd.Process.Pid, &c.status, unix.WNOHANG, nil)
	switch {
	case errors.Is(err, unix.ECHILD):
	case err != nil, pid == 0:
		return false
	}
	c.reaped = true
	_ = c.cmd.Process.Release()
	return true
}
