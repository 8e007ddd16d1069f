package process

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for process package.
var (
	// ErrProcessNotStarted is returned when operations require a started process.
	ErrProcessNotStarted = errors.New("process not started")

	// ErrProcessExited is returned when writing to a process that has exited.
	ErrProcessExited = errors.New("process exited")
)

// State represents the state of a process.
type State int

const (
	// StateRunning indicates the process is currently running.
	StateRunning State = iota
	// StateExited indicates the process has exited normally or with an error.
	StateExited
	// StateKilled indicates the process was killed by a signal.
	StateKilled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Options describes how to launch the debugger.
type Options struct {
	// Path is the debugger executable. Defaults to "gdb".
	Path string

	// Args are appended after the interpreter and startup flags.
	Args []string

	// Interpreter selects the MI dialect passed as --interpreter.
	// Defaults to "mi".
	Interpreter string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds extra KEY=VALUE pairs added to the inherited environment.
	Env []string

	// Stderr receives the debugger's standard error. Nil discards it.
	Stderr io.Writer

	// Quiet suppresses the startup banner (-q).
	Quiet bool

	// NoInit skips all .gdbinit files (-nx).
	NoInit bool
}

// CommandLine returns the executable and the argument list Start would use.
func (o Options) CommandLine() (string, []string) {
	path := o.Path
	if path == "" {
		path = "gdb"
	}
	interp := o.Interpreter
	if interp == "" {
		interp = "mi"
	}

	args := []string{"--interpreter=" + interp}
	if o.Quiet {
		args = append(args, "-q")
	}
	if o.NoInit {
		args = append(args, "-nx")
	}
	args = append(args, o.Args...)
	return path, args
}

// Process is a running debugger with piped standard input and output.
//
// Write sends bytes to stdin and ReadByte reads buffered stdout. Output
// stays readable after the process exits until the pipe drains. Process is
// safe for concurrent use, although ReadByte must only be driven by a
// single reader.
type Process struct {
	// ID is the unique identifier for this process.
	ID string

	// Cmd is the underlying exec.Cmd.
	Cmd *exec.Cmd

	// Started is the time the process was started.
	Started time.Time

	stdin  io.WriteCloser
	stdout *os.File
	reader *bufio.Reader

	writeMu sync.Mutex

	done     chan struct{}
	state    atomic.Int32
	exitCode atomic.Int32
	exitErr  error
	mu       sync.RWMutex

	closeOnce sync.Once
}

// Start launches the debugger described by opts.
func Start(opts Options) (*Process, error) {
	path, args := opts.CommandLine()

	cmd := exec.Command(path, args...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	cmd.Stderr = opts.Stderr
	configure(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}

	// A plain os.Pipe keeps the read side ours: exec.Cmd.Wait would close a
	// StdoutPipe as soon as the process exits, losing unread output.
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		_ = stdin.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stdout = stdoutW

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		_ = stdoutR.Close()
		_ = stdoutW.Close()
		return nil, fmt.Errorf("start %s: %w", path, err)
	}
	_ = stdoutW.Close()

	p := &Process{
		ID:      uuid.New().String(),
		Cmd:     cmd,
		Started: time.Now(),
		stdin:   stdin,
		stdout:  stdoutR,
		reader:  bufio.NewReader(stdoutR),
		done:    make(chan struct{}),
	}
	p.state.Store(int32(StateRunning))
	p.exitCode.Store(-1)

	go p.waitLoop()

	return p, nil
}

// Write writes b to the debugger's standard input in one call.
func (p *Process) Write(b []byte) (int, error) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	n, err := p.stdin.Write(b)
	if err != nil && p.HasExited() {
		return n, fmt.Errorf("%w: %w", ErrProcessExited, err)
	}
	return n, err
}

// ReadByte reads one byte of the debugger's standard output.
func (p *Process) ReadByte() (byte, error) {
	b, err := p.reader.ReadByte()
	if err != nil && errors.Is(err, os.ErrClosed) {
		// Terminate closed the pipe under a blocked read.
		return 0, io.EOF
	}
	return b, err
}

// Terminate kills the debugger and everything in its process group, then
// releases the pipes. Calling it after exit only releases the pipes.
func (p *Process) Terminate() error {
	var err error
	if !p.HasExited() {
		if kerr := kill(p.Cmd.Process); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
			err = fmt.Errorf("kill process %d: %w", p.PID(), kerr)
		}
	}
	p.close()
	return err
}

// Wait waits up to timeout for the process to exit and reports whether it
// did. A non-positive timeout waits indefinitely.
func (p *Process) Wait(timeout time.Duration) bool {
	if timeout <= 0 {
		<-p.done
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return true
	case <-timer.C:
		return false
	}
}

// State returns the current process state.
func (p *Process) State() State {
	return State(p.state.Load())
}

// ExitCode returns the process exit code.
// Returns -1 if the process has not exited.
func (p *Process) ExitCode() int {
	return int(p.exitCode.Load())
}

// ExitError returns any error from waiting on the process.
func (p *Process) ExitError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.exitErr
}

// Done returns a channel that is closed when the process exits.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// HasExited returns true if the process has exited (normally or killed).
func (p *Process) HasExited() bool {
	state := p.State()
	return state == StateExited || state == StateKilled
}

// PID returns the process ID, or -1 if not started.
func (p *Process) PID() int {
	if p.Cmd.Process == nil {
		return -1
	}
	return p.Cmd.Process.Pid
}

// waitLoop waits for the process to exit and updates state.
func (p *Process) waitLoop() {
	err := p.Cmd.Wait()

	p.mu.Lock()
	p.exitErr = err
	p.mu.Unlock()

	exitCode := 0
	state := StateExited

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
				state = StateKilled
			}
		} else {
			exitCode = -1
		}
	}

	p.exitCode.Store(int32(exitCode))
	p.state.Store(int32(state))
	close(p.done)
}

func (p *Process) close() {
	p.closeOnce.Do(func() {
		_ = p.stdin.Close()
		_ = p.stdout.Close()
	})
}
