package gdb

import (
	"fmt"

	"github.com/dshills/gdbmi/internal/process"
)

// Start launches gdb as described by opts and opens a session on it. The
// session ID defaults to the process ID.
func Start(opts process.Options, sessionOpts ...Option) (*Session, error) {
	p, err := process.Start(opts)
	if err != nil {
		return nil, fmt.Errorf("start debugger: %w", err)
	}

	s := NewSession(p, append([]Option{WithID(p.ID)}, sessionOpts...)...)
	path, args := opts.CommandLine()
	s.log.Info("debugger started", "path", path, "args", args, "pid", p.PID())
	return s, nil
}
