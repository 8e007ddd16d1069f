package gdb

import (
	"io"
	"time"
)

// Transport is a byte-level duplex channel to a debugger running in MI
// mode. *process.Process implements it.
//
// Write is only called by one goroutine at a time and ReadByte only by the
// session reader. Terminate must make a blocked ReadByte return.
type Transport interface {
	io.Writer
	io.ByteReader

	// Terminate forcibly stops the debugger.
	Terminate() error

	// Wait waits up to timeout for the debugger to exit and reports
	// whether it did.
	Wait(timeout time.Duration) bool
}
