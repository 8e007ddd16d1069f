package gdb

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionClosed is returned for commands issued after teardown and
	// delivered to every request still pending when the session closes.
	// When teardown had a cause (end of stream, a parse or read error) the
	// returned error wraps it as well.
	ErrSessionClosed = errors.New("gdb: session closed")

	// ErrNotReady is returned by Pending.Result before the result arrives.
	ErrNotReady = errors.New("gdb: result not ready")
)

// TransportError wraps a failure of the underlying transport.
type TransportError struct {
	// Op is the transport operation: write, read or terminate.
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gdb: transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// CommandError is a ^error result returned by Call.
type CommandError struct {
	// Operation is the failed command, without the leading '-'.
	Operation string
	Context   int
	// Message is the msg property of the result.
	Message string
	// Code is the optional code property, such as "undefined-command".
	Code string
}

func (e *CommandError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gdb: -%s failed (%s): %s", e.Operation, e.Code, e.Message)
	}
	return fmt.Sprintf("gdb: -%s failed: %s", e.Operation, e.Message)
}

// IsSessionClosed reports whether err comes from a closed session.
func IsSessionClosed(err error) bool {
	return errors.Is(err, ErrSessionClosed)
}

// IsTransportError reports whether err is a transport failure.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func closedError(cause error) error {
	if cause == nil {
		return ErrSessionClosed
	}
	return fmt.Errorf("%w: %w", ErrSessionClosed, cause)
}
