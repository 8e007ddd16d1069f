package lua

import "errors"

// Errors for script execution.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a chunk or call runs past the
	// state's execution timeout.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrNoHandler is returned when a script does not define on_message.
	ErrNoHandler = errors.New("lua script does not define on_message")

	// ErrWatcherClosed is returned when adding to a closed Watcher.
	ErrWatcherClosed = errors.New("script watcher is closed")
)
