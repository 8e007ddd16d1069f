package gdb

import "github.com/dshills/gdbmi/internal/mi"

// Handler observes out-of-band messages: every message that is not a
// result record. Handlers run on the session reader goroutine, one message
// at a time, so a slow handler delays everything behind it. A handler must
// not wait for the result of a command it issues; use Issue and return.
type Handler interface {
	Handle(s *Session, msg mi.Message)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(s *Session, msg mi.Message)

// Handle calls f(s, msg).
func (f HandlerFunc) Handle(s *Session, msg mi.Message) {
	f(s, msg)
}

// KindFilter returns a handler that forwards only messages of the given
// kinds to h.
func KindFilter(h Handler, kinds ...mi.Kind) Handler {
	return HandlerFunc(func(s *Session, msg mi.Message) {
		for _, k := range kinds {
			if msg.GetKind() == k {
				h.Handle(s, msg)
				return
			}
		}
	})
}
