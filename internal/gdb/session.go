package gdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/dshills/gdbmi/internal/mi"
	"github.com/dshills/gdbmi/internal/mi/command"
)

// State is the lifecycle state of a session.
type State int32

const (
	// StateOpen accepts commands; the reader is running.
	StateOpen State = iota
	// StateClosing means teardown has started.
	StateClosing
	// StateClosed means the reader has stopped.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log logr.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithHandler registers h before the reader starts, so it sees the very
// first message.
func WithHandler(h Handler) Option {
	return func(s *Session) {
		s.handlers = append(s.handlers, h)
	}
}

// WithStrictParsing rejects unescaped newlines in quoted strings.
func WithStrictParsing() Option {
	return func(s *Session) {
		s.strict = true
	}
}

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// Session drives one debugger over a Transport.
//
// Any goroutine may issue commands. A single reader goroutine parses the
// debugger output, completes pending requests from result records and
// passes every other message to the registered handlers.
type Session struct {
	id        string
	transport Transport
	log       logr.Logger
	strict    bool

	seq     int64
	pending *pendingTable
	writeMu sync.Mutex

	handlers  []Handler
	handlerMu sync.RWMutex

	state     atomic.Int32
	done      chan struct{}
	closeOnce sync.Once
	err       error
	errMu     sync.RWMutex
}

// NewSession starts a session on t. The reader goroutine runs until the
// stream ends, a fatal parse error occurs, or Close is called.
func NewSession(t Transport, opts ...Option) *Session {
	s := &Session{
		transport: t,
		log:       logr.Discard(),
		pending:   newPendingTable(),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.New().String()
	}
	s.log = s.log.WithValues("session", s.id)
	s.state.Store(int32(StateOpen))

	var popts []mi.ParserOption
	if s.strict {
		popts = append(popts, mi.WithStrict())
	}
	go s.readLoop(mi.NewParser(t, popts...))

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Done returns a channel that is closed once the reader has stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the cause of an unrequested teardown: io.EOF when the
// debugger closed its output, or the parse or read error. It is nil while
// the session is open and after an explicit Close.
func (s *Session) Err() error {
	s.errMu.RLock()
	defer s.errMu.RUnlock()
	return s.err
}

// PendingCount returns the number of commands awaiting a result.
func (s *Session) PendingCount() int {
	return s.pending.len()
}

// IsPending reports whether a command with context ctx awaits a result.
func (s *Session) IsPending(ctx int) bool {
	return s.pending.has(ctx)
}

// Wait waits up to timeout for the debugger to exit.
func (s *Session) Wait(timeout time.Duration) bool {
	return s.transport.Wait(timeout)
}

// RegisterHandler appends h to the out-of-band handlers. Handlers are
// invoked in registration order.
func (s *Session) RegisterHandler(h Handler) {
	if h == nil {
		return
	}
	s.handlerMu.Lock()
	s.handlers = append(s.handlers, h)
	s.handlerMu.Unlock()
}

// Issue allocates the next context, records a pending request for it and
// writes c to the debugger. The returned handle completes when the
// matching result arrives or the session closes.
func (s *Session) Issue(c command.Command) (*Pending, error) {
	if s.State() != StateOpen {
		return nil, closedError(s.Err())
	}

	ctx := int(atomic.AddInt64(&s.seq, 1))
	line, err := command.Encode(mi.Some(ctx), c)
	if err != nil {
		return nil, err
	}

	p := newPending(ctx)
	if err := s.pending.insert(p); err != nil {
		return nil, err
	}

	if err := s.write(line); err != nil {
		if taken, ok := s.pending.take(ctx); ok {
			taken.fail(err)
		}
		return nil, err
	}

	s.log.V(1).Info("issued command", "context", ctx, "operation", c.Operation())
	return p, nil
}

// Send writes c without a context. No result is tracked for it.
func (s *Session) Send(c command.Command) error {
	if s.State() != StateOpen {
		return closedError(s.Err())
	}

	line, err := command.Encode(mi.NoContext, c)
	if err != nil {
		return err
	}
	return s.write(line)
}

// Call issues c and waits for its result. A ^error result is returned
// together with a *CommandError built from its msg and code properties.
func (s *Session) Call(ctx context.Context, c command.Command) (*mi.RecordMessage, error) {
	p, err := s.Issue(c)
	if err != nil {
		return nil, err
	}

	result, err := p.Wait(ctx)
	if err != nil {
		return nil, err
	}

	if result.Record.Class == "error" {
		props := result.Record.Properties
		return result, &CommandError{
			Operation: c.Operation(),
			Context:   p.Context(),
			Message:   props.StringOr("msg", ""),
			Code:      props.StringOr("code", ""),
		}
	}
	return result, nil
}

// Close terminates the debugger, stops the reader and fails every pending
// request with ErrSessionClosed. Only the first call has any effect; later
// calls return nil.
func (s *Session) Close() error {
	return s.shutdown(nil)
}

func (s *Session) write(line []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.transport.Write(line); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

func (s *Session) shutdown(cause error) error {
	var err error
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosing))

		if cause != nil {
			s.errMu.Lock()
			s.err = cause
			s.errMu.Unlock()
		}

		failed := s.pending.close(closedError(cause))

		if terr := s.transport.Terminate(); terr != nil {
			err = &TransportError{Op: "terminate", Err: terr}
		}

		if cause == nil || errors.Is(cause, io.EOF) {
			s.log.Info("session closed", "failedRequests", failed)
		} else {
			s.log.Error(cause, "session torn down", "failedRequests", failed)
		}
	})
	return err
}

func (s *Session) readLoop(p *mi.Parser) {
	defer func() {
		s.state.Store(int32(StateClosed))
		close(s.done)
	}()

	for {
		msg, err := p.Next()
		if err != nil {
			if s.State() != StateOpen {
				return
			}
			if !errors.Is(err, io.EOF) && !mi.IsSyntaxError(err) {
				err = &TransportError{Op: "read", Err: err}
			}
			_ = s.shutdown(err)
			return
		}
		s.dispatch(msg)
	}
}

func (s *Session) dispatch(msg mi.Message) {
	if rec, ok := msg.(*mi.RecordMessage); ok && rec.Kind == mi.KindResult {
		s.deliver(rec)
		return
	}

	if s.log.V(1).Enabled() {
		s.log.V(1).Info("out-of-band message", "kind", msg.GetKind().String(), "message", msg.String())
	}

	s.handlerMu.RLock()
	handlers := s.handlers
	s.handlerMu.RUnlock()

	for _, h := range handlers {
		s.invoke(h, msg)
	}
}

func (s *Session) deliver(rec *mi.RecordMessage) {
	if !rec.Context.Valid {
		s.log.Info("dropping result without context", "class", rec.Record.Class)
		return
	}

	p, ok := s.pending.take(rec.Context.Value)
	if !ok {
		s.log.Info("dropping result for unknown context", "context", rec.Context.Value, "class", rec.Record.Class)
		return
	}

	s.log.V(1).Info("result", "context", rec.Context.Value, "class", rec.Record.Class)
	p.fulfill(rec)
}

func (s *Session) invoke(h Handler, msg mi.Message) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error(fmt.Errorf("panic: %v", r), "handler panicked", "kind", msg.GetKind().String())
		}
	}()
	h.Handle(s, msg)
}
