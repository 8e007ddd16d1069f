package gdb

import (
	"context"
	"sync"

	"github.com/dshills/gdbmi/internal/mi"
)

// Pending is the handle of an issued command. It is completed exactly once,
// either with the result record bearing its context or with an error when
// the session closes first.
type Pending struct {
	ctx  int
	done chan struct{}
	once sync.Once

	result *mi.RecordMessage
	err    error
}

func newPending(ctx int) *Pending {
	return &Pending{ctx: ctx, done: make(chan struct{})}
}

// Context returns the context allocated to the command.
func (p *Pending) Context() int {
	return p.ctx
}

// Done returns a channel that is closed when the command completes.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the command completes or ctx is done. Giving up on ctx
// leaves the request pending; its result is dropped when it arrives.
func (p *Pending) Wait(ctx context.Context) (*mi.RecordMessage, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result polls for the outcome without blocking. It returns ErrNotReady
// while the command is still pending.
func (p *Pending) Result() (*mi.RecordMessage, error) {
	select {
	case <-p.done:
		return p.result, p.err
	default:
		return nil, ErrNotReady
	}
}

func (p *Pending) fulfill(r *mi.RecordMessage) {
	p.once.Do(func() {
		p.result = r
		close(p.done)
	})
}

func (p *Pending) fail(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// pendingTable maps contexts to outstanding requests. Once closed it
// refuses new entries, so nothing can be inserted after the final sweep.
type pendingTable struct {
	mu      sync.Mutex
	entries map[int]*Pending
	closed  error
}

func newPendingTable() *pendingTable {
	return &pendingTable{entries: make(map[int]*Pending)}
}

func (t *pendingTable) insert(p *Pending) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed != nil {
		return t.closed
	}
	t.entries[p.ctx] = p
	return nil
}

// take removes and returns the entry for ctx.
func (t *pendingTable) take(ctx int) (*Pending, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.entries[ctx]
	if ok {
		delete(t.entries, ctx)
	}
	return p, ok
}

func (t *pendingTable) has(ctx int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[ctx]
	return ok
}

func (t *pendingTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// close marks the table closed with err and fails every remaining entry.
func (t *pendingTable) close(err error) int {
	t.mu.Lock()
	if t.closed != nil {
		t.mu.Unlock()
		return 0
	}
	t.closed = err
	entries := t.entries
	t.entries = make(map[int]*Pending)
	t.mu.Unlock()

	for _, p := range entries {
		p.fail(err)
	}
	return len(entries)
}
