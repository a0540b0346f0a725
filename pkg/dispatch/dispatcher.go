// Package dispatch provides the message-thread stand-in that
// task.Context posts its completion callbacks through, replacing the
// process-wide message-loop singleton of the original design with an
// explicit, injectable service (see the root of the module's SPEC_FULL.md,
// Design Notes §9).
//
// LoopDispatcher is grounded on the single-goroutine-drains-a-channel shape
// used throughout this module's teacher package (pkg/common/workers.Pool's
// worker/resultProcessor goroutines): one dedicated goroutine owns a
// buffered channel of funcs and runs them in submission order, so callers
// never need their own locking to reason about ordering.
package dispatch

import (
	"sync/atomic"

	"github.com/haydxn/tasktree/pkg/task"
)

// Dispatcher is an alias for task.Dispatcher, re-exported here so callers
// that only need to talk about "a dispatcher" (Coalescer, observer.Adapter)
// can depend on package dispatch alone rather than reaching into task.
type Dispatcher = task.Dispatcher

// LoopDispatcher is a task.Dispatcher backed by a single goroutine that
// drains a buffered channel of posted functions in FIFO order. It is the
// concrete Dispatcher every example and test in this module uses in place
// of a GUI event loop.
type LoopDispatcher struct {
	queue    chan func()
	done     chan struct{}
	loopGr   atomic.Int64 // goroutine id substitute: set once Run starts
	started  atomic.Bool
}

// NewLoopDispatcher returns a LoopDispatcher with the given queue capacity.
// Callers must call Run (typically in its own goroutine) before posting,
// or Post will block once the queue fills.
func NewLoopDispatcher(bufferSize int) *LoopDispatcher {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &LoopDispatcher{
		queue: make(chan func(), bufferSize),
		done:  make(chan struct{}),
	}
}

// Run drains the queue until Stop is called, invoking each posted function
// in turn on the calling goroutine. Run is meant to be the body of a
// dedicated goroutine — the one this LoopDispatcher considers "the
// dispatch thread" for IsDispatchThread's purposes.
func (d *LoopDispatcher) Run() {
	d.started.Store(true)
	id := dispatchThreadID()
	d.loopGr.Store(id)

	for {
		select {
		case fn, ok := <-d.queue:
			if !ok {
				return
			}
			fn()
		case <-d.done:
			d.drainRemaining()
			return
		}
	}
}

// drainRemaining runs any functions still queued at Stop time, so a
// completion callback posted just before shutdown is never silently lost.
func (d *LoopDispatcher) drainRemaining() {
	for {
		select {
		case fn, ok := <-d.queue:
			if !ok {
				return
			}
			fn()
		default:
			return
		}
	}
}

// Stop asks Run to return once the currently queued functions have drained.
// It does not close the queue, so it is safe to call Stop while other
// goroutines may still be posting; those posts simply run before shutdown
// if they land before Run observes d.done.
func (d *LoopDispatcher) Stop() {
	close(d.done)
}

// Post implements task.Dispatcher.
func (d *LoopDispatcher) Post(fn func()) {
	d.queue <- fn
}

// IsDispatchThread implements task.Dispatcher. Before Run has ever started
// it always reports false, matching the original's behaviour of treating
// an unstarted message loop as "not the message thread".
func (d *LoopDispatcher) IsDispatchThread() bool {
	if !d.started.Load() {
		return false
	}
	return dispatchThreadID() == d.loopGr.Load()
}
