package dispatch

import "sync"

// Coalescer collapses a burst of Trigger calls into a single Post to a
// Dispatcher, regardless of how many times Trigger fires before the
// dispatcher gets around to running the pending callback. It is the Go
// equivalent of the original's AsyncUpdater::triggerAsyncUpdate, and is
// grounded the same way this module's teacher package debounces a burst of
// filesystem events onto one handler call (pkg/sync.FileWatcher's
// debounceTimer map) — except a Coalescer has no time window: the first
// Trigger after the previous callback starts running schedules exactly one
// more, with no delay.
//
// driver.PooledDriver and observer.Adapter both use a Coalescer: the pool
// to turn a burst of queue changes into one QueueChanged round, the adapter
// to turn a storm of per-task worker notifications into one refresh per
// event-loop tick.
type Coalescer struct {
	dispatcher Dispatcher
	fn         func()

	mu      sync.Mutex
	pending bool
}

// NewCoalescer returns a Coalescer that calls fn on d's dispatch goroutine
// at most once per "burst" of Trigger calls.
func NewCoalescer(d Dispatcher, fn func()) *Coalescer {
	return &Coalescer{dispatcher: d, fn: fn}
}

// Trigger schedules fn to run once on the dispatch goroutine. If a Trigger
// from earlier in the same burst is still waiting to be dispatched, this
// call is a no-op — the already-scheduled callback will observe whatever
// state is current by the time it actually runs, so no update is lost.
func (c *Coalescer) Trigger() {
	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return
	}
	c.pending = true
	c.mu.Unlock()

	c.dispatcher.Post(func() {
		c.mu.Lock()
		c.pending = false
		c.mu.Unlock()
		c.fn()
	})
}
