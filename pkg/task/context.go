package task

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// State is the lifecycle state of a Context, following the state machine
// described in spec.md §5: Pending -> Starting -> Running -> Stopping ->
// (Completed | Aborted). Completed and Aborted are terminal; a Context
// never leaves them.
type State int

const (
	// StatePending is the initial state: the Context exists but Run has
	// not yet been handed to a WorkerDriver.
	StatePending State = iota
	// StateStarting is entered the instant a driver picks the Context up,
	// before the task's Run method is actually invoked.
	StateStarting
	// StateRunning covers the entire span of the root task's Run call.
	StateRunning
	// StateStopping is entered once Run has returned but before listeners
	// have been notified of the final state, giving a narrow window in
	// which the result is known but not yet public.
	StateStopping
	// StateCompleted is terminal: the task ran to completion (whether it
	// succeeded or failed) without being aborted.
	StateCompleted
	// StateAborted is terminal: ShouldAbort was observed true by the task,
	// which returned in response to it.
	StateAborted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("task.State(%d)", int(s))
	}
}

// IsTerminal reports whether s is one of the two states a Context never
// leaves once reached.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateAborted
}

// Context is the reference-counted record of a single run of a task tree.
// It owns the State machine, the live scope chain (see scope.go), the set
// of WorkerListeners and DispatchListeners, and the FIFO of
// CompletionCallbacks to run once the task reaches a terminal state.
//
// A Context is created with NewContext and must be released with Release
// once a caller is done with it; the last Release must happen on the
// dispatch goroutine (see Release). Retain/Release exist because a Context commonly outlives
// the goroutine that started it (a UI observer may still be watching after
// the worker goroutine that ran the task has exited).
type Context struct {
	mu sync.Mutex

	root  Task
	state State

	current *scope // the innermost scope currently executing, nil if none

	workerListeners   []WorkerListener
	dispatchListeners []DispatchListener
	callbacks         []CompletionCallback

	result     Result
	wasAborted bool

	// finalProgress and finalStatus keep the root scope's last values once
	// RunOn has torn the scope chain down.
	finalProgress float64
	finalStatus   string

	abortRequested atomic.Bool
	refCount       atomic.Int32

	dispatcher Dispatcher
	driver     WorkerDriver
}

// NewContext creates a Context ready to run root, ref-counted at 1. The
// caller must Release it when done. dispatcher is used to post the
// completion-callback dispatch and must not be nil; see dispatch.Dispatcher.
func NewContext(root Task, dispatcher Dispatcher) *Context {
	c := &Context{
		root:       root,
		state:      StatePending,
		dispatcher: dispatcher,
	}
	c.refCount.Store(1)
	return c
}

// Retain increments the Context's reference count and returns c, so callers
// can write e.g. `observer.ctx = ctx.Retain()`.
func (c *Context) Retain() *Context {
	c.refCount.Add(1)
	return c
}

// Release decrements the Context's reference count. It is a programmer
// error to call Release more times than the Context has been retained
// (once by NewContext, once per subsequent Retain); doing so panics, the
// same assertion JUCE's original ReferenceCountedObject makes on an
// already-zero count.
//
// When the count reaches zero, Release asserts that it is being called on
// the dispatch goroutine — spec.md §5's "message-thread rule": "TaskContext
// destruction... must occur on the message-dispatch thread. Destroying a
// context off-thread is an error detectable at runtime." A Context with no
// dispatcher (only possible via zero-value construction, never NewContext)
// skips the check.
func (c *Context) Release() {
	n := c.refCount.Add(-1)
	if n < 0 {
		panic("task: Context released more times than retained")
	}
	if n == 0 && c.dispatcher != nil && !c.dispatcher.IsDispatchThread() {
		panic("task: Context released off the dispatch goroutine")
	}
}

// State returns the Context's current lifecycle state. Safe for concurrent
// use.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns the task's Result and whether it was aborted. Only
// meaningful once State().IsTerminal() is true; returns the zero Result and
// false beforehand.
func (c *Context) Result() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.wasAborted
}

// Progress returns the root task's current progress in [0,1]. Before the
// task starts running it reads 0; after it reaches a terminal state it
// reads 1 (StateCompleted) or the last reported value (StateAborted).
func (c *Context) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rootProgressLocked()
}

func (c *Context) rootProgressLocked() float64 {
	s := c.current
	if s == nil {
		if c.state == StateCompleted {
			return 1
		}
		return c.finalProgress
	}
	for s.parent != nil {
		s = s.parent
	}
	return s.progress
}

// StatusMessage returns the root task's current status message: the last
// message set anywhere in the tree, as rolled up through each ancestor's
// FormatStatusMessageFromSubTask hook at the time it was set (see
// Base.SetStatusMessage). It reads "" before the task starts running and
// keeps the last value once the run has finished.
func (c *Context) StatusMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rootStatusMessageLocked()
}

func (c *Context) rootStatusMessageLocked() string {
	s := c.current
	if s == nil {
		return c.finalStatus
	}
	for s.parent != nil {
		s = s.parent
	}
	return s.statusMessage
}

// RequestAbort asks the running task tree to stop at its next convenient
// checkpoint (the next Base.ShouldAbort or progress-reporting call). It is
// safe to call from any goroutine, any number of times, before or during
// the run; it has no effect once the Context reaches a terminal state.
func (c *Context) RequestAbort() {
	c.abortRequested.Store(true)
}

// AbortRequested reports whether RequestAbort has been called, or whether
// the driver currently running this Context independently wants it to
// stop (pool shutdown, CancelAll(interrupt=true)). This is the OR spec.md
// §4.4 describes: "root.shouldAbort() returns true when the root's abort
// signal is set OR context.currentTaskShouldExit() is true".
func (c *Context) AbortRequested() bool {
	if c.abortRequested.Load() {
		return true
	}
	c.mu.Lock()
	d := c.driver
	c.mu.Unlock()
	return d != nil && d.CurrentThreadShouldExit()
}

// AddWorkerListener registers l to be notified, from the goroutine that
// drives this Context, of state/progress/status changes. Must be called
// before the Context starts running; there is deliberately no
// RemoveWorkerListener symmetry pressure here since worker listeners are
// almost always attached for the Context's entire life (e.g. an
// observer.Adapter), unlike DispatchListeners which a UI
// element may attach and detach as it mounts and unmounts.
func (c *Context) AddWorkerListener(l WorkerListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workerListeners = append(c.workerListeners, l)
}

// AddDispatchListener registers l to be notified, from the dispatch
// goroutine, when this Context's completion callbacks are about to run and
// have finished running.
func (c *Context) AddDispatchListener(l DispatchListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatchListeners = append(c.dispatchListeners, l)
}

// RemoveDispatchListener unregisters l. Only the dispatch goroutine should
// call this, matching the original's assertion that listener mutation
// happens on the message thread.
func (c *Context) RemoveDispatchListener(l DispatchListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.dispatchListeners {
		if existing == l {
			c.dispatchListeners = append(c.dispatchListeners[:i], c.dispatchListeners[i+1:]...)
			return
		}
	}
}

// AddCompletionCallback appends cb to the FIFO of callbacks run once on the
// dispatch goroutine after the Context reaches a terminal state. If the
// Context is already terminal when this is called, cb is scheduled for
// dispatch immediately rather than being silently dropped.
func (c *Context) AddCompletionCallback(cb CompletionCallback) {
	c.mu.Lock()
	terminal := c.state.IsTerminal()
	if !terminal {
		c.callbacks = append(c.callbacks, cb)
	}
	result, aborted := c.result, c.wasAborted
	c.mu.Unlock()

	if terminal {
		c.scheduleDispatch([]CompletionCallback{cb}, result, aborted)
	}
}

// RunOn drives the root task to completion on the calling goroutine, using
// d as the driver of record for cancellation and thread-identity checks.
// It transitions Pending -> Starting -> Running -> Stopping -> terminal,
// and returns the final Result. RunOn must be called at most once, and only
// from the goroutine d.IsOnDriverThread reports true for; package driver's
// DedicatedThreadDriver and pooled job wrapper are the intended callers.
func (c *Context) RunOn(d WorkerDriver) Result {
	if !d.IsOnDriverThread() {
		panic("task: RunOn called from a goroutine other than the driver's own")
	}

	c.mu.Lock()
	c.driver = d
	c.mu.Unlock()

	c.setState(StateStarting)

	rootScope := newScope(c.root, c, nil, 1, 0, 1)
	c.mu.Lock()
	c.current = rootScope
	c.mu.Unlock()

	if ss, ok := c.root.(scopeSetter); ok {
		ss.setScope(rootScope)
	}

	if pa, ok := c.root.(pendingAborter); ok && pa.consumePendingAbort() {
		c.RequestAbort()
	}

	c.setState(StateRunning)
	result := c.root.Run()

	if ss, ok := c.root.(scopeSetter); ok {
		ss.setScope(nil)
	}

	c.mu.Lock()
	c.finalProgress = rootScope.progress
	c.finalStatus = rootScope.statusMessage
	c.current = nil
	c.mu.Unlock()

	c.setState(StateStopping)

	aborted := c.AbortRequested() && result.OK()

	c.mu.Lock()
	c.result = result
	c.wasAborted = aborted
	callbacks := c.callbacks
	c.callbacks = nil
	c.mu.Unlock()

	if aborted {
		c.setState(StateAborted)
	} else {
		c.setState(StateCompleted)
	}

	c.scheduleDispatch(callbacks, result, aborted)
	return result
}

func (c *Context) setState(s State) {
	c.mu.Lock()
	c.state = s
	listeners := append([]WorkerListener(nil), c.workerListeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l.StateChanged(c)
	}
}

// scheduleDispatch posts the draining of callbacks, bracketed by the
// dispatch-listener notifications, onto c.dispatcher. This is the one place
// worker-thread state crosses over into dispatch-goroutine territory.
func (c *Context) scheduleDispatch(callbacks []CompletionCallback, result Result, aborted bool) {
	if len(callbacks) == 0 {
		c.mu.Lock()
		listeners := append([]DispatchListener(nil), c.dispatchListeners...)
		c.mu.Unlock()
		if len(listeners) == 0 {
			return
		}
	}

	c.dispatcher.Post(func() {
		c.mu.Lock()
		listeners := append([]DispatchListener(nil), c.dispatchListeners...)
		c.mu.Unlock()

		for _, l := range listeners {
			l.AboutToDispatchCompletionCallbacks(c)
		}
		for _, cb := range callbacks {
			cb(result, aborted)
		}
		for _, l := range listeners {
			l.CompletionCallbacksDispatched(c)
		}
	})
}

// notifyProgressChanged and notifyStatusMessageChanged are called by Base
// while c.mu is NOT held (Base has already released it after mutating scope
// state), so they're free to take the lock themselves to snapshot listeners.
func (c *Context) notifyProgressChanged() {
	c.mu.Lock()
	running := c.state == StateRunning
	listeners := append([]WorkerListener(nil), c.workerListeners...)
	c.mu.Unlock()

	if !running {
		return
	}
	for _, l := range listeners {
		l.ProgressChanged(c)
	}
}

func (c *Context) notifyStatusMessageChanged() {
	c.mu.Lock()
	running := c.state == StateRunning
	listeners := append([]WorkerListener(nil), c.workerListeners...)
	c.mu.Unlock()

	if !running {
		return
	}
	for _, l := range listeners {
		l.StatusMessageChanged(c)
	}
}

func asSubTaskObserver(t Task) (SubTaskObserver, bool) {
	obs, ok := t.(SubTaskObserver)
	return obs, ok
}
