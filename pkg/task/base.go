package task

import "sync/atomic"

// Base supplies the stateful machinery a running Task needs: progress and
// status reporting, abort checking, and running sub-tasks with progress
// roll-up. Concrete tasks embed Base and pass themselves to NewBase so Base
// can dispatch into the optional SubTaskObserver hooks — the same
// self-reference trick Go's net/http uses to let a ResponseWriter type-
// assert itself into http.Flusher, http.Hijacker, and so on, standing in
// for the virtual dispatch a C++ base class would get for free.
//
// The zero value of Base is not usable; construct with NewBase.
type Base struct {
	self Task
	name string

	activeScope  atomic.Pointer[scope]
	pendingAbort atomic.Bool
}

// NewBase returns a Base for a task named name. self must be the concrete
// task embedding this Base (typically `&MyTask{}` immediately after
// allocating it), so Base can look up MyTask's optional SubTaskObserver
// implementation.
func NewBase(name string, self Task) Base {
	return Base{self: self, name: name}
}

// Name returns the task's name, as given to NewBase.
func (b *Base) Name() string {
	return b.name
}

// IsRunning reports whether this task currently has an active
// ExecutionScope, i.e. whether it is between entry and exit of Run.
func (b *Base) IsRunning() bool {
	return b.scope() != nil
}

// Progress returns this task's own progress in [0,1], local to its own
// sub-range of the overall run (not the root-rolled-up value; see
// Context.Progress for that). Returns 0 if the task is not currently
// running.
func (b *Base) Progress() float64 {
	s := b.scope()
	if s == nil {
		return 0
	}
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	if s.progressAtEnd <= s.progressAtStart {
		return 0
	}
	return (s.progress - s.progressAtStart) / (s.progressAtEnd - s.progressAtStart)
}

// StatusMessage returns this task's own last-reported status message, or ""
// if it hasn't set one or isn't running.
func (b *Base) StatusMessage() string {
	s := b.scope()
	if s == nil {
		return ""
	}
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.statusMessage
}

// SetProgress reports local progress x in [0,1] and bubbles the equivalent
// root-relative value up through every ancestor scope, notifying
// WorkerListeners once per call with the fully rolled-up value. Calling
// SetProgress while not running is a no-op.
func (b *Base) SetProgress(x float64) {
	s := b.scope()
	if s == nil {
		return
	}

	s.ctx.mu.Lock()
	s.progress = s.interpolate(x)
	for p := s.parent; p != nil; p = p.parent {
		p.progress = p.interpolate(s.progress)
		s = p
	}
	s.ctx.mu.Unlock()

	s.ctx.notifyProgressChanged()
}

// AdvanceProgress is shorthand for SetProgress(Progress() + delta).
func (b *Base) AdvanceProgress(delta float64) {
	b.SetProgress(b.Progress() + delta)
}

// SetStatusMessage reports this task's status message and bubbles it up
// through any ancestor that implements SubTaskObserver.
// FormatStatusMessageFromSubTask, falling back to passing it through
// verbatim for ancestors that don't.
func (b *Base) SetStatusMessage(message string) {
	s := b.scope()
	if s == nil {
		return
	}

	s.ctx.mu.Lock()
	s.statusMessage = message
	s.ctx.mu.Unlock()

	// The hooks run without ctx.mu held, since they typically read the
	// child's StatusMessage, which takes the lock itself.
	for p := s.parent; p != nil; p = p.parent {
		if obs, ok := asSubTaskObserver(p.task); ok {
			message = obs.FormatStatusMessageFromSubTask(s.task)
		}
		s.ctx.mu.Lock()
		p.statusMessage = message
		s.ctx.mu.Unlock()
		s = p
	}

	s.ctx.notifyStatusMessageChanged()
}

// ShouldAbort reports whether the owning Context has had RequestAbort
// called on it, or whether its driver reports that the current thread
// should exit (see Context.AbortRequested). A well-behaved Run implementation polls this periodically
// (or whenever SetProgress is called) and returns Ok() promptly once it
// reports true.
func (b *Base) ShouldAbort() bool {
	s := b.scope()
	if s == nil {
		return false
	}
	return s.ctx.AbortRequested()
}

// Abort requests cancellation of the owning Context. Since every task in a
// tree shares one Context, this is equivalent to spec.md §5's "calling
// rootTask.abort() cancels the deepest running descendant": whichever task
// is currently in its ShouldAbort-polling loop — necessarily the innermost
// active scope, since an ancestor's PerformSubTask* call is blocked waiting
// for it — observes the same flag. Unlike most of Base's methods, Abort is
// valid before the task is running too (spec.md's "valid only while
// running" list explicitly excludes it): calling it before RunOn records
// the request and Context.RunOn honors it the moment the root scope is
// installed, so a root aborted before it ever starts still finishes in
// StateAborted with an Ok result and no progress notifications.
func (b *Base) Abort() {
	s := b.scope()
	if s == nil {
		b.pendingAbort.Store(true)
		return
	}
	s.ctx.RequestAbort()
}

// consumePendingAbort reports whether Abort was called before this task had
// an active scope, clearing the flag. Implements pendingAborter, checked by
// Context.RunOn right after it installs the root scope.
func (b *Base) consumePendingAbort() bool {
	return b.pendingAbort.CompareAndSwap(true, false)
}

// PerformSubTask runs child to completion as this task's sole sub-task,
// occupying the task's entire remaining local progress range (equivalent
// to PerformSubTaskIndexed(child, 1, 0, 1)).
func (b *Base) PerformSubTask(child Task) Result {
	return b.PerformSubTaskIndexed(child, 1, 0, 1)
}

// PerformSubTaskIndexed runs child to completion, occupying proportion of
// this task's local [0,1] progress range starting from wherever this task's
// progress currently stands, and reports child's (index, count) position
// for SubTaskObserver.SubTaskStarting. child must not already be running;
// calling this with a task that has an active scope returns
// ErrTaskAlreadyRunning without running it.
func (b *Base) PerformSubTaskIndexed(child Task, proportion float64, index, count int) Result {
	parent := b.scope()
	if parent == nil {
		return Fail("PerformSubTask called while not running")
	}

	if base, ok := asBase(child); ok && base.IsRunning() {
		return ErrTaskAlreadyRunning
	}

	if obs, ok := asSubTaskObserver(b.self); ok {
		obs.SubTaskStarting(child, index, count)
	}

	child2 := newScope(child, parent.ctx, parent, proportion, index, count)

	parent.ctx.mu.Lock()
	parent.child = child2
	parent.ctx.current = child2
	parent.ctx.mu.Unlock()

	if ss, ok := child.(scopeSetter); ok {
		ss.setScope(child2)
	}

	result := child.Run()

	if ss, ok := child.(scopeSetter); ok {
		ss.setScope(nil)
	}

	parent.ctx.mu.Lock()
	parent.progress = parent.interpolate(child2.progressAtEnd)
	parent.child = nil
	parent.ctx.current = parent
	parent.ctx.mu.Unlock()

	parent.ctx.notifyProgressChanged()
	return result
}

// scopeSetter is implemented implicitly by any *T where T embeds Base,
// since embedding promotes Base's setScope method.
type scopeSetter interface {
	setScope(s *scope)
}

// pendingAborter is implemented implicitly by any *T where T embeds Base,
// since embedding promotes Base's consumePendingAbort method.
type pendingAborter interface {
	consumePendingAbort() bool
}

// PerformSubTaskSequence runs every task in seq in order, each occupying its
// ProportionAt share of proportion of this task's remaining progress range
// (proportion lets a caller run seq inside a smaller slice of its own range,
// rather than always consuming it in full), stopping early on the first
// failure unless stopOnError is false. When it stops early on a failure, it
// moves this task's progress to the end of the sequence's share. It returns
// Ok if every task that ran
// succeeded, or a Result combining every failure message (joined by
// newline) otherwise. Before running each child it checks ShouldAbort; if
// that reports true the loop stops without running that child and
// PerformSubTaskSequence returns Ok immediately, discarding any failures
// already collected — a cancelled sequence is not a failure.
func (b *Base) PerformSubTaskSequence(seq *Sequence, proportion float64, stopOnError bool) Result {
	var results []Result
	count := seq.Size()
	start := b.Progress()

	for i := 0; i < count; i++ {
		if b.ShouldAbort() {
			return Ok()
		}

		child := seq.TaskAt(i)
		childProportion := seq.ProportionAt(i) * proportion

		result := b.PerformSubTaskIndexed(child, childProportion, i, count)
		results = append(results, result)

		if result.Failed() && stopOnError {
			b.SetProgress(start + proportion)
			break
		}
	}

	return Combine(results)
}

// DistanceToTarget returns target - Progress(), clamped to be non-negative;
// a convenience for tasks that compute progress as "distance remaining"
// rather than "fraction done".
func (b *Base) DistanceToTarget(target float64) float64 {
	d := target - b.Progress()
	if d < 0 {
		return 0
	}
	return d
}

func (b *Base) scope() *scope {
	return b.activeScope.Load()
}

// setScope installs (or clears, with nil) the ExecutionScope currently
// driving this task. It implements scopeSetter, which Context.RunOn and
// PerformSubTaskIndexed use, via a type assertion against the Task handed
// to them, to wire a scope into whichever concrete type embeds this Base —
// the same embedding-plus-type-assertion trick used throughout this
// package in place of C++ virtual dispatch.
func (b *Base) setScope(s *scope) {
	b.activeScope.Store(s)
}

// asBase reports whether t embeds a Base (directly), returning it so
// PerformSubTaskIndexed can check whether t is already running before
// launching it. Tasks that don't embed Base (an unusual but legal choice
// for a Task implementation) are simply assumed not to conflict.
func asBase(t Task) (baseAccessor, bool) {
	ba, ok := t.(baseAccessor)
	return ba, ok
}

// baseAccessor is implemented implicitly by any *T where T embeds Base,
// since embedding promotes Base's IsRunning method.
type baseAccessor interface {
	IsRunning() bool
}
