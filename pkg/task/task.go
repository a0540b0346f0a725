// Package task implements the hierarchical task-execution primitives:
// Task, the weighted Sequence helper, the progress-rollup ExecutionScope,
// and the reference-counted Context that drives a task tree to completion
// and fans its progress and completion out to listeners.
package task

// Task is anything that can be run to produce a Result. Concrete tasks
// embed Base, which supplies every stateful method a running task needs
// (SetProgress, ShouldAbort, PerformSubTask, ...) and handles dispatching
// into the optional SubTaskObserver hooks. Task itself stays a two-method
// interface so that any type — embedding Base or not — can be driven by a
// Context.
type Task interface {
	// Name returns a short human-readable label for the task, used in
	// status messages and diagnostics. It must be safe to call concurrently
	// with Run, including from another goroutine while the task is running.
	Name() string

	// Run performs the task's work and returns its Result. Run is called
	// exactly once per Context (see context.go); a Task must not be reused
	// across two Contexts while either is still running.
	//
	// While Run is executing, the task may call its embedded Base's methods
	// to report progress, check for an abort request, and run sub-tasks.
	// Run must return promptly once ShouldAbort reports true — returning
	// Ok() is the correct response to a successful abort, since cancellation
	// is not itself a failure.
	Run() Result
}
