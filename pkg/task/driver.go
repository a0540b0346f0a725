package task

// WorkerDriver is the contract a driver must satisfy to run a Context to
// completion, matching spec.md §4.5's "common contract". Concrete drivers
// (a dedicated goroutine, or a job queued on a bounded pool) live in
// package driver; Context depends only on this interface so it never needs
// to know which kind of driver is running it.
type WorkerDriver interface {
	// CurrentThreadShouldExit reports whether the driver itself wants the
	// task tree it is running to stop at its next cancellation checkpoint
	// — used for pool shutdown and CancelAll(interrupt=true), distinct
	// from a task-initiated RequestAbort. Context.AbortRequested ORs this
	// together with its own abort flag.
	CurrentThreadShouldExit() bool

	// IsOnDriverThread reports whether the calling goroutine is the one
	// this driver dedicates to running its Context. Context.RunOn asserts
	// this is true before advancing the state machine, the Go realization
	// of spec.md §4.5's "lets the context assert that state-machine
	// advances happen on the worker thread".
	IsOnDriverThread() bool
}
