package task

// Dispatcher decouples Context from any particular event-loop
// implementation. It replaces the message-thread singleton of the original
// design (see spec.md Design Notes §9) with an explicit dependency: a
// Context is handed a Dispatcher at construction and posts its
// completion-callback dispatch through it rather than through process-wide
// state.
//
// Package dispatch provides the concrete implementation used throughout
// this module; Context only depends on this interface so that tests can
// supply a synchronous fake.
type Dispatcher interface {
	// Post schedules fn to run later on the dispatcher's own goroutine.
	// Post must not block, and must preserve the order in which it was
	// called relative to other Post calls from the same caller.
	Post(fn func())

	// IsDispatchThread reports whether the calling goroutine is the one
	// draining Post's queue. Used by code (including Context.Release, see
	// context.go) that wants to assert it is being called from the
	// dispatch goroutine, or wants to dispatch synchronously when already
	// on it.
	IsDispatchThread() bool
}
