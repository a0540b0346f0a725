package task

// SubTaskObserver is an optional interface a Task may implement to observe
// and customise its own sub-task execution. Base type-asserts for this
// before calling the hooks, so a task that doesn't care about either hook
// need not implement it at all — mirroring how e.g. http.Flusher is an
// optional capability rather than a required interface method.
type SubTaskObserver interface {
	// SubTaskStarting is called just before a sub-task begins running, with
	// its position in the enclosing sequence (index 0, count 1 if the
	// sub-task isn't part of a Sequence).
	SubTaskStarting(child Task, index, count int)

	// FormatStatusMessageFromSubTask is called whenever a sub-task's status
	// message changes, and its result becomes this task's own status
	// message. The default (when a task does not implement SubTaskObserver)
	// passes the sub-task's message through verbatim.
	FormatStatusMessageFromSubTask(child Task) string
}

// WorkerListener receives notifications from a Context's execution, called
// synchronously from the goroutine that is actually running the task tree.
// Implementations must not block, and must take care that anything they
// touch is either local or otherwise safe to access from that goroutine
// (the scope chain may safely be walked from inside these callbacks, since
// the calling goroutine already owns the relevant state).
type WorkerListener interface {
	// StateChanged is called on every Context state transition.
	StateChanged(c *Context)

	// ProgressChanged is called whenever the root progress value changes.
	// Only fires while the context is in StateRunning.
	ProgressChanged(c *Context)

	// StatusMessageChanged is called whenever the root status message
	// changes. Only fires while the context is in StateRunning.
	StatusMessageChanged(c *Context)
}

// DispatchListener receives the completion-callback boundary notifications,
// both called from the Dispatcher goroutine, bracketing the draining of a
// Context's completion-callback FIFO.
type DispatchListener interface {
	// AboutToDispatchCompletionCallbacks is called once, on the dispatch
	// goroutine, before any completion callback for c is invoked.
	AboutToDispatchCompletionCallbacks(c *Context)

	// CompletionCallbacksDispatched is called once, on the dispatch
	// goroutine, after every completion callback for c has run.
	CompletionCallbacksDispatched(c *Context)
}

// CompletionCallback is a one-shot function invoked on the dispatch
// goroutine exactly once, after a Context reaches a terminal state.
type CompletionCallback func(result Result, wasAborted bool)

// NoopWorkerListener can be embedded by listeners that only care about a
// subset of WorkerListener's methods, similar in spirit to the
// "Unimplemented...Server" pattern used by generated gRPC stubs.
type NoopWorkerListener struct{}

func (NoopWorkerListener) StateChanged(*Context)         {}
func (NoopWorkerListener) ProgressChanged(*Context)      {}
func (NoopWorkerListener) StatusMessageChanged(*Context) {}

// NoopDispatchListener can be embedded by listeners that only care about
// one of DispatchListener's two methods.
type NoopDispatchListener struct{}

func (NoopDispatchListener) AboutToDispatchCompletionCallbacks(*Context) {}
func (NoopDispatchListener) CompletionCallbacksDispatched(*Context)      {}
