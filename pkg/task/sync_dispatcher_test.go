package task

// syncDispatcher runs posted functions immediately, on the calling
// goroutine, and always reports itself as the dispatch thread. It exists
// so package task's own tests can drive a Context without pulling in
// package dispatch (which imports package task, making that a cycle from
// here) or spinning up a real goroutine per test.
type syncDispatcher struct{}

func (syncDispatcher) Post(fn func())        { fn() }
func (syncDispatcher) IsDispatchThread() bool { return true }
