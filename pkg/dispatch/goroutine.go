package dispatch

import "github.com/haydxn/tasktree/internal/gid"

// dispatchThreadID identifies the calling goroutine, used by LoopDispatcher
// to implement IsDispatchThread; see internal/gid for why this exists at
// all instead of a trivial thread-local comparison.
func dispatchThreadID() int64 {
	return gid.Current()
}
