// Package observer provides the passive UI-facing seam described in
// spec.md §4.6: a type a UI component can embed to hold at most one
// task.Context reference, subscribe to its worker-thread listener
// callbacks, and re-publish them as a single Refresh call that always
// happens on the dispatch goroutine.
package observer

import (
	"sync"

	"github.com/haydxn/tasktree/pkg/dispatch"
	"github.com/haydxn/tasktree/pkg/task"
)

// Adapter is the safe seam between task.WorkerListener callbacks delivered
// on the goroutine running a task tree, and code that wants to react on
// the dispatch goroutine instead (typically to mutate UI state). Any
// number of rapid worker-thread notifications collapse into a single
// Refresh call via an embedded dispatch.Coalescer, the same
// "N-signals-to-one-callback" shape the teacher's pkg/sync.FileWatcher
// uses for its debounced filesystem events.
//
// An Adapter holds at most one Context at a time; attaching a new one
// while another is already attached replaces it (and releases the old
// one), matching spec.md §4.6's "holds at most one TaskContext reference".
type Adapter struct {
	mu    sync.Mutex
	ctx   *task.Context
	onRef func(*task.Context)

	coalescer *dispatch.Coalescer
}

// NewAdapter returns an Adapter that posts its coalesced Refresh calls
// through d. onRefresh is called on the dispatch goroutine, at most once
// per burst of worker-thread notifications, with the currently attached
// Context (nil if none is attached, e.g. after Detach).
func NewAdapter(d dispatch.Dispatcher, onRefresh func(ctx *task.Context)) *Adapter {
	a := &Adapter{onRef: onRefresh}
	a.coalescer = dispatch.NewCoalescer(d, a.refresh)
	return a
}

// Attach subscribes the adapter to ctx's worker-thread notifications,
// retaining a reference to it. Any previously attached Context is
// detached and released first.
func (a *Adapter) Attach(ctx *task.Context) {
	a.mu.Lock()
	old := a.ctx
	a.ctx = ctx.Retain()
	a.mu.Unlock()

	if old != nil {
		old.Release()
	}

	ctx.AddWorkerListener((*adapterWorkerListener)(a))
	a.coalescer.Trigger()
}

// Detach releases the currently attached Context, if any, and triggers a
// refresh with a nil Context. The adapter's worker listener stays
// registered on the released Context, so later notifications from it still
// trigger refreshes, which also report nil.
func (a *Adapter) Detach() {
	a.mu.Lock()
	old := a.ctx
	a.ctx = nil
	a.mu.Unlock()

	if old != nil {
		old.Release()
	}
	a.coalescer.Trigger()
}

// Context returns the currently attached Context, or nil.
func (a *Adapter) Context() *task.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctx
}

func (a *Adapter) refresh() {
	a.mu.Lock()
	ctx := a.ctx
	a.mu.Unlock()

	if a.onRef != nil {
		a.onRef(ctx)
	}
}

// adapterWorkerListener lets Adapter implement task.WorkerListener without
// exposing StateChanged/ProgressChanged/StatusMessageChanged as part of
// Adapter's own public API.
type adapterWorkerListener Adapter

func (l *adapterWorkerListener) StateChanged(*task.Context)         { (*Adapter)(l).coalescer.Trigger() }
func (l *adapterWorkerListener) ProgressChanged(*task.Context)      { (*Adapter)(l).coalescer.Trigger() }
func (l *adapterWorkerListener) StatusMessageChanged(*task.Context) { (*Adapter)(l).coalescer.Trigger() }
