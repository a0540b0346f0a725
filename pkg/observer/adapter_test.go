package observer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/haydxn/tasktree/pkg/dispatch"
	"github.com/haydxn/tasktree/pkg/helpers"
	"github.com/haydxn/tasktree/pkg/task"
)

func TestAdapterRefreshesOnAttachAndWorkerEvents(t *testing.T) {
	loop := dispatch.NewLoopDispatcher(16)
	go loop.Run()
	defer loop.Stop()

	var refreshes int32
	var lastCtx atomic.Pointer[task.Context]
	a := NewAdapter(loop, func(ctx *task.Context) {
		atomic.AddInt32(&refreshes, 1)
		lastCtx.Store(ctx)
	})

	dt := helpers.NewDummyTask("dummy", 50*time.Millisecond)
	ctx := task.NewContext(dt, loop)
	defer ctx.Release()

	a.Attach(ctx)

	d := make(chan struct{})
	ctx.AddCompletionCallback(func(task.Result, bool) { close(d) })

	go ctx.RunOn(fakeDriver{})

	select {
	case <-d:
	case <-time.After(2 * time.Second):
		t.Fatal("task never completed")
	}

	// Give the coalesced refresh a moment to land on the dispatch goroutine.
	time.Sleep(50 * time.Millisecond)

	if atomic.LoadInt32(&refreshes) == 0 {
		t.Fatal("onRefresh was never called")
	}
	if lastCtx.Load() != ctx {
		t.Errorf("onRefresh's Context = %v, want the attached Context", lastCtx.Load())
	}
}

func TestAdapterDetachReleasesAndRefreshesWithNil(t *testing.T) {
	loop := dispatch.NewLoopDispatcher(16)
	go loop.Run()
	defer loop.Stop()

	seen := make(chan *task.Context, 4)
	a := NewAdapter(loop, func(ctx *task.Context) { seen <- ctx })

	dt := helpers.NewDummyTask("dummy", 0)
	ctx := task.NewContext(dt, loop)
	// After Detach this is the last reference, which Context.Release
	// requires to be dropped on the dispatch goroutine.
	defer func() {
		released := make(chan struct{})
		loop.Post(func() {
			ctx.Release()
			close(released)
		})
		<-released
	}()

	a.Attach(ctx)
	a.Detach()

	var sawNil bool
	timeout := time.After(time.Second)
loop2:
	for {
		select {
		case got := <-seen:
			if got == nil {
				sawNil = true
				break loop2
			}
		case <-timeout:
			break loop2
		}
	}

	if !sawNil {
		t.Error("Detach should eventually refresh with a nil Context")
	}
	if a.Context() != nil {
		t.Errorf("Context() after Detach = %v, want nil", a.Context())
	}
}

type fakeDriver struct{}

func (fakeDriver) CurrentThreadShouldExit() bool { return false }
func (fakeDriver) IsOnDriverThread() bool         { return true }
