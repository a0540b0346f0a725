package helpers

import (
	"testing"
	"time"

	"github.com/haydxn/tasktree/pkg/task"
)

type syncDispatcher struct{}

func (syncDispatcher) Post(fn func())         { fn() }
func (syncDispatcher) IsDispatchThread() bool { return true }

type syncDriver struct{ exit bool }

func (d *syncDriver) CurrentThreadShouldExit() bool { return d.exit }
func (d *syncDriver) IsOnDriverThread() bool         { return true }

func TestDummyTaskCompletesAfterDuration(t *testing.T) {
	dt := NewDummyTask("dummy", 50*time.Millisecond)
	ctx := task.NewContext(dt, syncDispatcher{})
	defer ctx.Release()

	start := time.Now()
	result := ctx.RunOn(&syncDriver{})
	elapsed := time.Since(start)

	if !result.OK() {
		t.Fatalf("DummyTask.Run() = %+v, want OK", result)
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 50ms", elapsed)
	}
	if got := ctx.Progress(); got != 1 {
		t.Errorf("Progress() after completion = %v, want 1", got)
	}
}

func TestDummyTaskZeroDurationCompletesImmediately(t *testing.T) {
	dt := NewDummyTask("dummy", 0)
	ctx := task.NewContext(dt, syncDispatcher{})
	defer ctx.Release()

	result := ctx.RunOn(&syncDriver{})
	if !result.OK() {
		t.Fatalf("DummyTask.Run() = %+v, want OK", result)
	}
}

func TestDummyTaskStopsWhenAborted(t *testing.T) {
	dt := NewDummyTask("dummy", time.Hour)
	ctx := task.NewContext(dt, syncDispatcher{})
	defer ctx.Release()

	go func() {
		time.Sleep(20 * time.Millisecond)
		ctx.RequestAbort()
	}()

	done := make(chan struct{})
	go func() {
		ctx.RunOn(&syncDriver{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("DummyTask did not stop promptly after RequestAbort")
	}

	if got := ctx.State(); got != task.StateAborted {
		t.Errorf("State() = %v, want %v", got, task.StateAborted)
	}
}
