// Package helpers provides ready-made Task implementations for testing and
// demonstration: DummyTask (a fixed-duration no-op), FunctionTask (wraps a
// callable), and SerialTask (runs a weighted Sequence to completion).
package helpers

import (
	"time"

	"github.com/haydxn/tasktree/pkg/task"
)

// tickInterval is how often DummyTask wakes up to report progress and poll
// for abort, matching original_source/DummyTask.cpp's `Thread::sleep(100)`.
const tickInterval = 100 * time.Millisecond

// DummyTask sleeps for a fixed duration, advancing progress linearly and
// polling ShouldAbort once per tick. It exists for tests and demos that
// need a task whose timing and cancellation behaviour is predictable,
// grounded on original_source/xh_Utilities/tasks/DummyTask.cpp.
type DummyTask struct {
	task.Base
	duration time.Duration
}

// NewDummyTask returns a DummyTask named name that runs for duration. A
// non-positive duration completes immediately.
func NewDummyTask(name string, duration time.Duration) *DummyTask {
	t := &DummyTask{duration: duration}
	t.Base = task.NewBase(name, t)
	return t
}

// Run implements task.Task.
func (t *DummyTask) Run() task.Result {
	if t.duration <= 0 {
		return task.Ok()
	}

	t.SetStatusMessage(t.Name())

	start := time.Now()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		elapsed := time.Since(start)
		if t.ShouldAbort() {
			return task.Ok()
		}
		if elapsed >= t.duration {
			break
		}

		t.SetProgress(float64(elapsed) / float64(t.duration))
		<-ticker.C
	}

	t.SetProgress(1)
	return task.Ok()
}
