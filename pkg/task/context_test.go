package task

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingTask struct {
	Base
	run func(t *recordingTask) Result
}

func newRecordingTask(name string, run func(t *recordingTask) Result) *recordingTask {
	t := &recordingTask{run: run}
	t.Base = NewBase(name, t)
	return t
}

func (t *recordingTask) Run() Result {
	return t.run(t)
}

func TestContextStateMachineHappyPath(t *testing.T) {
	root := newRecordingTask("root", func(t *recordingTask) Result { return Ok() })

	ctx := NewContext(root, syncDispatcher{})
	defer ctx.Release()

	if got := ctx.State(); got != StatePending {
		t.Fatalf("State() before RunOn = %v, want %v", got, StatePending)
	}

	result := ctx.RunOn(&syncDriver{})
	if !result.OK() {
		t.Fatalf("RunOn result = %+v, want OK", result)
	}

	if got := ctx.State(); got != StateCompleted {
		t.Fatalf("State() after RunOn = %v, want %v", got, StateCompleted)
	}
	if !ctx.State().IsTerminal() {
		t.Fatalf("StateCompleted.IsTerminal() = false, want true")
	}

	gotResult, wasAborted := ctx.Result()
	require.False(t, wasAborted)
	require.True(t, gotResult.OK(), "Result() = %+v, want OK", gotResult)
}

func TestContextAbortedWhenRootObservesRequestAbort(t *testing.T) {
	root := newRecordingTask("root", func(t *recordingTask) Result {
		t.Abort() // task requests its own cancellation mid-run, as under a real abort signal
		return Ok()
	})

	ctx := NewContext(root, syncDispatcher{})
	defer ctx.Release()

	ctx.RunOn(&syncDriver{})

	if got := ctx.State(); got != StateAborted {
		t.Fatalf("State() = %v, want %v", got, StateAborted)
	}
	_, wasAborted := ctx.Result()
	if !wasAborted {
		t.Errorf("wasAborted = false, want true")
	}
}

// S7 (property 7): calling root.Abort() before the Context ever runs (no
// active scope exists yet) must still be honored — the root finishes in
// StateAborted with an Ok result, without ever reaching its own progress
// logic, since Abort is explicitly not one of the "only valid while
// running" operations.
func TestContextAbortBeforeRunIsHonored(t *testing.T) {
	var progressReported bool
	root := newRecordingTask("root", func(t *recordingTask) Result {
		if !t.ShouldAbort() {
			progressReported = true
			t.SetProgress(1)
		}
		return Ok()
	})
	root.Abort()

	ctx := NewContext(root, syncDispatcher{})
	defer ctx.Release()

	var progressNotifications int
	ctx.AddWorkerListener(progressCountingListener{count: &progressNotifications})

	ctx.RunOn(&syncDriver{})

	require.Equal(t, StateAborted, ctx.State())
	result, wasAborted := ctx.Result()
	require.True(t, wasAborted)
	require.True(t, result.OK())
	require.False(t, progressReported, "root should have observed ShouldAbort()==true on its very first checkpoint")
	require.Zero(t, progressNotifications, "no progress notifications should occur when aborted before running")
}

type progressCountingListener struct {
	NoopWorkerListener
	count *int
}

func (l progressCountingListener) ProgressChanged(*Context) { *l.count++ }

func TestContextAbortRequestedORsDriverExit(t *testing.T) {
	d := &syncDriver{exit: true}
	root := newRecordingTask("root", func(t *recordingTask) Result {
		if !t.ShouldAbort() {
			return Fail("ShouldAbort should have observed the driver's CurrentThreadShouldExit")
		}
		return Ok()
	})

	ctx := NewContext(root, syncDispatcher{})
	defer ctx.Release()

	ctx.RunOn(d)

	if got := ctx.State(); got != StateAborted {
		t.Fatalf("State() = %v, want %v (driver's CurrentThreadShouldExit should count as an abort)", got, StateAborted)
	}
}

func TestContextFailedResultIsNotTreatedAsAbort(t *testing.T) {
	root := newRecordingTask("root", func(t *recordingTask) Result {
		return Fail("boom")
	})

	ctx := NewContext(root, syncDispatcher{})
	defer ctx.Release()

	ctx.RunOn(&syncDriver{})

	require.Equal(t, StateCompleted, ctx.State(), "a failure is not an abort")
	result, wasAborted := ctx.Result()
	require.False(t, wasAborted)
	require.False(t, result.OK())
	require.Equal(t, "boom", result.ErrorMessage())
}

func TestContextCompletionCallbackFiresAfterTerminal(t *testing.T) {
	root := newRecordingTask("root", func(t *recordingTask) Result { return Ok() })
	ctx := NewContext(root, syncDispatcher{})
	defer ctx.Release()

	var called bool
	var calledAborted bool
	ctx.AddCompletionCallback(func(result Result, wasAborted bool) {
		called = true
		calledAborted = wasAborted
		if !result.OK() {
			t.Errorf("callback result = %+v, want OK", result)
		}
	})

	ctx.RunOn(&syncDriver{})

	if !called {
		t.Fatal("completion callback never fired")
	}
	if calledAborted {
		t.Errorf("callback saw wasAborted = true, want false")
	}
}

func TestContextCompletionCallbackAddedAfterTerminalFiresImmediately(t *testing.T) {
	root := newRecordingTask("root", func(t *recordingTask) Result { return Ok() })
	ctx := NewContext(root, syncDispatcher{})
	defer ctx.Release()

	ctx.RunOn(&syncDriver{})

	var called bool
	ctx.AddCompletionCallback(func(Result, bool) { called = true })
	if !called {
		t.Fatal("completion callback added after terminal state never fired")
	}
}

func TestContextReleasePanicsWhenOverReleased(t *testing.T) {
	root := newRecordingTask("root", func(t *recordingTask) Result { return Ok() })
	ctx := NewContext(root, syncDispatcher{})
	ctx.Release()

	defer func() {
		if recover() == nil {
			t.Fatal("expected Release to panic when released more times than retained")
		}
	}()
	ctx.Release()
}

func TestContextRunOnPanicsOffDriverThread(t *testing.T) {
	root := newRecordingTask("root", func(t *recordingTask) Result { return Ok() })
	ctx := NewContext(root, syncDispatcher{})
	defer ctx.Release()

	defer func() {
		if recover() == nil {
			t.Fatal("expected RunOn to panic when IsOnDriverThread reports false")
		}
	}()
	ctx.RunOn(offThreadDriver{})
}

type offThreadDriver struct{}

func (offThreadDriver) CurrentThreadShouldExit() bool { return false }
func (offThreadDriver) IsOnDriverThread() bool         { return false }
