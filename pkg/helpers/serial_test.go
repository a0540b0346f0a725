package helpers

import (
	"testing"
	"time"

	"github.com/haydxn/tasktree/pkg/task"
)

func TestSerialTaskRunsInOrderAndReportsSubTaskStatus(t *testing.T) {
	st := NewSerialTask("serial", true)
	st.SetBaseMessage("working")

	var order []string
	mk := func(name string) *FunctionTask[string] {
		return NewFunctionTask(name, name, func(self *task.Base, arg string) task.Result {
			order = append(order, arg)
			self.SetStatusMessage("doing " + arg)
			return task.Ok()
		})
	}

	st.AddTask(mk("a"), 1)
	st.AddTask(mk("b"), 1)

	ctx := task.NewContext(st, syncDispatcher{})
	defer ctx.Release()

	var lastIndex, lastCount int
	ctx.AddWorkerListener(statusRecorder{status: st.SubTaskStatus(), index: &lastIndex, count: &lastCount})

	result := ctx.RunOn(&syncDriver{})

	if !result.OK() {
		t.Fatalf("Run() = %+v, want OK", result)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("execution order = %v, want [a b]", order)
	}
	if got := ctx.StatusMessage(); got == "" {
		t.Errorf("StatusMessage() after completion should retain the last reported message")
	}
	if lastIndex != 1 || lastCount != 2 {
		t.Errorf("SubTaskStatus Index/Count = %d/%d, want 1/2 (last sub-task of two)", lastIndex, lastCount)
	}
}

type statusRecorder struct {
	task.NoopWorkerListener
	status       *SubTaskStatus
	index, count *int
}

func (r statusRecorder) StatusMessageChanged(*task.Context) {
	*r.index = r.status.Index()
	*r.count = r.status.Count()
}

func TestSerialTaskBaseMessagePrefixesSubTaskMessage(t *testing.T) {
	st := NewSerialTask("serial", true)
	st.SetBaseMessage("phase 1")

	leaf := NewFunctionTask("leaf", struct{}{}, func(self *task.Base, _ struct{}) task.Result {
		self.SetStatusMessage("step A")
		return task.Ok()
	})
	st.AddTask(leaf, 1)

	ctx := task.NewContext(st, syncDispatcher{})
	defer ctx.Release()

	var observed string
	ctx.AddWorkerListener(messageGrabber{dst: &observed})
	ctx.RunOn(&syncDriver{})

	want := "phase 1\nstep A"
	if observed != want {
		t.Errorf("StatusMessage() = %q, want %q", observed, want)
	}
}

type messageGrabber struct {
	task.NoopWorkerListener
	dst *string
}

func (g messageGrabber) StatusMessageChanged(c *task.Context) {
	*g.dst = c.StatusMessage()
}

func TestSerialTaskCombinesFailuresWhenNotStoppingOnError(t *testing.T) {
	st := NewSerialTask("serial", false)

	fail := func(name, msg string) *FunctionTask[string] {
		return NewFunctionTask(name, msg, func(self *task.Base, msg string) task.Result {
			return task.Fail(msg)
		})
	}
	st.AddTask(fail("a", "a failed"), 1)
	st.AddTask(fail("b", "b failed"), 1)

	ctx := task.NewContext(st, syncDispatcher{})
	defer ctx.Release()
	result := ctx.RunOn(&syncDriver{})

	if result.OK() {
		t.Fatal("expected a combined failure result")
	}
	if result.ErrorMessage() != "a failed\nb failed" {
		t.Errorf("ErrorMessage() = %q, want %q", result.ErrorMessage(), "a failed\nb failed")
	}
}

func TestSerialTaskWithDummyTasksAborts(t *testing.T) {
	st := NewSerialTask("serial", true)
	st.AddTask(NewDummyTask("one", 30*time.Millisecond), 1)
	st.AddTask(NewDummyTask("two", time.Hour), 1)

	ctx := task.NewContext(st, syncDispatcher{})
	defer ctx.Release()

	go func() {
		time.Sleep(60 * time.Millisecond)
		ctx.RequestAbort()
	}()

	done := make(chan struct{})
	go func() {
		ctx.RunOn(&syncDriver{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("serial task did not stop after abort")
	}

	if got := ctx.State(); got != task.StateAborted {
		t.Errorf("State() = %v, want %v", got, task.StateAborted)
	}
}
