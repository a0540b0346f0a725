package helpers

import (
	"sync"

	"github.com/haydxn/tasktree/pkg/task"
)

// progressReporter is implemented by any task.Task embedding task.Base,
// since embedding promotes Base.Progress.
type progressReporter interface {
	Progress() float64
}

// statusMessageReporter is implemented by any task.Task embedding
// task.Base, since embedding promotes Base.StatusMessage.
type statusMessageReporter interface {
	StatusMessage() string
}

// SubTaskStatus is a live snapshot of which sub-task a SerialTask is
// currently running and how far along it is, supplementing spec.md's
// SerialTask with a feature the distillation dropped:
// original_source/SerialTask.h's private ProgressiveTask::Listener
// implementation exists for exactly this purpose, letting a UI show "step
// 2 of 5, 40% through this step" instead of only the rolled-up total.
// SubTaskStatus is safe for concurrent reads and writes; Progress reads the
// current sub-task's own progress live rather than caching a pushed value,
// since task.Base already makes that cheap to read (a short hold of the
// Context's lock).
type SubTaskStatus struct {
	mu      sync.Mutex
	current task.Task
	index   int
	count   int
}

// Progress returns the current sub-task's own progress in [0,1], or 0 if
// no sub-task is currently running.
func (s *SubTaskStatus) Progress() float64 {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	if current == nil {
		return 0
	}
	if p, ok := current.(progressReporter); ok {
		return p.Progress()
	}
	return 0
}

// Index returns the current sub-task's position in the sequence (0-based).
func (s *SubTaskStatus) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Count returns the total number of sub-tasks in the sequence.
func (s *SubTaskStatus) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *SubTaskStatus) started(current task.Task, index, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = current
	s.index = index
	s.count = count
}

// SerialTask runs a weighted task.Sequence to completion, one task at a
// time, grounded on original_source/xh_Utilities/tasks/SerialTask.h/.cpp.
// It implements task.SubTaskObserver so Base dispatches sub-task
// bookkeeping (status-message prefixing, SubTaskStatus tracking) into it
// automatically.
type SerialTask struct {
	task.Base

	tasks       *task.Sequence
	baseMessage string
	status      SubTaskStatus
	stopOnError bool
}

// NewSerialTask returns an empty SerialTask named name. If stopOnError is
// true (the original's default), the first failing sub-task aborts the
// sequence; otherwise every sub-task runs regardless of earlier failures
// and their messages are combined.
func NewSerialTask(name string, stopOnError bool) *SerialTask {
	t := &SerialTask{
		tasks:       task.NewSequence(),
		stopOnError: stopOnError,
	}
	t.Base = task.NewBase(name, t)
	return t
}

// AddTask appends a task to the sequence with the given relative weight.
func (t *SerialTask) AddTask(child task.Task, weight float64) {
	t.tasks.Append(child, weight)
}

// Tasks returns the underlying Sequence, for callers that want to inspect
// or mutate it directly (e.g. RemoveAt, Clear) before the task starts.
func (t *SerialTask) Tasks() *task.Sequence {
	return t.tasks
}

// SetBaseMessage sets the prefix FormatStatusMessageFromSubTask prepends
// to each sub-task's own status message. An empty base message (the
// default) passes sub-task messages through unchanged.
func (t *SerialTask) SetBaseMessage(message string) {
	t.baseMessage = message
}

// BaseMessage returns the current base message.
func (t *SerialTask) BaseMessage() string {
	return t.baseMessage
}

// SubTaskStatus returns the live snapshot of the currently running
// sub-task's position and progress.
func (t *SerialTask) SubTaskStatus() *SubTaskStatus {
	return &t.status
}

// ShouldStopOnError reports whether the sequence aborts at the first
// sub-task failure.
func (t *SerialTask) ShouldStopOnError() bool {
	return t.stopOnError
}

// Run implements task.Task.
func (t *SerialTask) Run() task.Result {
	return t.PerformSubTaskSequence(t.tasks, 1, t.stopOnError)
}

// SubTaskStarting implements task.SubTaskObserver.
func (t *SerialTask) SubTaskStarting(child task.Task, index, count int) {
	t.status.started(child, index, count)
}

// FormatStatusMessageFromSubTask implements task.SubTaskObserver. If a
// base message has been set it is prepended, separated by a newline;
// otherwise the sub-task's own status message passes through unchanged.
func (t *SerialTask) FormatStatusMessageFromSubTask(child task.Task) string {
	var msg string
	if sm, ok := child.(statusMessageReporter); ok {
		msg = sm.StatusMessage()
	}
	if t.baseMessage != "" {
		return t.baseMessage + "\n" + msg
	}
	return msg
}
