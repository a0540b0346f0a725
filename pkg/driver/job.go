package driver

import (
	"sync/atomic"

	"github.com/haydxn/tasktree/internal/gid"
	"github.com/haydxn/tasktree/pkg/task"
)

// job is the per-submission unit a PooledDriver schedules: it pairs a
// task.Context with the interruption flag and goroutine identity a
// task.WorkerDriver must expose, standing in for the single per-submission
// entry the teacher's Pool tracks in its tasks/results channels (see
// pkg/common/workers/pool.go), except each job here drives an independent
// goroutine rather than sharing a fixed worker pool loop.
type job struct {
	id  string
	ctx *task.Context

	interrupt atomic.Bool
	runnerGid atomic.Int64
	running   atomic.Bool
	done      chan struct{}
}

func newJob(id string, ctx *task.Context) *job {
	return &job{id: id, ctx: ctx, done: make(chan struct{})}
}

// run drives j.ctx to completion on the calling goroutine. Callers run this
// inside a goroutine obtained from the pool's concurrency semaphore.
func (j *job) run() {
	j.runnerGid.Store(gid.Current())
	j.running.Store(true)
	defer j.running.Store(false)
	defer close(j.done)

	j.ctx.RunOn(j)
}

// CurrentThreadShouldExit implements task.WorkerDriver: a job should exit
// once PooledDriver.CancelAll or CancelAllWithID has interrupted it.
func (j *job) CurrentThreadShouldExit() bool {
	return j.interrupt.Load()
}

// IsOnDriverThread implements task.WorkerDriver.
func (j *job) IsOnDriverThread() bool {
	return j.running.Load() && gid.Current() == j.runnerGid.Load()
}
