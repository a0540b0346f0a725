package driver

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/haydxn/tasktree/internal/errutil"
	"github.com/haydxn/tasktree/internal/obslog"
	"github.com/haydxn/tasktree/pkg/dispatch"
	"github.com/haydxn/tasktree/pkg/task"
)

// poolEntry is one job PooledDriver is tracking, whether still queued for a
// concurrency slot or already running.
type poolEntry struct {
	id  string
	ctx *task.Context
	job *job
}

// PooledDriver runs task.Contexts across a bounded number of concurrently
// running jobs, queuing the rest. It is grounded on
// pkg/common/workers/pool.go's Pool (lifecycle management, ordered
// bookkeeping of in-flight work) combined with the semaphore-based
// concurrency cap pkg/common/workers/simple_pool.go uses in place of a
// fixed worker-goroutine count — a semaphore fits this driver better than
// the teacher's fixed worker pool because job.run calls task.Context.RunOn
// directly, so each submission needs its own goroutine identity for
// WorkerDriver.IsOnDriverThread rather than sharing one worker's.
type PooledDriver struct {
	cfg        PoolConfig
	dispatcher dispatch.Dispatcher
	logger     *obslog.Logger

	sem chan struct{}
	wg  sync.WaitGroup

	mu        sync.Mutex
	entries   []*poolEntry
	listeners []QueueListener

	nextID atomic.Int64

	coalescer *dispatch.Coalescer
}

// NewPooledDriver returns a PooledDriver bounded by cfg.MaxConcurrent,
// posting its QueueListener notifications through d.
func NewPooledDriver(cfg PoolConfig, d dispatch.Dispatcher) *PooledDriver {
	cfg = cfg.withDefaults()
	p := &PooledDriver{
		cfg:        cfg,
		dispatcher: d,
		logger:     obslog.New(obslog.DefaultConfig()).WithComponent("driver.pooled"),
		sem:        make(chan struct{}, cfg.MaxConcurrent),
	}
	p.coalescer = dispatch.NewCoalescer(d, p.dispatchQueueChanged)
	return p
}

// Submit creates a Context for t, queues it for execution, and returns the
// Context immediately. The caller owns the returned Context's initial
// reference (as from task.NewContext) and should Release it when done
// observing it; the pool holds its own reference for the job's lifetime.
func (p *PooledDriver) Submit(t task.Task) *task.Context {
	return p.SubmitWithID(t, p.generateID())
}

// SubmitWithID is Submit with a caller-chosen id, used by CancelAllWithID to
// target a specific submission or group of submissions sharing an id.
func (p *PooledDriver) SubmitWithID(t task.Task, id string) *task.Context {
	ctx := task.NewContext(t, p.dispatcher)
	p.queue(ctx.Retain(), id)
	return ctx
}

// SubmitContext queues an already-constructed Context, useful when the
// caller needs to attach listeners before the pool ever starts running it.
// The pool retains its own reference to ctx; the caller's existing
// reference is unaffected.
func (p *PooledDriver) SubmitContext(ctx *task.Context, id string) *task.Context {
	p.queue(ctx.Retain(), id)
	return ctx
}

func (p *PooledDriver) queue(ctx *task.Context, id string) {
	j := newJob(id, ctx)
	entry := &poolEntry{id: id, ctx: ctx, job: j}

	p.mu.Lock()
	p.entries = append(p.entries, entry)
	p.mu.Unlock()
	p.coalescer.Trigger()

	p.wg.Add(1)
	go p.run(entry)
}

func (p *PooledDriver) run(entry *poolEntry) {
	defer p.wg.Done()

	p.sem <- struct{}{}
	defer func() { <-p.sem }()

	entry.job.run()

	p.removeEntry(entry)
	// The pool's reference may be the last one, and Context.Release requires
	// that to be dropped on the dispatch goroutine.
	p.dispatcher.Post(entry.ctx.Release)
}

func (p *PooledDriver) removeEntry(target *poolEntry) {
	p.mu.Lock()
	for i, e := range p.entries {
		if e == target {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			break
		}
	}
	p.mu.Unlock()
	p.coalescer.Trigger()
}

// Size returns the number of jobs currently queued or running.
func (p *PooledDriver) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// ContextAt returns the Context of the i-th tracked job (queued or
// running, in submission order), or nil if i is out of range.
func (p *PooledDriver) ContextAt(i int) *task.Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.entries) {
		return nil
	}
	return p.entries[i].ctx
}

// AddQueueListener registers l to be notified on the dispatch goroutine
// whenever Size or the set of tracked jobs changes.
func (p *PooledDriver) AddQueueListener(l QueueListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, l)
}

// CancelAll requests abort on every tracked job and, if interrupt is true,
// also trips CurrentThreadShouldExit for jobs currently running (as opposed
// to merely asking them to stop at their next cooperative checkpoint via
// RequestAbort, which every tracked job gets regardless of interrupt).
// It waits up to timeout for every job to finish, returning whether they
// all did.
func (p *PooledDriver) CancelAll(interrupt bool, timeout time.Duration) bool {
	return p.cancelMatching(func(string) bool { return true }, interrupt, timeout)
}

// CancelAllWithID is CancelAll restricted to jobs submitted with the given
// id.
func (p *PooledDriver) CancelAllWithID(id string, interrupt bool, timeout time.Duration) bool {
	return p.cancelMatching(func(entryID string) bool { return entryID == id }, interrupt, timeout)
}

func (p *PooledDriver) cancelMatching(match func(id string) bool, interrupt bool, timeout time.Duration) bool {
	p.mu.Lock()
	var matched []*poolEntry
	for _, e := range p.entries {
		if match(e.id) {
			matched = append(matched, e)
		}
	}
	p.mu.Unlock()

	if len(matched) == 0 {
		return true
	}

	for _, e := range matched {
		e.ctx.RequestAbort()
		if interrupt {
			e.job.interrupt.Store(true)
		}
	}

	done := make(chan struct{})
	go func() {
		for _, e := range matched {
			<-e.job.done
		}
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		p.logger.Warn("CancelAll timed out after %s waiting on %d job(s)", timeout, len(matched))
		return false
	}
}

// Shutdown cancels every tracked job (interrupting running ones) and waits
// up to cfg.ShutdownTimeout for them to finish, returning an error
// (wrapped with an operator-facing suggestion) if they didn't.
func (p *PooledDriver) Shutdown() error {
	if p.CancelAll(true, p.cfg.ShutdownTimeout) {
		return nil
	}
	return errutil.WithSuggestion(
		fmt.Errorf("pooled driver: %d job(s) still running after %s", p.Size(), p.cfg.ShutdownTimeout),
		"increase PoolConfig.ShutdownTimeout, or check whether submitted tasks poll ShouldAbort",
	)
}

func (p *PooledDriver) generateID() string {
	return fmt.Sprintf("job-%d", p.nextID.Add(1))
}

func (p *PooledDriver) dispatchQueueChanged() {
	p.mu.Lock()
	listeners := append([]QueueListener(nil), p.listeners...)
	p.mu.Unlock()

	for _, l := range listeners {
		l.QueueChanged(p)
	}
}
