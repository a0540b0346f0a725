// Command taskdemo demonstrates the task package end to end: a SerialTask
// of dummy sub-tasks driven by a DedicatedThreadDriver, with progress
// printed to stdout as it runs. It is demonstration scaffolding, not part
// of the library's public surface.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/haydxn/tasktree/pkg/dispatch"
	"github.com/haydxn/tasktree/pkg/driver"
	"github.com/haydxn/tasktree/pkg/helpers"
	"github.com/haydxn/tasktree/pkg/task"
)

func main() {
	var (
		steps   = flag.Int("steps", 4, "number of dummy sub-tasks to run in sequence")
		stepDur = flag.Duration("step-duration", 500*time.Millisecond, "duration of each dummy sub-task")
		abort   = flag.Duration("abort-after", 0, "if > 0, request abort this long after starting")
	)
	flag.Parse()

	loop := dispatch.NewLoopDispatcher(16)
	go loop.Run()
	defer loop.Stop()

	root := helpers.NewSerialTask("taskdemo", false)
	root.SetBaseMessage("running taskdemo sequence")
	for i := 0; i < *steps; i++ {
		root.AddTask(helpers.NewDummyTask(fmt.Sprintf("step %d/%d", i+1, *steps), *stepDur), 1)
	}

	ctx := task.NewContext(root, loop)
	// The last reference must be dropped on the dispatch goroutine; this
	// deferred call runs before loop.Stop.
	defer func() {
		released := make(chan struct{})
		loop.Post(func() {
			ctx.Release()
			close(released)
		})
		<-released
	}()

	ctx.AddWorkerListener(printingListener{})

	d := driver.NewDedicatedThreadDriver(driver.DedicatedConfig{Title: "taskdemo"})
	d.Launch(ctx)

	if *abort > 0 {
		go func() {
			time.Sleep(*abort)
			ctx.RequestAbort()
		}()
	}

	d.Wait()

	result, wasAborted := ctx.Result()
	switch {
	case wasAborted:
		fmt.Println("aborted")
	case result.Failed():
		fmt.Printf("failed: %s\n", result.ErrorMessage())
	default:
		fmt.Println("completed")
	}
}

type printingListener struct {
	task.NoopWorkerListener
}

func (printingListener) ProgressChanged(c *task.Context) {
	fmt.Printf("\rprogress: %5.1f%%  %s", c.Progress()*100, c.StatusMessage())
}

func (printingListener) StateChanged(c *task.Context) {
	if c.State().IsTerminal() {
		fmt.Println()
	}
}
