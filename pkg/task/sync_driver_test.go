package task

// syncDriver is a trivial WorkerDriver for tests: it always reports itself
// as the driver thread (tests call RunOn directly from the test goroutine)
// and exposes a settable exit flag to exercise
// Context.AbortRequested's OR-with-driver behaviour.
type syncDriver struct {
	exit bool
}

func (d *syncDriver) CurrentThreadShouldExit() bool { return d.exit }
func (d *syncDriver) IsOnDriverThread() bool         { return true }
