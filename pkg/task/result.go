package task

import "strings"

// Result holds the outcome of a Task's execution.
//
// A Result is either ok or failed. A failed Result carries a human-readable
// message; cancellation is represented as an ok Result (see Base.ShouldAbort
// and Sequence-based aggregation below) rather than as a distinct failure
// kind, matching the convention that a cancelled task is not an error.
type Result struct {
	message string
	failed  bool
}

// Ok returns a successful Result.
func Ok() Result {
	return Result{}
}

// Fail returns a failed Result carrying the given message.
func Fail(message string) Result {
	return Result{message: message, failed: true}
}

// FailErr returns a failed Result using err's message, or Ok if err is nil.
func FailErr(err error) Result {
	if err == nil {
		return Ok()
	}
	return Fail(err.Error())
}

// Failed reports whether the Result represents a failure.
func (r Result) Failed() bool {
	return r.failed
}

// OK reports whether the Result represents success.
func (r Result) OK() bool {
	return !r.failed
}

// ErrorMessage returns the failure message, or "" for a successful Result.
func (r Result) ErrorMessage() string {
	return r.message
}

// ErrTaskAlreadyRunning is the distinguished failure used when
// Base.PerformSubTask is called with a child that already has an active
// scope. Callers may compare against this with Result.Is.
var ErrTaskAlreadyRunning = Fail("task already running")

// Is reports whether r carries the same failure message as other. It exists
// so callers can test for the sentinel failures this package defines
// without depending on exact string equality at the call site.
func (r Result) Is(other Result) bool {
	return r.failed == other.failed && r.message == other.message
}

// Combine joins the error messages of every failed result in order,
// separated by newlines, and returns Ok if none failed. This is the
// aggregation rule Base.PerformSubTaskSequence uses internally, exported so
// callers running their own free-form PerformSubTask loops (spec.md's
// "free-form performSubTask callers must handle individually") can reuse it
// instead of re-implementing newline-joining by hand.
func Combine(results []Result) Result {
	var messages []string
	for _, r := range results {
		if r.Failed() {
			messages = append(messages, r.ErrorMessage())
		}
	}
	if len(messages) == 0 {
		return Ok()
	}
	return Fail(strings.Join(messages, "\n"))
}
