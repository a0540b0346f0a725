package task

// scope is the ephemeral per-invocation record described in spec.md §3/§4.2
// (ExecutionScope). It exists only for the lifetime of a single Task.Run
// call, links a running task to its owning Context and to its parent scope
// (nil for the root), and carries the [progressAtStart, progressAtEnd]
// window that Base.SetProgress interpolates into.
//
// A scope is never touched outside the Context it belongs to, and every
// mutation happens while ctx.mu is held.
type scope struct {
	task Task
	ctx  *Context

	parent *scope
	child  *scope

	progress        float64
	progressAtStart float64
	progressAtEnd   float64
	statusMessage   string

	index int
	count int
}

// newScope constructs the scope for running t as a sub-task of parent
// (nil for a root invocation), occupying proportion of the parent's
// [0,1] progress window starting from the parent's current progress.
//
// A scope's progress field is kept in its parent's local coordinates (the
// same space as progressAtStart/progressAtEnd), so the parent's own local
// progress is recovered from it before being used as the child's start.
func newScope(t Task, ctx *Context, parent *scope, proportion float64, index, count int) *scope {
	start := 0.0
	if parent != nil && parent.progressAtEnd > parent.progressAtStart {
		start = (parent.progress - parent.progressAtStart) / (parent.progressAtEnd - parent.progressAtStart)
	}
	end := start + proportion
	if end > 1 {
		end = 1
	}
	return &scope{
		task:            t,
		ctx:             ctx,
		parent:          parent,
		progress:        start,
		progressAtStart: start,
		progressAtEnd:   end,
		index:           index,
		count:           count,
	}
}

// interpolate maps a local progress fraction x in [0,1] onto this scope's
// [progressAtStart, progressAtEnd] window, clamped to [0,1].
func (s *scope) interpolate(x float64) float64 {
	x = clampFloat(x, 0, 1)
	v := s.progressAtStart + x*(s.progressAtEnd-s.progressAtStart)
	return clampFloat(v, 0, 1)
}
