package helpers

import "github.com/haydxn/tasktree/pkg/task"

// FunctionTask wraps a plain function as a Task, capturing one argument of
// type A. The original's MemberFunctionTask/With1Param used C++ template
// nesting to support zero, one, and two captured arguments; Go generics
// collapse that family to two small types (this one and FunctionTask2)
// instead of a separate type per arity, or a reflection-based variadic
// signature that would lose compile-time checking at call sites.
type FunctionTask[A any] struct {
	task.Base
	fn  func(self *task.Base, arg A) task.Result
	arg A
}

// NewFunctionTask returns a FunctionTask named name that calls fn with a
// pointer to its own Base (so fn can report progress, check ShouldAbort,
// and run sub-tasks) and the given argument.
func NewFunctionTask[A any](name string, arg A, fn func(self *task.Base, arg A) task.Result) *FunctionTask[A] {
	t := &FunctionTask[A]{fn: fn, arg: arg}
	t.Base = task.NewBase(name, t)
	return t
}

// Run implements task.Task.
func (t *FunctionTask[A]) Run() task.Result {
	return t.fn(&t.Base, t.arg)
}

// FunctionTask2 is FunctionTask with two captured arguments.
type FunctionTask2[A, B any] struct {
	task.Base
	fn       func(self *task.Base, a A, b B) task.Result
	argA     A
	argB     B
}

// NewFunctionTask2 returns a FunctionTask2 named name that calls fn with a
// pointer to its own Base and the two given arguments.
func NewFunctionTask2[A, B any](name string, a A, b B, fn func(self *task.Base, a A, b B) task.Result) *FunctionTask2[A, B] {
	t := &FunctionTask2[A, B]{fn: fn, argA: a, argB: b}
	t.Base = task.NewBase(name, t)
	return t
}

// Run implements task.Task.
func (t *FunctionTask2[A, B]) Run() task.Result {
	return t.fn(&t.Base, t.argA, t.argB)
}
