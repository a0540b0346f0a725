// Package gid gives callers a way to compare "is this the same goroutine
// that did X earlier", the one piece of thread-identity that C++ gets for
// free from std::this_thread::get_id() or JUCE's thread-local message-
// thread flag, and that Go has no public API for. It backs both
// dispatch.LoopDispatcher.IsDispatchThread and the IsOnDriverThread methods
// of driver.DedicatedThreadDriver and of driver.PooledDriver's per-job
// wrapper, which all need exactly this one
// comparison and nothing more — never used for scheduling or any
// performance-sensitive path.
package gid

import (
	"bytes"
	"runtime"
	"strconv"
)

// Current parses the "goroutine N [running]:" header runtime.Stack always
// writes first, returning N. Returns -1 if the header couldn't be parsed,
// which should never happen in practice.
func Current() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return -1
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
