// Package errutil adapts the teacher's ErrorWithSuggestion
// (pkg/util/errors.go) to this module's domain: instead of IPFS/network
// suggestions, driver.PooledDriver.Shutdown attaches an operator hint to
// a shutdown-timeout error.
package errutil

import "fmt"

// ErrorWithSuggestion wraps an error with a one-line operator hint.
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

func (e *ErrorWithSuggestion) Error() string {
	return fmt.Sprintf("%v (%s)", e.Err, e.Suggestion)
}

func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps err with suggestion, or returns nil if err is nil.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{Err: err, Suggestion: suggestion}
}
