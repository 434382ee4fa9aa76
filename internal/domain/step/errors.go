package step

import (
	"errors"
	"fmt"
)

// FatalError marks a step failure that aborts the entire run: missing
// required dependency, privilege check failure, unrecoverable
// filesystem state. Any other non-nil error from Run is classified as
// recoverable: ambiguous partial failures are recoverable-at-worst,
// never silently marked complete.
type FatalError struct {
	Err error
}

// Error returns the underlying message.
func (e *FatalError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal wraps an error as fatal. Wrapping nil returns nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// Fatalf formats a fatal error.
func Fatalf(format string, args ...interface{}) error {
	return &FatalError{Err: fmt.Errorf(format, args...)}
}

// IsFatal reports whether any error in the chain is fatal.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
