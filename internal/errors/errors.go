// Package errors wraps errors with stack traces for crash reports and
// recovers panics into errors.
package errors

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Errorf creates a new error carrying the caller's stack trace.
func Errorf(message string, args ...any) error {
	return goerrors.Wrap(fmt.Errorf(message, args...), 1)
}

// WithStackTrace wraps err with the caller's stack trace unless it already
// carries one. A nil err stays nil.
func WithStackTrace(err error) error {
	if err == nil {
		return nil
	}
	if HasStackTrace(err) {
		return err
	}
	return goerrors.Wrap(err, 1)
}

// HasStackTrace reports whether err or anything it wraps carries a stack.
func HasStackTrace(err error) bool {
	var ge *goerrors.Error
	return errors.As(err, &ge)
}

// StackTrace returns the recorded call stack of err, or "" if it has none.
func StackTrace(err error) string {
	var ge *goerrors.Error
	if !errors.As(err, &ge) {
		return ""
	}
	return string(ge.Stack())
}

// ErrorWithStackTrace returns the message of err followed by its stack.
func ErrorWithStackTrace(err error) string {
	if err == nil {
		return ""
	}
	var ge *goerrors.Error
	if errors.As(err, &ge) {
		return err.Error() + "\n" + string(ge.Stack())
	}
	return err.Error()
}

// Recover converts a panic into an error with a stack trace and hands it to
// onPanic. Call it only from a defer statement.
func Recover(onPanic func(cause error)) {
	if rec := recover(); rec != nil {
		err, ok := rec.(error)
		if !ok {
			err = fmt.Errorf("%v", rec)
		}
		onPanic(goerrors.Wrap(err, 2))
	}
}

// ExitCodeError carries the process exit code for an error.
type ExitCodeError struct {
	Err      error
	ExitCode int
}

func (e *ExitCodeError) Error() string { return e.Err.Error() }

func (e *ExitCodeError) Unwrap() error { return e.Err }

// As and Is forward to the standard library so callers need one import.
func As(err error, target any) bool { return errors.As(err, target) }

func Is(err, target error) bool { return errors.Is(err, target) }
