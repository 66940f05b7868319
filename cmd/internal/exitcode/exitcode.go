// Package exitcode carries process exit codes through cobra RunE errors.
package exitcode

import "errors"

const (
	Failure      = 1 // Run failed, torn read observed, or run interrupted
	CommandError = 2 // Bad flags, unreadable profile, unusable database
)

// Error pairs a message and optional cause with the code main exits with.
type Error struct {
	Code int
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Command reports a usage or setup problem.
func Command(msg string, err error) error {
	return &Error{Code: CommandError, Msg: msg, Err: err}
}

// Fail reports a run that started and did not succeed.
func Fail(msg string, err error) error {
	return &Error{Code: Failure, Msg: msg, Err: err}
}

// Code extracts the exit code from err. Errors without one exit with
// Failure.
func Code(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Failure
}
