package cli

import (
	"errors"
	"fmt"
)

// Exit codes of the mvmtest command.
const (
	ExitSuccess      = 0 // Every case passed
	ExitFailure      = 1 // At least one case did not pass
	ExitHarnessError = 2 // The run could not be carried out (bad flags, missing test directory, ...)
)

// ExitError is an error carrying the process exit status.
type ExitError struct {
	Code    int
	Message string
	Err     error // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that carry no
// code, such as flag parsing errors from cobra, are harness errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitHarnessError
}
