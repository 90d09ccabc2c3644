package domain

import (
	"errors"
	"fmt"
)

// ErrMissingExpectation is wrapped by the HarnessError of a golden case without an expectation file.
var ErrMissingExpectation = errors.New("expectation file not found")

// DiscoveryError means the fixture set could not be enumerated. It is fatal to the run.
type DiscoveryError struct {
	Dir string
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover fixtures in %s: %v", e.Dir, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// ExecutionError means the binary under test could not be launched or terminated abnormally.
type ExecutionError struct {
	Executable string
	Input      string
	Reason     string
	Err        error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("execute %s %s: %s", e.Executable, e.Input, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// HarnessError is a per-case failure of the harness itself, not of the binary.
type HarnessError struct {
	Case string
	Op   string
	Err  error
}

func (e *HarnessError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Case, e.Op, e.Err)
}

func (e *HarnessError) Unwrap() error { return e.Err }
