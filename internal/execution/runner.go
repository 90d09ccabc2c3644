package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"mvmtest/internal/config"
	"mvmtest/internal/domain"
)

// DefaultWaitDelay bounds how long output pipes may stay open after the
// process exits or is killed, e.g. by a grandchild that inherited them.
const DefaultWaitDelay = 2 * time.Second

// Runner executes the binary under test as a child process
type Runner struct {
	executable string
	capture    config.CaptureMode
	waitDelay  time.Duration
	logger     *slog.Logger
}

// NewRunner creates a Runner for executable capturing the given streams
func NewRunner(executable string, capture config.CaptureMode, logger *slog.Logger) *Runner {
	return &Runner{
		executable: executable,
		capture:    capture,
		waitDelay:  DefaultWaitDelay,
		logger:     logger,
	}
}

// Capture returns the capture mode of the runner
func (r *Runner) Capture() config.CaptureMode {
	return r.capture
}

// Execute runs the binary with inputPath as its only argument and no stdin.
// It blocks until the process exits or ctx is done.
func (r *Runner) Execute(ctx context.Context, inputPath string) domain.ExecutionResult {
	if ctx.Err() != nil {
		return domain.ExecutionResult{TimedOut: true, ExitCode: -1}
	}

	cmd := exec.CommandContext(ctx, r.executable, inputPath)
	cmd.WaitDelay = r.waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if r.capture == config.CaptureMerged {
		// Same writer for both streams: exec serializes the writes, so
		// interleaving follows the order the child flushed them.
		cmd.Stderr = &stdout
	} else {
		cmd.Stderr = &stderr
	}

	start := time.Now()
	err := cmd.Run()
	result := domain.ExecutionResult{
		Output:   stdout.Bytes(),
		Duration: time.Since(start),
	}

	if err != nil && ctx.Err() != nil {
		result.TimedOut = true
		result.ExitCode = -1
		r.logger.Debug("process killed", "input", inputPath, "reason", ctx.Err(), "duration", result.Duration)
		return result
	}

	if err == nil {
		result.Succeeded = true
		return result
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr) && exitErr.ExitCode() >= 0:
		// A non-zero status is an ordinary result; its output is still compared.
		result.Succeeded = true
		result.ExitCode = exitErr.ExitCode()
	case errors.As(err, &exitErr):
		result.ExitCode = -1
		result.Failure = &domain.ExecutionError{
			Executable: r.executable,
			Input:      inputPath,
			Reason:     fmt.Sprintf("terminated abnormally (%s)", exitErr.ProcessState),
		}
	case errors.Is(err, exec.ErrWaitDelay):
		result.ExitCode = cmd.ProcessState.ExitCode()
		result.Failure = &domain.ExecutionError{
			Executable: r.executable,
			Input:      inputPath,
			Reason:     "output left open after exit",
			Err:        err,
		}
	default:
		result.ExitCode = -1
		result.Failure = &domain.ExecutionError{
			Executable: r.executable,
			Input:      inputPath,
			Reason:     "cannot launch",
			Err:        err,
		}
	}

	if result.Failure != nil && stderr.Len() > 0 {
		r.logger.Debug("stderr of failed process", "input", inputPath, "stderr", stderr.String())
	}
	return result
}
