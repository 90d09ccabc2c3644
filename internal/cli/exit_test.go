package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "failure", err: NewExitError(ExitFailure, "2 of 5 cases did not pass"), want: ExitFailure},
		{name: "wrapped harness error", err: fmt.Errorf("run: %w", WrapExitError(ExitHarnessError, "discovery failed", errors.New("no such directory"))), want: ExitHarnessError},
		{name: "plain error", err: errors.New(`unknown flag: --nope`), want: ExitHarnessError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Error(t *testing.T) {
	inner := errors.New("boom")
	err := WrapExitError(ExitHarnessError, "discovery failed", inner)

	assert.Equal(t, "discovery failed: boom", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	NewLogger(&buf, true).Debug("shown", "case", "add")
	assert.Contains(t, buf.String(), "level=DEBUG msg=shown case=add")
}

func TestFlags_ToConfigFlags(t *testing.T) {
	f := Flags{Executable: "mvm", DoubleRun: true, Jobs: 3, Store: "sqlite", Print: true}
	got := f.ToConfigFlags()

	assert.Equal(t, "mvm", got.Executable)
	assert.True(t, got.DoubleRun)
	assert.Equal(t, 3, got.Jobs)
	assert.Equal(t, "sqlite", got.Store)
}
