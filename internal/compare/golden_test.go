package compare

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mvmtest/internal/config"
	"mvmtest/internal/domain"
	"mvmtest/internal/testutil"
)

func goldenCase(t *testing.T, name, fixture, expect string) domain.TestCase {
	t.Helper()
	dir := t.TempDir()
	tc := domain.TestCase{
		Name:      name,
		InputPath: testutil.WriteFixture(t, dir, name+".mvm", fixture),
	}
	if expect != "" {
		tc.ExpectationPath = testutil.WriteFixture(t, dir, name+".expect", expect)
	}
	return tc
}

func TestGolden_Compare(t *testing.T) {
	golden := NewGolden(runner(t, testutil.Identity, config.CaptureMerged))

	tests := []struct {
		name     string
		output   string
		expect   string
		wantKind domain.OutcomeKind
	}{
		{name: "add", output: "3\n", expect: "3\n", wantKind: domain.Pass},
		{name: "sub", output: "1\n", expect: "2\n", wantKind: domain.Fail},
		{name: "missing trailing newline", output: "3", expect: "3\n", wantKind: domain.Fail},
		{name: "extra trailing whitespace", output: "3 \n", expect: "3\n", wantKind: domain.Fail},
		{name: "crlf", output: "3\r\n", expect: "3\n", wantKind: domain.Fail},
		{name: "multi line", output: "a\nb\nc\n", expect: "a\nb\nc\n", wantKind: domain.Pass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := goldenCase(t, "case", tt.output, tt.expect)

			outcome, err := golden.Compare(context.Background(), tc)

			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, outcome.Kind)
			if tt.wantKind == domain.Fail {
				assert.Equal(t, []byte(tt.expect), outcome.Expected)
				assert.Equal(t, []byte(tt.output), outcome.Actual)
			}
		})
	}
}

func TestGolden_Compare_MergedStderr(t *testing.T) {
	golden := NewGolden(runner(t, `echo "3"; echo "warning: unused" >&2`, config.CaptureMerged))
	tc := goldenCase(t, "warn", "", "3\nwarning: unused\n")

	outcome, err := golden.Compare(context.Background(), tc)

	require.NoError(t, err)
	assert.Equal(t, domain.Pass, outcome.Kind)
}

func TestGolden_Compare_MissingExpectation(t *testing.T) {
	exec := &stubExecutor{fn: func(string) domain.ExecutionResult { return output("3\n") }}
	golden := NewGolden(exec)

	t.Run("absent from discovery", func(t *testing.T) {
		tc := goldenCase(t, "orphan", "3\n", "")

		_, err := golden.Compare(context.Background(), tc)

		var harnessErr *domain.HarnessError
		require.ErrorAs(t, err, &harnessErr)
		assert.Equal(t, "orphan", harnessErr.Case)
		assert.ErrorIs(t, err, domain.ErrMissingExpectation)
		assert.Empty(t, exec.calls, "binary must not run without an expectation")
	})

	t.Run("removed after discovery", func(t *testing.T) {
		tc := goldenCase(t, "gone", "3\n", "3\n")
		require.NoError(t, os.Remove(tc.ExpectationPath))

		_, err := golden.Compare(context.Background(), tc)

		assert.ErrorIs(t, err, domain.ErrMissingExpectation)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unreadable", func(t *testing.T) {
		tc := goldenCase(t, "dir", "3\n", "")
		tc.ExpectationPath = t.TempDir()

		_, err := golden.Compare(context.Background(), tc)

		var harnessErr *domain.HarnessError
		require.ErrorAs(t, err, &harnessErr)
		assert.False(t, errors.Is(err, domain.ErrMissingExpectation))
	})
}

func TestGolden_Compare_ExecutionFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent-binary")
	golden := NewGolden(runnerFor(missing))
	tc := goldenCase(t, "add", "3\n", "3\n")

	_, err := golden.Compare(context.Background(), tc)

	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "cannot launch", execErr.Reason)
}

func TestGolden_Compare_TimedOut(t *testing.T) {
	exec := &stubExecutor{fn: func(string) domain.ExecutionResult { return domain.ExecutionResult{TimedOut: true} }}
	tc := goldenCase(t, "loop", "", "never\n")

	outcome, err := NewGolden(exec).Compare(context.Background(), tc)

	require.NoError(t, err)
	assert.Equal(t, domain.TimedOut, outcome.Kind)
}
