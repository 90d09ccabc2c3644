package compare

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mvmtest/internal/config"
	"mvmtest/internal/domain"
	"mvmtest/internal/execution"
	"mvmtest/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubExecutor answers from a function and records every input it was given
type stubExecutor struct {
	fn    func(path string) domain.ExecutionResult
	calls []string
}

func (s *stubExecutor) Execute(_ context.Context, path string) domain.ExecutionResult {
	s.calls = append(s.calls, path)
	return s.fn(path)
}

func output(s string) domain.ExecutionResult {
	return domain.ExecutionResult{Output: []byte(s), Succeeded: true}
}

func runner(t *testing.T, body string, capture config.CaptureMode) *execution.Runner {
	t.Helper()
	return execution.NewRunner(testutil.FakeBinary(t, body), capture, discardLogger())
}

func TestNew(t *testing.T) {
	exec := &stubExecutor{}
	if s := New(config.Config{Strategy: config.StrategyGolden}, exec, discardLogger()); s.Name() != "golden" {
		t.Errorf("expected golden, got %s", s.Name())
	}
	if s := New(config.Config{Strategy: config.StrategyRoundTrip}, exec, discardLogger()); s.Name() != "roundtrip" {
		t.Errorf("expected roundtrip, got %s", s.Name())
	}
}

func TestInterrupted(t *testing.T) {
	if _, stop, err := interrupted(output("x")); stop || err != nil {
		t.Errorf("normal result must not stop the comparison")
	}
	if outcome, stop, err := interrupted(domain.ExecutionResult{TimedOut: true}); !stop || err != nil || outcome.Kind != domain.TimedOut {
		t.Errorf("timed out result must stop with a TimedOut outcome, got %v %v %v", outcome.Kind, stop, err)
	}
	failure := &domain.ExecutionError{Reason: "cannot launch"}
	if _, stop, err := interrupted(domain.ExecutionResult{Failure: failure}); !stop || err != failure {
		t.Errorf("failed result must stop with its ExecutionError, got %v %v", stop, err)
	}
}

func TestScratchFilesAreOutsideFixtures(t *testing.T) {
	scratch := t.TempDir()
	rt := NewRoundTrip(&stubExecutor{fn: func(string) domain.ExecutionResult { return output("") }}, scratch, ".mvm", true, discardLogger())

	a, err := rt.writeScratch("same", "", []byte("1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := rt.writeScratch("same", "", []byte("2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Errorf("scratch paths must be unique per call, both were %s", a)
	}
	for _, p := range []string{a, b} {
		if filepath.Dir(p) != scratch || !strings.HasPrefix(filepath.Base(p), "same-") || filepath.Ext(p) != ".mvm" {
			t.Errorf("unexpected scratch path %s", p)
		}
	}
	rt.remove([]string{a, b, filepath.Join(scratch, "already-gone.mvm")})
	entries, _ := os.ReadDir(scratch)
	if len(entries) != 0 {
		t.Errorf("expected scratch dir to be empty, found %d entries", len(entries))
	}
}

func runnerFor(path string) *execution.Runner {
	return execution.NewRunner(path, config.CaptureStdout, discardLogger())
}
