package compare

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"mvmtest/internal/domain"
)

// RoundTrip checks that the binary's output, fed back as input, reproduces itself.
type RoundTrip struct {
	executor      Executor
	scratchDir    string
	ext           string
	keepOnFailure bool
	logger        *slog.Logger
}

// NewRoundTrip creates a RoundTrip strategy writing scratch files to scratchDir.
// Scratch files get ext so the binary treats them like fixtures.
func NewRoundTrip(executor Executor, scratchDir, ext string, keepOnFailure bool, logger *slog.Logger) *RoundTrip {
	return &RoundTrip{
		executor:      executor,
		scratchDir:    scratchDir,
		ext:           ext,
		keepOnFailure: keepOnFailure,
		logger:        logger,
	}
}

func (rt *RoundTrip) Name() string { return "roundtrip" }

// Compare runs the fixture (O1), runs O1 again (O2) and passes iff O1 == O2.
// The expectation file is never consulted.
func (rt *RoundTrip) Compare(ctx context.Context, tc domain.TestCase) (outcome domain.Outcome, err error) {
	first := rt.executor.Execute(ctx, tc.InputPath)
	if o, stop, e := interrupted(first); stop {
		return o, e
	}

	scratch, err := rt.writeScratch(tc.Name, "", first.Output)
	if err != nil {
		return domain.Outcome{}, &domain.HarnessError{Case: tc.Name, Op: "write scratch file", Err: err}
	}
	scratchPaths := []string{scratch}

	defer func() {
		if (outcome.Kind == domain.Pass && err == nil) || !rt.keepOnFailure {
			rt.remove(scratchPaths)
			outcome.ScratchPaths = nil
			return
		}
		outcome.ScratchPaths = scratchPaths
	}()

	second := rt.executor.Execute(ctx, scratch)
	if o, stop, e := interrupted(second); stop {
		return o, e
	}

	if bytes.Equal(first.Output, second.Output) {
		return domain.Passed(), nil
	}

	if rt.keepOnFailure {
		if path, werr := rt.writeScratch(tc.Name, ".second", second.Output); werr == nil {
			scratchPaths = append(scratchPaths, path)
		} else {
			rt.logger.Warn("could not keep second output", "case", tc.Name, "error", werr)
		}
	}
	return domain.Failed(first.Output, second.Output), nil
}

// writeScratch stores data in a per-case unique file
func (rt *RoundTrip) writeScratch(name, suffix string, data []byte) (string, error) {
	f, err := os.CreateTemp(rt.scratchDir, name+"-*"+suffix+rt.ext)
	if err != nil {
		return "", fmt.Errorf("create: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

func (rt *RoundTrip) remove(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			rt.logger.Warn("could not remove scratch file", "path", p, "error", err)
		}
	}
}
