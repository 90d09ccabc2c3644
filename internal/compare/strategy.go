// Package compare decides whether the binary under test behaved correctly on a
// test case, either against a stored golden file or by feeding its output back
// in and checking that it reaches a fixed point.
package compare

import (
	"context"
	"log/slog"

	"mvmtest/internal/config"
	"mvmtest/internal/domain"
)

// Executor runs the binary under test on one input file.
type Executor interface {
	Execute(ctx context.Context, inputPath string) domain.ExecutionResult
}

// Strategy judges one test case. A returned error is an ExecutionError or a
// HarnessError; comparison failures are reported through the Outcome.
type Strategy interface {
	Name() string
	Compare(ctx context.Context, tc domain.TestCase) (domain.Outcome, error)
}

// New returns the strategy selected by cfg.
func New(cfg config.Config, executor Executor, logger *slog.Logger) Strategy {
	if cfg.Strategy == config.StrategyRoundTrip {
		return NewRoundTrip(executor, cfg.ScratchDir, cfg.FixtureExt, cfg.KeepScratch, logger)
	}
	return NewGolden(executor)
}

// interrupted reports whether res produced no comparable output, and with
// what outcome the comparison ends in that case.
func interrupted(res domain.ExecutionResult) (domain.Outcome, bool, error) {
	if res.TimedOut {
		return domain.TimedOutOutcome(), true, nil
	}
	if res.Failure != nil {
		return domain.Outcome{}, true, res.Failure
	}
	return domain.Outcome{}, false, nil
}
