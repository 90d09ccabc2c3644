package compare

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"

	"mvmtest/internal/domain"
)

// Golden compares the output of one run with the expectation file byte for byte.
type Golden struct {
	executor Executor
}

// NewGolden creates a Golden strategy
func NewGolden(executor Executor) *Golden {
	return &Golden{executor: executor}
}

func (g *Golden) Name() string { return "golden" }

// Compare reads the expectation, runs the fixture once and compares exactly,
// with no newline or whitespace normalization.
func (g *Golden) Compare(ctx context.Context, tc domain.TestCase) (domain.Outcome, error) {
	if !tc.HasExpectation() {
		return domain.Outcome{}, &domain.HarnessError{Case: tc.Name, Op: "read expectation", Err: domain.ErrMissingExpectation}
	}

	expected, err := os.ReadFile(tc.ExpectationPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = errors.Join(domain.ErrMissingExpectation, err)
		}
		return domain.Outcome{}, &domain.HarnessError{Case: tc.Name, Op: "read expectation", Err: err}
	}

	res := g.executor.Execute(ctx, tc.InputPath)
	if outcome, stop, err := interrupted(res); stop {
		return outcome, err
	}

	if bytes.Equal(expected, res.Output) {
		return domain.Passed(), nil
	}
	return domain.Failed(expected, res.Output), nil
}
