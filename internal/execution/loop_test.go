package execution

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mvmtest/internal/compare"
	"mvmtest/internal/config"
	"mvmtest/internal/domain"
	"mvmtest/internal/testutil"
)

// fakeStrategy answers per case name and counts calls
type fakeStrategy struct {
	mu     sync.Mutex
	calls  map[string]int
	answer func(ctx context.Context, tc domain.TestCase) (domain.Outcome, error)
}

func (f *fakeStrategy) Name() string { return "fake" }

func (f *fakeStrategy) Compare(ctx context.Context, tc domain.TestCase) (domain.Outcome, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[tc.Name]++
	f.mu.Unlock()
	return f.answer(ctx, tc)
}

// recorder collects reports in the order they are delivered
type recorder struct {
	names []string
}

func (r *recorder) ReportCase(report domain.CaseReport) {
	r.names = append(r.names, report.Case.Name)
}

type countingProgress struct {
	updates  int
	finished bool
	passed   int
	failed   int
}

func (p *countingProgress) Update(passed, failed int) {
	p.updates++
	p.passed, p.failed = passed, failed
}

func (p *countingProgress) Finish() { p.finished = true }

func namedCases(names ...string) []domain.TestCase {
	out := make([]domain.TestCase, 0, len(names))
	for _, n := range names {
		out = append(out, domain.TestCase{Name: n, InputPath: n + ".mvm"})
	}
	return out
}

func TestLoop_Run_EveryCaseOnceDespiteFailures(t *testing.T) {
	strategy := &fakeStrategy{answer: func(_ context.Context, tc domain.TestCase) (domain.Outcome, error) {
		switch tc.Name {
		case "sub":
			return domain.Failed([]byte("2\n"), []byte("1\n")), nil
		case "crash":
			return domain.Outcome{}, &domain.ExecutionError{Reason: "terminated abnormally (signal: segmentation fault)"}
		case "orphan":
			return domain.Outcome{}, &domain.HarnessError{Case: tc.Name, Op: "read expectation", Err: domain.ErrMissingExpectation}
		case "panics":
			panic("boom")
		case "weird":
			return domain.Outcome{}, errors.New("untyped")
		case "hang":
			return domain.TimedOutOutcome(), nil
		default:
			return domain.Passed(), nil
		}
	}}
	rec := &recorder{}
	progress := &countingProgress{}
	loop := NewLoop(strategy, rec, Options{}, discardLogger())
	loop.SetProgress(progress)

	cases := namedCases("add", "sub", "crash", "orphan", "panics", "weird", "hang", "mul")
	reports, summary := loop.Run(context.Background(), cases)

	require.Len(t, reports, len(cases))
	assert.Equal(t, []string{"add", "sub", "crash", "orphan", "panics", "weird", "hang", "mul"}, rec.names)
	for _, tc := range cases {
		assert.Equal(t, 1, strategy.calls[tc.Name], "case %s", tc.Name)
	}

	verdicts := make([]domain.Verdict, 0, len(reports))
	for _, r := range reports {
		verdicts = append(verdicts, r.Verdict())
	}
	assert.Equal(t, []domain.Verdict{
		domain.VerdictOK, domain.VerdictError, domain.VerdictError, domain.VerdictError,
		domain.VerdictError, domain.VerdictError, domain.VerdictTimeout, domain.VerdictOK,
	}, verdicts)

	var harnessErr *domain.HarnessError
	require.ErrorAs(t, reports[4].Err, &harnessErr)
	assert.Contains(t, harnessErr.Error(), "panic: boom")
	require.ErrorAs(t, reports[5].Err, &harnessErr)
	assert.Equal(t, "weird", harnessErr.Case)

	assert.Equal(t, 8, summary.Total)
	assert.Equal(t, 2, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 4, summary.Errored)
	assert.Equal(t, 1, summary.TimedOut)
	assert.False(t, summary.OK())

	assert.Equal(t, 8, progress.updates)
	assert.Equal(t, 2, progress.passed)
	assert.Equal(t, 6, progress.failed)
	assert.True(t, progress.finished)
}

func TestLoop_Run_ParallelKeepsDiscoveryOrder(t *testing.T) {
	names := make([]string, 20)
	for i := range names {
		names[i] = fmt.Sprintf("case%02d", i)
	}
	strategy := &fakeStrategy{answer: func(_ context.Context, tc domain.TestCase) (domain.Outcome, error) {
		// Later cases finish first
		var idx int
		fmt.Sscanf(tc.Name, "case%d", &idx)
		time.Sleep(time.Duration(20-idx) * time.Millisecond)
		return domain.Passed(), nil
	}}
	rec := &recorder{}

	reports, summary := NewLoop(strategy, rec, Options{Jobs: 4}, discardLogger()).Run(context.Background(), namedCases(names...))

	assert.Equal(t, names, rec.names)
	for i, r := range reports {
		assert.Equal(t, names[i], r.Case.Name)
	}
	assert.True(t, summary.OK())
	assert.Len(t, strategy.calls, 20)
}

func TestLoop_Run_Empty(t *testing.T) {
	rec := &recorder{}
	reports, summary := NewLoop(&fakeStrategy{}, rec, Options{Jobs: 3}, discardLogger()).Run(context.Background(), nil)

	assert.Empty(t, reports)
	assert.Empty(t, rec.names)
	assert.Equal(t, 0, summary.Total)
	assert.True(t, summary.OK())
}

func TestLoop_Run_CaseTimeout(t *testing.T) {
	bin := testutil.FakeBinary(t, `case "$1" in *hang*) exec sleep 10;; *) exec cat "$1";; esac`)
	dir := t.TempDir()
	cases := []domain.TestCase{
		{Name: "hang", InputPath: testutil.WriteFixture(t, dir, "hang.mvm", "x\n"), ExpectationPath: testutil.WriteFixture(t, dir, "hang.expect", "x\n")},
		{Name: "quick", InputPath: testutil.WriteFixture(t, dir, "quick.mvm", "y\n"), ExpectationPath: testutil.WriteFixture(t, dir, "quick.expect", "y\n")},
	}
	strategy := compare.NewGolden(NewRunner(bin, config.CaptureMerged, discardLogger()))

	reports, summary := NewLoop(strategy, &recorder{}, Options{CaseTimeout: 200 * time.Millisecond}, discardLogger()).Run(context.Background(), cases)

	require.Len(t, reports, 2)
	assert.Equal(t, domain.VerdictTimeout, reports[0].Verdict())
	assert.NoError(t, reports[0].Err)
	assert.Equal(t, domain.VerdictOK, reports[1].Verdict())
	assert.Equal(t, 1, summary.TimedOut)
}

func TestLoop_Run_RunTimeoutStillReportsEveryCase(t *testing.T) {
	bin := testutil.FakeBinary(t, `exec sleep 10`)
	dir := t.TempDir()
	var cases []domain.TestCase
	for _, name := range []string{"a", "b", "c"} {
		cases = append(cases, domain.TestCase{
			Name:            name,
			InputPath:       testutil.WriteFixture(t, dir, name+".mvm", ""),
			ExpectationPath: testutil.WriteFixture(t, dir, name+".expect", ""),
		})
	}
	strategy := compare.NewGolden(NewRunner(bin, config.CaptureMerged, discardLogger()))
	rec := &recorder{}

	start := time.Now()
	reports, summary := NewLoop(strategy, rec, Options{RunTimeout: 200 * time.Millisecond}, discardLogger()).Run(context.Background(), cases)

	assert.Less(t, time.Since(start), 8*time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, rec.names)
	for _, r := range reports {
		assert.Equal(t, domain.VerdictTimeout, r.Verdict(), r.Case.Name)
	}
	assert.Equal(t, 3, summary.TimedOut)
}

func TestLoop_Run_GoldenScenarios(t *testing.T) {
	dir := t.TempDir()
	bin := testutil.FakeBinary(t, testutil.Identity)
	cases := []domain.TestCase{
		{Name: "add", InputPath: testutil.WriteFixture(t, dir, "add.mvm", "3\n"), ExpectationPath: testutil.WriteFixture(t, dir, "add.expect", "3\n")},
		{Name: "missing", InputPath: testutil.WriteFixture(t, dir, "missing.mvm", "0\n")},
		{Name: "sub", InputPath: testutil.WriteFixture(t, dir, "sub.mvm", "1\n"), ExpectationPath: testutil.WriteFixture(t, dir, "sub.expect", "2\n")},
	}
	strategy := compare.NewGolden(NewRunner(bin, config.CaptureMerged, discardLogger()))

	reports, summary := NewLoop(strategy, &recorder{}, Options{}, discardLogger()).Run(context.Background(), cases)

	assert.Equal(t, domain.VerdictOK, reports[0].Verdict())
	assert.ErrorIs(t, reports[1].Err, domain.ErrMissingExpectation)
	assert.Equal(t, domain.VerdictError, reports[2].Verdict())
	assert.Equal(t, "2\n", string(reports[2].Outcome.Expected))
	assert.Equal(t, "1\n", string(reports[2].Outcome.Actual))
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Errored)
}

func TestLoop_Run_RoundTripScenario(t *testing.T) {
	dir := t.TempDir()
	scratch := t.TempDir()
	bin := testutil.FakeBinary(t, `case "$1" in *reorder*) exec sed 's/^/# /' "$1";; *) exec cat "$1";; esac`)
	cases := []domain.TestCase{
		{Name: "prog", InputPath: testutil.WriteFixture(t, dir, "prog.mvm", "int x;\n")},
		{Name: "reorder", InputPath: testutil.WriteFixture(t, dir, "reorder.mvm", "int y;\n")},
	}
	strategy := compare.NewRoundTrip(NewRunner(bin, config.CaptureStdout, discardLogger()), scratch, ".mvm", true, discardLogger())

	reports, _ := NewLoop(strategy, &recorder{}, Options{}, discardLogger()).Run(context.Background(), cases)

	assert.Equal(t, domain.VerdictOK, reports[0].Verdict())
	require.Equal(t, domain.Fail, reports[1].Outcome.Kind)
	assert.NotEmpty(t, reports[1].Outcome.ScratchPaths)
	for _, p := range reports[1].Outcome.ScratchPaths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
}
