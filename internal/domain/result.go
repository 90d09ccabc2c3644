package domain

import "time"

// ExecutionResult is the captured outcome of a single run of the binary under test
type ExecutionResult struct {
	Output    []byte          // Captured bytes, never normalized
	Succeeded bool            // The process started and exited normally (any exit code)
	Failure   *ExecutionError // Set when the process could not run or crashed
	TimedOut  bool            // The process was killed because its deadline expired
	ExitCode  int
	Duration  time.Duration
}

// OutcomeKind classifies a comparison.
type OutcomeKind int

const (
	Pass OutcomeKind = iota
	Fail
	TimedOut
)

func (k OutcomeKind) String() string {
	switch k {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	case TimedOut:
		return "timeout"
	default:
		return "unknown"
	}
}

// Outcome is what a comparison strategy concludes about one test case.
type Outcome struct {
	Kind     OutcomeKind
	Expected []byte
	Actual   []byte
	// ScratchPaths lists temporary files kept for inspection.
	ScratchPaths []string
}

// Passed returns a passing outcome.
func Passed() Outcome {
	return Outcome{Kind: Pass}
}

// Failed returns a failing outcome carrying both byte sequences.
func Failed(expected, actual []byte) Outcome {
	return Outcome{Kind: Fail, Expected: expected, Actual: actual}
}

// TimedOutOutcome returns the outcome of a case killed by a deadline.
func TimedOutOutcome() Outcome {
	return Outcome{Kind: TimedOut}
}

// Verdict is the word printed after a case name.
type Verdict string

const (
	VerdictOK      Verdict = "OK"
	VerdictError   Verdict = "Error"
	VerdictTimeout Verdict = "Timeout"
)

// CaseReport is the result of processing one test case in a run.
type CaseReport struct {
	Case     TestCase
	Outcome  Outcome
	Err      error // ExecutionError or HarnessError, nil when the comparison ran
	Duration time.Duration
}

// Verdict maps the report to the line printed for it.
func (r CaseReport) Verdict() Verdict {
	if r.Err != nil {
		return VerdictError
	}
	switch r.Outcome.Kind {
	case Pass:
		return VerdictOK
	case TimedOut:
		return VerdictTimeout
	default:
		return VerdictError
	}
}

// Summary aggregates the reports of a run.
type Summary struct {
	Total    int
	Passed   int
	Failed   int // Outputs differed
	Errored  int // Execution or harness errors
	TimedOut int
	Duration time.Duration
}

// Add accounts for one report.
func (s *Summary) Add(r CaseReport) {
	s.Total++
	switch {
	case r.Err != nil:
		s.Errored++
	case r.Outcome.Kind == Pass:
		s.Passed++
	case r.Outcome.Kind == TimedOut:
		s.TimedOut++
	default:
		s.Failed++
	}
}

// OK reports whether every case passed.
func (s Summary) OK() bool {
	return s.Passed == s.Total
}

// Summarize builds a Summary from reports.
func Summarize(reports []CaseReport, duration time.Duration) Summary {
	s := Summary{Duration: duration}
	for _, r := range reports {
		s.Add(r)
	}
	return s
}
