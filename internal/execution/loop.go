package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mvmtest/internal/domain"
)

// Strategy judges one test case; see compare.Golden and compare.RoundTrip.
type Strategy interface {
	Name() string
	Compare(ctx context.Context, tc domain.TestCase) (domain.Outcome, error)
}

// CaseReporter receives case reports in discovery order
type CaseReporter interface {
	ReportCase(report domain.CaseReport)
}

// Progress tracks how many cases have finished
type Progress interface {
	Update(passed, failed int)
	Finish()
}

// Options tune a Loop
type Options struct {
	Jobs        int           // Concurrent cases, 1 for a sequential run
	CaseTimeout time.Duration // Deadline for each case, 0 for none
	RunTimeout  time.Duration // Deadline for the whole batch, 0 for none
}

// Loop drives every discovered case through the comparison strategy
type Loop struct {
	strategy Strategy
	reporter CaseReporter
	opts     Options
	progress Progress
	logger   *slog.Logger
}

// NewLoop creates a Loop
func NewLoop(strategy Strategy, reporter CaseReporter, opts Options, logger *slog.Logger) *Loop {
	if opts.Jobs <= 0 {
		opts.Jobs = 1
	}
	return &Loop{
		strategy: strategy,
		reporter: reporter,
		opts:     opts,
		logger:   logger,
	}
}

// SetProgress sets the progress tracker for the loop
func (l *Loop) SetProgress(progress Progress) {
	l.progress = progress
}

// Run processes each case exactly once. Reports are delivered to the
// reporter and returned in discovery order regardless of the job count.
// A failing case never stops the batch.
func (l *Loop) Run(ctx context.Context, cases []domain.TestCase) ([]domain.CaseReport, domain.Summary) {
	startTime := time.Now()
	if l.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.RunTimeout)
		defer cancel()
	}

	reports := make([]domain.CaseReport, len(cases))
	done := make([]chan struct{}, len(cases))
	queue := make(chan int, len(cases))
	for i := range cases {
		done[i] = make(chan struct{})
		queue <- i
	}
	close(queue)

	workerCount := min(l.opts.Jobs, len(cases))
	l.logger.Debug("starting run", "strategy", l.strategy.Name(), "cases", len(cases), "workers", workerCount)

	var wg sync.WaitGroup
	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range queue {
				reports[i] = l.runCase(ctx, cases[i], workerID)
				close(done[i])
			}
		}(w)
	}

	var summary domain.Summary
	for i := range cases {
		<-done[i]
		summary.Add(reports[i])
		l.reporter.ReportCase(reports[i])
		if l.progress != nil {
			l.progress.Update(summary.Passed, summary.Total-summary.Passed)
		}
	}
	wg.Wait()

	if l.progress != nil {
		l.progress.Finish()
	}
	summary.Duration = time.Since(startTime)
	return reports, summary
}

// runCase is the case boundary: whatever happens inside the strategy ends up
// in the returned report.
func (l *Loop) runCase(ctx context.Context, tc domain.TestCase, workerID int) (report domain.CaseReport) {
	start := time.Now()
	report.Case = tc

	defer func() {
		if r := recover(); r != nil {
			report.Outcome = domain.Outcome{}
			report.Err = &domain.HarnessError{Case: tc.Name, Op: l.strategy.Name(), Err: fmt.Errorf("panic: %v", r)}
			l.logger.Error("comparison panicked", "case", tc.Name, "panic", r)
		}
		report.Duration = time.Since(start)
	}()

	if l.opts.CaseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.CaseTimeout)
		defer cancel()
	}

	l.logger.Debug("running case", "case", tc.Name, "worker", workerID)
	outcome, err := l.strategy.Compare(ctx, tc)
	report.Outcome = outcome
	report.Err = classify(tc, l.strategy.Name(), err)

	var (
		execErr    *domain.ExecutionError
		harnessErr *domain.HarnessError
	)
	switch {
	case errors.As(report.Err, &execErr):
		l.logger.Debug("execution error", "case", tc.Name, "reason", execErr.Reason)
	case errors.As(report.Err, &harnessErr):
		l.logger.Debug("harness error", "case", tc.Name, "op", harnessErr.Op, "error", harnessErr.Err)
	case outcome.Kind == domain.TimedOut:
		l.logger.Debug("case timed out", "case", tc.Name, "timeout", l.opts.CaseTimeout)
	}
	return report
}

// classify keeps the error taxonomy closed: anything that is not an
// ExecutionError or HarnessError becomes a HarnessError.
func classify(tc domain.TestCase, op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		execErr    *domain.ExecutionError
		harnessErr *domain.HarnessError
	)
	if errors.As(err, &execErr) || errors.As(err, &harnessErr) {
		return err
	}
	return &domain.HarnessError{Case: tc.Name, Op: op, Err: err}
}
