package storage

import (
	"time"

	"github.com/google/uuid"

	"mvmtest/internal/config"
	"mvmtest/internal/domain"
	"mvmtest/internal/report"
)

// NewRecord builds the stored form of a finished run. Only cases that did not
// pass are kept; their diffs are rendered with differ.
func NewRecord(cfg config.Config, startedAt time.Time, reports []domain.CaseReport, summary domain.Summary, differ *report.Reporter) *domain.RunRecord {
	record := &domain.RunRecord{
		ID:         uuid.NewString(),
		Strategy:   string(cfg.Strategy),
		Executable: cfg.Executable,
		TestDir:    cfg.TestDir,
		StartedAt:  startedAt,
		Meta:       domain.MetaFromSummary(summary),
		Failures:   []domain.CaseFailure{},
	}

	for _, r := range reports {
		if r.Verdict() == domain.VerdictOK {
			continue
		}
		f := domain.CaseFailure{
			Name:         r.Case.Name,
			InputPath:    r.Case.InputPath,
			Verdict:      r.Verdict(),
			ScratchPaths: r.Outcome.ScratchPaths,
		}
		switch {
		case r.Err != nil:
			f.Message = r.Err.Error()
		case r.Outcome.Kind == domain.TimedOut:
			f.Message = "timed out"
		default:
			f.Message = "output differs"
			f.Diff = differ.Diff(r.Outcome.Expected, r.Outcome.Actual)
		}
		record.Failures = append(record.Failures, f)
	}
	return record
}
