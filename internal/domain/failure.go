package domain

import "time"

// CaseFailure is the stored form of a case that did not pass
type CaseFailure struct {
	Name         string   `json:"name"`
	InputPath    string   `json:"input_path"`
	Verdict      Verdict  `json:"verdict"`
	Message      string   `json:"message,omitempty"`
	Diff         string   `json:"diff,omitempty"`
	ScratchPaths []string `json:"scratch_paths,omitempty"`
	Resolved     bool     `json:"resolved,omitempty"` // Toggled from the failures viewer
}

// RunMeta contains the counters of a stored run
type RunMeta struct {
	Total           int     `json:"total"`
	Passed          int     `json:"passed"`
	Failed          int     `json:"failed"`
	Errored         int     `json:"errored"`
	TimedOut        int     `json:"timed_out"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// RunRecord is the complete stored result of a run
type RunRecord struct {
	ID         string        `json:"id"`
	Strategy   string        `json:"strategy"`
	Executable string        `json:"executable"`
	TestDir    string        `json:"test_dir"`
	StartedAt  time.Time     `json:"started_at"`
	Meta       RunMeta       `json:"meta"`
	Failures   []CaseFailure `json:"failures"`
}

// MetaFromSummary converts a Summary to its stored form.
func MetaFromSummary(s Summary) RunMeta {
	return RunMeta{
		Total:           s.Total,
		Passed:          s.Passed,
		Failed:          s.Failed,
		Errored:         s.Errored,
		TimedOut:        s.TimedOut,
		Duration:        s.Duration.String(),
		DurationSeconds: s.Duration.Seconds(),
	}
}

// FailedNames returns the names of the failures in stored order.
func (r *RunRecord) FailedNames() []string {
	names := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		names = append(names, f.Name)
	}
	return names
}
