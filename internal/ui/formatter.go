package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"mvmtest/internal/domain"
	"mvmtest/internal/report"
)

var (
	okColor      = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	timeoutColor = color.New(color.FgYellow)
	headerColor  = color.New(color.FgCyan)
	removedColor = color.New(color.FgRed)
	addedColor   = color.New(color.FgGreen)
	detailColor  = color.New(color.Faint)
)

// Formatter prints verdict lines, failure details and run summaries
type Formatter struct {
	out     io.Writer
	differ  *report.Reporter
	verbose bool
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(out io.Writer, differ *report.Reporter, verbose bool) *Formatter {
	return &Formatter{
		out:     out,
		differ:  differ,
		verbose: verbose,
	}
}

// ReportCase prints "<name>: <verdict>" followed, for a case that did not
// pass, by the diff or the error and any scratch files left behind.
func (f *Formatter) ReportCase(r domain.CaseReport) {
	verdict := r.Verdict()
	fmt.Fprintf(f.out, "%s: %s\n", r.Case.Name, verdictColor(verdict).Sprint(string(verdict)))
	if verdict == domain.VerdictOK {
		return
	}

	switch {
	case r.Err != nil:
		errorColor.Fprintf(f.out, "  %s\n", r.Err)
	case r.Outcome.Kind == domain.Fail:
		f.printDiff(f.differ.Diff(r.Outcome.Expected, r.Outcome.Actual))
		if f.verbose {
			f.printDump("expected", r.Outcome.Expected)
			f.printDump("actual", r.Outcome.Actual)
		}
	}

	for _, p := range r.Outcome.ScratchPaths {
		detailColor.Fprintf(f.out, "  kept %s\n", p)
	}
}

func verdictColor(v domain.Verdict) *color.Color {
	switch v {
	case domain.VerdictOK:
		return okColor
	case domain.VerdictTimeout:
		return timeoutColor
	default:
		return errorColor
	}
}

func (f *Formatter) printDiff(diff string) {
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "@@"):
			headerColor.Fprint(f.out, line)
		case strings.HasPrefix(line, "-"):
			removedColor.Fprint(f.out, line)
		case strings.HasPrefix(line, "+"):
			addedColor.Fprint(f.out, line)
		default:
			fmt.Fprint(f.out, line)
		}
	}
}

// printDump writes data unmodified between two marker lines
func (f *Formatter) printDump(label string, data []byte) {
	headerColor.Fprintf(f.out, "=== %s (%d bytes) ===\n", label, len(data))
	f.out.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Fprintln(f.out)
	}
	headerColor.Fprintf(f.out, "=== end %s ===\n", label)
}

// PrintSummary prints the run statistics table and the names of the cases
// that did not pass.
func (f *Formatter) PrintSummary(s domain.Summary, strategy string, failed []string) {
	const border = "─────────────────────────"

	fmt.Fprintln(f.out)
	fmt.Fprintf(f.out, "┌%s┬%s┐\n", border, border)
	rows := []struct {
		label string
		value string
		c     *color.Color
	}{
		{"Strategy", strategy, nil},
		{"Total", fmt.Sprint(s.Total), nil},
		{"Passed", fmt.Sprint(s.Passed), okColor},
		{"Failed", fmt.Sprint(s.Failed), errorColor},
		{"Errors", fmt.Sprint(s.Errored), errorColor},
		{"Timeouts", fmt.Sprint(s.TimedOut), timeoutColor},
		{"Duration", fmt.Sprintf("%.2fs", s.Duration.Seconds()), nil},
	}
	for i, row := range rows {
		value := fmt.Sprintf("%-23s", row.value)
		if row.c != nil {
			value = row.c.Sprint(value)
		}
		fmt.Fprintf(f.out, "│ %-23s │ %s │\n", row.label, value)
		if i < len(rows)-1 {
			fmt.Fprintf(f.out, "├%s┼%s┤\n", border, border)
		}
	}
	fmt.Fprintf(f.out, "└%s┴%s┘\n", border, border)

	fmt.Fprintln(f.out)
	if s.OK() {
		okColor.Fprintf(f.out, "✓ All %d tests passed!\n", s.Total)
		return
	}
	errorColor.Fprintf(f.out, "✗ %d of %d tests did not pass\n", s.Total-s.Passed, s.Total)
	for _, name := range failed {
		errorColor.Fprintf(f.out, "  |_ %s\n", name)
	}
}

// PrintTestList prints the discovered cases. Names in failed are marked with
// [F] (failures of the last stored run).
func (f *Formatter) PrintTestList(dir string, cases []domain.TestCase, failed map[string]struct{}) {
	okColor.Fprintf(f.out, "Found %d test case(s) in %s:\n", len(cases), dir)

	for i, tc := range cases {
		branch := "├──"
		if i == len(cases)-1 {
			branch = "└──"
		}

		marker := ""
		if _, ok := failed[tc.Name]; ok {
			marker = " " + errorColor.Sprint("[F]")
		}
		expectation := ""
		if !tc.HasExpectation() {
			expectation = detailColor.Sprint(" (no expectation)")
		}
		fmt.Fprintf(f.out, "%s %s%s%s\n", branch, headerColor.Sprint(tc.Name), marker, expectation)
	}
}

// PrintFailure prints a stored failure the way ReportCase printed it during the run
func (f *Formatter) PrintFailure(failure domain.CaseFailure) {
	resolved := ""
	if failure.Resolved {
		resolved = detailColor.Sprint(" (resolved)")
	}
	fmt.Fprintf(f.out, "%s: %s%s\n", failure.Name, verdictColor(failure.Verdict).Sprint(string(failure.Verdict)), resolved)
	if failure.Diff != "" {
		f.printDiff(failure.Diff)
	} else if failure.Message != "" {
		errorColor.Fprintf(f.out, "  %s\n", failure.Message)
	}
	for _, p := range failure.ScratchPaths {
		detailColor.Fprintf(f.out, "  kept %s\n", p)
	}
}
