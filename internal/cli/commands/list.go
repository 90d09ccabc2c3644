package commands

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mvmtest/internal/cli"
	"mvmtest/internal/discovery"
	"mvmtest/internal/report"
	"mvmtest/internal/storage"
	"mvmtest/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	*session
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	cases, err := discovery.NewScanner(lc.cfg.FixtureExt, lc.cfg.ExpectExt).Scan(lc.cfg.TestDir)
	if err != nil {
		return cli.WrapExitError(cli.ExitHarnessError, "discovery failed", err)
	}

	// Filter tests
	cases = discovery.NewFilter().FilterByName(cases, lc.cfg.NameFilter)

	if len(cases) == 0 {
		color.New(color.FgYellow).Fprintln(lc.stdout, "No test cases found")
		return nil
	}

	failed := lc.lastFailures()
	ui.NewFormatter(lc.stdout, report.NewReporter(), lc.cfg.Verbose).PrintTestList(lc.cfg.TestDir, cases, failed)
	return nil
}

// lastFailures returns the names that did not pass in the last stored run.
// A missing or unreadable store only means there is nothing to mark.
func (lc *ListCommand) lastFailures() map[string]struct{} {
	st, err := storage.Open(lc.cfg)
	if err != nil {
		lc.logger.Debug("result store unavailable", "error", err)
		return nil
	}
	defer st.Close()

	last, err := st.Last()
	if err != nil {
		if !errors.Is(err, storage.ErrNoRuns) {
			lc.logger.Debug("cannot load last run", "error", err)
		}
		return nil
	}

	failed := make(map[string]struct{}, len(last.Failures))
	for _, name := range last.FailedNames() {
		failed[name] = struct{}{}
	}
	return failed
}
