package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mvmtest/internal/cli"
	"mvmtest/internal/compare"
	"mvmtest/internal/discovery"
	"mvmtest/internal/execution"
	"mvmtest/internal/report"
	"mvmtest/internal/storage"
	"mvmtest/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	*session
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := rc.cfg

	// Discover tests
	cases, err := discovery.NewScanner(cfg.FixtureExt, cfg.ExpectExt).Scan(cfg.TestDir)
	if err != nil {
		return cli.WrapExitError(cli.ExitHarnessError, "discovery failed", err)
	}

	// Filter tests
	filter := discovery.NewFilter()
	cases = filter.FilterByName(cases, cfg.NameFilter)

	st, err := storage.Open(cfg)
	if err != nil {
		return cli.WrapExitError(cli.ExitHarnessError, "open result store", err)
	}
	defer st.Close()

	if cfg.OnlyFailed {
		last, err := st.Last()
		switch {
		case errors.Is(err, storage.ErrNoRuns):
			color.New(color.FgYellow).Fprintln(rc.stdout, "No stored run, nothing to re-run")
			return nil
		case err != nil:
			return cli.WrapExitError(cli.ExitHarnessError, "load last run", err)
		}
		cases = filter.OnlyNames(cases, last.FailedNames())
	}

	if len(cases) == 0 {
		color.New(color.FgYellow).Fprintln(rc.stdout, "No test cases to run")
		return nil
	}

	if _, err := os.Stat(cfg.Executable); err != nil {
		rc.logger.Warn("binary under test not found, every case will fail to launch", "executable", cfg.Executable)
	}
	rc.logger.Debug("resolved configuration",
		"executable", cfg.Executable,
		"testdir", cfg.TestDir,
		"strategy", cfg.Strategy,
		"capture", cfg.Capture,
		"jobs", cfg.Jobs,
		"timeout", cfg.CaseTimeout,
		"run_timeout", cfg.RunTimeout,
		"store", cfg.Store,
	)
	runner := execution.NewRunner(cfg.Executable, cfg.Capture, rc.logger)
	rc.logger.Info("running cases", "count", len(cases), "strategy", cfg.Strategy, "capture", runner.Capture())

	strategy := compare.New(cfg, runner, rc.logger)
	differ := report.NewReporter()
	formatter := ui.NewFormatter(rc.stdout, differ, cfg.Verbose)

	loop := execution.NewLoop(strategy, formatter, execution.Options{
		Jobs:        cfg.Jobs,
		CaseTimeout: cfg.CaseTimeout,
		RunTimeout:  cfg.RunTimeout,
	}, rc.logger)
	if rc.showProgress() {
		loop.SetProgress(ui.NewProgressBar(len(cases), rc.stderr))
	}

	startedAt := time.Now()
	reports, summary := loop.Run(cmd.Context(), cases)

	record := storage.NewRecord(cfg, startedAt, reports, summary, differ)
	formatter.PrintSummary(summary, string(cfg.Strategy), record.FailedNames())

	// Save results
	if err := st.Save(record); err != nil {
		return cli.WrapExitError(cli.ExitHarnessError, "failed to save run results", err)
	}

	if !summary.OK() {
		return cli.NewExitError(cli.ExitFailure, fmt.Sprintf("%d of %d cases did not pass", summary.Total-summary.Passed, summary.Total))
	}
	return nil
}

// showProgress draws the bar only when both streams are real files and the
// verdict lines are not going to the same terminal.
func (rc *RunCommand) showProgress() bool {
	if !rc.cfg.Progress {
		return false
	}
	stdout, ok := rc.stdout.(*os.File)
	if !ok {
		return false
	}
	stderr, ok := rc.stderr.(*os.File)
	if !ok {
		return false
	}
	return ui.ShowProgress(stdout, stderr)
}
