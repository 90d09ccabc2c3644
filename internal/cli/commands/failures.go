package commands

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mvmtest/internal/cli"
	"mvmtest/internal/report"
	"mvmtest/internal/storage"
	"mvmtest/internal/ui"
)

// FailuresCommand handles the failures command
type FailuresCommand struct {
	*session
}

// Execute runs the command
func (fc *FailuresCommand) Execute(cmd *cobra.Command, args []string) error {
	st, err := storage.Open(fc.cfg)
	if err != nil {
		return cli.WrapExitError(cli.ExitHarnessError, "open result store", err)
	}
	defer st.Close()

	record, err := st.Last()
	if errors.Is(err, storage.ErrNoRuns) {
		color.New(color.FgYellow).Fprintln(fc.stdout, "No stored run yet, use mvmtest run first")
		return nil
	}
	if err != nil {
		return cli.WrapExitError(cli.ExitHarnessError, "load last run", err)
	}

	if fc.flags.Print {
		formatter := ui.NewFormatter(fc.stdout, report.NewReporter(), fc.cfg.Verbose)
		for _, f := range record.Failures {
			formatter.PrintFailure(f)
		}
		return nil
	}
	var viewer ui.Viewer = ui.NewFailureViewer(st, fc.logger)
	return viewer.View(record)
}
