package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mvmtest/internal/cli"
	"mvmtest/internal/cli/commands"
)

var version = "dev"

func main() {
	// Interrupting the run kills the case in flight through its context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := commands.NewRootCommand(version, os.Stdout, os.Stderr)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		// Failing cases were already reported case by case
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || exitErr.Code != cli.ExitFailure {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
