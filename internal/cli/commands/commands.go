// Package commands wires the mvmtest subcommands.
package commands

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"mvmtest/internal/cli"
	"mvmtest/internal/config"
)

// session is the state shared by the commands of one invocation. cfg and
// logger are set once flags are parsed.
type session struct {
	flags  *cli.Flags
	cfg    config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func (s *session) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(s.flags.ToConfigFlags())
	if err != nil {
		return cli.WrapExitError(cli.ExitHarnessError, "invalid configuration", err)
	}
	s.cfg = cfg
	s.logger = cli.NewLogger(s.stderr, cfg.Verbose)
	return nil
}

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Failures *FailuresCommand
	session  *session
}

// NewCommands creates all commands writing to stdout and stderr
func NewCommands(flags *cli.Flags, stdout, stderr io.Writer) *Commands {
	s := &session{flags: flags, stdout: stdout, stderr: stderr}
	return &Commands{
		Run:      &RunCommand{session: s},
		List:     &ListCommand{session: s},
		Failures: &FailuresCommand{session: s},
		session:  s,
	}
}

// NewRootCommand builds the mvmtest command tree
func NewRootCommand(version string, stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mvmtest",
		Short: "Conformance tests for the mvm runtime",
		Long: `Run the mvm binary against a directory of fixture scripts and check its output,
either against the stored .expect files (golden mode) or by feeding the output
back in and requiring the same output again (round-trip mode, -d).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	var flags cli.Flags
	NewCommands(&flags, stdout, stderr).Register(rootCmd, &flags)
	return rootCmd
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Debug logging and full expected/actual output on failure")
	rootCmd.PersistentFlags().StringVar(&flags.Store, "store", "", "Where run results are kept: json, sqlite, mysql or none (env "+config.EnvStore+")")
	rootCmd.PersistentFlags().StringVar(&flags.StoreDSN, "store-dsn", "", "File path or DSN of the result store (env "+config.EnvStoreDSN+")")

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the conformance tests",
		Long:    "Discover fixtures, run the binary on each one and report a verdict per case",
		Args:    cobra.NoArgs,
		PreRunE: c.session.load,
		RunE:    c.Run.Execute,
	}
	addFixtureFlags(runCmd, flags)
	runCmd.Flags().StringVarP(&flags.Executable, "executable", "e", "", "Binary under test (default ./build/<kind>/mvm, env "+config.EnvExecutable+")")
	runCmd.Flags().StringVarP(&flags.Kind, "kind", "k", "", "Build variant used to locate the binary (default "+config.DefaultKind+", env "+config.EnvKind+")")
	runCmd.Flags().BoolVarP(&flags.DoubleRun, "doublerun", "d", false, "Round-trip mode: run the output again and require identical output")
	runCmd.Flags().StringVar(&flags.Capture, "capture", "", "Captured streams: stdout or merged (default merged for golden, stdout for round-trip)")
	runCmd.Flags().DurationVar(&flags.Timeout, "timeout", config.DefaultCaseTimeout, "Deadline for each case, 0 for none (env "+config.EnvTimeout+")")
	runCmd.Flags().DurationVar(&flags.RunTimeout, "run-timeout", 0, "Deadline for the whole run, 0 for none")
	runCmd.Flags().IntVarP(&flags.Jobs, "jobs", "j", config.DefaultJobs, "Number of cases run at the same time")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only the cases that did not pass in the last stored run")
	runCmd.Flags().StringVar(&flags.ScratchDir, "scratch-dir", "", "Directory for round-trip scratch files (default the system temp dir)")
	runCmd.Flags().BoolVar(&flags.KeepScratch, "keep-scratch", true, "Keep the scratch files of failing round-trip cases")
	runCmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false, "Never draw the progress bar")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List discovered test cases",
		Long:    "Scan the test directory and list the cases without running them; [F] marks failures of the last run",
		Args:    cobra.NoArgs,
		PreRunE: c.session.load,
		RunE:    c.List.Execute,
	}
	addFixtureFlags(listCmd, flags)
	rootCmd.AddCommand(listCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:     "failures",
		Short:   "View the failures of the last run",
		Long:    "Browse the failures of the last stored run in an interactive viewer",
		Args:    cobra.NoArgs,
		PreRunE: c.session.load,
		RunE:    c.Failures.Execute,
	}
	failuresCmd.Flags().BoolVar(&flags.Print, "print", false, "Print the failures instead of opening the viewer")
	rootCmd.AddCommand(failuresCmd)
}

func addFixtureFlags(cmd *cobra.Command, flags *cli.Flags) {
	cmd.Flags().StringVarP(&flags.TestDir, "testdir", "t", "", "Directory holding the fixtures (default ./"+config.DefaultTestDir+", env "+config.EnvTestDir+")")
	cmd.Flags().StringVar(&flags.FixtureExt, "ext", config.DefaultFixtureExt, "Extension of fixture files")
	cmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter cases by name pattern (supports wildcards, e.g. 'arith_*' or '*loop*')")
}
