package cli

import (
	"time"

	"mvmtest/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	Executable  string
	Kind        string
	TestDir     string
	FixtureExt  string
	DoubleRun   bool
	Verbose     bool
	Capture     string
	Timeout     time.Duration
	RunTimeout  time.Duration
	Jobs        int
	NameFilter  string
	OnlyFailed  bool
	ScratchDir  string
	KeepScratch bool
	NoProgress  bool
	Store       string
	StoreDSN    string
	Print       bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Executable:  f.Executable,
		Kind:        f.Kind,
		TestDir:     f.TestDir,
		FixtureExt:  f.FixtureExt,
		DoubleRun:   f.DoubleRun,
		Verbose:     f.Verbose,
		Capture:     f.Capture,
		Timeout:     f.Timeout,
		RunTimeout:  f.RunTimeout,
		Jobs:        f.Jobs,
		NameFilter:  f.NameFilter,
		OnlyFailed:  f.OnlyFailed,
		ScratchDir:  f.ScratchDir,
		KeepScratch: f.KeepScratch,
		NoProgress:  f.NoProgress,
		Store:       f.Store,
		StoreDSN:    f.StoreDSN,
	}
}
