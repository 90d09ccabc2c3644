package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Strategy selects how outputs are judged
type Strategy string

const (
	StrategyGolden    Strategy = "golden"
	StrategyRoundTrip Strategy = "roundtrip"
)

// CaptureMode selects which streams of the binary are captured
type CaptureMode string

const (
	CaptureStdout CaptureMode = "stdout"
	CaptureMerged CaptureMode = "merged"
)

// Result store backends
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
	StoreMySQL  = "mysql"
	StoreNone   = "none"
)

// Config is the resolved configuration of one invocation. It is built once by
// Load and passed by value; nothing modifies it afterwards.
type Config struct {
	// Binary under test
	Executable string
	Kind       string

	// Fixtures
	TestDir    string
	FixtureExt string
	ExpectExt  string
	NameFilter string
	OnlyFailed bool

	// Comparison
	Strategy    Strategy
	Capture     CaptureMode
	ScratchDir  string
	KeepScratch bool

	// Execution
	Jobs        int
	CaseTimeout time.Duration
	RunTimeout  time.Duration

	// Output
	Verbose  bool
	Progress bool

	// Result storage
	Store    string
	StoreDSN string
}

// Flags holds the raw command-line values. Empty strings and zero durations
// mean "not given" so the environment can fill them in.
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
}

// Load reads the .env file if present and resolves flags against the process environment.
func Load(flags Flags) (Config, error) {
	// A missing .env is the normal case; variables already set win over the file.
	_ = godotenv.Load(EnvFile)
	return Resolve(flags, os.Getenv)
}

// Resolve builds a Config from flags, falling back to getenv and then to defaults.
func Resolve(flags Flags, getenv func(string) string) (Config, error) {
	cfg := Config{
		Kind:        firstNonEmpty(flags.Kind, getenv(EnvKind), DefaultKind),
		TestDir:     firstNonEmpty(flags.TestDir, getenv(EnvTestDir), DefaultTestDir),
		FixtureExt:  firstNonEmpty(flags.FixtureExt, DefaultFixtureExt),
		ExpectExt:   DefaultExpectExt,
		NameFilter:  flags.NameFilter,
		OnlyFailed:  flags.OnlyFailed,
		Strategy:    StrategyGolden,
		ScratchDir:  firstNonEmpty(flags.ScratchDir, os.TempDir()),
		KeepScratch: flags.KeepScratch,
		Jobs:        flags.Jobs,
		CaseTimeout: flags.Timeout,
		RunTimeout:  flags.RunTimeout,
		Verbose:     flags.Verbose,
		Progress:    !flags.NoProgress,
		Store:       strings.ToLower(firstNonEmpty(flags.Store, getenv(EnvStore), DefaultStore)),
		StoreDSN:    firstNonEmpty(flags.StoreDSN, getenv(EnvStoreDSN)),
	}

	cfg.Executable = firstNonEmpty(flags.Executable, getenv(EnvExecutable))
	if cfg.Executable == "" {
		cfg.Executable = filepath.Join(".", DefaultBuildDir, cfg.Kind, DefaultBinaryName)
	}

	if flags.DoubleRun {
		cfg.Strategy = StrategyRoundTrip
	}

	if flags.Capture != "" {
		cfg.Capture = CaptureMode(strings.ToLower(flags.Capture))
	} else {
		cfg.Capture = DefaultCapture(cfg.Strategy)
	}

	if cfg.CaseTimeout == 0 {
		if raw := getenv(EnvTimeout); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s %q: %w", EnvTimeout, raw, err)
			}
			cfg.CaseTimeout = d
		}
	}

	if cfg.Jobs <= 0 {
		cfg.Jobs = DefaultJobs
	}

	if !strings.HasPrefix(cfg.FixtureExt, ".") {
		cfg.FixtureExt = "." + cfg.FixtureExt
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultCapture returns the capture mode a strategy uses unless overridden.
// Golden files record everything the binary prints, diagnostics included; a
// round trip feeds back only the program text written to stdout.
func DefaultCapture(s Strategy) CaptureMode {
	if s == StrategyRoundTrip {
		return CaptureStdout
	}
	return CaptureMerged
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	switch c.Capture {
	case CaptureStdout, CaptureMerged:
	default:
		return fmt.Errorf("invalid capture mode %q: must be %q or %q", c.Capture, CaptureStdout, CaptureMerged)
	}
	switch c.Store {
	case StoreJSON, StoreSQLite, StoreMySQL, StoreNone:
	default:
		return fmt.Errorf("invalid store %q: must be one of json, sqlite, mysql, none", c.Store)
	}
	if c.Store == StoreMySQL && c.StoreDSN == "" {
		return fmt.Errorf("store %q requires a DSN (--store-dsn or %s)", StoreMySQL, EnvStoreDSN)
	}
	if c.CaseTimeout < 0 || c.RunTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.FixtureExt == c.ExpectExt {
		return fmt.Errorf("fixture extension %q collides with the expectation extension", c.FixtureExt)
	}
	return nil
}

// GetOutputPath returns the JSON results path. A DSN given for the json store
// overrides the default location.
func (c Config) GetOutputPath() string {
	p := filepath.Join(DefaultOutputDir, DefaultOutputFile)
	if c.Store == StoreJSON && c.StoreDSN != "" {
		p = c.StoreDSN
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetSQLitePath returns the database file used by the sqlite store.
func (c Config) GetSQLitePath() string {
	if c.StoreDSN != "" {
		return c.StoreDSN
	}
	return filepath.Join(DefaultOutputDir, "history.db")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
