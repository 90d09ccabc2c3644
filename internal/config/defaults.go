package config

import "time"

const (
	// DefaultKind is the build variant used to locate the executable
	DefaultKind = "debug"
	// DefaultBuildDir is where build variants live
	DefaultBuildDir = "build"
	// DefaultBinaryName is the file name of the binary under test
	DefaultBinaryName = "mvm"
	// DefaultTestDir is the directory scanned for fixtures
	DefaultTestDir = "tests"
	// DefaultFixtureExt is the extension of fixture scripts
	DefaultFixtureExt = ".mvm"
	// DefaultExpectExt is the extension of golden files
	DefaultExpectExt = ".expect"
	// DefaultOutputDir is the directory holding stored run results
	DefaultOutputDir = ".mvmtest"
	// DefaultOutputFile is the JSON results file name
	DefaultOutputFile = "last-run.json"
	// DefaultJobs runs cases one at a time
	DefaultJobs = 1
	// DefaultCaseTimeout disables the per-case deadline
	DefaultCaseTimeout time.Duration = 0
	// DefaultStore is the results backend
	DefaultStore = StoreJSON
)

// Environment variables consulted when the matching flag is not set.
const (
	EnvExecutable = "MVMTEST_EXECUTABLE"
	EnvTestDir    = "MVMTEST_TESTDIR"
	EnvKind       = "MVMTEST_KIND"
	EnvTimeout    = "MVMTEST_TIMEOUT"
	EnvStore      = "MVMTEST_STORE"
	EnvStoreDSN   = "MVMTEST_STORE_DSN"
)

// EnvFile is loaded from the working directory before reading the environment
const EnvFile = ".env"
