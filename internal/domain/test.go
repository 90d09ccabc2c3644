package domain

// TestCase is one fixture discovered in the test directory.
type TestCase struct {
	Name            string // File name without the fixture extension
	InputPath       string // Path to the fixture script
	ExpectationPath string // Path to the golden file, empty when none exists
}

// HasExpectation reports whether a golden file was found for the case.
func (tc TestCase) HasExpectation() bool {
	return tc.ExpectationPath != ""
}
