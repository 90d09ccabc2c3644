package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mvmtest/internal/domain"
)

// Scanner enumerates fixture scripts in a single directory
type Scanner struct {
	fixtureExt string
	expectExt  string
}

// NewScanner creates a Scanner for the given fixture and expectation extensions
func NewScanner(fixtureExt, expectExt string) *Scanner {
	return &Scanner{fixtureExt: fixtureExt, expectExt: expectExt}
}

// Scan returns the test cases found directly in dir, ordered by file name.
// Hidden files and subdirectories are skipped.
func (s *Scanner) Scan(dir string) ([]domain.TestCase, error) {
	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &domain.DiscoveryError{Dir: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &domain.DiscoveryError{Dir: dir, Err: fmt.Errorf("not a directory")}
	}

	// ReadDir sorts entries by file name
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.DiscoveryError{Dir: dir, Err: err}
	}

	cases := make([]domain.TestCase, 0, len(entries))
	for _, entry := range entries {
		name, ok := s.caseName(entry.Name())
		if !ok {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if !isRegularFile(path, entry) {
			continue
		}

		tc := domain.TestCase{Name: name, InputPath: path}
		expectPath := filepath.Join(dir, name+s.expectExt)
		if fi, err := os.Stat(expectPath); err == nil && fi.Mode().IsRegular() {
			tc.ExpectationPath = expectPath
		}
		cases = append(cases, tc)
	}

	return cases, nil
}

// caseName strips the fixture extension from a file name
func (s *Scanner) caseName(fileName string) (string, bool) {
	if strings.HasPrefix(fileName, ".") {
		return "", false
	}
	if !strings.HasSuffix(fileName, s.fixtureExt) {
		return "", false
	}
	name := strings.TrimSuffix(fileName, s.fixtureExt)
	return name, name != ""
}

// isRegularFile follows symlinks so linked fixtures are picked up
func isRegularFile(path string, entry os.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
