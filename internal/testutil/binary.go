// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// FakeBinary writes an executable /bin/sh script standing in for the binary
// under test and returns its path. The fixture path arrives as $1.
func FakeBinary(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake binaries are shell scripts")
	}

	path := filepath.Join(t.TempDir(), "mvm")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write fake binary: %v", err)
	}
	return path
}

// WriteFixture writes content to dir/name and returns the path.
func WriteFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

// Identity is a binary that prints its input file unchanged.
const Identity = `exec cat "$1"`

// Prefixer is a binary that is not idempotent: every run adds a comment marker.
const Prefixer = `exec sed 's/^/# /' "$1"`
