// Package testsupport provides shared helpers for building test fixtures.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path (and any missing parent directories) with the given
// content, failing the test on error.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MkdirAll creates the directory and any missing parents, failing the test on
// error.
func MkdirAll(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("create directory %s: %v", path, err)
	}
}
