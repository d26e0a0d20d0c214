package imagefile_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"picdup/internal/imagefile"
)

func TestStat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shot.JPG")
	if err := os.WriteFile(path, []byte("abcdef"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	file, err := imagefile.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if file.Path != path {
		t.Errorf("Path = %q, want %q", file.Path, path)
	}
	if file.Size != 6 {
		t.Errorf("Size = %d, want 6", file.Size)
	}
	if file.Format != "jpg" {
		t.Errorf("Format = %q, want jpg", file.Format)
	}
	if file.Modified.IsZero() || file.Created.IsZero() {
		t.Errorf("timestamps not populated: %+v", file)
	}
	if time.Since(file.Modified) > time.Minute {
		t.Errorf("Modified suspiciously old: %v", file.Modified)
	}
}

func TestStatMissingFile(t *testing.T) {
	if _, err := imagefile.Stat(filepath.Join(t.TempDir(), "gone.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
