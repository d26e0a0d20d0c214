package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeCLIConfig writes a config pointing the cache and logs at temp
// directories so tests never touch the real home directory.
func writeCLIConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("[paths]\ncache_dir = %q\nlog_dir = %q\n",
		filepath.Join(dir, "cache"), filepath.Join(dir, "logs"))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("output missing %q:\n%s", needle, haystack)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	configPath := writeCLIConfig(t)

	out, err := runCLI(t, configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err = runCLI(t, configPath, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// Re-running without --overwrite refuses to clobber.
	if _, err := runCLI(t, configPath, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error for existing config file")
	}
}

func TestConfigShow(t *testing.T) {
	out, err := runCLI(t, writeCLIConfig(t), "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "hash.algorithm")
	requireContains(t, out, "md5")
}

func TestScanCommand(t *testing.T) {
	configPath := writeCLIConfig(t)
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		name := filepath.Join(dir, fmt.Sprintf("photo%d.jpg", i))
		if err := os.WriteFile(name, []byte(fmt.Sprintf("img-%d", i)), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, configPath, "scan", dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Found 3 images")
	requireContains(t, out, "JPG")
}

func TestDupesCommandEndToEnd(t *testing.T) {
	configPath := writeCLIConfig(t)
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.jpg", "sub/c.jpg"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("same-bytes"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "unique.png"), []byte("different"), 0o644); err != nil {
		t.Fatal(err)
	}

	reportPath := filepath.Join(t.TempDir(), "report.txt")
	out, err := runCLI(t, configPath, "dupes", dir, "--paths", "--export", reportPath)
	if err != nil {
		t.Fatalf("dupes: %v", err)
	}
	requireContains(t, out, "1 duplicate groups")
	requireContains(t, out, "a.jpg")
	requireContains(t, out, filepath.Join(dir, "sub", "c.jpg"))
	requireContains(t, out, "Report written to")

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	requireContains(t, string(data), "Duplicate Groups: 1")

	// Second run is served from the cache.
	out, err = runCLI(t, configPath, "dupes", dir)
	if err != nil {
		t.Fatalf("dupes rerun: %v", err)
	}
	requireContains(t, out, "4 cached")
}

func TestDupesCommandNoFiles(t *testing.T) {
	out, err := runCLI(t, writeCLIConfig(t), "dupes", t.TempDir())
	if err != nil {
		t.Fatalf("dupes: %v", err)
	}
	requireContains(t, out, "No supported image files found")
}

func TestCacheLifecycleCommands(t *testing.T) {
	configPath := writeCLIConfig(t)
	dir := t.TempDir()
	keep := filepath.Join(dir, "keep.jpg")
	gone := filepath.Join(dir, "gone.jpg")
	for _, path := range []string{keep, gone} {
		if err := os.WriteFile(path, []byte(path), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := runCLI(t, configPath, "dupes", dir); err != nil {
		t.Fatalf("dupes: %v", err)
	}

	out, err := runCLI(t, configPath, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Entries:  2")

	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}
	out, err = runCLI(t, configPath, "cache", "purge")
	if err != nil {
		t.Fatalf("cache purge: %v", err)
	}
	requireContains(t, out, "Removed 1 stale entries")

	out, err = runCLI(t, configPath, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 1 entries")
}

func TestFileCommands(t *testing.T) {
	configPath := writeCLIConfig(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "old.jpg")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, configPath, "file", "rename", path, "new.jpg")
	if err != nil {
		t.Fatalf("file rename: %v", err)
	}
	requireContains(t, out, "Renamed to")

	renamed := filepath.Join(dir, "new.jpg")
	out, err = runCLI(t, configPath, "file", "delete", renamed)
	if err != nil {
		t.Fatalf("file delete: %v", err)
	}
	requireContains(t, out, "Deleted")

	if _, err := os.Stat(renamed); !os.IsNotExist(err) {
		t.Fatalf("file should be gone: %v", err)
	}
}

func TestUnknownAlgorithmFlag(t *testing.T) {
	if _, err := runCLI(t, writeCLIConfig(t), "dupes", t.TempDir(), "--algorithm", "crc32"); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}
