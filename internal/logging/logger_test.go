package logging_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"picdup/internal/logging"
)

func newTestLogger(t *testing.T, format string) (*slog.Logger, *os.File) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{Level: "debug", Format: format, Outputs: []string{path}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log output: %v", err)
	}
	t.Cleanup(func() { file.Close() })
	return logger, file
}

func TestConsoleFormat(t *testing.T) {
	logger, file := newTestLogger(t, "console")
	logger.Info("scan finished", logging.Int("found", 3), logging.String("root", "/tmp/pics dir"))

	data, err := io.ReadAll(file)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	line := strings.TrimSpace(string(data))
	if !strings.Contains(line, "INFO scan finished") {
		t.Errorf("missing level/message: %q", line)
	}
	if !strings.Contains(line, "found=3") {
		t.Errorf("missing int attr: %q", line)
	}
	if !strings.Contains(line, `root="/tmp/pics dir"`) {
		t.Errorf("expected quoted value with spaces: %q", line)
	}
}

func TestJSONFormat(t *testing.T) {
	logger, file := newTestLogger(t, "json")
	logger.Warn("cache reset", logging.Int64("dropped", 12))

	data, err := io.ReadAll(file)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &payload); err != nil {
		t.Fatalf("invalid JSON output %q: %v", data, err)
	}
	if payload["msg"] != "cache reset" {
		t.Errorf("msg = %v", payload["msg"])
	}
	if payload["level"] != "warn" {
		t.Errorf("level = %v", payload["level"])
	}
	if payload["dropped"] != float64(12) {
		t.Errorf("dropped = %v", payload["dropped"])
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		" warn": slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"junk":  slog.LevelInfo,
	}
	for input, want := range cases {
		if got := logging.ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("nothing to see", logging.Error(io.EOF))
}
