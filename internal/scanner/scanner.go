package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"picdup/internal/imagefile"
	"picdup/internal/imageformat"
	"picdup/internal/logging"
)

// ErrInvalidPath indicates the scan root does not exist or is not a directory.
var ErrInvalidPath = errors.New("invalid scan path")

// progressInterval controls how often the progress callback fires, counted in
// found files.
const progressInterval = 10

// Option customizes scanner construction.
type Option func(*Scanner)

// WithFoundCallback registers a callback invoked for every record as it is
// discovered. The callback runs on the scanning goroutine.
func WithFoundCallback(fn func(imagefile.File)) Option {
	return func(s *Scanner) { s.onFound = fn }
}

// WithProgressCallback registers a callback invoked every few found files
// with the running scanned/found counters.
func WithProgressCallback(fn func(scanned, found int)) Option {
	return func(s *Scanner) { s.onProgress = fn }
}

// Scanner enumerates supported image files under a root directory. A Scanner
// is not safe for concurrent scans; create one per operation.
type Scanner struct {
	logger     *slog.Logger
	onFound    func(imagefile.File)
	onProgress func(scanned, found int)
}

// New constructs a Scanner.
func New(logger *slog.Logger, opts ...Option) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Scanner{logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result pairs the discovered records with the final statistics snapshot.
type Result struct {
	Files []imagefile.File
	Stats Stats
}

// Scan enumerates root and returns records for every supported image file.
// With recursive set it visits all descendant directories; otherwise only
// root's immediate entries. Per-file errors are counted in the stats and do
// not abort the traversal. Cancellation of ctx aborts with the context error.
func (s *Scanner) Scan(ctx context.Context, root string, recursive bool) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidPath, root)
	}

	result := &Result{Stats: newStats()}
	if recursive {
		err = s.walk(ctx, root, result)
	} else {
		err = s.listDir(ctx, root, result)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("scan finished",
		logging.String("root", root),
		logging.Bool("recursive", recursive),
		logging.Int("scanned", result.Stats.Scanned),
		logging.Int("found", result.Stats.Found),
		logging.Int("errors", result.Stats.Errors))
	return result, nil
}

func (s *Scanner) walk(ctx context.Context, root string, result *Result) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			result.Stats.recordError(err)
			s.logger.Debug("skipping unreadable entry", logging.String("path", path), logging.Error(err))
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		s.visitFile(path, entry, result)
		return nil
	})
}

func (s *Scanner) listDir(ctx context.Context, root string, result *Result) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		// Unreadable root contents are counted, not fatal: the scan simply
		// yields zero records.
		result.Stats.recordError(err)
		s.logger.Debug("skipping unreadable directory", logging.String("path", root), logging.Error(err))
		return nil
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !entry.Type().IsRegular() {
			continue
		}
		s.visitFile(filepath.Join(root, entry.Name()), entry, result)
	}
	return nil
}

func (s *Scanner) visitFile(path string, entry fs.DirEntry, result *Result) {
	result.Stats.Scanned++
	if !imageformat.IsSupported(path) {
		return
	}

	info, err := entry.Info()
	if err != nil {
		result.Stats.recordError(err)
		s.logger.Debug("stat failed", logging.String("path", path), logging.Error(err))
		return
	}

	file := imagefile.FromInfo(path, info)
	result.Stats.recordFound(file)
	result.Files = append(result.Files, file)

	if s.onFound != nil {
		s.onFound(file)
	}
	if s.onProgress != nil && result.Stats.Found%progressInterval == 0 {
		s.onProgress(result.Stats.Scanned, result.Stats.Found)
	}
}
