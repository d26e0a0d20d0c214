package hashcache

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"picdup/internal/imagefile"
	"picdup/internal/logging"
)

// lookupChunkSize bounds the number of bound parameters per IN clause; SQLite
// caps them at 999.
const lookupChunkSize = 900

// mtimeTolerance absorbs filesystem timestamp rounding when comparing stored
// and current modification times.
const mtimeTolerance = 1e-3

// Cache maps (path, size, mtime, algorithm) to a hex digest, backed by a
// single SQLite file.
type Cache struct {
	db     *sql.DB
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// Open initializes or connects to the cache database at path, taking an
// exclusive flock on a sidecar file so only one process writes at a time.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock hash cache: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("hash cache %s is in use by another process", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &Cache{db: db, path: path, lock: lock, logger: logger}
	if err := cache.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return cache, nil
}

// Path returns the database file location.
func (c *Cache) Path() string {
	return c.path
}

// Close closes the database connection and releases the process lock.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	if c.lock != nil {
		if unlockErr := c.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

type cachedRow struct {
	size   int64
	mtime  float64
	digest string
}

// LookupBatch partitions files into cache hits and misses for the given
// algorithm. A hit requires the file's current size to equal the stored size
// and its current modification time to match within one millisecond; stat
// failures are treated as misses. Queries are chunked to respect SQLite's
// bound-parameter limit.
func (c *Cache) LookupBatch(ctx context.Context, files []imagefile.File, algorithm string) (map[string]string, []imagefile.File, error) {
	hits := make(map[string]string)
	var misses []imagefile.File
	if len(files) == 0 {
		return hits, misses, nil
	}

	paths := make([]string, len(files))
	for i, file := range files {
		paths[i] = file.Path
	}

	cached := make(map[string]cachedRow)
	for start := 0; start < len(paths); start += lookupChunkSize {
		end := min(start+lookupChunkSize, len(paths))
		chunk := paths[start:end]

		args := make([]any, 0, len(chunk)+1)
		for _, p := range chunk {
			args = append(args, p)
		}
		args = append(args, algorithm)

		query := `SELECT file_path, file_size, mtime, hash_value FROM file_hashes
            WHERE file_path IN (` + makePlaceholders(len(chunk)) + `) AND algorithm = ?`
		rows, err := c.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, nil, fmt.Errorf("lookup cached hashes: %w", err)
		}
		for rows.Next() {
			var path string
			var row cachedRow
			if err := rows.Scan(&path, &row.size, &row.mtime, &row.digest); err != nil {
				rows.Close()
				return nil, nil, fmt.Errorf("scan cached hash: %w", err)
			}
			cached[path] = row
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("iterate cached hashes: %w", err)
		}
		rows.Close()
	}

	for _, file := range files {
		info, err := os.Stat(file.Path)
		if err != nil {
			misses = append(misses, file)
			continue
		}
		row, ok := cached[file.Path]
		if ok && row.size == info.Size() && math.Abs(row.mtime-unixSeconds(info.ModTime())) < mtimeTolerance {
			hits[file.Path] = row.digest
			continue
		}
		misses = append(misses, file)
	}
	return hits, misses, nil
}

// StoreBatch upserts freshly computed digests. Each file is re-stat'ed for
// its current modification time; files that disappeared since hashing are
// skipped silently.
func (c *Cache) StoreBatch(ctx context.Context, results map[string]string, files []imagefile.File, algorithm string) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin store tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO file_hashes
        (file_path, file_size, mtime, algorithm, hash_value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare store: %w", err)
	}
	defer stmt.Close()

	stored := 0
	for _, file := range files {
		digest, ok := results[file.Path]
		if !ok {
			continue
		}
		info, err := os.Stat(file.Path)
		if err != nil {
			continue
		}
		if _, err := stmt.ExecContext(ctx, file.Path, info.Size(), unixSeconds(info.ModTime()), algorithm, digest); err != nil {
			return fmt.Errorf("store hash for %s: %w", file.Path, err)
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit store: %w", err)
	}
	c.logger.Debug("stored hashes", logging.Int("count", stored), logging.String("algorithm", algorithm))
	return nil
}

// PurgeMissing deletes rows whose path no longer exists on disk and returns
// the number removed.
func (c *Cache) PurgeMissing(ctx context.Context) (int64, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT rowid, file_path FROM file_hashes")
	if err != nil {
		return 0, fmt.Errorf("list cache entries: %w", err)
	}

	var stale []int64
	for rows.Next() {
		var rowid int64
		var path string
		if err := rows.Scan(&rowid, &path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan cache entry: %w", err)
		}
		if _, err := os.Stat(path); err != nil {
			stale = append(stale, rowid)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("iterate cache entries: %w", err)
	}
	rows.Close()

	for start := 0; start < len(stale); start += lookupChunkSize {
		end := min(start+lookupChunkSize, len(stale))
		chunk := stale[start:end]
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		query := "DELETE FROM file_hashes WHERE rowid IN (" + makePlaceholders(len(chunk)) + ")"
		if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("purge stale entries: %w", err)
		}
	}
	return int64(len(stale)), nil
}

// EntryCount returns the total number of cached rows.
func (c *Cache) EntryCount(ctx context.Context) (int64, error) {
	var count int64
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM file_hashes").Scan(&count); err != nil {
		return 0, fmt.Errorf("count cache entries: %w", err)
	}
	return count, nil
}

// Clear removes all cached rows and returns the number deleted.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM file_hashes")
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return res.RowsAffected()
}

// unixSeconds converts a time to float seconds with sub-second precision,
// matching the stored mtime column.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
