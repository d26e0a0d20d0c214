package hashcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// schemaVersion is the current cache schema version. Bump it when the layout
// changes; stale caches are wiped on open because hashes are cheap to rebuild.
const schemaVersion = 1

const createHashesSQL = `
CREATE TABLE IF NOT EXISTS file_hashes (
    file_path  TEXT    NOT NULL,
    file_size  INTEGER NOT NULL,
    mtime      REAL    NOT NULL,
    algorithm  TEXT    NOT NULL,
    hash_value TEXT    NOT NULL,
    PRIMARY KEY (file_path, algorithm)
)`

const createVersionSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
)`

func (c *Cache) initSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, createVersionSQL); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var version int
	haveVersion := true
	err := c.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		haveVersion = false
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	}

	if haveVersion && version == schemaVersion {
		if _, err := c.db.ExecContext(ctx, createHashesSQL); err != nil {
			return fmt.Errorf("create file_hashes table: %w", err)
		}
		return nil
	}

	if haveVersion {
		c.logger.Warn("hash cache schema changed, resetting cache",
			"stored_version", version, "expected_version", schemaVersion)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		"DROP TABLE IF EXISTS file_hashes",
		"DELETE FROM schema_version",
		createHashesSQL,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("reset cache schema: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
