// ABOUTME: Consistent database snapshots for backup and restore
// ABOUTME: Uses VACUUM INTO for export and an atomic rename for restore
package db

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var sqliteHeader = []byte("SQLite format 3\x00")

// Snapshot returns a transactionally consistent copy of the database file.
func Snapshot(ctx context.Context, database *sql.DB) ([]byte, error) {
	dir, err := os.MkdirTemp("", "commandcenter-snapshot-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, "snapshot.db")
	quoted := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	if _, err := database.ExecContext(ctx, "VACUUM INTO "+quoted); err != nil {
		return nil, fmt.Errorf("failed to snapshot database: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// ValidateSnapshot checks that data is a SQLite database this build can open.
func ValidateSnapshot(ctx context.Context, data []byte) error {
	if !bytes.HasPrefix(data, sqliteHeader) {
		return fmt.Errorf("snapshot is not a SQLite database")
	}

	dir, err := os.MkdirTemp("", "commandcenter-validate-*")
	if err != nil {
		return fmt.Errorf("failed to create validation dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, "restore.db")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	database, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = database.Close() }()

	ok, err := tableExists(ctx, database, "schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to inspect snapshot: %w", err)
	}
	if !ok {
		return fmt.Errorf("snapshot has no schema_migrations table")
	}

	var version sql.NullInt64
	if err := database.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version); err != nil {
		return fmt.Errorf("failed to read snapshot schema version: %w", err)
	}
	if int(version.Int64) > LatestSchemaVersion() {
		return fmt.Errorf("snapshot schema version %d is newer than supported version %d", version.Int64, LatestSchemaVersion())
	}
	return nil
}

// RestoreSnapshot replaces the database file at path with data. An existing
// file is kept beside it as <path>.pre-restore-<timestamp>; its path is
// returned (empty when there was nothing to keep). The database must not be
// open while restoring.
func RestoreSnapshot(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".restore-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write restore file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to sync restore file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	var previous string
	if _, err := os.Stat(path); err == nil {
		previous = fmt.Sprintf("%s.pre-restore-%s", path, time.Now().Format("20060102-150405"))
		if err := os.Rename(path, previous); err != nil {
			return "", fmt.Errorf("failed to keep previous database: %w", err)
		}
	}
	// Stale WAL files would be replayed over the restored database.
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return previous, fmt.Errorf("failed to move restored database into place: %w", err)
	}
	return previous, nil
}
