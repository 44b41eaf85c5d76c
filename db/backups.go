// ABOUTME: Local history of backup attempts
// ABOUTME: Records every backup run so schedules can tell when the next one is due
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/remotearmz/commandcenter/models"
)

type BackupRunRepository struct {
	db *sql.DB
}

func NewBackupRunRepository(db *sql.DB) *BackupRunRepository {
	return &BackupRunRepository{db: db}
}

const backupRunColumns = `id, provider, remote_id, name, size, status, error, created_at`

func (r *BackupRunRepository) Record(ctx context.Context, run *models.BackupRun) error {
	if run.ID == "" {
		return fmt.Errorf("backup run id is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now()
	}
	run.CreatedAt = normalizeMillis(run.CreatedAt)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO backup_runs (`+backupRunColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			remote_id = excluded.remote_id,
			size = excluded.size,
			status = excluded.status,
			error = excluded.error
	`, run.ID, run.Provider, run.RemoteID, run.Name, run.Size, string(run.Status), run.Error, toMillis(run.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to record backup run: %w", err)
	}
	return nil
}

// LastSuccessful returns the newest completed run for provider, or nil.
func (r *BackupRunRepository) LastSuccessful(ctx context.Context, provider string) (*models.BackupRun, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+backupRunColumns+` FROM backup_runs
		WHERE provider = ? AND status = ?
		ORDER BY created_at DESC LIMIT 1
	`, provider, string(models.BackupCompleted))
	run, err := scanBackupRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (r *BackupRunRepository) List(ctx context.Context, limit int) ([]models.BackupRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+backupRunColumns+` FROM backup_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list backup runs: %w", err)
	}
	defer rows.Close()

	var runs []models.BackupRun
	for rows.Next() {
		run, err := scanBackupRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanBackupRun(s rowScanner) (*models.BackupRun, error) {
	var run models.BackupRun
	var status string
	var createdAt int64
	if err := s.Scan(&run.ID, &run.Provider, &run.RemoteID, &run.Name, &run.Size, &status, &run.Error, &createdAt); err != nil {
		return nil, err
	}
	run.Status = models.BackupStatus(status)
	run.CreatedAt = fromMillis(createdAt)
	return &run, nil
}
