// ABOUTME: Target repository with progress history and categories
// ABOUTME: Tracks goal progress, completion, and overdue detection by calendar date
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/remotearmz/commandcenter/models"
)

type TargetRepository struct {
	db *sql.DB
}

func NewTargetRepository(db *sql.DB) *TargetRepository {
	return &TargetRepository{db: db}
}

type TargetFilter struct {
	Type     models.TargetType
	Status   models.TargetStatus
	Category string
}

const targetColumns = `id, title, target_type, start_date, end_date, target_value, current_progress, unit,
	description, status, category, priority, icon_name, created_at, updated_at`

func formatDate(t time.Time) string {
	return t.Format(models.DateLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(models.DateLayout, s, time.Local)
}

// dateOnly drops the clock part of t, keeping its calendar date in local time.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func (r *TargetRepository) Create(ctx context.Context, t *models.Target) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	ts := now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = ts
	}
	t.UpdatedAt = ts
	if t.Status == "" {
		t.Status = models.TargetPending
	}
	if t.Priority == 0 {
		t.Priority = 1
	}
	return r.save(ctx, t)
}

func (r *TargetRepository) Update(ctx context.Context, t *models.Target) error {
	t.UpdatedAt = now()
	return r.save(ctx, t)
}

func (r *TargetRepository) save(ctx context.Context, t *models.Target) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("target title is required")
	}
	if !t.Type.Valid() {
		return fmt.Errorf("invalid target type %q", t.Type)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("invalid target status %q", t.Status)
	}
	t.StartDate = dateOnly(t.StartDate)
	t.EndDate = dateOnly(t.EndDate)
	if t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("target end date %s is before start date %s", formatDate(t.EndDate), formatDate(t.StartDate))
	}
	t.CreatedAt = normalizeMillis(t.CreatedAt)
	t.UpdatedAt = normalizeMillis(t.UpdatedAt)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO targets (`+targetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			target_type = excluded.target_type,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			target_value = excluded.target_value,
			current_progress = excluded.current_progress,
			unit = excluded.unit,
			description = excluded.description,
			status = excluded.status,
			category = excluded.category,
			priority = excluded.priority,
			icon_name = excluded.icon_name,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, t.ID.String(), t.Title, string(t.Type), formatDate(t.StartDate), formatDate(t.EndDate), t.TargetValue,
		t.CurrentProgress, t.Unit, t.Description, string(t.Status), t.Category, t.Priority, t.IconName,
		toMillis(t.CreatedAt), toMillis(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save target: %w", err)
	}
	return nil
}

func (r *TargetRepository) Get(ctx context.Context, id uuid.UUID) (*models.Target, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+targetColumns+` FROM targets WHERE id = ?`, id.String())
	t, err := scanTarget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the target and its progress history.
func (r *TargetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM target_progress WHERE target_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete target progress: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM targets WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete target: %w", err)
	}
	return tx.Commit()
}

func (r *TargetRepository) List(ctx context.Context, filter TargetFilter) ([]models.Target, error) {
	var where []string
	var args []any
	if filter.Type != "" {
		where = append(where, "target_type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}

	query := `SELECT ` + targetColumns + ` FROM targets`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY end_date, priority DESC"
	return r.query(ctx, query, args...)
}

// Overdue returns unfinished targets whose end date is before today.
func (r *TargetRepository) Overdue(ctx context.Context, today time.Time) ([]models.Target, error) {
	return r.query(ctx,
		`SELECT `+targetColumns+` FROM targets WHERE end_date < ? AND status != ? ORDER BY end_date`,
		formatDate(today), string(models.TargetCompleted))
}

// MarkOverdue flags every unfinished target past its end date as overdue and
// returns the number of targets changed.
func (r *TargetRepository) MarkOverdue(ctx context.Context, today time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE targets SET status = ?, updated_at = ? WHERE end_date < ? AND status IN (?, ?)`,
		string(models.TargetOverdue), toMillis(now()), formatDate(today),
		string(models.TargetPending), string(models.TargetInProgress))
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue targets: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// RecordProgress stores a progress entry and sets the target's current
// progress to value, completing the target once value reaches its goal.
func (r *TargetRepository) RecordProgress(ctx context.Context, targetID uuid.UUID, date time.Time, value float64, notes string) (*models.Target, error) {
	t, err := r.Get(ctx, targetID)
	if err != nil || t == nil {
		return nil, err
	}

	entry := models.TargetProgress{
		ID:        uuid.New(),
		TargetID:  targetID,
		Date:      dateOnly(date),
		Progress:  value,
		Notes:     notes,
		CreatedAt: now(),
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO target_progress (id, target_id, date, progress, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID.String(), targetID.String(), formatDate(entry.Date), entry.Progress, entry.Notes, toMillis(entry.CreatedAt)); err != nil {
		return nil, fmt.Errorf("failed to record progress: %w", err)
	}

	t.CurrentProgress = value
	switch {
	case t.TargetValue > 0 && value >= t.TargetValue:
		t.Status = models.TargetCompleted
	case value > 0 && t.Status == models.TargetPending:
		t.Status = models.TargetInProgress
	}
	if err := r.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ProgressHistory returns progress entries for a target, oldest first.
func (r *TargetRepository) ProgressHistory(ctx context.Context, targetID uuid.UUID) ([]models.TargetProgress, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, target_id, date, progress, notes, created_at
		FROM target_progress WHERE target_id = ?
		ORDER BY date, created_at
	`, targetID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var history []models.TargetProgress
	for rows.Next() {
		var p models.TargetProgress
		var id, tid, date string
		var createdAt int64
		if err := rows.Scan(&id, &tid, &date, &p.Progress, &p.Notes, &createdAt); err != nil {
			return nil, err
		}
		p.ID, _ = uuid.Parse(id)
		p.TargetID, _ = uuid.Parse(tid)
		if p.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("invalid progress date %q: %w", date, err)
		}
		p.CreatedAt = fromMillis(createdAt)
		history = append(history, p)
	}
	return history, rows.Err()
}

func (r *TargetRepository) SaveCategory(ctx context.Context, c *models.TargetCategory) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO target_categories (id, name, description, icon_name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			icon_name = excluded.icon_name
	`, c.ID.String(), c.Name, c.Description, c.IconName)
	if err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

func (r *TargetRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM target_categories WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (r *TargetRepository) Categories(ctx context.Context) ([]models.TargetCategory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, icon_name FROM target_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.TargetCategory
	for rows.Next() {
		var c models.TargetCategory
		var id string
		if err := rows.Scan(&id, &c.Name, &c.Description, &c.IconName); err != nil {
			return nil, err
		}
		c.ID, _ = uuid.Parse(id)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *TargetRepository) query(ctx context.Context, query string, args ...any) ([]models.Target, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query targets: %w", err)
	}
	defer rows.Close()

	var targets []models.Target
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, err
		}
		targets = append(targets, *t)
	}
	return targets, rows.Err()
}

func scanTarget(s rowScanner) (*models.Target, error) {
	var t models.Target
	var id, targetType, startDate, endDate, status string
	var createdAt, updatedAt int64
	if err := s.Scan(&id, &t.Title, &targetType, &startDate, &endDate, &t.TargetValue, &t.CurrentProgress,
		&t.Unit, &t.Description, &status, &t.Category, &t.Priority, &t.IconName, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if t.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid target id %q: %w", id, err)
	}
	if t.StartDate, err = parseDate(startDate); err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	if t.EndDate, err = parseDate(endDate); err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	t.Type = models.TargetType(targetType)
	t.Status = models.TargetStatus(status)
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return &t, nil
}
