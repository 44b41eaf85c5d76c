// ABOUTME: Outreach repository backed by the outreach table
// ABOUTME: Provides CRUD plus client, lead, and half-open date-range queries and counts
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/remotearmz/commandcenter/models"
)

type OutreachRepository struct {
	db *sql.DB
}

func NewOutreachRepository(db *sql.DB) *OutreachRepository {
	return &OutreachRepository{db: db}
}

const outreachColumns = `id, client_id, lead_id, outreach_type, outreach_date, status, notes, created_at, updated_at`

// Create assigns an ID and timestamps when unset and stores the outreach.
// OutreachDate defaults to the creation time.
func (r *OutreachRepository) Create(ctx context.Context, o *models.Outreach) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	ts := now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = ts
	}
	o.UpdatedAt = ts
	if o.OutreachDate.IsZero() {
		o.OutreachDate = o.CreatedAt
	}
	if o.Status == "" {
		o.Status = models.OutreachPending
	}
	return r.save(ctx, o)
}

func (r *OutreachRepository) Update(ctx context.Context, o *models.Outreach) error {
	o.UpdatedAt = now()
	return r.save(ctx, o)
}

// UpdateStatus changes only the status of an outreach. It returns nil, nil
// when the outreach does not exist.
func (r *OutreachRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OutreachStatus) (*models.Outreach, error) {
	o, err := r.Get(ctx, id)
	if err != nil || o == nil {
		return nil, err
	}
	o.Status = status
	if err := r.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OutreachRepository) save(ctx context.Context, o *models.Outreach) error {
	if o.ClientID == uuid.Nil {
		return fmt.Errorf("outreach client id is required")
	}
	if !o.Type.Valid() {
		return fmt.Errorf("invalid outreach type %q", o.Type)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("invalid outreach status %q", o.Status)
	}
	o.OutreachDate = normalizeMillis(o.OutreachDate)
	o.CreatedAt = normalizeMillis(o.CreatedAt)
	o.UpdatedAt = normalizeMillis(o.UpdatedAt)

	var leadID sql.NullString
	if o.LeadID != nil {
		leadID = sql.NullString{String: o.LeadID.String(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO outreach (`+outreachColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			lead_id = excluded.lead_id,
			outreach_type = excluded.outreach_type,
			outreach_date = excluded.outreach_date,
			status = excluded.status,
			notes = excluded.notes,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, o.ID.String(), o.ClientID.String(), leadID, string(o.Type), toMillis(o.OutreachDate),
		string(o.Status), o.Notes, toMillis(o.CreatedAt), toMillis(o.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save outreach: %w", err)
	}
	return nil
}

func (r *OutreachRepository) Get(ctx context.Context, id uuid.UUID) (*models.Outreach, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+outreachColumns+` FROM outreach WHERE id = ?`, id.String())
	o, err := scanOutreach(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OutreachRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM outreach WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete outreach: %w", err)
	}
	return nil
}

func (r *OutreachRepository) List(ctx context.Context, limit int) ([]models.Outreach, error) {
	query := `SELECT ` + outreachColumns + ` FROM outreach ORDER BY outreach_date DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return r.query(ctx, query, args...)
}

func (r *OutreachRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Outreach, error) {
	return r.query(ctx,
		`SELECT `+outreachColumns+` FROM outreach WHERE client_id = ? ORDER BY outreach_date DESC`,
		clientID.String())
}

func (r *OutreachRepository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]models.Outreach, error) {
	return r.query(ctx,
		`SELECT `+outreachColumns+` FROM outreach WHERE lead_id = ? ORDER BY outreach_date DESC`,
		leadID.String())
}

// ListByDateRange returns outreach whose OutreachDate lies in [start, end).
func (r *OutreachRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]models.Outreach, error) {
	return r.query(ctx,
		`SELECT `+outreachColumns+` FROM outreach
		WHERE outreach_date >= ? AND outreach_date < ?
		ORDER BY outreach_date DESC`,
		toMillis(start), toMillis(end))
}

func (r *OutreachRepository) CountByDateRange(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM outreach WHERE outreach_date >= ? AND outreach_date < ?`,
		toMillis(start), toMillis(end)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count outreach: %w", err)
	}
	return n, nil
}

func (r *OutreachRepository) CountByStatus(ctx context.Context, status models.OutreachStatus, start, end time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM outreach WHERE status = ? AND outreach_date >= ? AND outreach_date < ?`,
		string(status), toMillis(start), toMillis(end)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count outreach by status: %w", err)
	}
	return n, nil
}

func (r *OutreachRepository) CountByType(ctx context.Context, outreachType models.OutreachType, start, end time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM outreach WHERE outreach_type = ? AND outreach_date >= ? AND outreach_date < ?`,
		string(outreachType), toMillis(start), toMillis(end)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count outreach by type: %w", err)
	}
	return n, nil
}

func (r *OutreachRepository) query(ctx context.Context, query string, args ...any) ([]models.Outreach, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outreach: %w", err)
	}
	defer rows.Close()

	var result []models.Outreach
	for rows.Next() {
		o, err := scanOutreach(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	return result, rows.Err()
}

func scanOutreach(s rowScanner) (*models.Outreach, error) {
	var o models.Outreach
	var id, clientID, outreachType, status string
	var leadID, notes sql.NullString
	var outreachDate, createdAt, updatedAt int64
	if err := s.Scan(&id, &clientID, &leadID, &outreachType, &outreachDate, &status, &notes,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if o.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid outreach id %q: %w", id, err)
	}
	if o.ClientID, err = uuid.Parse(clientID); err != nil {
		return nil, fmt.Errorf("invalid client id %q: %w", clientID, err)
	}
	if leadID.Valid {
		lid, err := uuid.Parse(leadID.String)
		if err == nil {
			o.LeadID = &lid
		}
	}
	o.Type = models.OutreachType(outreachType)
	o.Status = models.OutreachStatus(status)
	o.Notes = notes.String
	o.OutreachDate = fromMillis(outreachDate)
	o.CreatedAt = fromMillis(createdAt)
	o.UpdatedAt = fromMillis(updatedAt)
	return &o, nil
}
