// ABOUTME: Lead repository backed by the leads table
// ABOUTME: Handles CRUD and filtering by status, source, and free-text search
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/remotearmz/commandcenter/models"
)

type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

type LeadFilter struct {
	Status models.LeadStatus
	Source models.LeadSource
	Query  string
	Limit  int
}

const leadColumns = `id, name, email, phone, company, designation, source, status, notes, created_at, updated_at`

func (r *LeadRepository) Create(ctx context.Context, l *models.Lead) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	ts := now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = ts
	}
	l.UpdatedAt = ts
	if l.Status == "" {
		l.Status = models.LeadNew
	}
	if l.Source == "" {
		l.Source = models.LeadOther
	}
	return r.save(ctx, l)
}

func (r *LeadRepository) Update(ctx context.Context, l *models.Lead) error {
	l.UpdatedAt = now()
	return r.save(ctx, l)
}

func (r *LeadRepository) save(ctx context.Context, l *models.Lead) error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("lead name is required")
	}
	if !l.Status.Valid() {
		return fmt.Errorf("invalid lead status %q", l.Status)
	}
	if !l.Source.Valid() {
		return fmt.Errorf("invalid lead source %q", l.Source)
	}
	l.CreatedAt = normalizeMillis(l.CreatedAt)
	l.UpdatedAt = normalizeMillis(l.UpdatedAt)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO leads (`+leadColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			company = excluded.company,
			designation = excluded.designation,
			source = excluded.source,
			status = excluded.status,
			notes = excluded.notes,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, l.ID.String(), l.Name, l.Email, l.Phone, l.Company, l.Designation, string(l.Source), string(l.Status),
		l.Notes, toMillis(l.CreatedAt), toMillis(l.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) Get(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id.String())
	l, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *LeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) List(ctx context.Context, filter LeadFilter) ([]models.Lead, error) {
	var where []string
	var args []any
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Source != "" {
		where = append(where, "source = ?")
		args = append(args, string(filter.Source))
	}
	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(company) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, rows.Err()
}

// CountByStatus returns how many leads sit in each pipeline status.
func (r *LeadRepository) CountByStatus(ctx context.Context) (map[models.LeadStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.LeadStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.LeadStatus(status)] = n
	}
	return counts, rows.Err()
}

func scanLead(s rowScanner) (*models.Lead, error) {
	var l models.Lead
	var id, source, status string
	var createdAt, updatedAt int64
	if err := s.Scan(&id, &l.Name, &l.Email, &l.Phone, &l.Company, &l.Designation, &source, &status,
		&l.Notes, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid lead id %q: %w", id, err)
	}
	l.ID = parsed
	l.Source = models.LeadSource(source)
	l.Status = models.LeadStatus(status)
	l.CreatedAt = fromMillis(createdAt)
	l.UpdatedAt = fromMillis(updatedAt)
	return &l, nil
}
