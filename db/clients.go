// ABOUTME: Client repository backed by the clients table
// ABOUTME: Handles CRUD with last-write-wins upserts and filtered listing
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/remotearmz/commandcenter/models"
)

type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// ClientFilter narrows List results. Zero values match everything.
type ClientFilter struct {
	Status models.ClientStatus
	Query  string
	Limit  int
}

const clientColumns = `id, name, whatsapp, email, instagram, monthly_charge, deliverables, payment_date, status, created_at, updated_at`

// Create assigns an ID and timestamps when unset and stores the client.
func (r *ClientRepository) Create(ctx context.Context, c *models.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	ts := now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = ts
	}
	c.UpdatedAt = ts
	if c.Status == "" {
		c.Status = models.ClientActive
	}
	return r.save(ctx, c)
}

func (r *ClientRepository) Update(ctx context.Context, c *models.Client) error {
	c.UpdatedAt = now()
	return r.save(ctx, c)
}

func (r *ClientRepository) save(ctx context.Context, c *models.Client) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("client name is required")
	}
	if !c.Status.Valid() {
		return fmt.Errorf("invalid client status %q", c.Status)
	}
	c.CreatedAt = normalizeMillis(c.CreatedAt)
	c.UpdatedAt = normalizeMillis(c.UpdatedAt)

	deliverables := c.Deliverables
	if deliverables == nil {
		deliverables = []string{}
	}
	deliverablesJSON, err := json.Marshal(deliverables)
	if err != nil {
		return fmt.Errorf("failed to encode deliverables: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			whatsapp = excluded.whatsapp,
			email = excluded.email,
			instagram = excluded.instagram,
			monthly_charge = excluded.monthly_charge,
			deliverables = excluded.deliverables,
			payment_date = excluded.payment_date,
			status = excluded.status,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, c.ID.String(), c.Name, c.WhatsApp, c.Email, c.Instagram, c.MonthlyCharge, string(deliverablesJSON),
		c.PaymentDate, string(c.Status), toMillis(c.CreatedAt), toMillis(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save client: %w", err)
	}
	return nil
}

// Get returns nil, nil when no client has the given ID.
func (r *ClientRepository) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id.String())
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindByName returns the first client whose name matches case-insensitively.
func (r *ClientRepository) FindByName(ctx context.Context, name string) (*models.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE LOWER(name) = LOWER(?) ORDER BY created_at LIMIT 1`, name)
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

func (r *ClientRepository) List(ctx context.Context, filter ClientFilter) ([]models.Client, error) {
	var where []string
	var args []any
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)")
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + clientColumns + ` FROM clients`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name COLLATE NOCASE"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

// MonthlyRevenue sums monthly charges of active clients.
func (r *ClientRepository) MonthlyRevenue(ctx context.Context) (float64, error) {
	var total sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(monthly_charge) FROM clients WHERE status = ?`, string(models.ClientActive)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum monthly revenue: %w", err)
	}
	return total.Float64, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(s rowScanner) (*models.Client, error) {
	var c models.Client
	var id, status, deliverables string
	var createdAt, updatedAt int64
	if err := s.Scan(&id, &c.Name, &c.WhatsApp, &c.Email, &c.Instagram, &c.MonthlyCharge, &deliverables,
		&c.PaymentDate, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid client id %q: %w", id, err)
	}
	c.ID = parsed
	c.Status = models.ClientStatus(status)
	if deliverables != "" {
		if err := json.Unmarshal([]byte(deliverables), &c.Deliverables); err != nil {
			return nil, fmt.Errorf("failed to decode deliverables: %w", err)
		}
	}
	if len(c.Deliverables) == 0 {
		c.Deliverables = nil
	}
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return &c, nil
}
