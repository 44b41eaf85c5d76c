// ABOUTME: Integration repository and integration error log
// ABOUTME: Tracks provider connection status, last sync time, and recent errors
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/remotearmz/commandcenter/models"
)

type IntegrationRepository struct {
	db *sql.DB
}

func NewIntegrationRepository(db *sql.DB) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

type IntegrationFilter struct {
	Type      models.IntegrationType
	Provider  models.IntegrationProvider
	Connected *bool
}

const integrationColumns = `id, name, type, provider, status, is_connected, last_sync, config, error, created_at, updated_at`

func (r *IntegrationRepository) Create(ctx context.Context, i *models.Integration) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	ts := now()
	if i.CreatedAt.IsZero() {
		i.CreatedAt = ts
	}
	i.UpdatedAt = ts
	if i.Status == "" {
		i.Status = models.IntegrationPending
	}
	return r.save(ctx, i)
}

func (r *IntegrationRepository) Update(ctx context.Context, i *models.Integration) error {
	i.UpdatedAt = now()
	return r.save(ctx, i)
}

func (r *IntegrationRepository) save(ctx context.Context, i *models.Integration) error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("integration name is required")
	}
	if !i.Type.Valid() {
		return fmt.Errorf("invalid integration type %q", i.Type)
	}
	if !i.Provider.Valid() {
		return fmt.Errorf("invalid integration provider %q", i.Provider)
	}
	if !i.Status.Valid() {
		return fmt.Errorf("invalid integration status %q", i.Status)
	}
	i.Connected = i.Status == models.IntegrationConnected
	i.CreatedAt = normalizeMillis(i.CreatedAt)
	i.UpdatedAt = normalizeMillis(i.UpdatedAt)
	if i.LastSync != nil {
		ls := normalizeMillis(*i.LastSync)
		i.LastSync = &ls
	}

	config := i.Config
	if config == nil {
		config = map[string]string{}
	}
	configJSON, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode integration config: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO integrations (`+integrationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			provider = excluded.provider,
			status = excluded.status,
			is_connected = excluded.is_connected,
			last_sync = excluded.last_sync,
			config = excluded.config,
			error = excluded.error,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, i.ID.String(), i.Name, string(i.Type), string(i.Provider), string(i.Status), i.Connected,
		nullMillis(i.LastSync), string(configJSON), i.Error, toMillis(i.CreatedAt), toMillis(i.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save integration: %w", err)
	}
	return nil
}

func (r *IntegrationRepository) Get(ctx context.Context, id uuid.UUID) (*models.Integration, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+integrationColumns+` FROM integrations WHERE id = ?`, id.String())
	i, err := scanIntegration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return i, nil
}

// Delete removes the integration and its error log.
func (r *IntegrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM integration_errors WHERE integration_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete integration errors: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM integrations WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete integration: %w", err)
	}
	return tx.Commit()
}

func (r *IntegrationRepository) List(ctx context.Context, filter IntegrationFilter) ([]models.Integration, error) {
	var where []string
	var args []any
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Provider != "" {
		where = append(where, "provider = ?")
		args = append(args, string(filter.Provider))
	}
	if filter.Connected != nil {
		where = append(where, "is_connected = ?")
		args = append(args, *filter.Connected)
	}
	query := `SELECT ` + integrationColumns + ` FROM integrations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name COLLATE NOCASE"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	defer rows.Close()

	var integrations []models.Integration
	for rows.Next() {
		i, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		integrations = append(integrations, *i)
	}
	return integrations, rows.Err()
}

// UpdateStatus sets the connection status. A non-empty errMsg is also
// appended to the integration's error log.
func (r *IntegrationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.IntegrationStatus, errMsg string) (*models.Integration, error) {
	i, err := r.Get(ctx, id)
	if err != nil || i == nil {
		return nil, err
	}
	i.Status = status
	i.Error = errMsg
	if err := r.Update(ctx, i); err != nil {
		return nil, err
	}
	if errMsg != "" {
		if err := r.LogError(ctx, id, errMsg); err != nil {
			return nil, err
		}
	}
	return i, nil
}

func (r *IntegrationRepository) RecordSync(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE integrations SET last_sync = ?, updated_at = ? WHERE id = ?`,
		toMillis(at), toMillis(now()), id.String())
	if err != nil {
		return fmt.Errorf("failed to record sync: %w", err)
	}
	return nil
}

func (r *IntegrationRepository) LogError(ctx context.Context, id uuid.UUID, message string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO integration_errors (id, integration_id, message, occurred_at)
		VALUES (?, ?, ?, ?)
	`, uuid.New().String(), id.String(), message, toMillis(now()))
	if err != nil {
		return fmt.Errorf("failed to log integration error: %w", err)
	}
	return nil
}

// Errors returns the most recent errors for an integration, newest first.
func (r *IntegrationRepository) Errors(ctx context.Context, id uuid.UUID, limit int) ([]models.IntegrationErrorEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, integration_id, message, occurred_at
		FROM integration_errors WHERE integration_id = ?
		ORDER BY occurred_at DESC LIMIT ?
	`, id.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query integration errors: %w", err)
	}
	defer rows.Close()

	var entries []models.IntegrationErrorEntry
	for rows.Next() {
		var e models.IntegrationErrorEntry
		var eid, iid string
		var occurredAt int64
		if err := rows.Scan(&eid, &iid, &e.Message, &occurredAt); err != nil {
			return nil, err
		}
		e.ID, _ = uuid.Parse(eid)
		e.IntegrationID, _ = uuid.Parse(iid)
		e.OccurredAt = fromMillis(occurredAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanIntegration(s rowScanner) (*models.Integration, error) {
	var i models.Integration
	var id, integrationType, provider, status, config string
	var lastSync sql.NullInt64
	var createdAt, updatedAt int64
	if err := s.Scan(&id, &i.Name, &integrationType, &provider, &status, &i.Connected, &lastSync, &config,
		&i.Error, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if i.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid integration id %q: %w", id, err)
	}
	i.Type = models.IntegrationType(integrationType)
	i.Provider = models.IntegrationProvider(provider)
	i.Status = models.IntegrationStatus(status)
	i.LastSync = timeFromNull(lastSync)
	if err := json.Unmarshal([]byte(config), &i.Config); err != nil {
		return nil, fmt.Errorf("failed to decode integration config: %w", err)
	}
	if len(i.Config) == 0 {
		i.Config = nil
	}
	i.CreatedAt = fromMillis(createdAt)
	i.UpdatedAt = fromMillis(updatedAt)
	return &i, nil
}
