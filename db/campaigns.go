// ABOUTME: Campaign repository with lifecycle transitions and templates
// ABOUTME: Stores segments, schedule and metadata as JSON columns
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/remotearmz/commandcenter/models"
)

var ErrInvalidTransition = errors.New("invalid campaign status transition")

type CampaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

type CampaignFilter struct {
	Status models.CampaignStatus
	Type   models.CampaignType
}

const campaignColumns = `id, name, description, type, status, priority, target_count, sent_count, response_count,
	conversion_count, start_date, end_date, budget, segments, schedule, created_by, metadata, created_at, updated_at`

func (r *CampaignRepository) Create(ctx context.Context, c *models.Campaign) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	ts := now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = ts
	}
	c.UpdatedAt = ts
	if c.Status == "" {
		c.Status = models.CampaignDraft
	}
	if c.Priority == "" {
		c.Priority = models.PriorityMedium
	}
	if c.StartDate.IsZero() {
		c.StartDate = ts
	}
	return r.save(ctx, c)
}

func (r *CampaignRepository) Update(ctx context.Context, c *models.Campaign) error {
	c.UpdatedAt = now()
	return r.save(ctx, c)
}

func (r *CampaignRepository) save(ctx context.Context, c *models.Campaign) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("campaign name is required")
	}
	if !c.Type.Valid() {
		return fmt.Errorf("invalid campaign type %q", c.Type)
	}
	if !c.Status.Valid() {
		return fmt.Errorf("invalid campaign status %q", c.Status)
	}
	if !c.Priority.Valid() {
		return fmt.Errorf("invalid campaign priority %q", c.Priority)
	}
	c.StartDate = normalizeMillis(c.StartDate)
	if c.EndDate != nil {
		end := normalizeMillis(*c.EndDate)
		c.EndDate = &end
	}
	c.CreatedAt = normalizeMillis(c.CreatedAt)
	c.UpdatedAt = normalizeMillis(c.UpdatedAt)

	segments := c.Segments
	if segments == nil {
		segments = []models.CampaignSegment{}
	}
	segmentsJSON, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("failed to encode segments: %w", err)
	}
	var scheduleJSON sql.NullString
	if c.Schedule != nil {
		data, err := json.Marshal(c.Schedule)
		if err != nil {
			return fmt.Errorf("failed to encode schedule: %w", err)
		}
		scheduleJSON = sql.NullString{String: string(data), Valid: true}
	}
	metadata := c.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	var budget sql.NullFloat64
	if c.Budget != nil {
		budget = sql.NullFloat64{Float64: *c.Budget, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO campaigns (`+campaignColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			type = excluded.type,
			status = excluded.status,
			priority = excluded.priority,
			target_count = excluded.target_count,
			sent_count = excluded.sent_count,
			response_count = excluded.response_count,
			conversion_count = excluded.conversion_count,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			budget = excluded.budget,
			segments = excluded.segments,
			schedule = excluded.schedule,
			created_by = excluded.created_by,
			metadata = excluded.metadata,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, c.ID.String(), c.Name, c.Description, string(c.Type), string(c.Status), string(c.Priority),
		c.TargetCount, c.SentCount, c.ResponseCount, c.ConversionCount,
		toMillis(c.StartDate), nullMillis(c.EndDate), budget, string(segmentsJSON), scheduleJSON,
		c.CreatedBy, string(metadataJSON), toMillis(c.CreatedAt), toMillis(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepository) Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id.String())
	c, err := scanCampaign(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the campaign together with its templates.
func (r *CampaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM campaign_templates WHERE campaign_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete campaign templates: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	return tx.Commit()
}

func (r *CampaignRepository) List(ctx context.Context, filter CampaignFilter) ([]models.Campaign, error) {
	var where []string
	var args []any
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(filter.Type))
	}
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_date DESC"
	return r.query(ctx, query, args...)
}

// Scheduled returns draft or active campaigns that carry a schedule.
func (r *CampaignRepository) Scheduled(ctx context.Context) ([]models.Campaign, error) {
	return r.query(ctx,
		`SELECT `+campaignColumns+` FROM campaigns
		WHERE schedule IS NOT NULL AND status IN (?, ?)
		ORDER BY start_date`,
		string(models.CampaignDraft), string(models.CampaignActive))
}

// Transition applies a lifecycle action. It returns nil, nil when the campaign
// does not exist and ErrInvalidTransition when the action is not allowed.
func (r *CampaignRepository) Transition(ctx context.Context, id uuid.UUID, action models.CampaignAction) (*models.Campaign, error) {
	c, err := r.Get(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	next, ok := action.Apply(c.Status)
	if !ok {
		return nil, fmt.Errorf("%w: cannot %s a %s campaign", ErrInvalidTransition, action, c.Status)
	}
	c.Status = next
	if next == models.CampaignCompleted && c.EndDate == nil {
		end := now()
		c.EndDate = &end
	}
	if err := r.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) SetSchedule(ctx context.Context, id uuid.UUID, schedule *models.CampaignSchedule) (*models.Campaign, error) {
	c, err := r.Get(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	c.Schedule = schedule
	if err := r.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RecordResults adds to the sent, response and conversion counters.
func (r *CampaignRepository) RecordResults(ctx context.Context, id uuid.UUID, sent, responses, conversions int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET sent_count = sent_count + ?, response_count = response_count + ?,
			conversion_count = conversion_count + ?, updated_at = ?
		WHERE id = ?
	`, sent, responses, conversions, toMillis(now()), id.String())
	if err != nil {
		return fmt.Errorf("failed to record campaign results: %w", err)
	}
	return nil
}

func (r *CampaignRepository) Metrics(ctx context.Context, id uuid.UUID) (*models.CampaignMetrics, error) {
	c, err := r.Get(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	m := c.Metrics()
	return &m, nil
}

const templateColumns = `id, campaign_id, name, type, content, variables, sort_order, delay_days, created_at, updated_at`

func (r *CampaignRepository) SaveTemplate(ctx context.Context, t *models.CampaignTemplate) error {
	if t.CampaignID == uuid.Nil {
		return fmt.Errorf("template campaign id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("template name is required")
	}
	if !t.Type.Valid() {
		return fmt.Errorf("invalid template type %q", t.Type)
	}
	ts := now()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = ts
	}
	t.CreatedAt = normalizeMillis(t.CreatedAt)
	t.UpdatedAt = ts

	variables := t.Variables
	if variables == nil {
		variables = map[string]string{}
	}
	variablesJSON, err := json.Marshal(variables)
	if err != nil {
		return fmt.Errorf("failed to encode template variables: %w", err)
	}
	var delay sql.NullInt64
	if t.DelayDays != nil {
		delay = sql.NullInt64{Int64: int64(*t.DelayDays), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO campaign_templates (`+templateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			campaign_id = excluded.campaign_id,
			name = excluded.name,
			type = excluded.type,
			content = excluded.content,
			variables = excluded.variables,
			sort_order = excluded.sort_order,
			delay_days = excluded.delay_days,
			updated_at = excluded.updated_at
	`, t.ID.String(), t.CampaignID.String(), t.Name, string(t.Type), t.Content, string(variablesJSON),
		t.Order, delay, toMillis(t.CreatedAt), toMillis(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

func (r *CampaignRepository) GetTemplate(ctx context.Context, id uuid.UUID) (*models.CampaignTemplate, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM campaign_templates WHERE id = ?`, id.String())
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *CampaignRepository) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM campaign_templates WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

// Templates returns a campaign's templates in send order.
func (r *CampaignRepository) Templates(ctx context.Context, campaignID uuid.UUID) ([]models.CampaignTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM campaign_templates WHERE campaign_id = ? ORDER BY sort_order, created_at`,
		campaignID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.CampaignTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (r *CampaignRepository) query(ctx context.Context, query string, args ...any) ([]models.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

func scanCampaign(s rowScanner) (*models.Campaign, error) {
	var c models.Campaign
	var id, campaignType, status, priority, segments, metadata string
	var startDate, createdAt, updatedAt int64
	var endDate sql.NullInt64
	var budget sql.NullFloat64
	var schedule sql.NullString
	if err := s.Scan(&id, &c.Name, &c.Description, &campaignType, &status, &priority, &c.TargetCount,
		&c.SentCount, &c.ResponseCount, &c.ConversionCount, &startDate, &endDate, &budget, &segments,
		&schedule, &c.CreatedBy, &metadata, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if c.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid campaign id %q: %w", id, err)
	}
	c.Type = models.CampaignType(campaignType)
	c.Status = models.CampaignStatus(status)
	c.Priority = models.CampaignPriority(priority)
	c.StartDate = fromMillis(startDate)
	c.EndDate = timeFromNull(endDate)
	if budget.Valid {
		b := budget.Float64
		c.Budget = &b
	}
	if err := json.Unmarshal([]byte(segments), &c.Segments); err != nil {
		return nil, fmt.Errorf("failed to decode segments: %w", err)
	}
	if len(c.Segments) == 0 {
		c.Segments = nil
	}
	if schedule.Valid {
		var sched models.CampaignSchedule
		if err := json.Unmarshal([]byte(schedule.String), &sched); err != nil {
			return nil, fmt.Errorf("failed to decode schedule: %w", err)
		}
		c.Schedule = &sched
	}
	if err := json.Unmarshal([]byte(metadata), &c.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if len(c.Metadata) == 0 {
		c.Metadata = nil
	}
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return &c, nil
}

func scanTemplate(s rowScanner) (*models.CampaignTemplate, error) {
	var t models.CampaignTemplate
	var id, campaignID, templateType, variables string
	var delay sql.NullInt64
	var createdAt, updatedAt int64
	if err := s.Scan(&id, &campaignID, &t.Name, &templateType, &t.Content, &variables, &t.Order, &delay,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if t.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid template id %q: %w", id, err)
	}
	if t.CampaignID, err = uuid.Parse(campaignID); err != nil {
		return nil, fmt.Errorf("invalid campaign id %q: %w", campaignID, err)
	}
	t.Type = models.CampaignType(templateType)
	if err := json.Unmarshal([]byte(variables), &t.Variables); err != nil {
		return nil, fmt.Errorf("failed to decode template variables: %w", err)
	}
	if len(t.Variables) == 0 {
		t.Variables = nil
	}
	if delay.Valid {
		d := int(delay.Int64)
		t.DelayDays = &d
	}
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return &t, nil
}
