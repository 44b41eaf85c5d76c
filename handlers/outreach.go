// ABOUTME: Outreach MCP tool handlers
// ABOUTME: Implements log_outreach, find_outreach, and update_outreach_status tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/models"
)

type OutreachHandlers struct {
	outreach *db.OutreachRepository
	clients  *db.ClientRepository
	loc      *time.Location
}

// NewOutreachHandlers resolves date-only inputs as midnight in loc.
func NewOutreachHandlers(database *sql.DB, loc *time.Location) *OutreachHandlers {
	if loc == nil {
		loc = time.Local
	}
	return &OutreachHandlers{
		outreach: db.NewOutreachRepository(database),
		clients:  db.NewClientRepository(database),
		loc:      loc,
	}
}

type LogOutreachInput struct {
	ClientID   string `json:"client_id,omitempty" jsonschema:"Client ID (client_id or client_name required)"`
	ClientName string `json:"client_name,omitempty" jsonschema:"Client name, looked up case-insensitively"`
	LeadID     string `json:"lead_id,omitempty" jsonschema:"Optional lead ID"`
	Type       string `json:"outreach_type" jsonschema:"email, phone_call, linkedin_message, social_media_post, meeting, or other"`
	Status     string `json:"status,omitempty" jsonschema:"pending, completed, scheduled, or cancelled (default pending)"`
	Date       string `json:"outreach_date,omitempty" jsonschema:"When the outreach happens: RFC3339 or YYYY-MM-DD (default now)"`
	Notes      string `json:"notes,omitempty" jsonschema:"Notes about the outreach"`
}

type OutreachOutput struct {
	ID             string `json:"id"`
	ClientID       string `json:"client_id"`
	LeadID         string `json:"lead_id,omitempty"`
	Type           string `json:"outreach_type"`
	Status         string `json:"status"`
	OutreachDate   string `json:"outreach_date"`
	Notes          string `json:"notes,omitempty"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

func (h *OutreachHandlers) LogOutreach(ctx context.Context, _ *mcp.CallToolRequest, input LogOutreachInput) (*mcp.CallToolResult, OutreachOutput, error) {
	clientID, err := h.resolveClient(ctx, input.ClientID, input.ClientName)
	if err != nil {
		return nil, OutreachOutput{}, err
	}
	if input.Type == "" {
		return nil, OutreachOutput{}, fmt.Errorf("outreach_type is required")
	}
	outreachType, err := models.ParseOutreachType(input.Type)
	if err != nil {
		return nil, OutreachOutput{}, err
	}

	o := &models.Outreach{
		ClientID: clientID,
		Type:     outreachType,
		Notes:    input.Notes,
	}
	if input.Status != "" {
		if o.Status, err = models.ParseOutreachStatus(input.Status); err != nil {
			return nil, OutreachOutput{}, err
		}
	}
	if input.LeadID != "" {
		leadID, err := uuid.Parse(input.LeadID)
		if err != nil {
			return nil, OutreachOutput{}, fmt.Errorf("invalid lead_id: %w", err)
		}
		o.LeadID = &leadID
	}
	if input.Date != "" {
		if o.OutreachDate, err = parseWhen(input.Date, h.loc); err != nil {
			return nil, OutreachOutput{}, fmt.Errorf("invalid outreach_date: %w", err)
		}
	}

	if err := h.outreach.Create(ctx, o); err != nil {
		return nil, OutreachOutput{}, fmt.Errorf("failed to log outreach: %w", err)
	}
	return nil, outreachToOutput(o), nil
}

func (h *OutreachHandlers) resolveClient(ctx context.Context, id, name string) (uuid.UUID, error) {
	if id != "" {
		clientID, err := uuid.Parse(id)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid client_id: %w", err)
		}
		return clientID, nil
	}
	if name == "" {
		return uuid.Nil, fmt.Errorf("client_id or client_name is required")
	}
	client, err := h.clients.FindByName(ctx, name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up client: %w", err)
	}
	if client == nil {
		return uuid.Nil, fmt.Errorf("client not found: %s", name)
	}
	return client.ID, nil
}

type FindOutreachInput struct {
	ClientID string `json:"client_id,omitempty" jsonschema:"Filter by client ID"`
	LeadID   string `json:"lead_id,omitempty" jsonschema:"Filter by lead ID"`
	From     string `json:"from,omitempty" jsonschema:"Start of date range (inclusive), RFC3339 or YYYY-MM-DD"`
	To       string `json:"to,omitempty" jsonschema:"End of date range (exclusive), RFC3339 or YYYY-MM-DD"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 20)"`
}

type FindOutreachOutput struct {
	Outreach []OutreachOutput `json:"outreach"`
}

func (h *OutreachHandlers) FindOutreach(ctx context.Context, _ *mcp.CallToolRequest, input FindOutreachInput) (*mcp.CallToolResult, FindOutreachOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 20
	}

	var records []models.Outreach
	var err error
	switch {
	case input.ClientID != "":
		var id uuid.UUID
		if id, err = uuid.Parse(input.ClientID); err != nil {
			return nil, FindOutreachOutput{}, fmt.Errorf("invalid client_id: %w", err)
		}
		records, err = h.outreach.ListByClient(ctx, id)
	case input.LeadID != "":
		var id uuid.UUID
		if id, err = uuid.Parse(input.LeadID); err != nil {
			return nil, FindOutreachOutput{}, fmt.Errorf("invalid lead_id: %w", err)
		}
		records, err = h.outreach.ListByLead(ctx, id)
	case input.From != "" || input.To != "":
		var from, to time.Time
		if from, to, err = h.parseRange(input.From, input.To); err != nil {
			return nil, FindOutreachOutput{}, err
		}
		records, err = h.outreach.ListByDateRange(ctx, from, to)
	default:
		records, err = h.outreach.List(ctx, limit)
	}
	if err != nil {
		return nil, FindOutreachOutput{}, fmt.Errorf("failed to find outreach: %w", err)
	}

	if len(records) > limit {
		records = records[:limit]
	}
	out := FindOutreachOutput{Outreach: make([]OutreachOutput, len(records))}
	for i := range records {
		out.Outreach[i] = outreachToOutput(&records[i])
	}
	return nil, out, nil
}

func (h *OutreachHandlers) parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from := time.Unix(0, 0)
	to := time.Now().AddDate(100, 0, 0)
	var err error
	if fromStr != "" {
		if from, err = parseWhen(fromStr, h.loc); err != nil {
			return from, to, fmt.Errorf("invalid from: %w", err)
		}
	}
	if toStr != "" {
		if to, err = parseWhen(toStr, h.loc); err != nil {
			return from, to, fmt.Errorf("invalid to: %w", err)
		}
	}
	if !to.After(from) {
		return from, to, fmt.Errorf("to must be after from")
	}
	return from, to, nil
}

type UpdateOutreachStatusInput struct {
	ID     string `json:"id" jsonschema:"Outreach ID (required)"`
	Status string `json:"status" jsonschema:"New status: pending, completed, scheduled, or cancelled"`
}

func (h *OutreachHandlers) UpdateOutreachStatus(ctx context.Context, _ *mcp.CallToolRequest, input UpdateOutreachStatusInput) (*mcp.CallToolResult, OutreachOutput, error) {
	if input.ID == "" {
		return nil, OutreachOutput{}, fmt.Errorf("id is required")
	}
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, OutreachOutput{}, fmt.Errorf("invalid id: %w", err)
	}
	status, err := models.ParseOutreachStatus(input.Status)
	if err != nil {
		return nil, OutreachOutput{}, err
	}

	o, err := h.outreach.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, OutreachOutput{}, fmt.Errorf("failed to update outreach: %w", err)
	}
	if o == nil {
		return nil, OutreachOutput{}, fmt.Errorf("outreach not found: %s", input.ID)
	}
	return nil, outreachToOutput(o), nil
}

// parseWhen accepts RFC3339 instants or YYYY-MM-DD dates, the latter as
// midnight in loc.
func parseWhen(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(models.DateLayout, s, loc)
}

func outreachToOutput(o *models.Outreach) OutreachOutput {
	out := OutreachOutput{
		ID:             o.ID.String(),
		ClientID:       o.ClientID.String(),
		Type:           string(o.Type),
		Status:         string(o.Status),
		OutreachDate:   o.OutreachDate.UTC().Format(time.RFC3339),
		Notes:          o.Notes,
		ResponseTimeMs: o.ResponseTime().Milliseconds(),
		CreatedAt:      o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      o.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if o.LeadID != nil {
		out.LeadID = o.LeadID.String()
	}
	return out
}
