// ABOUTME: Universal query tool handler
// ABOUTME: Filters clients, leads, targets, campaigns, and integrations through one tool
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/models"
)

type QueryHandlers struct {
	clients      *db.ClientRepository
	leads        *db.LeadRepository
	targets      *db.TargetRepository
	campaigns    *db.CampaignRepository
	integrations *db.IntegrationRepository
}

func NewQueryHandlers(database *sql.DB) *QueryHandlers {
	return &QueryHandlers{
		clients:      db.NewClientRepository(database),
		leads:        db.NewLeadRepository(database),
		targets:      db.NewTargetRepository(database),
		campaigns:    db.NewCampaignRepository(database),
		integrations: db.NewIntegrationRepository(database),
	}
}

type QueryCRMInput struct {
	EntityType string         `json:"entity_type" jsonschema:"Type of entity to query (client, lead, target, campaign, integration)"`
	Query      string         `json:"query,omitempty" jsonschema:"Search query (clients and leads only)"`
	Filters    map[string]any `json:"filters,omitempty" jsonschema:"Additional filters such as status, type, source, category, provider, connected"`
	Limit      int            `json:"limit,omitempty" jsonschema:"Maximum results to return (default 10)"`
}

type QueryCRMOutput struct {
	EntityType string `json:"entity_type"`
	Results    []any  `json:"results"`
	Count      int    `json:"count"`
}

func (h *QueryHandlers) QueryCRM(ctx context.Context, _ *mcp.CallToolRequest, input QueryCRMInput) (*mcp.CallToolResult, QueryCRMOutput, error) {
	if input.Limit == 0 {
		input.Limit = 10
	}

	var results []any
	var err error
	switch input.EntityType {
	case "client":
		results, err = h.queryClients(ctx, input)
	case "lead":
		results, err = h.queryLeads(ctx, input)
	case "target":
		results, err = h.queryTargets(ctx, input)
	case "campaign":
		results, err = h.queryCampaigns(ctx, input)
	case "integration":
		results, err = h.queryIntegrations(ctx, input)
	default:
		return nil, QueryCRMOutput{}, fmt.Errorf("invalid entity_type: %s (valid: client, lead, target, campaign, integration)", input.EntityType)
	}
	if err != nil {
		return nil, QueryCRMOutput{}, err
	}

	if len(results) > input.Limit {
		results = results[:input.Limit]
	}
	if results == nil {
		results = []any{}
	}
	return nil, QueryCRMOutput{EntityType: input.EntityType, Results: results, Count: len(results)}, nil
}

// stringFilter reads a string filter, parsing it with parse when present.
func stringFilter[T ~string](filters map[string]any, key string, parse func(string) (T, error)) (T, error) {
	var zero T
	raw, ok := filters[key].(string)
	if !ok || raw == "" {
		return zero, nil
	}
	return parse(raw)
}

func (h *QueryHandlers) queryClients(ctx context.Context, input QueryCRMInput) ([]any, error) {
	status, err := stringFilter(input.Filters, "status", models.ParseClientStatus)
	if err != nil {
		return nil, err
	}
	clients, err := h.clients.List(ctx, db.ClientFilter{Status: status, Query: input.Query, Limit: input.Limit})
	if err != nil {
		return nil, fmt.Errorf("failed to find clients: %w", err)
	}
	results := make([]any, len(clients))
	for i := range clients {
		results[i] = clientToOutput(&clients[i])
	}
	return results, nil
}

func (h *QueryHandlers) queryLeads(ctx context.Context, input QueryCRMInput) ([]any, error) {
	status, err := stringFilter(input.Filters, "status", models.ParseLeadStatus)
	if err != nil {
		return nil, err
	}
	source, err := stringFilter(input.Filters, "source", models.ParseLeadSource)
	if err != nil {
		return nil, err
	}
	leads, err := h.leads.List(ctx, db.LeadFilter{Status: status, Source: source, Query: input.Query, Limit: input.Limit})
	if err != nil {
		return nil, fmt.Errorf("failed to find leads: %w", err)
	}
	results := make([]any, len(leads))
	for i := range leads {
		results[i] = leadToOutput(&leads[i])
	}
	return results, nil
}

func (h *QueryHandlers) queryTargets(ctx context.Context, input QueryCRMInput) ([]any, error) {
	filter := db.TargetFilter{}
	var err error
	if filter.Type, err = stringFilter(input.Filters, "type", models.ParseTargetType); err != nil {
		return nil, err
	}
	if filter.Status, err = stringFilter(input.Filters, "status", models.ParseTargetStatus); err != nil {
		return nil, err
	}
	if c, ok := input.Filters["category"].(string); ok {
		filter.Category = c
	}

	targets, err := h.targets.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find targets: %w", err)
	}
	results := make([]any, len(targets))
	for i, t := range targets {
		results[i] = targetToOutput(&t)
	}
	return results, nil
}

func (h *QueryHandlers) queryCampaigns(ctx context.Context, input QueryCRMInput) ([]any, error) {
	filter := db.CampaignFilter{}
	var err error
	if filter.Status, err = stringFilter(input.Filters, "status", models.ParseCampaignStatus); err != nil {
		return nil, err
	}
	if filter.Type, err = stringFilter(input.Filters, "type", models.ParseCampaignType); err != nil {
		return nil, err
	}

	campaigns, err := h.campaigns.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find campaigns: %w", err)
	}
	results := make([]any, len(campaigns))
	for i, c := range campaigns {
		results[i] = campaignToOutput(&c)
	}
	return results, nil
}

func (h *QueryHandlers) queryIntegrations(ctx context.Context, input QueryCRMInput) ([]any, error) {
	filter := db.IntegrationFilter{}
	var err error
	if filter.Type, err = stringFilter(input.Filters, "type", models.ParseIntegrationType); err != nil {
		return nil, err
	}
	if filter.Provider, err = stringFilter(input.Filters, "provider", models.ParseIntegrationProvider); err != nil {
		return nil, err
	}
	if connected, ok := input.Filters["connected"].(bool); ok {
		filter.Connected = &connected
	}

	integrations, err := h.integrations.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find integrations: %w", err)
	}
	results := make([]any, len(integrations))
	for i, in := range integrations {
		results[i] = integrationToOutput(&in)
	}
	return results, nil
}

type TargetOutput struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Type            string  `json:"target_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TargetValue     float64 `json:"target_value"`
	CurrentProgress float64 `json:"current_progress"`
	Percent         float64 `json:"percent"`
	Unit            string  `json:"unit"`
	Status          string  `json:"status"`
	Category        string  `json:"category,omitempty"`
	Priority        int     `json:"priority"`
}

func targetToOutput(t *models.Target) TargetOutput {
	return TargetOutput{
		ID:              t.ID.String(),
		Title:           t.Title,
		Type:            string(t.Type),
		StartDate:       t.StartDate.Format(models.DateLayout),
		EndDate:         t.EndDate.Format(models.DateLayout),
		TargetValue:     t.TargetValue,
		CurrentProgress: t.CurrentProgress,
		Percent:         t.Percent(),
		Unit:            t.Unit,
		Status:          string(t.Status),
		Category:        t.Category,
		Priority:        t.Priority,
	}
}

type CampaignOutput struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Type     string                 `json:"type"`
	Status   string                 `json:"status"`
	Priority string                 `json:"priority"`
	Start    string                 `json:"start_date"`
	Metrics  models.CampaignMetrics `json:"metrics"`
}

func campaignToOutput(c *models.Campaign) CampaignOutput {
	return CampaignOutput{
		ID:       c.ID.String(),
		Name:     c.Name,
		Type:     string(c.Type),
		Status:   string(c.Status),
		Priority: string(c.Priority),
		Start:    c.StartDate.Format(models.DateLayout),
		Metrics:  c.Metrics(),
	}
}

type IntegrationOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Provider  string `json:"provider"`
	Status    string `json:"status"`
	Connected bool   `json:"is_connected"`
	LastSync  string `json:"last_sync,omitempty"`
	Error     string `json:"error,omitempty"`
}

func integrationToOutput(i *models.Integration) IntegrationOutput {
	out := IntegrationOutput{
		ID:        i.ID.String(),
		Name:      i.Name,
		Type:      string(i.Type),
		Provider:  string(i.Provider),
		Status:    string(i.Status),
		Connected: i.Connected,
		Error:     i.Error,
	}
	if i.LastSync != nil {
		out.LastSync = i.LastSync.Format(time.RFC3339)
	}
	return out
}
