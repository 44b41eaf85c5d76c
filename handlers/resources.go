// ABOUTME: MCP resource handlers exposing CRM data read-only by URI
// ABOUTME: Serves commandcenter://clients, leads, outreach, and analytics dashboards as JSON
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/remotearmz/commandcenter/analytics"
	"github.com/remotearmz/commandcenter/db"
)

// ResourceScheme prefixes every resource URI.
const ResourceScheme = "commandcenter://"

type ResourceHandlers struct {
	clients  *db.ClientRepository
	leads    *db.LeadRepository
	outreach *db.OutreachRepository
	agg      *analytics.Aggregator
}

func NewResourceHandlers(database *sql.DB, agg *analytics.Aggregator) *ResourceHandlers {
	return &ResourceHandlers{
		clients:  db.NewClientRepository(database),
		leads:    db.NewLeadRepository(database),
		outreach: db.NewOutreachRepository(database),
		agg:      agg,
	}
}

// Resources lists the fixed resources for registration.
func (h *ResourceHandlers) Resources() []*mcp.Resource {
	return []*mcp.Resource{
		{URI: ResourceScheme + "clients", Name: "clients", Description: "All clients", MIMEType: "application/json"},
		{URI: ResourceScheme + "leads", Name: "leads", Description: "All leads", MIMEType: "application/json"},
		{URI: ResourceScheme + "outreach", Name: "outreach", Description: "Most recent outreach", MIMEType: "application/json"},
		{URI: ResourceScheme + "analytics/weekly", Name: "weekly-analytics", Description: "Outreach analytics for the last 7 days", MIMEType: "application/json"},
		{URI: ResourceScheme + "analytics/monthly", Name: "monthly-analytics", Description: "Outreach analytics for the last 30 days", MIMEType: "application/json"},
	}
}

// ClientTemplate addresses a single client and its outreach.
func (h *ResourceHandlers) ClientTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		URITemplate: ResourceScheme + "clients/{id}",
		Name:        "client",
		Description: "A client with its outreach history",
		MIMEType:    "application/json",
	}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, ResourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", ResourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, ResourceScheme), "/")
	var payload any
	var err error
	switch parts[0] {
	case "clients":
		if len(parts) == 1 {
			payload, err = h.clients.List(ctx, db.ClientFilter{})
		} else {
			payload, err = h.readClient(ctx, parts[1])
		}
	case "leads":
		payload, err = h.leads.List(ctx, db.LeadFilter{})
	case "outreach":
		payload, err = h.outreach.List(ctx, 100)
	case "analytics":
		if len(parts) < 2 {
			return nil, fmt.Errorf("analytics resource needs a window: weekly or monthly")
		}
		switch parts[1] {
		case "weekly":
			payload, err = h.agg.Weekly(ctx)
		case "monthly":
			payload, err = h.agg.Monthly(ctx)
		default:
			return nil, fmt.Errorf("unknown analytics window: %s", parts[1])
		}
	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", uri, err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

type clientResource struct {
	Client   any `json:"client"`
	Outreach any `json:"outreach"`
}

func (h *ResourceHandlers) readClient(ctx context.Context, idStr string) (any, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid client ID: %w", err)
	}
	client, err := h.clients.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("client not found: %s", idStr)
	}
	outreach, err := h.outreach.ListByClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return clientResource{Client: client, Outreach: outreach}, nil
}
