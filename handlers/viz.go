// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides generate_outreach_graph and outreach_dashboard tools for agents
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/remotearmz/commandcenter/analytics"
	"github.com/remotearmz/commandcenter/viz"
)

type VizHandlers struct {
	db  *sql.DB
	agg *analytics.Aggregator
}

func NewVizHandlers(database *sql.DB, agg *analytics.Aggregator) *VizHandlers {
	return &VizHandlers{db: database, agg: agg}
}

type GenerateGraphInput struct {
	ClientID string `json:"client_id,omitempty" jsonschema:"Limit the graph to one client"`
}

type GenerateGraphOutput struct {
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, _ *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	var clientID *uuid.UUID
	if input.ClientID != "" {
		id, err := uuid.Parse(input.ClientID)
		if err != nil {
			return nil, GenerateGraphOutput{}, fmt.Errorf("invalid client_id: %w", err)
		}
		clientID = &id
	}

	dot, err := viz.NewGraphGenerator(h.db).GenerateOutreachGraph(ctx, clientID)
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	return nil, GenerateGraphOutput{
		DOTSource: dot,
		NodeCount: strings.Count(dot, "[label="),
		EdgeCount: strings.Count(dot, "->"),
	}, nil
}

type DashboardInput struct{}

type DashboardOutput struct {
	Text string `json:"text"`
}

func (h *VizHandlers) Dashboard(ctx context.Context, _ *mcp.CallToolRequest, _ DashboardInput) (*mcp.CallToolResult, DashboardOutput, error) {
	stats, err := viz.GenerateDashboardStats(ctx, h.db, h.agg)
	if err != nil {
		return nil, DashboardOutput{}, err
	}
	text := viz.RenderDashboard(stats)
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}, DashboardOutput{Text: text}, nil
}
