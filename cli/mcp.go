// ABOUTME: MCP server subcommand
// ABOUTME: Registers outreach, analytics, and query tools plus resources and prompts on stdio
package cli

import (
	"context"
	"database/sql"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/remotearmz/commandcenter/analytics"
	"github.com/remotearmz/commandcenter/handlers"
	"go.uber.org/zap"
)

// NewMCPServer builds the server with every tool, resource, and prompt registered.
func NewMCPServer(db *sql.DB, agg *analytics.Aggregator, version string) *mcp.Server {
	clientHandlers := handlers.NewClientHandlers(db)
	outreachHandlers := handlers.NewOutreachHandlers(db, agg.Location())
	analyticsHandlers := handlers.NewAnalyticsHandlers(agg)
	queryHandlers := handlers.NewQueryHandlers(db)
	vizHandlers := handlers.NewVizHandlers(db, agg)
	resourceHandlers := handlers.NewResourceHandlers(db, agg)
	promptHandlers := handlers.NewPromptHandlers(db, agg)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "commandcenter",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_client",
		Description: "Add a new retainer client",
	}, clientHandlers.AddClient)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_clients",
		Description: "Search clients by name or email, with total monthly revenue",
	}, clientHandlers.FindClients)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_lead",
		Description: "Add a new lead to the pipeline",
	}, clientHandlers.AddLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_leads",
		Description: "Search leads and show the pipeline by status",
	}, clientHandlers.FindLeads)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_outreach",
		Description: "Log an email, call, message, post, or meeting with a client",
	}, outreachHandlers.LogOutreach)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_outreach",
		Description: "Find outreach by client, lead, or date range",
	}, outreachHandlers.FindOutreach)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_outreach_status",
		Description: "Mark outreach as pending, completed, scheduled, or cancelled",
	}, outreachHandlers.UpdateOutreachStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "daily_analytics",
		Description: "Outreach totals, conversion rate, and channel breakdown for one day",
	}, analyticsHandlers.DailyAnalytics)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "weekly_analytics",
		Description: "Outreach summary for the trailing week with daily trends",
	}, analyticsHandlers.WeeklyAnalytics)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "monthly_analytics",
		Description: "Outreach summary for the trailing month with daily trends",
	}, analyticsHandlers.MonthlyAnalytics)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analytics_by_type",
		Description: "Daily history over the last month for one outreach channel",
	}, analyticsHandlers.AnalyticsByType)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analytics_by_status",
		Description: "Daily history over the last month for one outreach status",
	}, analyticsHandlers.AnalyticsByStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_crm",
		Description: "Universal query tool for filtering clients, leads, targets, campaigns, and integrations",
	}, queryHandlers.QueryCRM)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_outreach_graph",
		Description: "Generate a GraphViz graph of outreach between clients, leads, and channels",
	}, vizHandlers.GenerateGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "outreach_dashboard",
		Description: "Render a text dashboard of outreach, clients, leads, and goals",
	}, vizHandlers.Dashboard)

	for _, r := range resourceHandlers.Resources() {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	server.AddResourceTemplate(resourceHandlers.ClientTemplate(), resourceHandlers.ReadResource)

	for _, p := range promptHandlers.Prompts() {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, db *sql.DB, agg *analytics.Aggregator, logger *zap.Logger, version string) error {
	logger.Info("starting MCP server", zap.String("version", version))
	return NewMCPServer(db, agg, version).Run(ctx, &mcp.StdioTransport{})
}
