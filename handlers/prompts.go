// ABOUTME: MCP prompt handlers for reusable outreach workflow templates
// ABOUTME: Builds client summaries, weekly outreach reviews, and lead pipeline reviews
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/remotearmz/commandcenter/analytics"
	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/models"
)

type PromptHandlers struct {
	clients  *db.ClientRepository
	leads    *db.LeadRepository
	outreach *db.OutreachRepository
	agg      *analytics.Aggregator
}

func NewPromptHandlers(database *sql.DB, agg *analytics.Aggregator) *PromptHandlers {
	return &PromptHandlers{
		clients:  db.NewClientRepository(database),
		leads:    db.NewLeadRepository(database),
		outreach: db.NewOutreachRepository(database),
		agg:      agg,
	}
}

// Prompts lists the prompts for registration.
func (h *PromptHandlers) Prompts() []*mcp.Prompt {
	return []*mcp.Prompt{
		{
			Name:        "client-summary",
			Description: "Summarize a client and its outreach history",
			Arguments: []*mcp.PromptArgument{
				{Name: "client_id", Description: "Client ID", Required: true},
			},
		},
		{
			Name:        "outreach-review",
			Description: "Review the last 7 days of outreach and suggest improvements",
		},
		{
			Name:        "lead-pipeline",
			Description: "Review open leads and suggest who to contact next",
		},
	}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "client-summary":
		return h.clientSummary(ctx, request.Params.Arguments)
	case "outreach-review":
		return h.outreachReview(ctx)
	case "lead-pipeline":
		return h.leadPipeline(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) clientSummary(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	idStr, ok := args["client_id"]
	if !ok {
		return nil, fmt.Errorf("client_id is required")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid client_id: %w", err)
	}

	client, err := h.clients.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("client not found: %s", idStr)
	}
	history, err := h.outreach.ListByClient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outreach: %w", err)
	}

	var b strings.Builder
	b.WriteString("Please summarize this client relationship:\n\n")
	fmt.Fprintf(&b, "Name: %s\nStatus: %s\nMonthly charge: %.2f\n", client.Name, client.Status, client.MonthlyCharge)
	if len(client.Deliverables) > 0 {
		fmt.Fprintf(&b, "Deliverables: %s\n", strings.Join(client.Deliverables, ", "))
	}
	if client.PaymentDate != "" {
		fmt.Fprintf(&b, "Payment date: %s\n", client.PaymentDate)
	}

	fmt.Fprintf(&b, "\nOutreach (%d records, conversion %.1f%%):\n", len(history), analytics.ConversionRate(history))
	for i, o := range history {
		if i == 10 {
			fmt.Fprintf(&b, "... and %d more\n", len(history)-10)
			break
		}
		fmt.Fprintf(&b, "- %s %s (%s)", o.OutreachDate.Format(models.DateLayout), o.Type.Label(), o.Status)
		if o.Notes != "" {
			fmt.Fprintf(&b, ": %s", o.Notes)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nPlease provide:")
	b.WriteString("\n1. How healthy the relationship looks")
	b.WriteString("\n2. Which outreach channels are working")
	b.WriteString("\n3. Recommended next outreach")

	return textPrompt(fmt.Sprintf("Summary for client: %s", client.Name), b.String()), nil
}

func (h *PromptHandlers) outreachReview(ctx context.Context) (*mcp.GetPromptResult, error) {
	week, err := h.agg.Weekly(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute weekly analytics: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Outreach from %s to %s:\n\n", week.Start.Format(models.DateLayout), week.End.Format(models.DateLayout))
	fmt.Fprintf(&b, "Total: %d\nCompleted: %d\nConversion: %.1f%%\n", week.Total, week.Successful, week.ConversionRate)
	fmt.Fprintf(&b, "Average response time: %s\n", week.AverageResponseTime)
	fmt.Fprintf(&b, "Top channel: %s\nWeakest channel: %s\n\n", week.TopPerformingType.Label(), week.LeastPerformingType.Label())

	b.WriteString("By channel:\n")
	for _, t := range models.AllOutreachTypes {
		if n, ok := week.ByType[t]; ok {
			fmt.Fprintf(&b, "- %s: %d\n", t.Label(), n)
		}
	}
	b.WriteString("\nDaily totals (most recent first):\n")
	for _, day := range week.WeeklyTrend {
		fmt.Fprintf(&b, "- %s: %d (%.0f%% completed)\n", day.Date.Format(models.DateLayout), day.Total, day.ConversionRate)
	}

	b.WriteString("\nPlease review this week's outreach and suggest:")
	b.WriteString("\n1. Channels to invest more in")
	b.WriteString("\n2. Days or habits that look weak")
	b.WriteString("\n3. Concrete goals for next week")

	return textPrompt("Weekly outreach review", b.String()), nil
}

func (h *PromptHandlers) leadPipeline(ctx context.Context) (*mcp.GetPromptResult, error) {
	counts, err := h.leads.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	leads, err := h.leads.List(ctx, db.LeadFilter{Limit: 50})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}

	var b strings.Builder
	b.WriteString("Lead pipeline:\n\n")
	for _, s := range models.AllLeadStatuses {
		fmt.Fprintf(&b, "- %s: %d\n", s, counts[s])
	}

	b.WriteString("\nOpen leads:\n")
	for _, l := range leads {
		if l.Status.Closed() {
			continue
		}
		fmt.Fprintf(&b, "- %s", l.Name)
		if l.Company != "" {
			fmt.Fprintf(&b, " (%s)", l.Company)
		}
		fmt.Fprintf(&b, " [%s, via %s]\n", l.Status, l.Source)
	}

	b.WriteString("\nPlease suggest which leads to contact next and through which channel.")
	return textPrompt("Lead pipeline review", b.String()), nil
}

func textPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}
