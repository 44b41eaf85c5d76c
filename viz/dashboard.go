// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides an ASCII overview of outreach trends, clients, leads, and goals
package viz

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/remotearmz/commandcenter/analytics"
	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/models"
)

// barWidth is the number of blocks in a full bar.
const barWidth = 10

type DashboardStats struct {
	Weekly  models.OutreachAnalyticsSummary
	Monthly models.OutreachAnalyticsSummary

	ActiveClients  int
	MonthlyRevenue float64
	LeadsByStatus  map[models.LeadStatus]int

	// Needs attention
	OverdueTargets  []models.Target
	ActiveCampaigns []models.Campaign
}

func GenerateDashboardStats(ctx context.Context, database *sql.DB, agg *analytics.Aggregator) (*DashboardStats, error) {
	overview, err := agg.Overview(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute analytics: %w", err)
	}
	stats := &DashboardStats{Weekly: overview.Weekly, Monthly: overview.Monthly}

	clients := db.NewClientRepository(database)
	active, err := clients.List(ctx, db.ClientFilter{Status: models.ClientActive})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clients: %w", err)
	}
	stats.ActiveClients = len(active)
	if stats.MonthlyRevenue, err = clients.MonthlyRevenue(ctx); err != nil {
		return nil, fmt.Errorf("failed to compute revenue: %w", err)
	}

	if stats.LeadsByStatus, err = db.NewLeadRepository(database).CountByStatus(ctx); err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	if stats.OverdueTargets, err = db.NewTargetRepository(database).Overdue(ctx, agg.Today()); err != nil {
		return nil, fmt.Errorf("failed to fetch overdue targets: %w", err)
	}
	campaigns, err := db.NewCampaignRepository(database).List(ctx, db.CampaignFilter{Status: models.CampaignActive})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch campaigns: %w", err)
	}
	stats.ActiveCampaigns = campaigns

	return stats, nil
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  COMMAND CENTER\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("THIS WEEK\n")
	renderSummary(&out, stats.Weekly)
	out.WriteString("\n")

	out.WriteString("DAILY OUTREACH (most recent first)\n")
	renderTrend(&out, stats.Weekly.WeeklyTrend)
	out.WriteString("\n")

	out.WriteString("CHANNELS (30 days)\n")
	renderChannels(&out, stats.Monthly.ByType)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	leads := 0
	for _, n := range stats.LeadsByStatus {
		leads += n
	}
	fmt.Fprintf(&out, "  👥 %d active clients  💰 %.2f/month  🎯 %d leads (%d won)\n\n",
		stats.ActiveClients, stats.MonthlyRevenue, leads, stats.LeadsByStatus[models.LeadWon])

	if len(stats.OverdueTargets) > 0 || len(stats.ActiveCampaigns) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		for _, t := range stats.OverdueTargets {
			fmt.Fprintf(&out, "  ⚠️  %s overdue since %s (%.0f%%)\n",
				t.Title, t.EndDate.Format(models.DateLayout), t.Percent())
		}
		for _, c := range stats.ActiveCampaigns {
			m := c.Metrics()
			fmt.Fprintf(&out, "  📣 %s: %d sent, %.1f%% response\n", c.Name, m.Sent, m.ResponseRate)
		}
	}

	return out.String()
}

func renderSummary(out *strings.Builder, s models.OutreachAnalyticsSummary) {
	fmt.Fprintf(out, "  %d outreach, %d completed (%.1f%%)\n", s.Total, s.Successful, s.ConversionRate)
	fmt.Fprintf(out, "  avg response %s, top %s, weakest %s\n",
		s.AverageResponseTime, s.TopPerformingType.Label(), s.LeastPerformingType.Label())
}

func renderTrend(out *strings.Builder, days []models.OutreachAnalytics) {
	maxCount := 0
	for _, d := range days {
		maxCount = max(maxCount, d.Total)
	}
	for _, d := range days {
		fmt.Fprintf(out, "  %s %s %3d\n", d.Date.Format("Mon 01-02"), bar(d.Total, maxCount), d.Total)
	}
}

func renderChannels(out *strings.Builder, byType map[models.OutreachType]int) {
	maxCount := 0
	for _, n := range byType {
		maxCount = max(maxCount, n)
	}
	for _, t := range models.AllOutreachTypes {
		n, ok := byType[t]
		if !ok {
			continue
		}
		fmt.Fprintf(out, "  %-18s %s %3d\n", t.Label(), bar(n, maxCount), n)
	}
}

// bar scales n against maxCount into a fixed-width block bar.
func bar(n, maxCount int) string {
	if maxCount == 0 {
		maxCount = 1
	}
	filled := n * barWidth / maxCount
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}
