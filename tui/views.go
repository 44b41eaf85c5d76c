// ABOUTME: Rendering for the dashboard tabs
// ABOUTME: Overview, daily trend, per-channel history, outreach table, and backup status
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/remotearmz/commandcenter/models"
)

const barWidth = 20

func (m Model) renderTabs() string {
	rendered := make([]string, len(tabNames))
	for i, tab := range tabNames {
		if ViewMode(i) == m.viewMode {
			rendered[i] = tabActiveStyle.Render(tab)
		} else {
			rendered[i] = tabInactiveStyle.Render(tab)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

func (m Model) renderOverview() string {
	w, mo := m.overview.Weekly, m.overview.Monthly
	lines := []string{
		row("This week", fmt.Sprintf("%d outreach, %d completed", w.Total, w.Successful)),
		row("Weekly conversion", fmt.Sprintf("%.1f%%", w.ConversionRate)),
		row("This month", fmt.Sprintf("%d outreach, %d completed", mo.Total, mo.Successful)),
		row("Monthly conversion", fmt.Sprintf("%.1f%%", mo.ConversionRate)),
		row("Avg response", mo.AverageResponseTime.String()),
		row("Top channel", mo.TopPerformingType.Label()),
		row("Least used channel", mo.LeastPerformingType.Label()),
	}
	return strings.Join(lines, "\n")
}

func bar(n, max int) string {
	filled := 0
	if max > 0 {
		filled = n * barWidth / max
	}
	return barStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("░", barWidth-filled)
}

func renderDays(days []models.OutreachAnalytics) string {
	peak := 0
	for _, d := range days {
		peak = max(peak, d.Total)
	}
	lines := make([]string, len(days))
	for i, d := range days {
		lines[i] = fmt.Sprintf("%s  %s %3d  %5.1f%%",
			d.Date.Format("Mon 01/02"), bar(d.Total, peak), d.Total, d.ConversionRate)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTrend() string {
	return "Last 7 days\n\n" + renderDays(m.overview.Weekly.WeeklyTrend)
}

func (m Model) renderChannels() string {
	var s strings.Builder
	for i, t := range models.AllOutreachTypes {
		name := fmt.Sprintf("%s (%d this month)", t.Label(), m.overview.Monthly.ByType[t])
		if i == m.channel {
			s.WriteString(tabActiveStyle.Render(name))
		} else {
			s.WriteString(tabInactiveStyle.Render(name))
		}
		s.WriteString("\n")
	}
	s.WriteString("\n")
	// a week of history fits a standard terminal
	days := m.channelDays
	if len(days) > 8 {
		days = days[:8]
	}
	s.WriteString(renderDays(days))
	return s.String()
}

func (m Model) renderOutreach() string {
	if len(m.recent) == 0 {
		return "No outreach logged yet"
	}
	columns := []table.Column{
		{Title: "Date", Width: 16},
		{Title: "Channel", Width: 18},
		{Title: "Status", Width: 10},
		{Title: "Notes", Width: 30},
	}
	rows := make([]table.Row, len(m.recent))
	for i, o := range m.recent {
		rows[i] = table.Row{
			o.OutreachDate.In(m.agg.Location()).Format("2006-01-02 15:04"),
			o.Type.Label(),
			string(o.Status),
			o.Notes,
		}
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 5)),
	)
	t.SetCursor(m.selectedRow)
	return t.View()
}

func (m Model) renderBackup() string {
	if m.backups == nil {
		return "Backups are not configured"
	}
	lines := []string{row("Provider", m.backups.Provider())}
	switch {
	case m.backupRunning:
		lines = append(lines, m.spinner.View()+" Backing up...")
	case m.lastBackup == nil:
		lines = append(lines, "No backup run this session")
	case m.lastBackup.Succeeded():
		lines = append(lines, okStyle.Render(fmt.Sprintf("✓ %s (%d bytes)", m.lastBackup.Name, m.lastBackup.Size)))
	default:
		lines = append(lines, errStyle.Render("✗ Backup failed: "+m.lastBackup.Error))
	}
	return strings.Join(lines, "\n")
}
