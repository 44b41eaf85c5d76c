// ABOUTME: Analytics MCP tool handlers
// ABOUTME: Implements daily, weekly, monthly, by-type, and by-status outreach analytics tools
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/remotearmz/commandcenter/analytics"
	"github.com/remotearmz/commandcenter/models"
)

type AnalyticsHandlers struct {
	agg *analytics.Aggregator
}

func NewAnalyticsHandlers(agg *analytics.Aggregator) *AnalyticsHandlers {
	return &AnalyticsHandlers{agg: agg}
}

// DayOutput is one day of outreach analytics. Maps are keyed by the
// lowercase enum value and hold only observed values.
type DayOutput struct {
	Date                  string         `json:"date"`
	OutreachCount         int            `json:"outreach_count"`
	SuccessfulOutreach    int            `json:"successful_outreach"`
	ConversionRate        float64        `json:"conversion_rate"`
	AverageResponseTimeMs int64          `json:"average_response_time_ms"`
	ByType                map[string]int `json:"by_type"`
	ByStatus              map[string]int `json:"by_status"`
	TopPerformingType     string         `json:"top_performing_type"`
	LeastPerformingType   string         `json:"least_performing_type"`
}

type SummaryOutput struct {
	Start                 string         `json:"start"`
	End                   string         `json:"end"`
	TotalOutreach         int            `json:"total_outreach"`
	SuccessfulOutreach    int            `json:"successful_outreach"`
	ConversionRate        float64        `json:"conversion_rate"`
	AverageResponseTimeMs int64          `json:"average_response_time_ms"`
	ByType                map[string]int `json:"by_type"`
	ByStatus              map[string]int `json:"by_status"`
	TopPerformingType     string         `json:"top_performing_type"`
	LeastPerformingType   string         `json:"least_performing_type"`
	WeeklyTrend           []DayOutput    `json:"weekly_trend"`
	MonthlyTrend          []DayOutput    `json:"monthly_trend"`
}

type TrendOutput struct {
	Days []DayOutput `json:"days"`
}

type DailyAnalyticsInput struct {
	Date string `json:"date,omitempty" jsonschema:"Day to analyse as YYYY-MM-DD (default today)"`
}

func (h *AnalyticsHandlers) DailyAnalytics(ctx context.Context, _ *mcp.CallToolRequest, input DailyAnalyticsInput) (*mcp.CallToolResult, DayOutput, error) {
	date := h.agg.Today()
	if input.Date != "" {
		var err error
		date, err = time.ParseInLocation(models.DateLayout, input.Date, h.agg.Location())
		if err != nil {
			return nil, DayOutput{}, fmt.Errorf("invalid date: %w", err)
		}
	}

	day, err := h.agg.Daily(ctx, date)
	if err != nil {
		return nil, DayOutput{}, fmt.Errorf("failed to compute daily analytics: %w", err)
	}
	return nil, dayToOutput(day), nil
}

type WindowAnalyticsInput struct{}

func (h *AnalyticsHandlers) WeeklyAnalytics(ctx context.Context, _ *mcp.CallToolRequest, _ WindowAnalyticsInput) (*mcp.CallToolResult, SummaryOutput, error) {
	summary, err := h.agg.Weekly(ctx)
	if err != nil {
		return nil, SummaryOutput{}, fmt.Errorf("failed to compute weekly analytics: %w", err)
	}
	return nil, summaryToOutput(summary), nil
}

func (h *AnalyticsHandlers) MonthlyAnalytics(ctx context.Context, _ *mcp.CallToolRequest, _ WindowAnalyticsInput) (*mcp.CallToolResult, SummaryOutput, error) {
	summary, err := h.agg.Monthly(ctx)
	if err != nil {
		return nil, SummaryOutput{}, fmt.Errorf("failed to compute monthly analytics: %w", err)
	}
	return nil, summaryToOutput(summary), nil
}

type AnalyticsByTypeInput struct {
	Type string `json:"outreach_type" jsonschema:"email, phone_call, linkedin_message, social_media_post, meeting, or other"`
}

func (h *AnalyticsHandlers) AnalyticsByType(ctx context.Context, _ *mcp.CallToolRequest, input AnalyticsByTypeInput) (*mcp.CallToolResult, TrendOutput, error) {
	t, err := models.ParseOutreachType(input.Type)
	if err != nil {
		return nil, TrendOutput{}, err
	}
	days, err := h.agg.ByType(ctx, t)
	if err != nil {
		return nil, TrendOutput{}, fmt.Errorf("failed to compute analytics by type: %w", err)
	}
	return nil, TrendOutput{Days: daysToOutput(days)}, nil
}

type AnalyticsByStatusInput struct {
	Status string `json:"status" jsonschema:"pending, completed, scheduled, or cancelled"`
}

func (h *AnalyticsHandlers) AnalyticsByStatus(ctx context.Context, _ *mcp.CallToolRequest, input AnalyticsByStatusInput) (*mcp.CallToolResult, TrendOutput, error) {
	s, err := models.ParseOutreachStatus(input.Status)
	if err != nil {
		return nil, TrendOutput{}, err
	}
	days, err := h.agg.ByStatus(ctx, s)
	if err != nil {
		return nil, TrendOutput{}, fmt.Errorf("failed to compute analytics by status: %w", err)
	}
	return nil, TrendOutput{Days: daysToOutput(days)}, nil
}

func dayToOutput(a models.OutreachAnalytics) DayOutput {
	return DayOutput{
		Date:                  a.Date.Format(models.DateLayout),
		OutreachCount:         a.Total,
		SuccessfulOutreach:    a.Successful,
		ConversionRate:        a.ConversionRate,
		AverageResponseTimeMs: a.AverageResponseMillis(),
		ByType:                stringKeys(a.ByType),
		ByStatus:              stringKeys(a.ByStatus),
		TopPerformingType:     string(a.TopPerformingType),
		LeastPerformingType:   string(a.LeastPerformingType),
	}
}

func daysToOutput(days []models.OutreachAnalytics) []DayOutput {
	out := make([]DayOutput, len(days))
	for i, d := range days {
		out[i] = dayToOutput(d)
	}
	return out
}

func summaryToOutput(s models.OutreachAnalyticsSummary) SummaryOutput {
	return SummaryOutput{
		Start:                 s.Start.Format(models.DateLayout),
		End:                   s.End.Format(models.DateLayout),
		TotalOutreach:         s.Total,
		SuccessfulOutreach:    s.Successful,
		ConversionRate:        s.ConversionRate,
		AverageResponseTimeMs: s.AverageResponseMillis(),
		ByType:                stringKeys(s.ByType),
		ByStatus:              stringKeys(s.ByStatus),
		TopPerformingType:     string(s.TopPerformingType),
		LeastPerformingType:   string(s.LeastPerformingType),
		WeeklyTrend:           daysToOutput(s.WeeklyTrend),
		MonthlyTrend:          daysToOutput(s.MonthlyTrend),
	}
}

func stringKeys[K ~string](m map[K]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
