// ABOUTME: Derived analytics records computed from outreach history
// ABOUTME: Never persisted; produced on demand by the analytics package
package models

import (
	"encoding/json"
	"time"
)

// OutreachAnalytics aggregates the outreach records of a single day.
type OutreachAnalytics struct {
	Date                time.Time              `json:"date"`
	Total               int                    `json:"outreach_count"`
	Successful          int                    `json:"successful_outreach"`
	ByType              map[OutreachType]int   `json:"by_type"`
	ByStatus            map[OutreachStatus]int `json:"by_status"`
	ConversionRate      float64                `json:"conversion_rate"`
	AverageResponseTime time.Duration          `json:"-"`
	TopPerformingType   OutreachType           `json:"top_performing_type"`
	LeastPerformingType OutreachType           `json:"least_performing_type"`
}

// AverageResponseMillis returns the average response time in whole milliseconds.
func (a OutreachAnalytics) AverageResponseMillis() int64 {
	return a.AverageResponseTime.Milliseconds()
}

// MarshalJSON reports the average response time as whole milliseconds.
func (a OutreachAnalytics) MarshalJSON() ([]byte, error) {
	type plain OutreachAnalytics
	return json.Marshal(struct {
		plain
		AverageResponseMillis int64 `json:"average_response_time_ms"`
	}{plain(a), a.AverageResponseMillis()})
}

// OutreachAnalyticsSummary aggregates a multi-day window and carries the
// per-day trends for the trailing week and month.
type OutreachAnalyticsSummary struct {
	Start               time.Time              `json:"start"`
	End                 time.Time              `json:"end"`
	Total               int                    `json:"total_outreach"`
	Successful          int                    `json:"successful_outreach"`
	ConversionRate      float64                `json:"conversion_rate"`
	AverageResponseTime time.Duration          `json:"-"`
	ByType              map[OutreachType]int   `json:"by_type"`
	ByStatus            map[OutreachStatus]int `json:"by_status"`
	TopPerformingType   OutreachType           `json:"top_performing_type"`
	LeastPerformingType OutreachType           `json:"least_performing_type"`
	WeeklyTrend         []OutreachAnalytics    `json:"weekly_trend"`
	MonthlyTrend        []OutreachAnalytics    `json:"monthly_trend"`
}

func (s OutreachAnalyticsSummary) AverageResponseMillis() int64 {
	return s.AverageResponseTime.Milliseconds()
}

func (s OutreachAnalyticsSummary) MarshalJSON() ([]byte, error) {
	type plain OutreachAnalyticsSummary
	return json.Marshal(struct {
		plain
		AverageResponseMillis int64 `json:"average_response_time_ms"`
	}{plain(s), s.AverageResponseMillis()})
}
