// ABOUTME: Pure aggregation of outreach records into analytics values
// ABOUTME: Conversion rate, response time, grouped counts, and top/least type selection
package analytics

import (
	"time"

	"github.com/remotearmz/commandcenter/models"
)

// FallbackType is reported as both top and least performing type when there
// is nothing to rank.
const FallbackType = models.OutreachEmail

// Summarize aggregates records into a single analytics value stamped with date.
// Grouped counts only contain observed values.
func Summarize(date time.Time, records []models.Outreach) models.OutreachAnalytics {
	byType := CountByType(records)
	return models.OutreachAnalytics{
		Date:                date,
		Total:               len(records),
		Successful:          countCompleted(records),
		ByType:              byType,
		ByStatus:            CountByStatus(records),
		ConversionRate:      ConversionRate(records),
		AverageResponseTime: AverageResponseTime(records),
		TopPerformingType:   topType(byType),
		LeastPerformingType: leastType(byType),
	}
}

// ConversionRate is the percentage of records that are completed, 0 for none.
func ConversionRate(records []models.Outreach) float64 {
	if len(records) == 0 {
		return 0
	}
	return float64(countCompleted(records)) / float64(len(records)) * 100
}

// AverageResponseTime is the mean of OutreachDate minus CreatedAt over
// completed records, truncated to whole milliseconds. Negative gaps are kept.
func AverageResponseTime(records []models.Outreach) time.Duration {
	var sum, n int64
	for _, o := range records {
		if o.Status != models.OutreachCompleted {
			continue
		}
		sum += o.ResponseTime().Milliseconds()
		n++
	}
	if n == 0 {
		return 0
	}
	return time.Duration(sum/n) * time.Millisecond
}

func CountByType(records []models.Outreach) map[models.OutreachType]int {
	counts := make(map[models.OutreachType]int)
	for _, o := range records {
		counts[o.Type]++
	}
	return counts
}

func CountByStatus(records []models.Outreach) map[models.OutreachStatus]int {
	counts := make(map[models.OutreachStatus]int)
	for _, o := range records {
		counts[o.Status]++
	}
	return counts
}

func countCompleted(records []models.Outreach) int {
	n := 0
	for _, o := range records {
		if o.Status == models.OutreachCompleted {
			n++
		}
	}
	return n
}

// topType walks types in declaration order so the first of a tie wins.
func topType(counts map[models.OutreachType]int) models.OutreachType {
	best, bestCount := FallbackType, -1
	for _, t := range models.AllOutreachTypes {
		c, ok := counts[t]
		if ok && c > bestCount {
			best, bestCount = t, c
		}
	}
	return best
}

func leastType(counts map[models.OutreachType]int) models.OutreachType {
	least, leastCount := FallbackType, 0
	found := false
	for _, t := range models.AllOutreachTypes {
		c, ok := counts[t]
		if !ok {
			continue
		}
		if !found || c < leastCount {
			least, leastCount, found = t, c, true
		}
	}
	return least
}

func filterRecords(records []models.Outreach, keep func(models.Outreach) bool) []models.Outreach {
	var out []models.Outreach
	for _, o := range records {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
