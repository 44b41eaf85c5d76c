// ABOUTME: Analytics CLI commands
// ABOUTME: Prints daily, weekly, monthly, per-channel, and per-status outreach analytics
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strings"

	"github.com/remotearmz/commandcenter/analytics"
	"github.com/remotearmz/commandcenter/models"
)

// AnalyticsCommand dispatches analytics subcommands: daily, weekly, monthly,
// trend, type, status.
func AnalyticsCommand(agg *analytics.Aggregator, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("analytics requires a subcommand (daily, weekly, monthly, trend, type, status)")
	}
	sub, rest := args[0], args[1:]

	fs := flag.NewFlagSet("analytics "+sub, flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	date := fs.String("date", "", "Day to report (YYYY-MM-DD, daily only)")
	days := fs.Int("days", analytics.WeekDays, "Days of history (trend only)")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	ctx := context.Background()
	var result any
	switch sub {
	case "daily":
		when := agg.Today()
		if *date != "" {
			var err error
			if when, err = parseWhen(*date, agg.Location()); err != nil {
				return err
			}
		}
		day, err := agg.Daily(ctx, when)
		if err != nil {
			return err
		}
		result = day
		if !*asJSON {
			printDay(day)
			return nil
		}
	case "weekly", "monthly":
		summary, err := agg.Weekly(ctx)
		if sub == "monthly" {
			summary, err = agg.Monthly(ctx)
		}
		if err != nil {
			return err
		}
		result = summary
		if !*asJSON {
			printSummary(strings.ToUpper(sub), summary)
			return nil
		}
	case "trend":
		trend, err := agg.Trend(ctx, *days)
		if err != nil {
			return err
		}
		result = trend
		if !*asJSON {
			printDays(trend)
			return nil
		}
	case "type", "status":
		if fs.NArg() < 1 {
			return fmt.Errorf("analytics %s requires a value", sub)
		}
		var series []models.OutreachAnalytics
		if sub == "type" {
			t, err := models.ParseOutreachType(fs.Arg(0))
			if err != nil {
				return err
			}
			if series, err = agg.ByType(ctx, t); err != nil {
				return err
			}
		} else {
			s, err := models.ParseOutreachStatus(fs.Arg(0))
			if err != nil {
				return err
			}
			if series, err = agg.ByStatus(ctx, s); err != nil {
				return err
			}
		}
		result = series
		if !*asJSON {
			printDays(series)
			return nil
		}
	default:
		return fmt.Errorf("unknown analytics command: %s", sub)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func printDay(day models.OutreachAnalytics) {
	_, _ = fmt.Fprintf(stdout, "%s\n\n", day.Date.Format("Monday, January 2 2006"))
	_, _ = fmt.Fprintf(stdout, "Outreach:         %d (%d completed)\n", day.Total, day.Successful)
	_, _ = fmt.Fprintf(stdout, "Conversion:       %.1f%%\n", day.ConversionRate)
	_, _ = fmt.Fprintf(stdout, "Avg response:     %s\n", day.AverageResponseTime)
	_, _ = fmt.Fprintf(stdout, "Top channel:      %s\n", day.TopPerformingType.Label())
	_, _ = fmt.Fprintf(stdout, "Least channel:    %s\n", day.LeastPerformingType.Label())
	printBreakdown(day.ByType, day.ByStatus)
}

func printSummary(title string, s models.OutreachAnalyticsSummary) {
	_, _ = fmt.Fprintf(stdout, "%s %s to %s\n\n", title,
		s.Start.Format(models.DateLayout), s.End.AddDate(0, 0, -1).Format(models.DateLayout))
	_, _ = fmt.Fprintf(stdout, "Outreach:         %d (%d completed)\n", s.Total, s.Successful)
	_, _ = fmt.Fprintf(stdout, "Conversion:       %.1f%%\n", s.ConversionRate)
	_, _ = fmt.Fprintf(stdout, "Avg response:     %s\n", s.AverageResponseTime)
	_, _ = fmt.Fprintf(stdout, "Top channel:      %s\n", s.TopPerformingType.Label())
	_, _ = fmt.Fprintf(stdout, "Least channel:    %s\n", s.LeastPerformingType.Label())
	printBreakdown(s.ByType, s.ByStatus)
	_, _ = fmt.Fprintln(stdout, "\nLast 7 days:")
	printDays(s.WeeklyTrend)
}

func printBreakdown(byType map[models.OutreachType]int, byStatus map[models.OutreachStatus]int) {
	w := newTable()
	_, _ = fmt.Fprintln(w, "\nCHANNEL\tCOUNT")
	for _, t := range models.AllOutreachTypes {
		if n := byType[t]; n > 0 {
			_, _ = fmt.Fprintf(w, "%s\t%d\n", t.Label(), n)
		}
	}
	_, _ = fmt.Fprintln(w, "\nSTATUS\tCOUNT")
	for _, s := range models.AllOutreachStatuses {
		if n := byStatus[s]; n > 0 {
			_, _ = fmt.Fprintf(w, "%s\t%d\n", s, n)
		}
	}
	_ = w.Flush()
}

func printDays(days []models.OutreachAnalytics) {
	w := newTable()
	_, _ = fmt.Fprintln(w, "DATE\tTOTAL\tCOMPLETED\tCONVERSION")
	_, _ = fmt.Fprintln(w, "----\t-----\t---------\t----------")
	for _, d := range days {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%.1f%%\n", d.Date.Format(models.DateLayout), d.Total, d.Successful, d.ConversionRate)
	}
	_ = w.Flush()
}
