// ABOUTME: Target CLI commands
// ABOUTME: Create goals, record progress, and flag overdue targets
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"time"

	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/models"
)

// defaultEnd returns the last day of a target period starting on start.
func defaultEnd(t models.TargetType, start time.Time) time.Time {
	switch t {
	case models.TargetWeekly:
		return start.AddDate(0, 0, 6)
	case models.TargetMonthly:
		return start.AddDate(0, 1, -1)
	case models.TargetAnnual:
		return start.AddDate(1, 0, -1)
	}
	return start
}

// AddTargetCommand creates a target.
func AddTargetCommand(database *sql.DB, loc *time.Location, args []string) error {
	fs := flag.NewFlagSet("target add", flag.ContinueOnError)
	title := fs.String("title", "", "Target title (required)")
	targetType := fs.String("type", "weekly", "weekly, monthly, annual")
	start := fs.String("start", "", "Start date YYYY-MM-DD (default today)")
	end := fs.String("end", "", "End date YYYY-MM-DD (default end of period)")
	value := fs.Float64("value", 0, "Goal value (required)")
	unit := fs.String("unit", "", "Unit, e.g. calls")
	category := fs.String("category", "", "Category")
	priority := fs.Int("priority", 1, "Priority")
	description := fs.String("description", "", "Description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *title == "" {
		return fmt.Errorf("--title is required")
	}
	if *value <= 0 {
		return fmt.Errorf("--value must be positive")
	}
	tt, err := models.ParseTargetType(*targetType)
	if err != nil {
		return err
	}

	startDate := time.Now().In(loc)
	if *start != "" {
		if startDate, err = time.ParseInLocation(models.DateLayout, *start, loc); err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
	}
	endDate := defaultEnd(tt, startDate)
	if *end != "" {
		if endDate, err = time.ParseInLocation(models.DateLayout, *end, loc); err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
	}

	target := &models.Target{
		Title:       *title,
		Type:        tt,
		StartDate:   startDate,
		EndDate:     endDate,
		TargetValue: *value,
		Unit:        *unit,
		Category:    *category,
		Priority:    *priority,
		Description: *description,
	}
	if err := db.NewTargetRepository(database).Create(context.Background(), target); err != nil {
		return fmt.Errorf("failed to create target: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ Target created: %s (ID: %s)\n", target.Title, target.ID)
	_, _ = fmt.Fprintf(stdout, "  %s to %s, goal %.0f %s\n",
		target.StartDate.Format(models.DateLayout), target.EndDate.Format(models.DateLayout), target.TargetValue, target.Unit)
	return nil
}

// ListTargetsCommand lists targets.
func ListTargetsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("target list", flag.ContinueOnError)
	targetType := fs.String("type", "", "Filter by type")
	status := fs.String("status", "", "Filter by status")
	category := fs.String("category", "", "Filter by category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := db.TargetFilter{Category: *category}
	var err error
	if *targetType != "" {
		if filter.Type, err = models.ParseTargetType(*targetType); err != nil {
			return err
		}
	}
	if *status != "" {
		if filter.Status, err = models.ParseTargetStatus(*status); err != nil {
			return err
		}
	}

	targets, err := db.NewTargetRepository(database).List(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to find targets: %w", err)
	}
	if len(targets) == 0 {
		_, _ = fmt.Fprintln(stdout, "No targets found")
		return nil
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "TITLE\tTYPE\tENDS\tPROGRESS\tSTATUS\tID")
	_, _ = fmt.Fprintln(w, "-----\t----\t----\t--------\t------\t--")
	for _, t := range targets {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.0f/%.0f (%.0f%%)\t%s\t%s\n",
			t.Title, t.Type, t.EndDate.Format(models.DateLayout), t.CurrentProgress, t.TargetValue, t.Percent(), t.Status, t.ID)
	}
	_ = w.Flush()
	return nil
}

// TargetProgressCommand records progress toward a target. Flags come before the ID.
func TargetProgressCommand(database *sql.DB, loc *time.Location, args []string) error {
	fs := flag.NewFlagSet("target progress", flag.ContinueOnError)
	value := fs.Float64("value", -1, "Current progress value (required)")
	date := fs.String("date", "", "Date of the reading YYYY-MM-DD (default today)")
	notes := fs.String("notes", "", "Notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs, "target")
	if err != nil {
		return err
	}
	if *value < 0 {
		return fmt.Errorf("--value is required")
	}

	when := time.Now().In(loc)
	if *date != "" {
		if when, err = time.ParseInLocation(models.DateLayout, *date, loc); err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}

	target, err := db.NewTargetRepository(database).RecordProgress(context.Background(), id, when, *value, *notes)
	if err != nil {
		return err
	}
	if target == nil {
		return fmt.Errorf("target not found: %s", id)
	}
	_, _ = fmt.Fprintf(stdout, "✓ %s: %.0f/%.0f (%.0f%%) %s\n",
		target.Title, target.CurrentProgress, target.TargetValue, target.Percent(), target.Status)
	return nil
}

// OverdueTargetsCommand marks and lists targets past their end date.
func OverdueTargetsCommand(database *sql.DB, loc *time.Location, args []string) error {
	fs := flag.NewFlagSet("target overdue", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	repo := db.NewTargetRepository(database)
	today := time.Now().In(loc)
	n, err := repo.MarkOverdue(ctx, today)
	if err != nil {
		return err
	}
	overdue, err := repo.Overdue(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to find overdue targets: %w", err)
	}
	if n > 0 {
		_, _ = fmt.Fprintf(stdout, "✓ Marked %d target(s) overdue\n", n)
	}
	if len(overdue) == 0 {
		_, _ = fmt.Fprintln(stdout, "No overdue targets")
		return nil
	}
	for _, t := range overdue {
		_, _ = fmt.Fprintf(stdout, "  ⚠ %s ended %s at %.0f%%\n", t.Title, t.EndDate.Format(models.DateLayout), t.Percent())
	}
	return nil
}

// DeleteTargetCommand deletes a target and its progress history.
func DeleteTargetCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("target delete", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs, "target")
	if err != nil {
		return err
	}
	if err := db.NewTargetRepository(database).Delete(context.Background(), id); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "✓ Target deleted: %s\n", id)
	return nil
}
