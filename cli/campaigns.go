// ABOUTME: Campaign CLI commands
// ABOUTME: Create campaigns, move them through their lifecycle, and record results
package cli

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/models"
)

// AddCampaignCommand creates a draft campaign.
func AddCampaignCommand(database *sql.DB, loc *time.Location, args []string) error {
	fs := flag.NewFlagSet("campaign add", flag.ContinueOnError)
	name := fs.String("name", "", "Campaign name (required)")
	campaignType := fs.String("type", "email", "email, message, phone, social, multi_channel")
	priority := fs.String("priority", "medium", "low, medium, high, urgent")
	description := fs.String("description", "", "Description")
	start := fs.String("start", "", "Start date YYYY-MM-DD (default today)")
	budget := fs.Float64("budget", 0, "Budget")
	targets := fs.Int("targets", 0, "Number of people targeted")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	c := &models.Campaign{Name: *name, Description: *description, TargetCount: *targets}
	var err error
	if c.Type, err = models.ParseCampaignType(*campaignType); err != nil {
		return err
	}
	if c.Priority, err = models.ParseCampaignPriority(*priority); err != nil {
		return err
	}
	if *start != "" {
		if c.StartDate, err = time.ParseInLocation(models.DateLayout, *start, loc); err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
	}
	if *budget > 0 {
		c.Budget = budget
	}

	if err := db.NewCampaignRepository(database).Create(context.Background(), c); err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ Campaign created: %s (ID: %s)\n", c.Name, c.ID)
	_, _ = fmt.Fprintf(stdout, "  Status: %s\n", c.Status)
	return nil
}

// ListCampaignsCommand lists campaigns with their metrics.
func ListCampaignsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("campaign list", flag.ContinueOnError)
	status := fs.String("status", "", "Filter by status")
	campaignType := fs.String("type", "", "Filter by type")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := db.CampaignFilter{}
	var err error
	if *status != "" {
		if filter.Status, err = models.ParseCampaignStatus(*status); err != nil {
			return err
		}
	}
	if *campaignType != "" {
		if filter.Type, err = models.ParseCampaignType(*campaignType); err != nil {
			return err
		}
	}

	campaigns, err := db.NewCampaignRepository(database).List(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to find campaigns: %w", err)
	}
	if len(campaigns) == 0 {
		_, _ = fmt.Fprintln(stdout, "No campaigns found")
		return nil
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "NAME\tTYPE\tSTATUS\tSENT\tRESPONSE\tCONVERSION\tID")
	_, _ = fmt.Fprintln(w, "----\t----\t------\t----\t--------\t----------\t--")
	for _, c := range campaigns {
		m := c.Metrics()
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.1f%%\t%.1f%%\t%s\n",
			c.Name, c.Type, c.Status, m.Sent, m.ResponseRate, m.ConversionRate, c.ID)
	}
	_ = w.Flush()
	return nil
}

// CampaignActionCommand applies a lifecycle action (start, pause, resume,
// complete, cancel, archive) to the campaign whose ID follows.
func CampaignActionCommand(database *sql.DB, action string, args []string) error {
	a, err := models.ParseCampaignAction(action)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("campaign "+action, flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs, "campaign")
	if err != nil {
		return err
	}

	c, err := db.NewCampaignRepository(database).Transition(context.Background(), id, a)
	if errors.Is(err, db.ErrInvalidTransition) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	if c == nil {
		return fmt.Errorf("campaign not found: %s", id)
	}
	_, _ = fmt.Fprintf(stdout, "✓ Campaign %s is now %s\n", c.Name, c.Status)
	return nil
}

// CampaignResultsCommand adds sent, response, and conversion counts. Flags
// come before the ID.
func CampaignResultsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("campaign results", flag.ContinueOnError)
	sent := fs.Int("sent", 0, "Messages sent")
	responses := fs.Int("responses", 0, "Responses received")
	conversions := fs.Int("conversions", 0, "Conversions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs, "campaign")
	if err != nil {
		return err
	}
	if *sent < 0 || *responses < 0 || *conversions < 0 {
		return fmt.Errorf("counts must not be negative")
	}

	ctx := context.Background()
	repo := db.NewCampaignRepository(database)
	if err := repo.RecordResults(ctx, id, *sent, *responses, *conversions); err != nil {
		return err
	}
	m, err := repo.Metrics(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("campaign not found: %s", id)
	}
	_, _ = fmt.Fprintf(stdout, "✓ %d sent, %.1f%% responded, %.1f%% converted\n", m.Sent, m.ResponseRate, m.ConversionRate)
	return nil
}
