// ABOUTME: Outreach CLI commands
// ABOUTME: Log, list, update, and delete outreach records
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/models"
)

// parseWhen accepts RFC3339 instants or YYYY-MM-DD dates in loc.
func parseWhen(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(models.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}

// resolveClient accepts a client ID or an exact (case-insensitive) name.
func resolveClient(ctx context.Context, repo *db.ClientRepository, ref string) (*models.Client, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return repo.Get(ctx, id)
	}
	return repo.FindByName(ctx, ref)
}

// LogOutreachCommand records an outreach attempt.
func LogOutreachCommand(database *sql.DB, loc *time.Location, args []string) error {
	fs := flag.NewFlagSet("outreach log", flag.ContinueOnError)
	clientRef := fs.String("client", "", "Client name or ID (required)")
	leadRef := fs.String("lead", "", "Lead ID")
	outreachType := fs.String("type", "", "email, phone_call, linkedin_message, social_media_post, meeting, other (required)")
	status := fs.String("status", "pending", "pending, completed, scheduled, cancelled")
	date := fs.String("date", "", "When it happens: YYYY-MM-DD or RFC3339 (default now)")
	notes := fs.String("notes", "", "Notes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *clientRef == "" {
		return fmt.Errorf("--client is required")
	}
	if *outreachType == "" {
		return fmt.Errorf("--type is required")
	}

	ctx := context.Background()
	client, err := resolveClient(ctx, db.NewClientRepository(database), *clientRef)
	if err != nil {
		return fmt.Errorf("failed to look up client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("client not found: %s", *clientRef)
	}

	o := &models.Outreach{ClientID: client.ID, Notes: *notes}
	if o.Type, err = models.ParseOutreachType(*outreachType); err != nil {
		return err
	}
	if o.Status, err = models.ParseOutreachStatus(*status); err != nil {
		return err
	}
	if *leadRef != "" {
		leadID, err := uuid.Parse(*leadRef)
		if err != nil {
			return fmt.Errorf("invalid lead ID: %w", err)
		}
		o.LeadID = &leadID
	}
	if *date != "" {
		if o.OutreachDate, err = parseWhen(*date, loc); err != nil {
			return err
		}
	}

	if err := db.NewOutreachRepository(database).Create(ctx, o); err != nil {
		return fmt.Errorf("failed to log outreach: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ Logged %s with %s (ID: %s)\n", o.Type.Label(), client.Name, o.ID)
	_, _ = fmt.Fprintf(stdout, "  Status: %s\n", o.Status)
	return nil
}

// ListOutreachCommand lists outreach by client, by date range, or most recent.
func ListOutreachCommand(database *sql.DB, loc *time.Location, args []string) error {
	fs := flag.NewFlagSet("outreach list", flag.ContinueOnError)
	clientRef := fs.String("client", "", "Client name or ID")
	from := fs.String("from", "", "Start date (inclusive)")
	to := fs.String("to", "", "End date (exclusive)")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	repo := db.NewOutreachRepository(database)
	var records []models.Outreach
	var err error
	switch {
	case *clientRef != "":
		client, err := resolveClient(ctx, db.NewClientRepository(database), *clientRef)
		if err != nil {
			return fmt.Errorf("failed to look up client: %w", err)
		}
		if client == nil {
			return fmt.Errorf("client not found: %s", *clientRef)
		}
		records, err = repo.ListByClient(ctx, client.ID)
		if err != nil {
			return fmt.Errorf("failed to list outreach: %w", err)
		}
	case *from != "" || *to != "":
		start, end := time.Unix(0, 0), time.Now().AddDate(1, 0, 0)
		if *from != "" {
			if start, err = parseWhen(*from, loc); err != nil {
				return err
			}
		}
		if *to != "" {
			if end, err = parseWhen(*to, loc); err != nil {
				return err
			}
		}
		if !end.After(start) {
			return fmt.Errorf("--to must be after --from")
		}
		if records, err = repo.ListByDateRange(ctx, start, end); err != nil {
			return fmt.Errorf("failed to list outreach: %w", err)
		}
	default:
		if records, err = repo.List(ctx, *limit); err != nil {
			return fmt.Errorf("failed to list outreach: %w", err)
		}
	}

	if len(records) > *limit {
		records = records[:*limit]
	}
	if len(records) == 0 {
		_, _ = fmt.Fprintln(stdout, "No outreach found")
		return nil
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "DATE\tTYPE\tSTATUS\tNOTES\tID")
	_, _ = fmt.Fprintln(w, "----\t----\t------\t-----\t--")
	for _, o := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			o.OutreachDate.In(loc).Format("2006-01-02 15:04"), o.Type.Label(), o.Status, dash(o.Notes), o.ID)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(stdout, "\nTotal: %d record(s)\n", len(records))
	return nil
}

// UpdateOutreachCommand changes an outreach status. Flags come before the ID.
func UpdateOutreachCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("outreach update", flag.ContinueOnError)
	status := fs.String("status", "", "New status (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs, "outreach")
	if err != nil {
		return err
	}
	if *status == "" {
		return fmt.Errorf("--status is required")
	}
	s, err := models.ParseOutreachStatus(*status)
	if err != nil {
		return err
	}

	o, err := db.NewOutreachRepository(database).UpdateStatus(context.Background(), id, s)
	if err != nil {
		return fmt.Errorf("failed to update outreach: %w", err)
	}
	if o == nil {
		return fmt.Errorf("outreach not found: %s", id)
	}
	_, _ = fmt.Fprintf(stdout, "✓ Outreach %s is now %s\n", o.ID, o.Status)
	return nil
}

// DeleteOutreachCommand deletes an outreach record.
func DeleteOutreachCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("outreach delete", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs, "outreach")
	if err != nil {
		return err
	}
	if err := db.NewOutreachRepository(database).Delete(context.Background(), id); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "✓ Outreach deleted: %s\n", id)
	return nil
}
