// ABOUTME: Integration CLI commands
// ABOUTME: Register third-party connections and track their status and errors
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

// AddIntegrationCommand registers an integration in pending state.
func AddIntegrationCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("integration add", flag.ContinueOnError)
	name := fs.String("name", "", "Integration name (required)")
	integrationType := fs.String("type", "", "email, crm, calendar, social_media, analytics, storage, custom (required)")
	provider := fs.String("provider", "", "gmail, outlook, hubspot, google_calendar, linkedin, aws, ... (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	i := &models.Integration{Name: *name}
	var err error
	if i.Type, err = models.ParseIntegrationType(*integrationType); err != nil {
		return err
	}
	if i.Provider, err = models.ParseIntegrationProvider(*provider); err != nil {
		return err
	}

	if err := db.NewIntegrationRepository(database).Create(context.Background(), i); err != nil {
		return fmt.Errorf("failed to create integration: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ Integration created: %s (ID: %s)\n", i.Name, i.ID)
	return nil
}

// ListIntegrationsCommand lists integrations.
func ListIntegrationsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("integration list", flag.ContinueOnError)
	connected := fs.Bool("connected", false, "Only connected integrations")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := db.IntegrationFilter{}
	if *connected {
		filter.Connected = connected
	}
	integrations, err := db.NewIntegrationRepository(database).List(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to find integrations: %w", err)
	}
	if len(integrations) == 0 {
		_, _ = fmt.Fprintln(stdout, "No integrations found")
		return nil
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "NAME\tPROVIDER\tSTATUS\tLAST SYNC\tID")
	_, _ = fmt.Fprintln(w, "----\t--------\t------\t---------\t--")
	for _, i := range integrations {
		lastSync := "-"
		if i.LastSync != nil {
			lastSync = i.LastSync.Format("2006-01-02 15:04")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", i.Name, i.Provider, i.Status, lastSync, i.ID)
	}
	_ = w.Flush()
	return nil
}

// IntegrationStatusCommand sets an integration's status. An --error message
// is logged to its error history. Flags come before the ID.
func IntegrationStatusCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("integration status", flag.ContinueOnError)
	status := fs.String("status", "", "connected, disconnected, error, pending (required)")
	errMsg := fs.String("error", "", "Error message")
	synced := fs.Bool("synced", false, "Record a sync at the current time")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs, "integration")
	if err != nil {
		return err
	}
	s, err := models.ParseIntegrationStatus(*status)
	if err != nil {
		return err
	}

	ctx := context.Background()
	repo := db.NewIntegrationRepository(database)
	i, err := repo.UpdateStatus(ctx, id, s, *errMsg)
	if err != nil {
		return err
	}
	if i == nil {
		return fmt.Errorf("integration not found: %s", id)
	}
	if *errMsg != "" {
		if err := repo.LogError(ctx, id, *errMsg); err != nil {
			return err
		}
	}
	if *synced {
		if err := repo.RecordSync(ctx, id, time.Now()); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintf(stdout, "✓ Integration %s is now %s\n", i.Name, i.Status)
	return nil
}

// IntegrationErrorsCommand shows recent errors for an integration.
func IntegrationErrorsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("integration errors", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "Maximum entries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs, "integration")
	if err != nil {
		return err
	}

	entries, err := db.NewIntegrationRepository(database).Errors(context.Background(), id, *limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(stdout, "No errors recorded")
		return nil
	}
	for _, e := range entries {
		_, _ = fmt.Fprintf(stdout, "%s  %s\n", e.OccurredAt.Format(time.RFC3339), e.Message)
	}
	return nil
}
