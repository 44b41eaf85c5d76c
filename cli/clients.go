// ABOUTME: Client and lead CLI commands
// ABOUTME: Human-friendly commands for managing retainer clients and the lead pipeline
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/models"
)

// stdout receives all user-facing command output.
var stdout io.Writer = os.Stdout

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// idArg parses the first positional argument as a UUID.
func idArg(fs *flag.FlagSet, kind string) (uuid.UUID, error) {
	if fs.NArg() < 1 {
		return uuid.Nil, fmt.Errorf("%s ID required", kind)
	}
	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID: %w", kind, err)
	}
	return id, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// AddClientCommand adds a new client.
func AddClientCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("client add", flag.ContinueOnError)
	name := fs.String("name", "", "Client name (required)")
	email := fs.String("email", "", "Email address")
	whatsapp := fs.String("whatsapp", "", "WhatsApp number")
	instagram := fs.String("instagram", "", "Instagram handle")
	charge := fs.Float64("charge", 0, "Monthly charge")
	paymentDate := fs.String("payment-date", "", "Payment day, e.g. 5th")
	deliverables := fs.String("deliverables", "", "Comma-separated deliverables")
	status := fs.String("status", "active", "Status (active, inactive, paused)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	clientStatus, err := models.ParseClientStatus(*status)
	if err != nil {
		return err
	}

	client := &models.Client{
		Name:          *name,
		Email:         *email,
		WhatsApp:      *whatsapp,
		Instagram:     *instagram,
		MonthlyCharge: *charge,
		PaymentDate:   *paymentDate,
		Deliverables:  splitList(*deliverables),
		Status:        clientStatus,
	}
	if err := db.NewClientRepository(database).Create(context.Background(), client); err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Client created: %s (ID: %s)\n", client.Name, client.ID)
	if client.MonthlyCharge > 0 {
		_, _ = fmt.Fprintf(stdout, "  Monthly charge: %.2f\n", client.MonthlyCharge)
	}
	return nil
}

// ListClientsCommand lists clients.
func ListClientsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("client list", flag.ContinueOnError)
	query := fs.String("query", "", "Search by name or email")
	status := fs.String("status", "", "Filter by status")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := db.ClientFilter{Query: *query, Limit: *limit}
	if *status != "" {
		s, err := models.ParseClientStatus(*status)
		if err != nil {
			return err
		}
		filter.Status = s
	}

	clients, err := db.NewClientRepository(database).List(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to find clients: %w", err)
	}
	if len(clients) == 0 {
		_, _ = fmt.Fprintln(stdout, "No clients found")
		return nil
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "NAME\tEMAIL\tCHARGE\tSTATUS\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t------\t------\t--")
	for _, c := range clients {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n", c.Name, dash(c.Email), c.MonthlyCharge, c.Status, c.ID)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(stdout, "\nTotal: %d client(s)\n", len(clients))
	return nil
}

// UpdateClientCommand updates the fields given as flags. Flags come before the ID.
func UpdateClientCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("client update", flag.ContinueOnError)
	name := fs.String("name", "", "Client name")
	email := fs.String("email", "", "Email address")
	charge := fs.Float64("charge", 0, "Monthly charge")
	paymentDate := fs.String("payment-date", "", "Payment day")
	deliverables := fs.String("deliverables", "", "Comma-separated deliverables")
	status := fs.String("status", "", "Status (active, inactive, paused)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := idArg(fs, "client")
	if err != nil {
		return err
	}
	ctx := context.Background()
	repo := db.NewClientRepository(database)
	client, err := repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("client not found: %s", id)
	}

	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			client.Name = *name
		case "email":
			client.Email = *email
		case "charge":
			client.MonthlyCharge = *charge
		case "payment-date":
			client.PaymentDate = *paymentDate
		case "deliverables":
			client.Deliverables = splitList(*deliverables)
		case "status":
			client.Status, parseErr = models.ParseClientStatus(*status)
		}
	})
	if parseErr != nil {
		return parseErr
	}

	if err := repo.Update(ctx, client); err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ Client updated: %s\n", client.Name)
	return nil
}

// DeleteClientCommand deletes a client.
func DeleteClientCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("client delete", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs, "client")
	if err != nil {
		return err
	}

	ctx := context.Background()
	repo := db.NewClientRepository(database)
	client, err := repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("client not found: %s", id)
	}
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "✓ Client deleted: %s\n", client.Name)
	return nil
}

// AddLeadCommand adds a new lead.
func AddLeadCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("lead add", flag.ContinueOnError)
	name := fs.String("name", "", "Lead name (required)")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	company := fs.String("company", "", "Company name")
	designation := fs.String("designation", "", "Job title")
	source := fs.String("source", "other", "Source (website, referral, social_media, email_campaign, other)")
	notes := fs.String("notes", "", "Notes about the lead")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	leadSource, err := models.ParseLeadSource(*source)
	if err != nil {
		return err
	}

	lead := &models.Lead{
		Name:        *name,
		Email:       *email,
		Phone:       *phone,
		Company:     *company,
		Designation: *designation,
		Source:      leadSource,
		Notes:       *notes,
	}
	if err := db.NewLeadRepository(database).Create(context.Background(), lead); err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Lead created: %s (ID: %s)\n", lead.Name, lead.ID)
	if lead.Company != "" {
		_, _ = fmt.Fprintf(stdout, "  Company: %s\n", lead.Company)
	}
	return nil
}

// ListLeadsCommand lists leads.
func ListLeadsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("lead list", flag.ContinueOnError)
	query := fs.String("query", "", "Search by name, email, or company")
	status := fs.String("status", "", "Filter by status")
	source := fs.String("source", "", "Filter by source")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := db.LeadFilter{Query: *query, Limit: *limit}
	var err error
	if *status != "" {
		if filter.Status, err = models.ParseLeadStatus(*status); err != nil {
			return err
		}
	}
	if *source != "" {
		if filter.Source, err = models.ParseLeadSource(*source); err != nil {
			return err
		}
	}

	leads, err := db.NewLeadRepository(database).List(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to find leads: %w", err)
	}
	if len(leads) == 0 {
		_, _ = fmt.Fprintln(stdout, "No leads found")
		return nil
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "NAME\tCOMPANY\tSOURCE\tSTATUS\tID")
	_, _ = fmt.Fprintln(w, "----\t-------\t------\t------\t--")
	for _, l := range leads {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", l.Name, dash(l.Company), l.Source, l.Status, l.ID)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(stdout, "\nTotal: %d lead(s)\n", len(leads))
	return nil
}

// UpdateLeadCommand moves a lead through the pipeline. Flags come before the ID.
func UpdateLeadCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("lead update", flag.ContinueOnError)
	status := fs.String("status", "", "New status")
	notes := fs.String("notes", "", "Replace notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs, "lead")
	if err != nil {
		return err
	}

	ctx := context.Background()
	repo := db.NewLeadRepository(database)
	lead, err := repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get lead: %w", err)
	}
	if lead == nil {
		return fmt.Errorf("lead not found: %s", id)
	}

	if *status != "" {
		if lead.Status, err = models.ParseLeadStatus(*status); err != nil {
			return err
		}
	}
	if *notes != "" {
		lead.Notes = *notes
	}
	if err := repo.Update(ctx, lead); err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "✓ Lead updated: %s (%s)\n", lead.Name, lead.Status)
	return nil
}

// DeleteLeadCommand deletes a lead.
func DeleteLeadCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("lead delete", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs, "lead")
	if err != nil {
		return err
	}
	if err := db.NewLeadRepository(database).Delete(context.Background(), id); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "✓ Lead deleted: %s\n", id)
	return nil
}
