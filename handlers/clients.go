// ABOUTME: Client and lead MCP tool handlers
// ABOUTME: Implements add_client, find_clients, add_lead, and find_leads tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/models"
)

type ClientHandlers struct {
	clients *db.ClientRepository
	leads   *db.LeadRepository
}

func NewClientHandlers(database *sql.DB) *ClientHandlers {
	return &ClientHandlers{
		clients: db.NewClientRepository(database),
		leads:   db.NewLeadRepository(database),
	}
}

type AddClientInput struct {
	Name          string   `json:"name" jsonschema:"Client name (required)"`
	Email         string   `json:"email,omitempty" jsonschema:"Client email address"`
	WhatsApp      string   `json:"whatsapp,omitempty" jsonschema:"WhatsApp number"`
	Instagram     string   `json:"instagram,omitempty" jsonschema:"Instagram handle"`
	MonthlyCharge float64  `json:"monthly_charge,omitempty" jsonschema:"Monthly retainer amount"`
	Deliverables  []string `json:"deliverables,omitempty" jsonschema:"Agreed deliverables"`
	PaymentDate   string   `json:"payment_date,omitempty" jsonschema:"Payment day, e.g. 5th"`
	Status        string   `json:"status,omitempty" jsonschema:"active, inactive, or paused (default active)"`
}

type ClientOutput struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email,omitempty"`
	WhatsApp      string   `json:"whatsapp,omitempty"`
	Instagram     string   `json:"instagram,omitempty"`
	MonthlyCharge float64  `json:"monthly_charge"`
	Deliverables  []string `json:"deliverables,omitempty"`
	PaymentDate   string   `json:"payment_date,omitempty"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

func (h *ClientHandlers) AddClient(ctx context.Context, _ *mcp.CallToolRequest, input AddClientInput) (*mcp.CallToolResult, ClientOutput, error) {
	if input.Name == "" {
		return nil, ClientOutput{}, fmt.Errorf("name is required")
	}

	client := &models.Client{
		Name:          input.Name,
		Email:         input.Email,
		WhatsApp:      input.WhatsApp,
		Instagram:     input.Instagram,
		MonthlyCharge: input.MonthlyCharge,
		Deliverables:  input.Deliverables,
		PaymentDate:   input.PaymentDate,
	}
	if input.Status != "" {
		status, err := models.ParseClientStatus(input.Status)
		if err != nil {
			return nil, ClientOutput{}, err
		}
		client.Status = status
	}

	if err := h.clients.Create(ctx, client); err != nil {
		return nil, ClientOutput{}, fmt.Errorf("failed to create client: %w", err)
	}
	return nil, clientToOutput(client), nil
}

type FindClientsInput struct {
	Query  string `json:"query,omitempty" jsonschema:"Search query (matches name and email)"`
	Status string `json:"status,omitempty" jsonschema:"Filter by status: active, inactive, or paused"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindClientsOutput struct {
	Clients        []ClientOutput `json:"clients"`
	MonthlyRevenue float64        `json:"monthly_revenue"`
}

func (h *ClientHandlers) FindClients(ctx context.Context, _ *mcp.CallToolRequest, input FindClientsInput) (*mcp.CallToolResult, FindClientsOutput, error) {
	filter := db.ClientFilter{Query: input.Query, Limit: input.Limit}
	if filter.Limit == 0 {
		filter.Limit = 10
	}
	if input.Status != "" {
		status, err := models.ParseClientStatus(input.Status)
		if err != nil {
			return nil, FindClientsOutput{}, err
		}
		filter.Status = status
	}

	clients, err := h.clients.List(ctx, filter)
	if err != nil {
		return nil, FindClientsOutput{}, fmt.Errorf("failed to find clients: %w", err)
	}
	revenue, err := h.clients.MonthlyRevenue(ctx)
	if err != nil {
		return nil, FindClientsOutput{}, fmt.Errorf("failed to compute revenue: %w", err)
	}

	out := FindClientsOutput{Clients: make([]ClientOutput, len(clients)), MonthlyRevenue: revenue}
	for i := range clients {
		out.Clients[i] = clientToOutput(&clients[i])
	}
	return nil, out, nil
}

type AddLeadInput struct {
	Name        string `json:"name" jsonschema:"Lead name (required)"`
	Email       string `json:"email,omitempty" jsonschema:"Lead email address"`
	Phone       string `json:"phone,omitempty" jsonschema:"Lead phone number"`
	Company     string `json:"company,omitempty" jsonschema:"Lead's company"`
	Designation string `json:"designation,omitempty" jsonschema:"Job title"`
	Source      string `json:"source,omitempty" jsonschema:"website, referral, social_media, email_campaign, or other"`
	Status      string `json:"status,omitempty" jsonschema:"new, contacted, qualified, proposal_sent, negotiating, won, or lost"`
	Notes       string `json:"notes,omitempty" jsonschema:"Additional notes"`
}

type LeadOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Company     string `json:"company,omitempty"`
	Designation string `json:"designation,omitempty"`
	Source      string `json:"source"`
	Status      string `json:"status"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (h *ClientHandlers) AddLead(ctx context.Context, _ *mcp.CallToolRequest, input AddLeadInput) (*mcp.CallToolResult, LeadOutput, error) {
	if input.Name == "" {
		return nil, LeadOutput{}, fmt.Errorf("name is required")
	}

	lead := &models.Lead{
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		Company:     input.Company,
		Designation: input.Designation,
		Notes:       input.Notes,
	}
	if input.Source != "" {
		source, err := models.ParseLeadSource(input.Source)
		if err != nil {
			return nil, LeadOutput{}, err
		}
		lead.Source = source
	}
	if input.Status != "" {
		status, err := models.ParseLeadStatus(input.Status)
		if err != nil {
			return nil, LeadOutput{}, err
		}
		lead.Status = status
	}

	if err := h.leads.Create(ctx, lead); err != nil {
		return nil, LeadOutput{}, fmt.Errorf("failed to create lead: %w", err)
	}
	return nil, leadToOutput(lead), nil
}

type FindLeadsInput struct {
	Query  string `json:"query,omitempty" jsonschema:"Search query (matches name, email, and company)"`
	Status string `json:"status,omitempty" jsonschema:"Filter by lead status"`
	Source string `json:"source,omitempty" jsonschema:"Filter by lead source"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindLeadsOutput struct {
	Leads    []LeadOutput   `json:"leads"`
	Pipeline map[string]int `json:"pipeline"`
}

func (h *ClientHandlers) FindLeads(ctx context.Context, _ *mcp.CallToolRequest, input FindLeadsInput) (*mcp.CallToolResult, FindLeadsOutput, error) {
	filter := db.LeadFilter{Query: input.Query, Limit: input.Limit}
	if filter.Limit == 0 {
		filter.Limit = 10
	}
	if input.Status != "" {
		status, err := models.ParseLeadStatus(input.Status)
		if err != nil {
			return nil, FindLeadsOutput{}, err
		}
		filter.Status = status
	}
	if input.Source != "" {
		source, err := models.ParseLeadSource(input.Source)
		if err != nil {
			return nil, FindLeadsOutput{}, err
		}
		filter.Source = source
	}

	leads, err := h.leads.List(ctx, filter)
	if err != nil {
		return nil, FindLeadsOutput{}, fmt.Errorf("failed to find leads: %w", err)
	}
	counts, err := h.leads.CountByStatus(ctx)
	if err != nil {
		return nil, FindLeadsOutput{}, fmt.Errorf("failed to count leads: %w", err)
	}

	out := FindLeadsOutput{Leads: make([]LeadOutput, len(leads)), Pipeline: make(map[string]int, len(counts))}
	for i := range leads {
		out.Leads[i] = leadToOutput(&leads[i])
	}
	for status, n := range counts {
		out.Pipeline[string(status)] = n
	}
	return nil, out, nil
}

func clientToOutput(c *models.Client) ClientOutput {
	return ClientOutput{
		ID:            c.ID.String(),
		Name:          c.Name,
		Email:         c.Email,
		WhatsApp:      c.WhatsApp,
		Instagram:     c.Instagram,
		MonthlyCharge: c.MonthlyCharge,
		Deliverables:  c.Deliverables,
		PaymentDate:   c.PaymentDate,
		Status:        string(c.Status),
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     c.UpdatedAt.Format(time.RFC3339),
	}
}

func leadToOutput(l *models.Lead) LeadOutput {
	return LeadOutput{
		ID:          l.ID.String(),
		Name:        l.Name,
		Email:       l.Email,
		Phone:       l.Phone,
		Company:     l.Company,
		Designation: l.Designation,
		Source:      string(l.Source),
		Status:      string(l.Status),
		Notes:       l.Notes,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   l.UpdatedAt.Format(time.RFC3339),
	}
}
