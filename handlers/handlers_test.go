// ABOUTME: Tests for MCP tool, resource, and prompt handlers
// ABOUTME: Calls handlers directly against an in-memory database
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/remotearmz/commandcenter/analytics"
	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func testAggregator(database *sql.DB) *analytics.Aggregator {
	return analytics.New(db.NewOutreachRepository(database),
		analytics.WithClock(func() time.Time { return fixedNow }),
		analytics.WithLocation(time.UTC))
}

func TestAddAndFindClients(t *testing.T) {
	h := NewClientHandlers(setupTestDB(t))
	ctx := context.Background()

	_, out, err := h.AddClient(ctx, nil, AddClientInput{Name: "Acme Studio", MonthlyCharge: 1200, Deliverables: []string{"reels"}})
	require.NoError(t, err)
	assert.Equal(t, "active", out.Status)
	_, err = uuid.Parse(out.ID)
	require.NoError(t, err)

	_, _, err = h.AddClient(ctx, nil, AddClientInput{Name: "Paused Co", Status: "Paused"})
	require.NoError(t, err)

	_, _, err = h.AddClient(ctx, nil, AddClientInput{})
	assert.EqualError(t, err, "name is required")

	_, _, err = h.AddClient(ctx, nil, AddClientInput{Name: "Bad", Status: "archived"})
	assert.ErrorIs(t, err, models.ErrInvalidEnum)

	_, found, err := h.FindClients(ctx, nil, FindClientsInput{Status: "active"})
	require.NoError(t, err)
	require.Len(t, found.Clients, 1)
	assert.Equal(t, "Acme Studio", found.Clients[0].Name)
	assert.InDelta(t, 1200.0, found.MonthlyRevenue, 0.001)
}

func TestAddAndFindLeads(t *testing.T) {
	h := NewClientHandlers(setupTestDB(t))
	ctx := context.Background()

	_, lead, err := h.AddLead(ctx, nil, AddLeadInput{Name: "Jordan", Company: "Northwind", Source: "referral"})
	require.NoError(t, err)
	assert.Equal(t, "new", lead.Status)
	assert.Equal(t, "referral", lead.Source)

	_, _, err = h.AddLead(ctx, nil, AddLeadInput{Name: "Sam", Status: "won"})
	require.NoError(t, err)

	_, _, err = h.AddLead(ctx, nil, AddLeadInput{Name: "X", Source: "carrier pigeon"})
	assert.ErrorIs(t, err, models.ErrInvalidEnum)

	_, found, err := h.FindLeads(ctx, nil, FindLeadsInput{Query: "northwind"})
	require.NoError(t, err)
	require.Len(t, found.Leads, 1)
	assert.Equal(t, map[string]int{"new": 1, "won": 1}, found.Pipeline)
}

func TestLogAndUpdateOutreach(t *testing.T) {
	database := setupTestDB(t)
	clients := NewClientHandlers(database)
	h := NewOutreachHandlers(database, time.UTC)
	ctx := context.Background()

	_, client, err := clients.AddClient(ctx, nil, AddClientInput{Name: "Acme Studio"})
	require.NoError(t, err)

	_, logged, err := h.LogOutreach(ctx, nil, LogOutreachInput{
		ClientName: "acme studio",
		Type:       "phone-call",
		Date:       "2024-06-14",
		Notes:      "intro call",
	})
	require.NoError(t, err)
	assert.Equal(t, client.ID, logged.ClientID)
	assert.Equal(t, "phone_call", logged.Type)
	assert.Equal(t, "pending", logged.Status)
	assert.Equal(t, "2024-06-14T00:00:00Z", logged.OutreachDate)

	_, _, err = h.LogOutreach(ctx, nil, LogOutreachInput{ClientName: "nobody", Type: "email"})
	assert.EqualError(t, err, "client not found: nobody")

	_, _, err = h.LogOutreach(ctx, nil, LogOutreachInput{ClientID: client.ID})
	assert.EqualError(t, err, "outreach_type is required")

	_, _, err = h.LogOutreach(ctx, nil, LogOutreachInput{Type: "email"})
	assert.EqualError(t, err, "client_id or client_name is required")

	_, updated, err := h.UpdateOutreachStatus(ctx, nil, UpdateOutreachStatusInput{ID: logged.ID, Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Status)

	_, _, err = h.UpdateOutreachStatus(ctx, nil, UpdateOutreachStatusInput{ID: uuid.NewString(), Status: "completed"})
	assert.ErrorContains(t, err, "outreach not found")

	_, found, err := h.FindOutreach(ctx, nil, FindOutreachInput{ClientID: client.ID})
	require.NoError(t, err)
	require.Len(t, found.Outreach, 1)
	assert.Equal(t, logged.ID, found.Outreach[0].ID)

	_, ranged, err := h.FindOutreach(ctx, nil, FindOutreachInput{From: "2024-06-14", To: "2024-06-15"})
	require.NoError(t, err)
	assert.Len(t, ranged.Outreach, 1)

	_, _, err = h.FindOutreach(ctx, nil, FindOutreachInput{From: "2024-06-15", To: "2024-06-14"})
	assert.Error(t, err)
}

func seedOutreach(t *testing.T, database *sql.DB) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	client := &models.Client{Name: "Acme"}
	require.NoError(t, db.NewClientRepository(database).Create(ctx, client))

	repo := db.NewOutreachRepository(database)
	a := &models.Outreach{
		ClientID:     client.ID,
		Type:         models.OutreachEmail,
		Status:       models.OutreachCompleted,
		OutreachDate: fixedNow,
		CreatedAt:    fixedNow.Add(-600000 * time.Millisecond),
	}
	b := &models.Outreach{
		ClientID:     client.ID,
		Type:         models.OutreachPhoneCall,
		Status:       models.OutreachPending,
		OutreachDate: fixedNow,
		CreatedAt:    fixedNow,
	}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	return client.ID
}

func TestAnalyticsHandlers(t *testing.T) {
	database := setupTestDB(t)
	seedOutreach(t, database)
	h := NewAnalyticsHandlers(testAggregator(database))
	ctx := context.Background()

	_, day, err := h.DailyAnalytics(ctx, nil, DailyAnalyticsInput{})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", day.Date)
	assert.Equal(t, 2, day.OutreachCount)
	assert.Equal(t, 1, day.SuccessfulOutreach)
	assert.InDelta(t, 50.0, day.ConversionRate, 0.0001)
	assert.Equal(t, int64(600000), day.AverageResponseTimeMs)
	assert.Equal(t, "email", day.TopPerformingType)
	assert.Equal(t, "email", day.LeastPerformingType)
	assert.Equal(t, map[string]int{"email": 1, "phone_call": 1}, day.ByType)

	_, empty, err := h.DailyAnalytics(ctx, nil, DailyAnalyticsInput{Date: "2024-06-01"})
	require.NoError(t, err)
	assert.Zero(t, empty.OutreachCount)
	assert.Empty(t, empty.ByType)

	_, _, err = h.DailyAnalytics(ctx, nil, DailyAnalyticsInput{Date: "June 1"})
	assert.Error(t, err)

	_, week, err := h.WeeklyAnalytics(ctx, nil, WindowAnalyticsInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, week.TotalOutreach)
	assert.Len(t, week.WeeklyTrend, 8)
	assert.Len(t, week.MonthlyTrend, 31)
	assert.Equal(t, "2024-06-15", week.WeeklyTrend[0].Date)

	_, month, err := h.MonthlyAnalytics(ctx, nil, WindowAnalyticsInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, month.TotalOutreach)

	_, byStatus, err := h.AnalyticsByStatus(ctx, nil, AnalyticsByStatusInput{Status: "completed"})
	require.NoError(t, err)
	require.Len(t, byStatus.Days, 31)
	assert.Equal(t, 1, byStatus.Days[0].OutreachCount)
	assert.InDelta(t, 100.0, byStatus.Days[0].ConversionRate, 0.0001)
	assert.InDelta(t, 100.0, byStatus.Days[1].ConversionRate, 0.0001)

	_, byType, err := h.AnalyticsByType(ctx, nil, AnalyticsByTypeInput{Type: "phone_call"})
	require.NoError(t, err)
	assert.Equal(t, 1, byType.Days[0].OutreachCount)
	assert.Equal(t, "phone_call", byType.Days[0].TopPerformingType)
	assert.Equal(t, "phone_call", byType.Days[5].LeastPerformingType)

	_, _, err = h.AnalyticsByType(ctx, nil, AnalyticsByTypeInput{Type: "fax"})
	assert.ErrorIs(t, err, models.ErrInvalidEnum)
}

func TestQueryCRM(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	h := NewQueryHandlers(database)

	require.NoError(t, db.NewCampaignRepository(database).Create(ctx, &models.Campaign{
		Name: "Spring push", Type: models.CampaignEmail, StartDate: fixedNow,
	}))
	require.NoError(t, db.NewIntegrationRepository(database).Create(ctx, &models.Integration{
		Name: "Gmail", Type: models.IntegrationEmail, Provider: models.ProviderGmail, Status: models.IntegrationConnected,
	}))

	_, out, err := h.QueryCRM(ctx, nil, QueryCRMInput{EntityType: "campaign", Filters: map[string]any{"status": "draft"}})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "Spring push", out.Results[0].(CampaignOutput).Name)

	_, out, err = h.QueryCRM(ctx, nil, QueryCRMInput{EntityType: "integration", Filters: map[string]any{"connected": true}})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)

	_, out, err = h.QueryCRM(ctx, nil, QueryCRMInput{EntityType: "target"})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Count)
	assert.NotNil(t, out.Results)

	_, _, err = h.QueryCRM(ctx, nil, QueryCRMInput{EntityType: "deal"})
	assert.ErrorContains(t, err, "invalid entity_type")

	_, _, err = h.QueryCRM(ctx, nil, QueryCRMInput{EntityType: "campaign", Filters: map[string]any{"status": "exploded"}})
	assert.ErrorIs(t, err, models.ErrInvalidEnum)
}

func TestReadResource(t *testing.T) {
	database := setupTestDB(t)
	clientID := seedOutreach(t, database)
	h := NewResourceHandlers(database, testAggregator(database))
	ctx := context.Background()

	read := func(uri string) (*mcp.ReadResourceResult, error) {
		return h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
	}

	res, err := read(ResourceScheme + "clients/" + clientID.String())
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	var payload struct {
		Client   models.Client     `json:"client"`
		Outreach []models.Outreach `json:"outreach"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &payload))
	assert.Equal(t, "Acme", payload.Client.Name)
	assert.Len(t, payload.Outreach, 2)

	res, err = read(ResourceScheme + "analytics/weekly")
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"average_response_time_ms": 600000`)

	_, err = read("crm://contacts")
	assert.Error(t, err)
	_, err = read(ResourceScheme + "analytics/yearly")
	assert.Error(t, err)

	assert.Len(t, h.Resources(), 5)
}

func TestPrompts(t *testing.T) {
	database := setupTestDB(t)
	clientID := seedOutreach(t, database)
	h := NewPromptHandlers(database, testAggregator(database))
	ctx := context.Background()

	get := func(name string, args map[string]string) (*mcp.GetPromptResult, error) {
		return h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: name, Arguments: args}})
	}

	res, err := get("client-summary", map[string]string{"client_id": clientID.String()})
	require.NoError(t, err)
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Name: Acme")
	assert.Contains(t, text, "2 records, conversion 50.0%")

	res, err = get("outreach-review", nil)
	require.NoError(t, err)
	text = res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Total: 2")
	assert.Contains(t, text, "Top channel: Email")

	_, err = get("client-summary", nil)
	assert.EqualError(t, err, "client_id is required")
	_, err = get("nope", nil)
	assert.Error(t, err)
}
