// ABOUTME: Tests for outreach graph and dashboard rendering
// ABOUTME: Seeds an in-memory database and checks the rendered output
package viz

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/remotearmz/commandcenter/analytics"
	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T) (*sql.DB, *models.Client) {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	ctx := context.Background()

	client := &models.Client{Name: "Acme Studio", MonthlyCharge: 900}
	require.NoError(t, db.NewClientRepository(database).Create(ctx, client))
	lead := &models.Lead{Name: "Jordan Lee", Company: "Northwind"}
	require.NoError(t, db.NewLeadRepository(database).Create(ctx, lead))

	repo := db.NewOutreachRepository(database)
	for _, o := range []models.Outreach{
		{ClientID: client.ID, LeadID: &lead.ID, Type: models.OutreachEmail, Status: models.OutreachCompleted},
		{ClientID: client.ID, LeadID: &lead.ID, Type: models.OutreachEmail, Status: models.OutreachPending},
		{ClientID: client.ID, Type: models.OutreachMeeting, Status: models.OutreachScheduled},
	} {
		o.OutreachDate = fixedNow.Add(-time.Hour)
		o.CreatedAt = fixedNow.Add(-2 * time.Hour)
		require.NoError(t, repo.Create(ctx, &o))
	}
	return database, client
}

func TestGenerateOutreachGraph(t *testing.T) {
	database, client := seed(t)
	gen := NewGraphGenerator(database)

	dot, err := gen.GenerateOutreachGraph(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, dot, "Acme Studio")
	assert.Contains(t, dot, "Jordan Lee")
	assert.Contains(t, dot, "Email 1/2")
	assert.Contains(t, dot, "Meeting 0/1")

	single, err := gen.GenerateOutreachGraph(context.Background(), &client.ID)
	require.NoError(t, err)
	assert.Contains(t, single, "Acme Studio")

	missing := uuid.New()
	_, err = gen.GenerateOutreachGraph(context.Background(), &missing)
	assert.Error(t, err)
}

func TestDashboard(t *testing.T) {
	database, _ := seed(t)
	ctx := context.Background()

	overdue := &models.Target{
		Title:       "Book 10 calls",
		Type:        models.TargetWeekly,
		StartDate:   fixedNow.AddDate(0, 0, -14),
		EndDate:     fixedNow.AddDate(0, 0, -7),
		TargetValue: 10,
		Unit:        "calls",
	}
	require.NoError(t, db.NewTargetRepository(database).Create(ctx, overdue))

	agg := analytics.New(db.NewOutreachRepository(database),
		analytics.WithClock(func() time.Time { return fixedNow }),
		analytics.WithLocation(time.UTC))

	stats, err := GenerateDashboardStats(ctx, database, agg)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Weekly.Total)
	assert.Equal(t, 1, stats.ActiveClients)
	assert.InDelta(t, 900.0, stats.MonthlyRevenue, 0.001)
	assert.Equal(t, 1, stats.LeadsByStatus[models.LeadNew])
	require.Len(t, stats.OverdueTargets, 1)

	out := RenderDashboard(stats)
	assert.Contains(t, out, "COMMAND CENTER")
	assert.Contains(t, out, "3 outreach, 1 completed (33.3%)")
	assert.Contains(t, out, "Book 10 calls overdue since 2024-06-08")
	assert.True(t, strings.Contains(out, "Email") && strings.Contains(out, "Meeting"))
}

func TestBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░", bar(0, 0))
	assert.Equal(t, "█████░░░░░", bar(1, 2))
	assert.Equal(t, "██████████", bar(4, 4))
}
