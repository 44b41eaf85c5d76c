// ABOUTME: Tests for client, lead, target, campaign, integration and backup run repositories
// ABOUTME: Exercises CRUD round trips, filters, and lifecycle helpers against in-memory SQLite
package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/remotearmz/commandcenter/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRepository(t *testing.T) {
	repo := NewClientRepository(setupTestDB(t))
	ctx := context.Background()

	acme := &models.Client{
		Name:          "Acme Studio",
		Email:         "hello@acme.io",
		WhatsApp:      "+15550001",
		MonthlyCharge: 1200,
		Deliverables:  []string{"4 reels", "weekly report"},
		PaymentDate:   "5th",
	}
	require.NoError(t, repo.Create(ctx, acme))
	assert.Equal(t, models.ClientActive, acme.Status)

	paused := &models.Client{Name: "Beta Bakery", MonthlyCharge: 300, Status: models.ClientPaused}
	require.NoError(t, repo.Create(ctx, paused))

	got, err := repo.Get(ctx, acme.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *acme, *got)

	byName, err := repo.FindByName(ctx, "acme studio")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, acme.ID, byName.ID)

	active, err := repo.List(ctx, ClientFilter{Status: models.ClientActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Acme Studio", active[0].Name)

	search, err := repo.List(ctx, ClientFilter{Query: "bakery"})
	require.NoError(t, err)
	require.Len(t, search, 1)

	revenue, err := repo.MonthlyRevenue(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1200.0, revenue, 0.001)

	acme.Status = models.ClientInactive
	require.NoError(t, repo.Update(ctx, acme))
	revenue, err = repo.MonthlyRevenue(ctx)
	require.NoError(t, err)
	assert.Zero(t, revenue)

	require.NoError(t, repo.Delete(ctx, acme.ID))
	got, err = repo.Get(ctx, acme.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, repo.Create(ctx, &models.Client{Name: "  "}))
}

func TestLeadRepository(t *testing.T) {
	repo := NewLeadRepository(setupTestDB(t))
	ctx := context.Background()

	lead := &models.Lead{Name: "Dana", Company: "Northwind", Source: models.LeadReferral}
	require.NoError(t, repo.Create(ctx, lead))
	assert.Equal(t, models.LeadNew, lead.Status)

	other := &models.Lead{Name: "Eli", Status: models.LeadQualified, Source: models.LeadWebsite}
	require.NoError(t, repo.Create(ctx, other))

	got, err := repo.Get(ctx, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *lead, *got)

	referrals, err := repo.List(ctx, LeadFilter{Source: models.LeadReferral})
	require.NoError(t, err)
	require.Len(t, referrals, 1)
	assert.Equal(t, lead.ID, referrals[0].ID)

	search, err := repo.List(ctx, LeadFilter{Query: "northwind"})
	require.NoError(t, err)
	require.Len(t, search, 1)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.LeadNew])
	assert.Equal(t, 1, counts[models.LeadQualified])

	assert.Error(t, repo.Create(ctx, &models.Lead{Name: "X", Source: "billboard"}))
}

func TestTargetRepositoryProgress(t *testing.T) {
	repo := NewTargetRepository(setupTestDB(t))
	ctx := context.Background()

	start := time.Date(2024, 7, 1, 15, 0, 0, 0, time.Local)
	target := &models.Target{
		Title:       "Close 10 leads",
		Type:        models.TargetMonthly,
		StartDate:   start,
		EndDate:     start.AddDate(0, 1, -1),
		TargetValue: 10,
		Unit:        "leads",
		Category:    "sales",
	}
	require.NoError(t, repo.Create(ctx, target))
	assert.Equal(t, 0, target.StartDate.Hour())

	got, err := repo.Get(ctx, target.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *target, *got)

	updated, err := repo.RecordProgress(ctx, target.ID, start.AddDate(0, 0, 3), 4, "first week")
	require.NoError(t, err)
	assert.Equal(t, models.TargetInProgress, updated.Status)
	assert.InDelta(t, 40.0, updated.Percent(), 0.001)

	updated, err = repo.RecordProgress(ctx, target.ID, start.AddDate(0, 0, 10), 10, "")
	require.NoError(t, err)
	assert.Equal(t, models.TargetCompleted, updated.Status)

	history, err := repo.ProgressHistory(ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 4.0, history[0].Progress)
	assert.Equal(t, "first week", history[0].Notes)

	missing, err := repo.RecordProgress(ctx, uuid.New(), start, 1, "")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Delete(ctx, target.ID))
	history, err = repo.ProgressHistory(ctx, target.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestTargetRepositoryOverdue(t *testing.T) {
	repo := NewTargetRepository(setupTestDB(t))
	ctx := context.Background()
	today := time.Date(2024, 8, 15, 0, 0, 0, 0, time.Local)

	late := &models.Target{Title: "late", Type: models.TargetWeekly, StartDate: today.AddDate(0, 0, -14),
		EndDate: today.AddDate(0, 0, -7), TargetValue: 5}
	done := &models.Target{Title: "done", Type: models.TargetWeekly, StartDate: today.AddDate(0, 0, -14),
		EndDate: today.AddDate(0, 0, -7), TargetValue: 5, Status: models.TargetCompleted}
	current := &models.Target{Title: "current", Type: models.TargetWeekly, StartDate: today,
		EndDate: today.AddDate(0, 0, 6), TargetValue: 5}
	for _, tg := range []*models.Target{late, done, current} {
		require.NoError(t, repo.Create(ctx, tg))
	}

	overdue, err := repo.Overdue(ctx, today)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)

	n, err := repo.MarkOverdue(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	flagged, err := repo.List(ctx, TargetFilter{Status: models.TargetOverdue})
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, "late", flagged[0].Title)

	bad := &models.Target{Title: "bad", Type: models.TargetWeekly, StartDate: today, EndDate: today.AddDate(0, 0, -1)}
	assert.Error(t, repo.Create(ctx, bad))
}

func TestTargetCategories(t *testing.T) {
	repo := NewTargetRepository(setupTestDB(t))
	ctx := context.Background()

	sales := &models.TargetCategory{Name: "Sales", IconName: "trending_up"}
	require.NoError(t, repo.SaveCategory(ctx, sales))
	require.NoError(t, repo.SaveCategory(ctx, &models.TargetCategory{Name: "Content"}))

	categories, err := repo.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Content", categories[0].Name)

	require.NoError(t, repo.DeleteCategory(ctx, sales.ID))
	categories, err = repo.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestCampaignRepositoryLifecycle(t *testing.T) {
	repo := NewCampaignRepository(setupTestDB(t))
	ctx := context.Background()

	budget := 250.0
	campaign := &models.Campaign{
		Name:        "Spring outreach",
		Type:        models.CampaignMultiChannel,
		TargetCount: 100,
		Budget:      &budget,
		Segments:    []models.CampaignSegment{{ID: "s1", Name: "Restaurants", Size: 40}},
		Metadata:    map[string]any{"owner": "ops"},
	}
	require.NoError(t, repo.Create(ctx, campaign))
	assert.Equal(t, models.CampaignDraft, campaign.Status)
	assert.Equal(t, models.PriorityMedium, campaign.Priority)

	got, err := repo.Get(ctx, campaign.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, campaign.Segments, got.Segments)
	assert.Equal(t, "ops", got.Metadata["owner"])
	require.NotNil(t, got.Budget)
	assert.Equal(t, 250.0, *got.Budget)

	_, err = repo.Transition(ctx, campaign.ID, models.ActionPause)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	started, err := repo.Transition(ctx, campaign.ID, models.ActionStart)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignActive, started.Status)

	require.NoError(t, repo.RecordResults(ctx, campaign.ID, 50, 10, 5))
	metrics, err := repo.Metrics(ctx, campaign.ID)
	require.NoError(t, err)
	require.NotNil(t, metrics)
	assert.InDelta(t, 20.0, metrics.ResponseRate, 0.001)
	assert.InDelta(t, 10.0, metrics.ConversionRate, 0.001)
	assert.InDelta(t, 50.0, metrics.CostPerResult, 0.001)

	completed, err := repo.Transition(ctx, campaign.ID, models.ActionComplete)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignCompleted, completed.Status)
	assert.NotNil(t, completed.EndDate)

	active, err := repo.List(ctx, CampaignFilter{Status: models.CampaignActive})
	require.NoError(t, err)
	assert.Empty(t, active)

	missing, err := repo.Transition(ctx, uuid.New(), models.ActionStart)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCampaignScheduleAndTemplates(t *testing.T) {
	repo := NewCampaignRepository(setupTestDB(t))
	ctx := context.Background()

	campaign := &models.Campaign{Name: "Drip", Type: models.CampaignEmail}
	require.NoError(t, repo.Create(ctx, campaign))

	scheduled, err := repo.Scheduled(ctx)
	require.NoError(t, err)
	assert.Empty(t, scheduled)

	_, err = repo.SetSchedule(ctx, campaign.ID, &models.CampaignSchedule{
		Type:       models.ScheduleWeekly,
		StartTime:  time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC),
		DaysOfWeek: []time.Weekday{time.Monday, time.Thursday},
		TimeOfDay:  "09:00",
	})
	require.NoError(t, err)

	scheduled, err = repo.Scheduled(ctx)
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	require.NotNil(t, scheduled[0].Schedule)
	assert.Equal(t, []time.Weekday{time.Monday, time.Thursday}, scheduled[0].Schedule.DaysOfWeek)

	delay := 3
	second := &models.CampaignTemplate{CampaignID: campaign.ID, Name: "Follow up", Type: models.CampaignEmail, Order: 2, DelayDays: &delay}
	first := &models.CampaignTemplate{CampaignID: campaign.ID, Name: "Intro", Type: models.CampaignEmail, Order: 1,
		Variables: map[string]string{"first_name": "there"}}
	require.NoError(t, repo.SaveTemplate(ctx, second))
	require.NoError(t, repo.SaveTemplate(ctx, first))

	templates, err := repo.Templates(ctx, campaign.ID)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "Intro", templates[0].Name)
	assert.Equal(t, "there", templates[0].Variables["first_name"])
	require.NotNil(t, templates[1].DelayDays)
	assert.Equal(t, 3, *templates[1].DelayDays)

	require.NoError(t, repo.Delete(ctx, campaign.ID))
	tmpl, err := repo.GetTemplate(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, tmpl)
}

func TestIntegrationRepository(t *testing.T) {
	repo := NewIntegrationRepository(setupTestDB(t))
	ctx := context.Background()

	gmail := &models.Integration{Name: "Gmail", Type: models.IntegrationEmail, Provider: models.ProviderGmail,
		Config: map[string]string{"label": "clients"}}
	require.NoError(t, repo.Create(ctx, gmail))
	assert.Equal(t, models.IntegrationPending, gmail.Status)
	assert.False(t, gmail.Connected)

	hub := &models.Integration{Name: "HubSpot", Type: models.IntegrationCRM, Provider: models.ProviderHubSpot,
		Status: models.IntegrationConnected}
	require.NoError(t, repo.Create(ctx, hub))
	assert.True(t, hub.Connected)

	connected := true
	list, err := repo.List(ctx, IntegrationFilter{Connected: &connected})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "HubSpot", list[0].Name)

	byProvider, err := repo.List(ctx, IntegrationFilter{Provider: models.ProviderGmail})
	require.NoError(t, err)
	require.Len(t, byProvider, 1)
	assert.Equal(t, "clients", byProvider[0].Config["label"])

	failed, err := repo.UpdateStatus(ctx, gmail.ID, models.IntegrationError, "token expired")
	require.NoError(t, err)
	assert.Equal(t, "token expired", failed.Error)

	syncedAt := time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordSync(ctx, hub.ID, syncedAt))
	got, err := repo.Get(ctx, hub.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastSync)
	assert.True(t, got.LastSync.Equal(syncedAt))

	entries, err := repo.Errors(ctx, gmail.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "token expired", entries[0].Message)

	require.NoError(t, repo.Delete(ctx, gmail.ID))
	entries, err = repo.Errors(ctx, gmail.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBackupRunRepository(t *testing.T) {
	repo := NewBackupRunRepository(setupTestDB(t))
	ctx := context.Background()

	last, err := repo.LastSuccessful(ctx, "drive")
	require.NoError(t, err)
	assert.Nil(t, last)

	base := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	runs := []models.BackupRun{
		{ID: "r1", Provider: "drive", Name: "a.db", Status: models.BackupCompleted, CreatedAt: base},
		{ID: "r2", Provider: "drive", Name: "b.db", Status: models.BackupCompleted, CreatedAt: base.Add(time.Hour)},
		{ID: "r3", Provider: "drive", Name: "c.db", Status: models.BackupFailed, Error: "quota", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "r4", Provider: "s3", Name: "d.db", Status: models.BackupCompleted, CreatedAt: base.Add(3 * time.Hour)},
	}
	for i := range runs {
		require.NoError(t, repo.Record(ctx, &runs[i]))
	}

	last, err = repo.LastSuccessful(ctx, "drive")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "r2", last.ID)

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "r4", all[0].ID)
	assert.Equal(t, "quota", all[1].Error)

	assert.Error(t, repo.Record(ctx, &models.BackupRun{}))
}
