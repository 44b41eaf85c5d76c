// ABOUTME: Tests for the outreach repository
// ABOUTME: Covers round trips, client/lead filters, and half-open date windows
package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/remotearmz/commandcenter/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutreachCreateThenListByClient(t *testing.T) {
	database := setupTestDB(t)
	repo := NewOutreachRepository(database)
	ctx := context.Background()

	leadID := uuid.New()
	o := &models.Outreach{
		ClientID:     uuid.New(),
		LeadID:       &leadID,
		Type:         models.OutreachLinkedInMessage,
		OutreachDate: time.Date(2024, 5, 2, 14, 30, 15, 123456789, time.UTC),
		Status:       models.OutreachScheduled,
		Notes:        "follow up on proposal",
	}
	require.NoError(t, repo.Create(ctx, o))
	assert.NotEqual(t, uuid.Nil, o.ID)

	got, err := repo.ListByClient(ctx, o.ClientID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *o, got[0])
	assert.Equal(t, 123*int(time.Millisecond), got[0].OutreachDate.Nanosecond())
}

func TestOutreachGetMissingReturnsNil(t *testing.T) {
	repo := NewOutreachRepository(setupTestDB(t))
	got, err := repo.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOutreachUpsertIsLastWriteWins(t *testing.T) {
	repo := NewOutreachRepository(setupTestDB(t))
	ctx := context.Background()

	o := &models.Outreach{ClientID: uuid.New(), Type: models.OutreachEmail, Status: models.OutreachPending}
	require.NoError(t, repo.Create(ctx, o))

	second := *o
	second.Status = models.OutreachCompleted
	second.Notes = "replied"
	require.NoError(t, repo.Create(ctx, &second))

	got, err := repo.Get(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.OutreachCompleted, got.Status)
	assert.Equal(t, "replied", got.Notes)

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOutreachValidation(t *testing.T) {
	repo := NewOutreachRepository(setupTestDB(t))
	ctx := context.Background()

	err := repo.Create(ctx, &models.Outreach{Type: models.OutreachEmail})
	assert.Error(t, err, "client id is required")

	err = repo.Create(ctx, &models.Outreach{ClientID: uuid.New(), Type: "fax"})
	assert.Error(t, err)
}

func TestOutreachListByDateRangeIsHalfOpen(t *testing.T) {
	repo := NewOutreachRepository(setupTestDB(t))
	ctx := context.Background()
	client := uuid.New()

	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	dates := []time.Time{
		start.Add(-time.Millisecond),
		start,
		start.Add(12 * time.Hour),
		end.Add(-time.Millisecond),
		end,
	}
	for _, d := range dates {
		require.NoError(t, repo.Create(ctx, &models.Outreach{
			ClientID: client, Type: models.OutreachEmail, Status: models.OutreachCompleted, OutreachDate: d,
		}))
	}

	got, err := repo.ListByDateRange(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// newest first
	assert.True(t, got[0].OutreachDate.Equal(end.Add(-time.Millisecond)))
	assert.True(t, got[2].OutreachDate.Equal(start))

	n, err := repo.CountByDateRange(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestOutreachCounts(t *testing.T) {
	repo := NewOutreachRepository(setupTestDB(t))
	ctx := context.Background()
	client := uuid.New()
	day := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	seed := []struct {
		typ    models.OutreachType
		status models.OutreachStatus
	}{
		{models.OutreachEmail, models.OutreachCompleted},
		{models.OutreachEmail, models.OutreachPending},
		{models.OutreachMeeting, models.OutreachCompleted},
	}
	for _, s := range seed {
		require.NoError(t, repo.Create(ctx, &models.Outreach{
			ClientID: client, Type: s.typ, Status: s.status, OutreachDate: day,
		}))
	}

	from, to := day.Add(-time.Hour), day.Add(time.Hour)
	completed, err := repo.CountByStatus(ctx, models.OutreachCompleted, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, completed)

	emails, err := repo.CountByType(ctx, models.OutreachEmail, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, emails)

	calls, err := repo.CountByType(ctx, models.OutreachPhoneCall, from, to)
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestOutreachListByLeadAndUpdateStatus(t *testing.T) {
	repo := NewOutreachRepository(setupTestDB(t))
	ctx := context.Background()
	lead := uuid.New()

	withLead := &models.Outreach{ClientID: uuid.New(), LeadID: &lead, Type: models.OutreachPhoneCall}
	without := &models.Outreach{ClientID: uuid.New(), Type: models.OutreachPhoneCall}
	require.NoError(t, repo.Create(ctx, withLead))
	require.NoError(t, repo.Create(ctx, without))

	got, err := repo.ListByLead(ctx, lead)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, withLead.ID, got[0].ID)

	updated, err := repo.UpdateStatus(ctx, withLead.ID, models.OutreachCancelled)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, models.OutreachCancelled, updated.Status)

	missing, err := repo.UpdateStatus(ctx, uuid.New(), models.OutreachCancelled)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Delete(ctx, without.ID))
	gone, err := repo.Get(ctx, without.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
