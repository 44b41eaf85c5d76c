// ABOUTME: Tests for CRM data models
// ABOUTME: Validates enum parsing, campaign transitions, and derived metrics
package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutreachType(t *testing.T) {
	cases := map[string]OutreachType{
		"email":             OutreachEmail,
		"Phone Call":        OutreachPhoneCall,
		"linkedin-message":  OutreachLinkedInMessage,
		" social_media_post": OutreachSocialMediaPost,
		"MEETING":           OutreachMeeting,
		"other":             OutreachOther,
	}
	for in, want := range cases {
		got, err := ParseOutreachType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseOutreachType("carrier_pigeon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidEnum))
}

func TestOutreachTypeDeclarationOrder(t *testing.T) {
	require.Len(t, AllOutreachTypes, 6)
	assert.Equal(t, OutreachEmail, AllOutreachTypes[0])
	assert.Equal(t, OutreachPhoneCall, AllOutreachTypes[1])
	assert.Equal(t, OutreachOther, AllOutreachTypes[5])
	for _, ot := range AllOutreachTypes {
		assert.True(t, ot.Valid())
		assert.NotEmpty(t, ot.Label())
	}
	assert.False(t, OutreachType("fax").Valid())
}

func TestOutreachStatuses(t *testing.T) {
	require.Len(t, AllOutreachStatuses, 4)
	s, err := ParseOutreachStatus("Completed")
	require.NoError(t, err)
	assert.Equal(t, OutreachCompleted, s)
	assert.False(t, OutreachStatus("done").Valid())
}

func TestResponseTimeMayBeNegative(t *testing.T) {
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	o := &Outreach{CreatedAt: created, OutreachDate: created.Add(-time.Hour)}
	assert.Equal(t, -time.Hour, o.ResponseTime())

	o.OutreachDate = created.Add(10 * time.Minute)
	assert.Equal(t, 10*time.Minute, o.ResponseTime())
}

func TestCampaignActionApply(t *testing.T) {
	tests := []struct {
		action CampaignAction
		from   CampaignStatus
		want   CampaignStatus
		ok     bool
	}{
		{ActionStart, CampaignDraft, CampaignActive, true},
		{ActionStart, CampaignActive, CampaignActive, false},
		{ActionPause, CampaignActive, CampaignPaused, true},
		{ActionPause, CampaignDraft, CampaignPaused, false},
		{ActionResume, CampaignPaused, CampaignActive, true},
		{ActionComplete, CampaignPaused, CampaignCompleted, true},
		{ActionComplete, CampaignDraft, CampaignCompleted, false},
		{ActionCancel, CampaignActive, CampaignCancelled, true},
		{ActionCancel, CampaignCompleted, CampaignCancelled, false},
		{ActionArchive, CampaignCompleted, CampaignArchived, true},
		{ActionArchive, CampaignActive, CampaignArchived, false},
	}
	for _, tt := range tests {
		got, ok := tt.action.Apply(tt.from)
		assert.Equal(t, tt.ok, ok, "%s from %s", tt.action, tt.from)
		if ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestCampaignMetrics(t *testing.T) {
	budget := 500.0
	c := &Campaign{SentCount: 200, ResponseCount: 50, ConversionCount: 10, Budget: &budget}
	m := c.Metrics()
	assert.InDelta(t, 25.0, m.ResponseRate, 0.0001)
	assert.InDelta(t, 5.0, m.ConversionRate, 0.0001)
	assert.InDelta(t, 50.0, m.CostPerResult, 0.0001)

	empty := (&Campaign{}).Metrics()
	assert.Zero(t, empty.ResponseRate)
	assert.Zero(t, empty.ConversionRate)
	assert.Zero(t, empty.CostPerResult)
}

func TestTargetPercent(t *testing.T) {
	target := &Target{TargetValue: 40, CurrentProgress: 10}
	assert.InDelta(t, 25.0, target.Percent(), 0.0001)

	target.CurrentProgress = 80
	assert.Equal(t, 100.0, target.Percent())

	target.TargetValue = 0
	assert.Zero(t, target.Percent())
}

func TestBackupFrequencyNext(t *testing.T) {
	last := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, last.Add(time.Hour), FrequencyHourly.Next(last))
	assert.Equal(t, last.AddDate(0, 0, 1), FrequencyDaily.Next(last))
	assert.Equal(t, last.AddDate(0, 0, 7), FrequencyWeekly.Next(last))
	assert.Equal(t, last.AddDate(0, 1, 0), FrequencyMonthly.Next(last))

	f, err := ParseBackupFrequency("weekly")
	require.NoError(t, err)
	assert.Equal(t, FrequencyWeekly, f)
}

func TestLeadStatusClosed(t *testing.T) {
	assert.True(t, LeadWon.Closed())
	assert.True(t, LeadLost.Closed())
	assert.False(t, LeadNegotiating.Closed())
}
