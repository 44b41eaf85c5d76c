// ABOUTME: Campaign records with templates, segments, schedules and metrics
// ABOUTME: Includes the campaign status transition table
package models

import (
	"time"

	"github.com/google/uuid"
)

type CampaignType string

const (
	CampaignEmail        CampaignType = "email"
	CampaignMessage      CampaignType = "message"
	CampaignPhone        CampaignType = "phone"
	CampaignSocial       CampaignType = "social"
	CampaignMultiChannel CampaignType = "multi_channel"
)

var AllCampaignTypes = []CampaignType{CampaignEmail, CampaignMessage, CampaignPhone, CampaignSocial, CampaignMultiChannel}

func (t CampaignType) Valid() bool { return containsEnum(AllCampaignTypes, t) }

func ParseCampaignType(s string) (CampaignType, error) {
	return parseEnum("campaign type", s, AllCampaignTypes)
}

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
	CampaignArchived  CampaignStatus = "archived"
	CampaignCancelled CampaignStatus = "cancelled"
)

var AllCampaignStatuses = []CampaignStatus{
	CampaignDraft,
	CampaignActive,
	CampaignPaused,
	CampaignCompleted,
	CampaignArchived,
	CampaignCancelled,
}

func (s CampaignStatus) Valid() bool { return containsEnum(AllCampaignStatuses, s) }

func ParseCampaignStatus(s string) (CampaignStatus, error) {
	return parseEnum("campaign status", s, AllCampaignStatuses)
}

// CampaignAction is a lifecycle operation on a campaign.
type CampaignAction string

const (
	ActionStart    CampaignAction = "start"
	ActionPause    CampaignAction = "pause"
	ActionResume   CampaignAction = "resume"
	ActionComplete CampaignAction = "complete"
	ActionCancel   CampaignAction = "cancel"
	ActionArchive  CampaignAction = "archive"
)

var AllCampaignActions = []CampaignAction{ActionStart, ActionPause, ActionResume, ActionComplete, ActionCancel, ActionArchive}

func ParseCampaignAction(s string) (CampaignAction, error) {
	return parseEnum("campaign action", s, AllCampaignActions)
}

// Apply returns the status reached by performing the action from status s.
// ok is false when the action is not allowed from s.
func (a CampaignAction) Apply(s CampaignStatus) (next CampaignStatus, ok bool) {
	switch a {
	case ActionStart:
		return CampaignActive, s == CampaignDraft
	case ActionPause:
		return CampaignPaused, s == CampaignActive
	case ActionResume:
		return CampaignActive, s == CampaignPaused
	case ActionComplete:
		return CampaignCompleted, s == CampaignActive || s == CampaignPaused
	case ActionCancel:
		return CampaignCancelled, s == CampaignDraft || s == CampaignActive || s == CampaignPaused
	case ActionArchive:
		return CampaignArchived, s == CampaignCompleted || s == CampaignCancelled || s == CampaignDraft
	}
	return s, false
}

type CampaignPriority string

const (
	PriorityLow    CampaignPriority = "low"
	PriorityMedium CampaignPriority = "medium"
	PriorityHigh   CampaignPriority = "high"
	PriorityUrgent CampaignPriority = "urgent"
)

var AllCampaignPriorities = []CampaignPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p CampaignPriority) Valid() bool { return containsEnum(AllCampaignPriorities, p) }

func ParseCampaignPriority(s string) (CampaignPriority, error) {
	return parseEnum("campaign priority", s, AllCampaignPriorities)
}

type ScheduleType string

const (
	ScheduleOnce    ScheduleType = "once"
	ScheduleDaily   ScheduleType = "daily"
	ScheduleWeekly  ScheduleType = "weekly"
	ScheduleMonthly ScheduleType = "monthly"
	ScheduleCustom  ScheduleType = "custom"
)

type CampaignSchedule struct {
	Type       ScheduleType   `json:"type"`
	StartTime  time.Time      `json:"start_time"`
	EndTime    *time.Time     `json:"end_time,omitempty"`
	DaysOfWeek []time.Weekday `json:"days_of_week,omitempty"`
	TimeOfDay  string         `json:"time_of_day,omitempty"`
}

type CampaignFilter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

type CampaignSegment struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Filters     []CampaignFilter `json:"filters,omitempty"`
	Size        int              `json:"size"`
	TemplateIDs []string         `json:"template_ids,omitempty"`
}

type Campaign struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	Type            CampaignType      `json:"type"`
	Status          CampaignStatus    `json:"status"`
	Priority        CampaignPriority  `json:"priority"`
	TargetCount     int               `json:"target_count"`
	SentCount       int               `json:"sent_count"`
	ResponseCount   int               `json:"response_count"`
	ConversionCount int               `json:"conversion_count"`
	StartDate       time.Time         `json:"start_date"`
	EndDate         *time.Time        `json:"end_date,omitempty"`
	Budget          *float64          `json:"budget,omitempty"`
	Segments        []CampaignSegment `json:"segments,omitempty"`
	Schedule        *CampaignSchedule `json:"schedule,omitempty"`
	CreatedBy       string            `json:"created_by,omitempty"`
	Metadata        map[string]any    `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type CampaignTemplate struct {
	ID         uuid.UUID         `json:"id"`
	CampaignID uuid.UUID         `json:"campaign_id"`
	Name       string            `json:"name"`
	Type       CampaignType      `json:"type"`
	Content    string            `json:"content"`
	Variables  map[string]string `json:"variables,omitempty"`
	Order      int               `json:"order"`
	DelayDays  *int              `json:"delay_days,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// CampaignMetrics are rates derived from a campaign's counters.
type CampaignMetrics struct {
	CampaignID     uuid.UUID `json:"campaign_id"`
	Sent           int       `json:"sent"`
	Responded      int       `json:"responded"`
	Converted      int       `json:"converted"`
	ResponseRate   float64   `json:"response_rate"`
	ConversionRate float64   `json:"conversion_rate"`
	CostPerResult  float64   `json:"cost_per_result"`
}

// Metrics derives rates from the counters. Rates are 0 when nothing was sent.
func (c *Campaign) Metrics() CampaignMetrics {
	m := CampaignMetrics{
		CampaignID: c.ID,
		Sent:       c.SentCount,
		Responded:  c.ResponseCount,
		Converted:  c.ConversionCount,
	}
	if c.SentCount > 0 {
		m.ResponseRate = float64(c.ResponseCount) / float64(c.SentCount) * 100
		m.ConversionRate = float64(c.ConversionCount) / float64(c.SentCount) * 100
	}
	if c.Budget != nil && c.ConversionCount > 0 {
		m.CostPerResult = *c.Budget / float64(c.ConversionCount)
	}
	return m
}
