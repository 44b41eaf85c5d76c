// ABOUTME: Target (goal) records with progress history and categories
// ABOUTME: Targets span calendar dates and track progress toward a numeric goal
package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the storage and CLI format for calendar dates.
const DateLayout = "2006-01-02"

type TargetType string

const (
	TargetWeekly  TargetType = "weekly"
	TargetMonthly TargetType = "monthly"
	TargetAnnual  TargetType = "annual"
)

var AllTargetTypes = []TargetType{TargetWeekly, TargetMonthly, TargetAnnual}

func (t TargetType) Valid() bool { return containsEnum(AllTargetTypes, t) }

func ParseTargetType(s string) (TargetType, error) {
	return parseEnum("target type", s, AllTargetTypes)
}

type TargetStatus string

const (
	TargetPending    TargetStatus = "pending"
	TargetInProgress TargetStatus = "in_progress"
	TargetCompleted  TargetStatus = "completed"
	TargetOverdue    TargetStatus = "overdue"
)

var AllTargetStatuses = []TargetStatus{TargetPending, TargetInProgress, TargetCompleted, TargetOverdue}

func (s TargetStatus) Valid() bool { return containsEnum(AllTargetStatuses, s) }

func ParseTargetStatus(s string) (TargetStatus, error) {
	return parseEnum("target status", s, AllTargetStatuses)
}

type Target struct {
	ID              uuid.UUID    `json:"id"`
	Title           string       `json:"title"`
	Type            TargetType   `json:"target_type"`
	StartDate       time.Time    `json:"start_date"`
	EndDate         time.Time    `json:"end_date"`
	TargetValue     float64      `json:"target_value"`
	CurrentProgress float64      `json:"current_progress"`
	Unit            string       `json:"unit"`
	Description     string       `json:"description,omitempty"`
	Status          TargetStatus `json:"status"`
	Category        string       `json:"category"`
	Priority        int          `json:"priority"`
	IconName        string       `json:"icon_name,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Percent returns progress toward the goal, capped at 100.
func (t *Target) Percent() float64 {
	if t.TargetValue <= 0 {
		return 0
	}
	p := t.CurrentProgress / t.TargetValue * 100
	if p > 100 {
		return 100
	}
	return p
}

type TargetProgress struct {
	ID        uuid.UUID `json:"id"`
	TargetID  uuid.UUID `json:"target_id"`
	Date      time.Time `json:"date"`
	Progress  float64   `json:"progress"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type TargetCategory struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IconName    string    `json:"icon_name,omitempty"`
}
