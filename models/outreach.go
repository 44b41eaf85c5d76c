// ABOUTME: Outreach record and its type/status enumerations
// ABOUTME: An outreach is one logged or scheduled contact attempt with a client or lead
package models

import (
	"time"

	"github.com/google/uuid"
)

// OutreachType is the channel used for an outreach. Declaration order is
// significant: it breaks ties when ranking types by count.
type OutreachType string

const (
	OutreachEmail           OutreachType = "email"
	OutreachPhoneCall       OutreachType = "phone_call"
	OutreachLinkedInMessage OutreachType = "linkedin_message"
	OutreachSocialMediaPost OutreachType = "social_media_post"
	OutreachMeeting         OutreachType = "meeting"
	OutreachOther           OutreachType = "other"
)

// AllOutreachTypes lists every outreach type in declaration order.
var AllOutreachTypes = []OutreachType{
	OutreachEmail,
	OutreachPhoneCall,
	OutreachLinkedInMessage,
	OutreachSocialMediaPost,
	OutreachMeeting,
	OutreachOther,
}

func (t OutreachType) Valid() bool { return containsEnum(AllOutreachTypes, t) }

// Label returns a human readable name.
func (t OutreachType) Label() string {
	switch t {
	case OutreachEmail:
		return "Email"
	case OutreachPhoneCall:
		return "Phone Call"
	case OutreachLinkedInMessage:
		return "LinkedIn Message"
	case OutreachSocialMediaPost:
		return "Social Media Post"
	case OutreachMeeting:
		return "Meeting"
	case OutreachOther:
		return "Other"
	}
	return string(t)
}

func ParseOutreachType(s string) (OutreachType, error) {
	return parseEnum("outreach type", s, AllOutreachTypes)
}

type OutreachStatus string

const (
	OutreachPending   OutreachStatus = "pending"
	OutreachCompleted OutreachStatus = "completed"
	OutreachScheduled OutreachStatus = "scheduled"
	OutreachCancelled OutreachStatus = "cancelled"
)

var AllOutreachStatuses = []OutreachStatus{
	OutreachPending,
	OutreachCompleted,
	OutreachScheduled,
	OutreachCancelled,
}

func (s OutreachStatus) Valid() bool { return containsEnum(AllOutreachStatuses, s) }

func ParseOutreachStatus(s string) (OutreachStatus, error) {
	return parseEnum("outreach status", s, AllOutreachStatuses)
}

// Outreach is a single contact attempt. OutreachDate and CreatedAt are
// independent: the former may lie in the future (scheduled) or the past (logged).
type Outreach struct {
	ID           uuid.UUID      `json:"id"`
	ClientID     uuid.UUID      `json:"client_id"`
	LeadID       *uuid.UUID     `json:"lead_id,omitempty"`
	Type         OutreachType   `json:"outreach_type"`
	OutreachDate time.Time      `json:"outreach_date"`
	Status       OutreachStatus `json:"status"`
	Notes        string         `json:"notes,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ResponseTime is OutreachDate minus CreatedAt. It is negative when the
// outreach was logged with a date earlier than the record itself.
func (o *Outreach) ResponseTime() time.Duration {
	return o.OutreachDate.Sub(o.CreatedAt)
}
