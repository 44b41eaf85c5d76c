// ABOUTME: Data models for CRM entities
// ABOUTME: Defines Client and Lead records and their status enumerations
package models

import (
	"time"

	"github.com/google/uuid"
)

type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
	ClientPaused   ClientStatus = "paused"
)

var AllClientStatuses = []ClientStatus{ClientActive, ClientInactive, ClientPaused}

func (s ClientStatus) Valid() bool { return containsEnum(AllClientStatuses, s) }

func ParseClientStatus(s string) (ClientStatus, error) {
	return parseEnum("client status", s, AllClientStatuses)
}

// Client is a paying customer of the agency.
type Client struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	WhatsApp      string       `json:"whatsapp,omitempty"`
	Email         string       `json:"email,omitempty"`
	Instagram     string       `json:"instagram,omitempty"`
	MonthlyCharge float64      `json:"monthly_charge"`
	Deliverables  []string     `json:"deliverables,omitempty"`
	PaymentDate   string       `json:"payment_date,omitempty"`
	Status        ClientStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type LeadSource string

const (
	LeadWebsite       LeadSource = "website"
	LeadReferral      LeadSource = "referral"
	LeadSocialMedia   LeadSource = "social_media"
	LeadEmailCampaign LeadSource = "email_campaign"
	LeadOther         LeadSource = "other"
)

var AllLeadSources = []LeadSource{LeadWebsite, LeadReferral, LeadSocialMedia, LeadEmailCampaign, LeadOther}

func (s LeadSource) Valid() bool { return containsEnum(AllLeadSources, s) }

func ParseLeadSource(s string) (LeadSource, error) {
	return parseEnum("lead source", s, AllLeadSources)
}

type LeadStatus string

const (
	LeadNew          LeadStatus = "new"
	LeadContacted    LeadStatus = "contacted"
	LeadQualified    LeadStatus = "qualified"
	LeadProposalSent LeadStatus = "proposal_sent"
	LeadNegotiating  LeadStatus = "negotiating"
	LeadWon          LeadStatus = "won"
	LeadLost         LeadStatus = "lost"
)

var AllLeadStatuses = []LeadStatus{
	LeadNew,
	LeadContacted,
	LeadQualified,
	LeadProposalSent,
	LeadNegotiating,
	LeadWon,
	LeadLost,
}

func (s LeadStatus) Valid() bool { return containsEnum(AllLeadStatuses, s) }

// Closed reports whether the lead has left the pipeline.
func (s LeadStatus) Closed() bool {
	switch s {
	case LeadWon, LeadLost:
		return true
	case LeadNew, LeadContacted, LeadQualified, LeadProposalSent, LeadNegotiating:
		return false
	}
	return false
}

func ParseLeadStatus(s string) (LeadStatus, error) {
	return parseEnum("lead status", s, AllLeadStatuses)
}

// Lead is a prospective client.
type Lead struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Company     string     `json:"company,omitempty"`
	Designation string     `json:"designation,omitempty"`
	Source      LeadSource `json:"source"`
	Status      LeadStatus `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
