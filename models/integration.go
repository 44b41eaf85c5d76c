// ABOUTME: Third-party integration records and their error log
// ABOUTME: Tracks connection state and last sync for external providers
package models

import (
	"time"

	"github.com/google/uuid"
)

type IntegrationType string

const (
	IntegrationEmail       IntegrationType = "email"
	IntegrationCRM         IntegrationType = "crm"
	IntegrationCalendar    IntegrationType = "calendar"
	IntegrationSocialMedia IntegrationType = "social_media"
	IntegrationAnalytics   IntegrationType = "analytics"
	IntegrationStorage     IntegrationType = "storage"
	IntegrationCustom      IntegrationType = "custom"
)

var AllIntegrationTypes = []IntegrationType{
	IntegrationEmail,
	IntegrationCRM,
	IntegrationCalendar,
	IntegrationSocialMedia,
	IntegrationAnalytics,
	IntegrationStorage,
	IntegrationCustom,
}

func (t IntegrationType) Valid() bool { return containsEnum(AllIntegrationTypes, t) }

func ParseIntegrationType(s string) (IntegrationType, error) {
	return parseEnum("integration type", s, AllIntegrationTypes)
}

type IntegrationProvider string

const (
	ProviderGmail           IntegrationProvider = "gmail"
	ProviderOutlook         IntegrationProvider = "outlook"
	ProviderSalesforce      IntegrationProvider = "salesforce"
	ProviderHubSpot         IntegrationProvider = "hubspot"
	ProviderGoogleCalendar  IntegrationProvider = "google_calendar"
	ProviderOutlookCalendar IntegrationProvider = "outlook_calendar"
	ProviderLinkedIn        IntegrationProvider = "linkedin"
	ProviderTwitter         IntegrationProvider = "twitter"
	ProviderGoogleAnalytics IntegrationProvider = "google_analytics"
	ProviderAWS             IntegrationProvider = "aws"
	ProviderAzure           IntegrationProvider = "azure"
	ProviderCustom          IntegrationProvider = "custom"
)

var AllIntegrationProviders = []IntegrationProvider{
	ProviderGmail,
	ProviderOutlook,
	ProviderSalesforce,
	ProviderHubSpot,
	ProviderGoogleCalendar,
	ProviderOutlookCalendar,
	ProviderLinkedIn,
	ProviderTwitter,
	ProviderGoogleAnalytics,
	ProviderAWS,
	ProviderAzure,
	ProviderCustom,
}

func (p IntegrationProvider) Valid() bool { return containsEnum(AllIntegrationProviders, p) }

func ParseIntegrationProvider(s string) (IntegrationProvider, error) {
	return parseEnum("integration provider", s, AllIntegrationProviders)
}

type IntegrationStatus string

const (
	IntegrationConnected    IntegrationStatus = "connected"
	IntegrationDisconnected IntegrationStatus = "disconnected"
	IntegrationError        IntegrationStatus = "error"
	IntegrationPending      IntegrationStatus = "pending"
)

var AllIntegrationStatuses = []IntegrationStatus{
	IntegrationConnected,
	IntegrationDisconnected,
	IntegrationError,
	IntegrationPending,
}

func (s IntegrationStatus) Valid() bool { return containsEnum(AllIntegrationStatuses, s) }

func ParseIntegrationStatus(s string) (IntegrationStatus, error) {
	return parseEnum("integration status", s, AllIntegrationStatuses)
}

type Integration struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	Type      IntegrationType     `json:"type"`
	Provider  IntegrationProvider `json:"provider"`
	Status    IntegrationStatus   `json:"status"`
	Connected bool                `json:"is_connected"`
	LastSync  *time.Time          `json:"last_sync,omitempty"`
	Config    map[string]string   `json:"config,omitempty"`
	Error     string              `json:"error,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type IntegrationErrorEntry struct {
	ID            uuid.UUID `json:"id"`
	IntegrationID uuid.UUID `json:"integration_id"`
	Message       string    `json:"message"`
	OccurredAt    time.Time `json:"occurred_at"`
}
