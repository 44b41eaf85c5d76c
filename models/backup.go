// ABOUTME: Backup records returned by the cloud backup adapter
// ABOUTME: Includes backup status, frequency and the local run history row
package models

import "time"

type BackupStatus string

const (
	BackupPending    BackupStatus = "pending"
	BackupInProgress BackupStatus = "in_progress"
	BackupCompleted  BackupStatus = "completed"
	BackupFailed     BackupStatus = "failed"
)

var AllBackupStatuses = []BackupStatus{BackupPending, BackupInProgress, BackupCompleted, BackupFailed}

func (s BackupStatus) Valid() bool { return containsEnum(AllBackupStatuses, s) }

// BackupFile describes one stored backup object. Callers must check Status:
// transport failures are reported as BackupFailed with Error set.
type BackupFile struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	ContentType string       `json:"content_type"`
	Size        int64        `json:"size"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Status      BackupStatus `json:"status"`
	Error       string       `json:"error,omitempty"`
}

func (b BackupFile) Succeeded() bool { return b.Status == BackupCompleted }

type BackupFrequency string

const (
	FrequencyHourly  BackupFrequency = "hourly"
	FrequencyDaily   BackupFrequency = "daily"
	FrequencyWeekly  BackupFrequency = "weekly"
	FrequencyMonthly BackupFrequency = "monthly"
)

var AllBackupFrequencies = []BackupFrequency{FrequencyHourly, FrequencyDaily, FrequencyWeekly, FrequencyMonthly}

func (f BackupFrequency) Valid() bool { return containsEnum(AllBackupFrequencies, f) }

func ParseBackupFrequency(s string) (BackupFrequency, error) {
	return parseEnum("backup frequency", s, AllBackupFrequencies)
}

// Next returns the earliest time a backup is due after last.
func (f BackupFrequency) Next(last time.Time) time.Time {
	switch f {
	case FrequencyHourly:
		return last.Add(time.Hour)
	case FrequencyDaily:
		return last.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return last.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return last.AddDate(0, 1, 0)
	}
	return last.AddDate(0, 0, 1)
}

// BackupRun is the local history row written after every backup attempt.
type BackupRun struct {
	ID        string       `json:"id"`
	Provider  string       `json:"provider"`
	RemoteID  string       `json:"remote_id,omitempty"`
	Name      string       `json:"name"`
	Size      int64        `json:"size"`
	Status    BackupStatus `json:"status"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
