package models

import "time"

type CalendarConnection struct {
	TrainerID    string     `json:"trainerId" db:"trainer_id"`
	WorkspaceID  string     `json:"workspaceId" db:"workspace_id"`
	Provider     string     `json:"provider" db:"provider"`
	CalendarID   string     `json:"calendarId" db:"calendar_id"`
	RefreshToken string     `json:"-" db:"refresh_token"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty" db:"last_synced_at"`
}

// BusyBlock is time on the trainer's external calendar that did not
// originate from a booking here.
type BusyBlock struct {
	TrainerID       string    `json:"trainerId" db:"trainer_id"`
	ExternalEventID string    `json:"externalEventId" db:"external_event_id"`
	StartTime       time.Time `json:"startTime" db:"start_time"`
	EndTime         time.Time `json:"endTime" db:"end_time"`
}
