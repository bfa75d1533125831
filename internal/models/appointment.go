package models

import "time"

type AppointmentStatus string

const (
	AppointmentScheduled   AppointmentStatus = "SCHEDULED"
	AppointmentCompleted   AppointmentStatus = "COMPLETED"
	AppointmentCancelled   AppointmentStatus = "CANCELLED"
	AppointmentRescheduled AppointmentStatus = "RESCHEDULED"
)

// Appointment is a booked session between a trainer and a client. Once
// COMPLETED it only changes by being linked to an invoice line item.
type Appointment struct {
	ID              string            `json:"id" db:"id"`
	TrainerID       string            `json:"trainerId" db:"trainer_id"`
	ClientID        string            `json:"clientId" db:"client_id"`
	WorkspaceID     string            `json:"workspaceId" db:"workspace_id"`
	StartTime       time.Time         `json:"startTime" db:"start_time"`
	EndTime         time.Time         `json:"endTime" db:"end_time"`
	Status          AppointmentStatus `json:"status" db:"status"`
	ExternalEventID *string           `json:"externalEventId,omitempty" db:"external_event_id"`
	CreatedAt       time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time         `json:"updatedAt" db:"updated_at"`
}

// CountsTowardGroup reports whether the appointment can be a participant
// in someone else's group session.
func (a *Appointment) CountsTowardGroup() bool {
	return a.Status == AppointmentScheduled || a.Status == AppointmentCompleted
}
