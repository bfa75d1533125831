package models

import "time"

type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "EMAIL"
	ChannelSMS   NotificationChannel = "SMS"
)

type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "PENDING"
	NotificationSent      NotificationStatus = "SENT"
	NotificationFailed    NotificationStatus = "FAILED"
	NotificationAbandoned NotificationStatus = "ABANDONED"
)

type Notification struct {
	ID          string              `json:"id" db:"id"`
	WorkspaceID string              `json:"workspaceId" db:"workspace_id"`
	InvoiceID   *string             `json:"invoiceId,omitempty" db:"invoice_id"`
	Channel     NotificationChannel `json:"channel" db:"channel"`
	Recipient   string              `json:"recipient" db:"recipient"`
	Subject     string              `json:"subject,omitempty" db:"subject"`
	Body        string              `json:"body" db:"body"`
	Status      NotificationStatus  `json:"status" db:"status"`
	Attempts    int                 `json:"attempts" db:"attempts"`
	NextRetryAt *time.Time          `json:"nextRetryAt,omitempty" db:"next_retry_at"`
	LastError   string              `json:"lastError,omitempty" db:"last_error"`
	ExternalID  string              `json:"externalId,omitempty" db:"external_id"`
	CreatedAt   time.Time           `json:"createdAt" db:"created_at"`
	SentAt      *time.Time          `json:"sentAt,omitempty" db:"sent_at"`
}
