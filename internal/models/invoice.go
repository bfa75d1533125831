package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoiceSent      InvoiceStatus = "SENT"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceOverdue   InvoiceStatus = "OVERDUE"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

type Invoice struct {
	ID          string            `json:"id" db:"id"`
	Number      string            `json:"number" db:"number"`
	WorkspaceID string            `json:"workspaceId" db:"workspace_id"`
	TrainerID   string            `json:"trainerId" db:"trainer_id"`
	ClientID    string            `json:"clientId" db:"client_id"`
	Amount      decimal.Decimal   `json:"amount" db:"amount"`
	Status      InvoiceStatus     `json:"status" db:"status"`
	PeriodStart time.Time         `json:"periodStart" db:"period_start"`
	PeriodEnd   time.Time         `json:"periodEnd" db:"period_end"`
	IssuedAt    time.Time         `json:"issuedAt" db:"issued_at"`
	DueAt       time.Time         `json:"dueAt" db:"due_at"`
	LineItems   []InvoiceLineItem `json:"lineItems"`
}

// InvoiceLineItem bills exactly one appointment; appointment_id is unique
// across all line items.
type InvoiceLineItem struct {
	ID            string          `json:"id" db:"id"`
	InvoiceID     string          `json:"invoiceId" db:"invoice_id"`
	AppointmentID string          `json:"appointmentId" db:"appointment_id"`
	Description   string          `json:"description" db:"description"`
	Quantity      int             `json:"quantity" db:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Total         decimal.Decimal `json:"total" db:"total"`
}

type InvoiceFilter struct {
	ClientID string
	Status   InvoiceStatus
	Limit    int
	Offset   int
}
