package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BillingFrequency string

const (
	BillingPerSession BillingFrequency = "PER_SESSION"
	BillingMonthly    BillingFrequency = "MONTHLY"
)

// ClientProfile holds a client's billing terms. PrepaidBalance is the
// authoritative balance; the prepaid_transactions table is its audit trail.
type ClientProfile struct {
	ID                   string           `json:"id" db:"id"`
	UserID               string           `json:"userId" db:"user_id"`
	BillingFrequency     BillingFrequency `json:"billingFrequency" db:"billing_frequency"`
	SessionRate          decimal.Decimal  `json:"sessionRate" db:"session_rate"`
	GroupSessionRate     *decimal.Decimal `json:"groupSessionRate,omitempty" db:"group_session_rate"`
	PrepaidBalance       decimal.Decimal  `json:"prepaidBalance" db:"prepaid_balance"`
	PrepaidTargetBalance decimal.Decimal  `json:"prepaidTargetBalance" db:"prepaid_target_balance"`
	AutoInvoiceEnabled   bool             `json:"autoInvoiceEnabled" db:"auto_invoice_enabled"`
	Version              int              `json:"version" db:"version"`
	UpdatedAt            time.Time        `json:"updatedAt" db:"updated_at"`
}
