package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PrepaidTransaction is an append-only ledger row. Amount is signed:
// credits are positive, debits negative.
type PrepaidTransaction struct {
	ID               string          `json:"id" db:"id"`
	ClientProfileID  string          `json:"clientProfileId" db:"client_profile_id"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	ResultingBalance decimal.Decimal `json:"resultingBalance" db:"resulting_balance"`
	Notes            string          `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
}

type PrepaidTransactionPage struct {
	Transactions []PrepaidTransaction `json:"transactions"`
	Total        int                  `json:"total"`
	Limit        int                  `json:"limit"`
	Offset       int                  `json:"offset"`
}
