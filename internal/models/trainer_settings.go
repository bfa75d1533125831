package models

import "github.com/shopspring/decimal"

type GroupMatchingLogic string

const (
	MatchExact      GroupMatchingLogic = "EXACT_MATCH"
	MatchStart      GroupMatchingLogic = "START_MATCH"
	MatchEnd        GroupMatchingLogic = "END_MATCH"
	MatchAnyOverlap GroupMatchingLogic = "ANY_OVERLAP"
)

type TrainerSettings struct {
	TrainerID                 string             `json:"trainerId" db:"trainer_id"`
	WorkspaceID               string             `json:"workspaceId" db:"workspace_id"`
	DefaultGroupSessionRate   *decimal.Decimal   `json:"defaultGroupSessionRate,omitempty" db:"default_group_session_rate"`
	GroupSessionMatchingLogic GroupMatchingLogic `json:"groupSessionMatchingLogic" db:"group_session_matching_logic"`
	MonthlyInvoiceDay         int                `json:"monthlyInvoiceDay" db:"monthly_invoice_day"`
}
