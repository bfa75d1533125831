package audit

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trainerdesk/backend/internal/logger"
)

type Event struct {
	Timestamp time.Time       `json:"timestamp"`
	EventType string          `json:"event_type"`
	EntityID  string          `json:"entity_id"`
	ClientID  string          `json:"client_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Details   any             `json:"details,omitempty"`
}

type AuditLogger struct {
	log *logger.Logger
}

func NewAuditLogger(log *logger.Logger) *AuditLogger {
	return &AuditLogger{log: log}
}

// LogLedgerEntry records a prepaid credit or debit after it commits.
func (a *AuditLogger) LogLedgerEntry(transactionID, clientID, entryType string, amount, resultingBalance decimal.Decimal) {
	a.emit(Event{
		Timestamp: time.Now(),
		EventType: entryType,
		EntityID:  transactionID,
		ClientID:  clientID,
		Amount:    amount,
		Status:    "SUCCESS",
		Details:   map[string]string{"resulting_balance": resultingBalance.StringFixed(2)},
	})
}

func (a *AuditLogger) LogInvoice(invoiceID, clientID string, amount decimal.Decimal, lineItems int) {
	a.emit(Event{
		Timestamp: time.Now(),
		EventType: "INVOICE_CREATED",
		EntityID:  invoiceID,
		ClientID:  clientID,
		Amount:    amount,
		Status:    "SUCCESS",
		Details:   map[string]int{"line_items": lineItems},
	})
}

func (a *AuditLogger) LogError(entityID, clientID string, err error) {
	a.emit(Event{
		Timestamp: time.Now(),
		EventType: "ERROR",
		EntityID:  entityID,
		ClientID:  clientID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *AuditLogger) emit(event Event) {
	data, _ := json.Marshal(event)
	a.log.Infof("AUDIT: %s", string(data))
}
