package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/trainerdesk/backend/internal/models"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, workspace_id, invoice_id, channel, recipient, subject, body, status, attempts, next_retry_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		n.ID, n.WorkspaceID, nullString(n.InvoiceID), string(n.Channel), n.Recipient, n.Subject, n.Body,
		string(n.Status), n.Attempts, n.NextRetryAt, n.CreatedAt)
	return dbError(err, "insert notification")
}

// UpdateDelivery persists the outcome of a delivery attempt.
func (r *NotificationRepository) UpdateDelivery(ctx context.Context, n *models.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET status = $1, attempts = $2, next_retry_at = $3, last_error = $4, external_id = $5, sent_at = $6
		WHERE id = $7`,
		string(n.Status), n.Attempts, n.NextRetryAt, n.LastError, n.ExternalID, n.SentAt, n.ID)
	return dbError(err, "update notification delivery")
}

// ListDue returns at most limit PENDING or FAILED notifications whose retry
// time has passed, oldest retry time first.
func (r *NotificationRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workspace_id, invoice_id, channel, recipient, COALESCE(subject, ''), body, status, attempts,
		       next_retry_at, COALESCE(last_error, ''), COALESCE(external_id, ''), created_at, sent_at
		FROM notifications
		WHERE status IN ('PENDING', 'FAILED')
		  AND (next_retry_at IS NULL OR next_retry_at <= $1)
		ORDER BY next_retry_at ASC NULLS FIRST, created_at ASC
		LIMIT $2`, now, limit)
	if err != nil {
		return nil, dbError(err, "list due notifications")
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		var invoiceID sql.NullString
		var nextRetry, sentAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.WorkspaceID, &invoiceID, &n.Channel, &n.Recipient, &n.Subject, &n.Body,
			&n.Status, &n.Attempts, &nextRetry, &n.LastError, &n.ExternalID, &n.CreatedAt, &sentAt); err != nil {
			return nil, dbError(err, "scan notification")
		}
		n.InvoiceID = stringPtr(invoiceID)
		if nextRetry.Valid {
			n.NextRetryAt = &nextRetry.Time
		}
		if sentAt.Valid {
			n.SentAt = &sentAt.Time
		}
		out = append(out, n)
	}
	return out, dbError(rows.Err(), "iterate notifications")
}
