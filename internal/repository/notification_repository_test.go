package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trainerdesk/backend/internal/models"
)

func TestNotificationRepository_ListDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewNotificationRepository(db)
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	retryAt := now.Add(-15 * time.Minute)

	mock.ExpectQuery("WHERE status IN \\('PENDING', 'FAILED'\\) AND \\(next_retry_at IS NULL OR next_retry_at <= \\$1\\) ORDER BY next_retry_at ASC NULLS FIRST, created_at ASC LIMIT \\$2").
		WithArgs(now, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "workspace_id", "invoice_id", "channel", "recipient", "subject", "body",
			"status", "attempts", "next_retry_at", "last_error", "external_id", "created_at", "sent_at"}).
			AddRow("n-1", "ws-1", "inv-1", "EMAIL", "a@example.com", "Invoice", "body", "FAILED", 1, retryAt, "timeout", "", now.Add(-time.Hour), nil).
			AddRow("n-2", "ws-1", nil, "SMS", "+15550100", "", "body", "PENDING", 0, nil, "", "", now.Add(-time.Hour), nil))

	due, err := repo.ListDue(context.Background(), now, 50)
	require.NoError(t, err)
	require.Len(t, due, 2)
	require.NotNil(t, due[0].InvoiceID)
	assert.Equal(t, "inv-1", *due[0].InvoiceID)
	assert.Equal(t, models.NotificationFailed, due[0].Status)
	require.NotNil(t, due[0].NextRetryAt)
	assert.True(t, retryAt.Equal(*due[0].NextRetryAt))
	assert.Nil(t, due[1].InvoiceID)
	assert.Equal(t, models.ChannelSMS, due[1].Channel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_UpdateDelivery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewNotificationRepository(db)
	sentAt := time.Now()

	mock.ExpectExec("UPDATE notifications SET status = \\$1, attempts = \\$2").
		WithArgs("SENT", 2, nil, "", "msg-123", sentAt, "n-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateDelivery(context.Background(), &models.Notification{
		ID:         "n-1",
		Status:     models.NotificationSent,
		Attempts:   2,
		ExternalID: "msg-123",
		SentAt:     &sentAt,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
