package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/trainerdesk/backend/internal/config"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/logger"
	"github.com/trainerdesk/backend/internal/models"
	"github.com/trainerdesk/backend/internal/notify"
)

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	UpdateDelivery(ctx context.Context, n *models.Notification) error
	// ListDue returns PENDING or FAILED notifications whose next retry time
	// has passed, oldest retry time first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]models.Notification, error)
}

type NotificationService struct {
	store       NotificationStore
	senders     map[models.NotificationChannel]notify.Sender
	maxAttempts int
	backoff     time.Duration
	batchSize   int
	logger      *logger.Logger
}

func NewNotificationService(store NotificationStore, senders map[models.NotificationChannel]notify.Sender, cfg config.NotificationConfig, log *logger.Logger) *NotificationService {
	s := &NotificationService{
		store:       store,
		senders:     senders,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.RetryBackoff,
		batchSize:   cfg.BatchSize,
		logger:      log,
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = 3
	}
	if s.backoff <= 0 {
		s.backoff = 15 * time.Minute
	}
	if s.batchSize <= 0 {
		s.batchSize = 50
	}
	return s
}

// RetryResult summarises one retry run.
type RetryResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Abandoned int `json:"abandoned"`
}

// Enqueue stores a new PENDING notification that is due immediately.
func (s *NotificationService) Enqueue(ctx context.Context, n *models.Notification, now time.Time) error {
	if n.Recipient == "" {
		return ierr.NewError("notification has no recipient").
			WithHint("Recipient is required").
			Mark(ierr.ErrValidation)
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Status = models.NotificationPending
	n.Attempts = 0
	n.CreatedAt = now
	due := now
	n.NextRetryAt = &due
	return s.store.CreateNotification(ctx, n)
}

// Deliver makes one delivery attempt and records the outcome on n. The
// returned error only reports a failure to persist that outcome; a provider
// failure is recorded on the notification itself.
func (s *NotificationService) Deliver(ctx context.Context, n *models.Notification, now time.Time) error {
	sender, ok := s.senders[n.Channel]
	if !ok {
		n.Attempts++
		s.abandon(n, "no sender for channel "+string(n.Channel))
		return s.store.UpdateDelivery(ctx, n)
	}

	result := sender.Send(ctx, n.Recipient, notify.Message{
		Subject: n.Subject,
		Text:    n.Body,
	})
	n.Attempts++

	switch {
	case result.Success:
		sentAt := now
		n.Status = models.NotificationSent
		n.SentAt = &sentAt
		n.ExternalID = result.ExternalID
		n.NextRetryAt = nil
		n.LastError = ""
	case n.Attempts >= s.maxAttempts:
		s.abandon(n, errorText(result.Err))
	case result.Err != nil && !ierr.IsTransient(result.Err):
		// Rejected outright by the provider; another attempt cannot succeed.
		s.abandon(n, errorText(result.Err))
	default:
		next := now.Add(s.backoff)
		n.Status = models.NotificationFailed
		n.NextRetryAt = &next
		n.LastError = errorText(result.Err)
		s.logger.Warnw("[NOTIFY] delivery failed, will retry",
			"notification_id", n.ID,
			"channel", n.Channel,
			"attempts", n.Attempts,
			"next_retry_at", next,
			"error", n.LastError,
		)
	}

	return s.store.UpdateDelivery(ctx, n)
}

func (s *NotificationService) abandon(n *models.Notification, reason string) {
	n.Status = models.NotificationAbandoned
	n.NextRetryAt = nil
	n.LastError = reason
	s.logger.Errorw("[NOTIFY] notification abandoned",
		"notification_id", n.ID,
		"channel", n.Channel,
		"attempts", n.Attempts,
		"error", reason,
	)
}

// RetryPending retries one batch of due notifications. A failure on one
// notification never stops the rest of the batch.
func (s *NotificationService) RetryPending(ctx context.Context, now time.Time) (*RetryResult, error) {
	due, err := s.store.ListDue(ctx, now, s.batchSize)
	if err != nil {
		return nil, err
	}

	result := &RetryResult{}
	for i := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		n := &due[i]
		result.Processed++

		if n.Attempts >= s.maxAttempts {
			s.abandon(n, "attempt limit reached")
			if err := s.store.UpdateDelivery(ctx, n); err != nil {
				s.logger.Errorw("[NOTIFY] failed to record abandonment", "notification_id", n.ID, "error", err)
				result.Failed++
				continue
			}
			result.Abandoned++
			continue
		}

		if err := s.Deliver(ctx, n, now); err != nil {
			s.logger.Errorw("[NOTIFY] failed to record delivery", "notification_id", n.ID, "error", err)
			result.Failed++
			continue
		}

		switch n.Status {
		case models.NotificationSent:
			result.Sent++
		case models.NotificationAbandoned:
			result.Abandoned++
		default:
			result.Failed++
		}
	}

	s.logger.Infow("[NOTIFY] retry run finished",
		"processed", result.Processed,
		"sent", result.Sent,
		"failed", result.Failed,
		"abandoned", result.Abandoned,
	)
	return result, nil
}

func errorText(err error) string {
	if err == nil {
		return "delivery failed"
	}
	return err.Error()
}
