package services

import (
	"context"
	"time"

	"github.com/trainerdesk/backend/internal/billing"
	"github.com/trainerdesk/backend/internal/logger"
)

// BillingService serves billing previews at the current server-local time.
type BillingService struct {
	aggregator *billing.Aggregator
	logger     *logger.Logger
	now        func() time.Time
}

func NewBillingService(aggregator *billing.Aggregator, log *logger.Logger) *BillingService {
	return &BillingService{aggregator: aggregator, logger: log, now: time.Now}
}

func (s *BillingService) Preview(ctx context.Context, trainerID, workspaceID string) (*billing.Preview, error) {
	started := time.Now()
	preview, err := s.aggregator.Preview(ctx, trainerID, workspaceID, s.now())
	if err != nil {
		s.logger.Errorw("[BILLING] preview failed", "trainer_id", trainerID, "error", err)
		return nil, err
	}

	s.logger.Infow("[BILLING] preview computed",
		"trainer_id", trainerID,
		"clients", preview.Totals.Clients,
		"skipped", len(preview.SkippedClients),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return preview, nil
}
