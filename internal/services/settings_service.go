package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/trainerdesk/backend/internal/billing"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/logger"
	"github.com/trainerdesk/backend/internal/models"
	"github.com/trainerdesk/backend/internal/repository"
)

// UpdateSettingsRequest is a partial update; nil fields keep their value.
type UpdateSettingsRequest struct {
	DefaultGroupSessionRate   *decimal.Decimal `json:"defaultGroupSessionRate"`
	ClearDefaultGroupRate     bool             `json:"clearDefaultGroupSessionRate"`
	GroupSessionMatchingLogic *string          `json:"groupSessionMatchingLogic" validate:"omitempty,oneof=EXACT_MATCH START_MATCH END_MATCH ANY_OVERLAP"`
	MonthlyInvoiceDay         *int             `json:"monthlyInvoiceDay" validate:"omitempty,min=1,max=31"`
}

type SettingsService struct {
	store     repository.SettingsStore
	validator *ValidationHelper
	logger    *logger.Logger
}

func NewSettingsService(store repository.SettingsStore, log *logger.Logger) *SettingsService {
	return &SettingsService{
		store:     store,
		validator: NewValidationHelper(),
		logger:    log,
	}
}

// Get returns the trainer's settings, or the defaults when none were saved.
func (s *SettingsService) Get(ctx context.Context, trainerID, workspaceID string) (*models.TrainerSettings, error) {
	settings, err := billing.LoadSettings(ctx, s.store, trainerID, workspaceID)
	if err != nil {
		return nil, err
	}
	if settings.WorkspaceID != workspaceID {
		return nil, ierr.NewError("settings belong to another workspace").
			WithHint("You do not have access to these settings").
			Mark(ierr.ErrPermissionDenied)
	}
	return settings, nil
}

// Update applies req and stores the result. The cached copy is evicted on
// write, so the next preview reclassifies unbilled sessions under the new
// policy.
func (s *SettingsService) Update(ctx context.Context, trainerID, workspaceID string, req UpdateSettingsRequest) (*models.TrainerSettings, error) {
	if err := s.validator.ValidateStruct(&req); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid settings").
			WithReportableDetails(FieldErrors(err)).
			Mark(ierr.ErrValidation)
	}
	if req.DefaultGroupSessionRate != nil && req.DefaultGroupSessionRate.IsNegative() {
		return nil, ierr.NewError("negative group rate").
			WithHint("Default group session rate must not be negative").
			WithReportableDetails(map[string]any{"defaultGroupSessionRate": req.DefaultGroupSessionRate.String()}).
			Mark(ierr.ErrValidation)
	}

	settings, err := s.Get(ctx, trainerID, workspaceID)
	if err != nil {
		return nil, err
	}

	if req.ClearDefaultGroupRate {
		settings.DefaultGroupSessionRate = nil
	}
	if req.DefaultGroupSessionRate != nil {
		rate := *req.DefaultGroupSessionRate
		settings.DefaultGroupSessionRate = &rate
	}
	if req.GroupSessionMatchingLogic != nil {
		settings.GroupSessionMatchingLogic = models.GroupMatchingLogic(*req.GroupSessionMatchingLogic)
	}
	if req.MonthlyInvoiceDay != nil {
		settings.MonthlyInvoiceDay = *req.MonthlyInvoiceDay
	}

	if err := s.store.UpsertTrainerSettings(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Infow("[BILLING] trainer settings updated",
		"trainer_id", trainerID,
		"matching_logic", settings.GroupSessionMatchingLogic,
		"invoice_day", settings.MonthlyInvoiceDay,
	)
	return settings, nil
}
