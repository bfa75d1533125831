package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/trainerdesk/backend/internal/billing"
	"github.com/trainerdesk/backend/internal/models"
	"github.com/trainerdesk/backend/internal/services"
)

type BillingPreviewer interface {
	Preview(ctx context.Context, trainerID, workspaceID string) (*billing.Preview, error)
}

type SettingsManager interface {
	Get(ctx context.Context, trainerID, workspaceID string) (*models.TrainerSettings, error)
	Update(ctx context.Context, trainerID, workspaceID string, req services.UpdateSettingsRequest) (*models.TrainerSettings, error)
}

type BillingHandler struct {
	billing  BillingPreviewer
	settings SettingsManager
}

func NewBillingHandler(billing BillingPreviewer, settings SettingsManager) *BillingHandler {
	return &BillingHandler{billing: billing, settings: settings}
}

// Preview returns the current month's billing preview
// @Summary Billing preview
// @Description Per-client completed and projected amounts for the current month
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param trainerId query string false "Trainer ID (required for admins)"
// @Success 200 {object} billing.Preview
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /billing/preview [get]
func (h *BillingHandler) Preview(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	trainerID, err := trainerScope(p, r.URL.Query().Get("trainerId"))
	if err != nil {
		services.WriteError(w, err)
		return
	}

	preview, err := h.billing.Preview(r.Context(), trainerID, p.WorkspaceID)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, preview)
}

// GetSettings returns a trainer's billing settings
// @Summary Get trainer settings
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Param trainerId path string true "Trainer ID"
// @Success 200 {object} models.TrainerSettings
// @Failure 403 {object} services.ErrorResponse
// @Router /trainers/{trainerId}/settings [get]
func (h *BillingHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	trainerID, err := trainerScope(p, chi.URLParam(r, "trainerId"))
	if err != nil {
		services.WriteError(w, err)
		return
	}

	settings, err := h.settings.Get(r.Context(), trainerID, p.WorkspaceID)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, settings)
}

// UpdateSettings changes a trainer's group rate, matching logic or invoice day
// @Summary Update trainer settings
// @Description Partial update; omitted fields keep their value
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param trainerId path string true "Trainer ID"
// @Param request body services.UpdateSettingsRequest true "Settings update"
// @Success 200 {object} models.TrainerSettings
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /trainers/{trainerId}/settings [put]
func (h *BillingHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	trainerID, err := trainerScope(p, chi.URLParam(r, "trainerId"))
	if err != nil {
		services.WriteError(w, err)
		return
	}

	var req services.UpdateSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	settings, err := h.settings.Update(r.Context(), trainerID, p.WorkspaceID, req)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, settings)
}
