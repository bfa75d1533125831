package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/trainerdesk/backend/internal/models"
	"github.com/trainerdesk/backend/internal/services"
)

type AppointmentUpdater interface {
	UpdateStatus(ctx context.Context, workspaceID, trainerID, appointmentID string, status models.AppointmentStatus) (*models.Appointment, error)
}

type TrainerCalendarSyncer interface {
	SyncTrainerByID(ctx context.Context, trainerID, workspaceID string, now time.Time) (*services.CalendarSyncResult, error)
}

type AppointmentHandler struct {
	appointments AppointmentUpdater
	calendar     TrainerCalendarSyncer
	validator    *services.ValidationHelper
	now          func() time.Time
}

func NewAppointmentHandler(appointments AppointmentUpdater, calendar TrainerCalendarSyncer) *AppointmentHandler {
	return &AppointmentHandler{
		appointments: appointments,
		calendar:     calendar,
		validator:    services.NewValidationHelper(),
		now:          time.Now,
	}
}

type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" validate:"required,oneof=COMPLETED CANCELLED RESCHEDULED"`
}

// UpdateStatus completes, cancels or reschedules an appointment
// @Summary Update appointment status
// @Description Cancelling or rescheduling removes the synced calendar event
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param appointmentId path string true "Appointment ID"
// @Param request body UpdateAppointmentStatusRequest true "New status"
// @Success 200 {object} models.Appointment
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /appointments/{appointmentId}/status [patch]
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req UpdateAppointmentStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	// admins may update any trainer's appointment in their workspace
	trainerID := ""
	if p.Role == models.RoleTrainer {
		trainerID = p.UserID
	}

	appt, err := h.appointments.UpdateStatus(r.Context(), p.WorkspaceID, trainerID, chi.URLParam(r, "appointmentId"), req.Status)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, appt)
}

// SyncCalendar pulls busy time and pushes new appointments for one trainer
// @Summary Sync trainer calendar
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Param trainerId path string true "Trainer ID"
// @Success 200 {object} services.CalendarSyncResult
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /trainers/{trainerId}/calendar/sync [post]
func (h *AppointmentHandler) SyncCalendar(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	trainerID, err := trainerScope(p, chi.URLParam(r, "trainerId"))
	if err != nil {
		services.WriteError(w, err)
		return
	}

	result, err := h.calendar.SyncTrainerByID(r.Context(), trainerID, p.WorkspaceID, h.now())
	if err != nil {
		services.WriteError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, result)
}
