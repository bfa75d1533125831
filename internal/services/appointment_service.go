package services

import (
	"context"

	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/logger"
	"github.com/trainerdesk/backend/internal/models"
)

type AppointmentStore interface {
	GetAppointment(ctx context.Context, appointmentID string) (*models.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, appointmentID string, from, to models.AppointmentStatus) error
}

// EventRemover deletes external calendar events without blocking the caller.
type EventRemover interface {
	DeleteEventAsync(trainerID, eventID string)
}

type AppointmentService struct {
	store    AppointmentStore
	calendar EventRemover
	logger   *logger.Logger
}

func NewAppointmentService(store AppointmentStore, calendar EventRemover, log *logger.Logger) *AppointmentService {
	return &AppointmentService{store: store, calendar: calendar, logger: log}
}

// UpdateStatus moves a SCHEDULED appointment to COMPLETED, CANCELLED or
// RESCHEDULED. Every other status is final. trainerID, when set, must own
// the appointment.
func (s *AppointmentService) UpdateStatus(ctx context.Context, workspaceID, trainerID, appointmentID string, status models.AppointmentStatus) (*models.Appointment, error) {
	appt, err := s.store.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.WorkspaceID != workspaceID || (trainerID != "" && appt.TrainerID != trainerID) {
		return nil, ierr.NewError("appointment belongs to someone else").
			WithHint("You do not have access to this appointment").
			Mark(ierr.ErrPermissionDenied)
	}

	switch status {
	case models.AppointmentCompleted, models.AppointmentCancelled, models.AppointmentRescheduled:
	default:
		return nil, ierr.NewError("unsupported target status").
			WithHintf("Cannot move an appointment to %q", status).
			Mark(ierr.ErrValidation)
	}
	if appt.Status != models.AppointmentScheduled {
		return nil, ierr.NewError("appointment status is final").
			WithHintf("A %s appointment cannot change status", appt.Status).
			WithReportableDetails(map[string]any{"status": string(appt.Status)}).
			Mark(ierr.ErrValidation)
	}

	if err := s.store.UpdateAppointmentStatus(ctx, appt.ID, appt.Status, status); err != nil {
		return nil, err
	}
	appt.Status = status

	if status != models.AppointmentCompleted && appt.ExternalEventID != nil && s.calendar != nil {
		s.calendar.DeleteEventAsync(appt.TrainerID, *appt.ExternalEventID)
	}

	s.logger.Infow("[BILLING] appointment status changed",
		"appointment_id", appt.ID,
		"trainer_id", appt.TrainerID,
		"status", status,
	)
	return appt, nil
}
