package repository

import (
	"context"
	"database/sql"

	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/models"
)

type AppointmentRepository struct {
	db *sql.DB
}

func NewAppointmentRepository(db *sql.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) GetAppointment(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	appts, err := queryAppointments(ctx, r.db, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1`, appointmentID)
	if err != nil {
		return nil, err
	}
	if len(appts) == 0 {
		return nil, dbError(sql.ErrNoRows, "get appointment")
	}
	return &appts[0], nil
}

// UpdateAppointmentStatus moves the appointment from one status to another.
// It fails with ErrVersionConflict when the stored status is no longer from.
func (r *AppointmentRepository) UpdateAppointmentStatus(ctx context.Context, appointmentID string, from, to models.AppointmentStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE appointments SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`, string(to), appointmentID, string(from))
	if err != nil {
		return dbError(err, "update appointment status")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ierr.NewError("appointment status changed concurrently").
			WithHint("The appointment was modified by someone else, reload and retry").
			WithReportableDetails(map[string]any{"appointmentId": appointmentID}).
			Mark(ierr.ErrVersionConflict)
	}
	return nil
}
