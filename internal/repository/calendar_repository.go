package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/trainerdesk/backend/internal/database"
	"github.com/trainerdesk/backend/internal/models"
)

type CalendarRepository struct {
	db *sql.DB
}

func NewCalendarRepository(db *sql.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

const connectionColumns = `trainer_id, workspace_id, provider, calendar_id, refresh_token, last_synced_at`

func (r *CalendarRepository) ListConnections(ctx context.Context) ([]models.CalendarConnection, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+connectionColumns+` FROM calendar_connections ORDER BY trainer_id`)
	if err != nil {
		return nil, dbError(err, "list calendar connections")
	}
	defer rows.Close()

	var out []models.CalendarConnection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, dbError(err, "scan calendar connection")
		}
		out = append(out, *c)
	}
	return out, dbError(rows.Err(), "iterate calendar connections")
}

func (r *CalendarRepository) GetConnection(ctx context.Context, trainerID string) (*models.CalendarConnection, error) {
	c, err := scanConnection(r.db.QueryRowContext(ctx,
		`SELECT `+connectionColumns+` FROM calendar_connections WHERE trainer_id = $1`, trainerID))
	if err != nil {
		return nil, dbError(err, "get calendar connection")
	}
	return c, nil
}

func scanConnection(row rowScanner) (*models.CalendarConnection, error) {
	var c models.CalendarConnection
	var lastSynced sql.NullTime
	if err := row.Scan(&c.TrainerID, &c.WorkspaceID, &c.Provider, &c.CalendarID, &c.RefreshToken, &lastSynced); err != nil {
		return nil, err
	}
	if lastSynced.Valid {
		c.LastSyncedAt = &lastSynced.Time
	}
	return &c, nil
}

// ReplaceBusyBlocks swaps the trainer's stored busy blocks inside
// [from, to] for blocks, atomically.
func (r *CalendarRepository) ReplaceBusyBlocks(ctx context.Context, trainerID string, from, to time.Time, blocks []models.BusyBlock) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM calendar_busy_blocks
			WHERE trainer_id = $1 AND start_time < $3 AND end_time > $2`, trainerID, from, to); err != nil {
			return dbError(err, "delete busy blocks")
		}
		for _, b := range blocks {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO calendar_busy_blocks (trainer_id, external_event_id, start_time, end_time)
				VALUES ($1, $2, $3, $4)`, trainerID, b.ExternalEventID, b.StartTime, b.EndTime); err != nil {
				return dbError(err, "insert busy block")
			}
		}
		return nil
	})
}

// ListUnsynced returns the trainer's SCHEDULED appointments in [from, to]
// that have no external calendar event yet.
func (r *CalendarRepository) ListUnsynced(ctx context.Context, trainerID string, from, to time.Time) ([]models.Appointment, error) {
	return queryAppointments(ctx, r.db, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE trainer_id = $1 AND status = 'SCHEDULED' AND external_event_id IS NULL
		  AND start_time >= $2 AND start_time <= $3
		ORDER BY start_time, id`, trainerID, from, to)
}

func (r *CalendarRepository) SetExternalEventID(ctx context.Context, appointmentID, eventID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE appointments SET external_event_id = $1, updated_at = NOW() WHERE id = $2`, eventID, appointmentID)
	return dbError(err, "set external event id")
}

func (r *CalendarRepository) MarkSynced(ctx context.Context, trainerID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE calendar_connections SET last_synced_at = $1 WHERE trainer_id = $2`, at, trainerID)
	return dbError(err, "mark calendar synced")
}
