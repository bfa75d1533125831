package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trainerdesk/backend/internal/billing"
	"github.com/trainerdesk/backend/internal/models"
)

const appointmentColumns = `id, trainer_id, client_id, workspace_id, start_time, end_time, status, external_event_id, created_at, updated_at`

// BillingRepository serves the read side of billing previews and invoicing.
type BillingRepository struct {
	db       *sql.DB
	settings billing.SettingsReader
}

// NewBillingRepository reads settings through the given reader so a cached
// store can sit in front of the settings table.
func NewBillingRepository(db *sql.DB, settings billing.SettingsReader) *BillingRepository {
	return &BillingRepository{db: db, settings: settings}
}

func (r *BillingRepository) GetTrainerSettings(ctx context.Context, trainerID string) (*models.TrainerSettings, error) {
	return r.settings.GetTrainerSettings(ctx, trainerID)
}

func (r *BillingRepository) ListClients(ctx context.Context, workspaceID string) ([]models.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workspace_id, name, email, COALESCE(phone, ''), created_at
		FROM users
		WHERE workspace_id = $1 AND role = 'CLIENT'
		ORDER BY name, id`, workspaceID)
	if err != nil {
		return nil, dbError(err, "list clients")
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
			return nil, dbError(err, "scan client")
		}
		clients = append(clients, c)
	}
	return clients, dbError(rows.Err(), "iterate clients")
}

func (r *BillingRepository) GetClient(ctx context.Context, clientID string) (*models.Client, error) {
	var c models.Client
	err := r.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, name, email, COALESCE(phone, ''), created_at
		FROM users
		WHERE id = $1`, clientID).
		Scan(&c.ID, &c.WorkspaceID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	if err != nil {
		return nil, dbError(err, "get client")
	}
	return &c, nil
}

func (r *BillingRepository) GetClientProfile(ctx context.Context, clientID string) (*models.ClientProfile, error) {
	return getClientProfile(ctx, r.db, clientID, false)
}

func (r *BillingRepository) ListTrainerAppointments(ctx context.Context, trainerID, workspaceID string, from, to time.Time) ([]models.Appointment, error) {
	return queryAppointments(ctx, r.db, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE trainer_id = $1 AND workspace_id = $2
		  AND status <> 'CANCELLED'
		  AND start_time <= $4 AND end_time >= $3
		ORDER BY start_time, id`, trainerID, workspaceID, from, to)
}

func (r *BillingRepository) ListUnbilledCompleted(ctx context.Context, trainerID, workspaceID, clientID string, from, to time.Time) ([]models.Appointment, error) {
	return queryAppointments(ctx, r.db, `
		SELECT `+appointmentColumns+`
		FROM appointments a
		WHERE a.trainer_id = $1 AND a.workspace_id = $2 AND a.client_id = $3
		  AND a.status = 'COMPLETED'
		  AND a.start_time >= $4 AND a.start_time <= $5
		  AND NOT EXISTS (SELECT 1 FROM invoice_line_items li WHERE li.appointment_id = a.id)
		ORDER BY a.start_time, a.id`, trainerID, workspaceID, clientID, from, to)
}

func (r *BillingRepository) ListScheduled(ctx context.Context, trainerID, workspaceID, clientID string, from, to time.Time) ([]models.Appointment, error) {
	return queryAppointments(ctx, r.db, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE trainer_id = $1 AND workspace_id = $2 AND client_id = $3
		  AND status = 'SCHEDULED'
		  AND start_time >= $4 AND start_time <= $5
		ORDER BY start_time, id`, trainerID, workspaceID, clientID, from, to)
}

func queryAppointments(ctx context.Context, q queryer, query string, args ...any) ([]models.Appointment, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "query appointments")
	}
	defer rows.Close()

	var out []models.Appointment
	for rows.Next() {
		var a models.Appointment
		var externalID sql.NullString
		if err := rows.Scan(&a.ID, &a.TrainerID, &a.ClientID, &a.WorkspaceID, &a.StartTime, &a.EndTime,
			&a.Status, &externalID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, dbError(err, "scan appointment")
		}
		a.ExternalEventID = stringPtr(externalID)
		out = append(out, a)
	}
	return out, dbError(rows.Err(), "iterate appointments")
}

const profileColumns = `id, user_id, billing_frequency, session_rate, group_session_rate, prepaid_balance, prepaid_target_balance, auto_invoice_enabled, version, updated_at`

func getClientProfile(ctx context.Context, q queryer, clientID string, forUpdate bool) (*models.ClientProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM client_profiles WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var p models.ClientProfile
	var groupRate decimal.NullDecimal
	err := q.QueryRowContext(ctx, query, clientID).Scan(
		&p.ID, &p.UserID, &p.BillingFrequency, &p.SessionRate, &groupRate,
		&p.PrepaidBalance, &p.PrepaidTargetBalance, &p.AutoInvoiceEnabled, &p.Version, &p.UpdatedAt,
	)
	if err != nil {
		return nil, dbError(err, "get client profile")
	}
	if groupRate.Valid {
		p.GroupSessionRate = &groupRate.Decimal
	}
	return &p, nil
}
