package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/trainerdesk/backend/internal/models"
)

const settingsColumns = `trainer_id, workspace_id, default_group_session_rate, group_session_matching_logic, monthly_invoice_day`

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) GetTrainerSettings(ctx context.Context, trainerID string) (*models.TrainerSettings, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+settingsColumns+` FROM trainer_settings WHERE trainer_id = $1`, trainerID)
	s, err := scanSettings(row)
	if err != nil {
		return nil, dbError(err, "get trainer settings")
	}
	return s, nil
}

// ListTrainerSettings returns every trainer that has saved settings.
func (r *SettingsRepository) ListTrainerSettings(ctx context.Context) ([]models.TrainerSettings, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+settingsColumns+` FROM trainer_settings ORDER BY trainer_id`)
	if err != nil {
		return nil, dbError(err, "list trainer settings")
	}
	defer rows.Close()

	var out []models.TrainerSettings
	for rows.Next() {
		s, err := scanSettings(rows)
		if err != nil {
			return nil, dbError(err, "scan trainer settings")
		}
		out = append(out, *s)
	}
	return out, dbError(rows.Err(), "iterate trainer settings")
}

func (r *SettingsRepository) UpsertTrainerSettings(ctx context.Context, s *models.TrainerSettings) error {
	var rate decimal.NullDecimal
	if s.DefaultGroupSessionRate != nil {
		rate = decimal.NewNullDecimal(*s.DefaultGroupSessionRate)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trainer_settings (trainer_id, workspace_id, default_group_session_rate, group_session_matching_logic, monthly_invoice_day)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (trainer_id) DO UPDATE
		SET default_group_session_rate = EXCLUDED.default_group_session_rate,
		    group_session_matching_logic = EXCLUDED.group_session_matching_logic,
		    monthly_invoice_day = EXCLUDED.monthly_invoice_day`,
		s.TrainerID, s.WorkspaceID, rate, string(s.GroupSessionMatchingLogic), s.MonthlyInvoiceDay)
	return dbError(err, "upsert trainer settings")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettings(row rowScanner) (*models.TrainerSettings, error) {
	var s models.TrainerSettings
	var rate decimal.NullDecimal
	if err := row.Scan(&s.TrainerID, &s.WorkspaceID, &rate, &s.GroupSessionMatchingLogic, &s.MonthlyInvoiceDay); err != nil {
		return nil, err
	}
	if rate.Valid {
		s.DefaultGroupSessionRate = &rate.Decimal
	}
	return &s, nil
}

// SettingsStore is the settings persistence the cache wraps.
type SettingsStore interface {
	GetTrainerSettings(ctx context.Context, trainerID string) (*models.TrainerSettings, error)
	UpsertTrainerSettings(ctx context.Context, s *models.TrainerSettings) error
}

// CachedSettingsStore keeps recently read trainer settings in process.
// Writes go through and evict the cached entry so the next read sees them.
type CachedSettingsStore struct {
	next  SettingsStore
	cache *cache.Cache
}

func NewCachedSettingsStore(next SettingsStore, ttl time.Duration) *CachedSettingsStore {
	return &CachedSettingsStore{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedSettingsStore) GetTrainerSettings(ctx context.Context, trainerID string) (*models.TrainerSettings, error) {
	if v, ok := c.cache.Get(trainerID); ok {
		s := v.(models.TrainerSettings)
		return &s, nil
	}

	s, err := c.next.GetTrainerSettings(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(trainerID, *s)
	return s, nil
}

func (c *CachedSettingsStore) UpsertTrainerSettings(ctx context.Context, s *models.TrainerSettings) error {
	if err := c.next.UpsertTrainerSettings(ctx, s); err != nil {
		return err
	}
	c.cache.Delete(s.TrainerID)
	return nil
}

func (c *CachedSettingsStore) Invalidate(trainerID string) {
	c.cache.Delete(trainerID)
}
