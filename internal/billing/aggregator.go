package billing

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/logger"
	"github.com/trainerdesk/backend/internal/models"
)

// Store is the read side the aggregator needs.
type Store interface {
	SettingsReader
	ListClients(ctx context.Context, workspaceID string) ([]models.Client, error)
	// GetClientProfile returns ErrNotFound when the client has no profile.
	GetClientProfile(ctx context.Context, clientID string) (*models.ClientProfile, error)
	// ListTrainerAppointments returns the trainer's non-cancelled appointments
	// in the workspace that overlap [from, to].
	ListTrainerAppointments(ctx context.Context, trainerID, workspaceID string, from, to time.Time) ([]models.Appointment, error)
	// ListUnbilledCompleted returns COMPLETED appointments starting in [from, to]
	// that no invoice line item references.
	ListUnbilledCompleted(ctx context.Context, trainerID, workspaceID, clientID string, from, to time.Time) ([]models.Appointment, error)
	// ListScheduled returns SCHEDULED appointments starting in [from, to].
	ListScheduled(ctx context.Context, trainerID, workspaceID, clientID string, from, to time.Time) ([]models.Appointment, error)
}

type CompletedSummary struct {
	Sessions        []PricedSession `json:"sessions"`
	GroupCount      int             `json:"groupCount"`
	IndividualCount int             `json:"individualCount"`
	Total           decimal.Decimal `json:"total"`
}

type ScheduledSummary struct {
	Count           int             `json:"count"`
	GroupCount      int             `json:"groupCount"`
	IndividualCount int             `json:"individualCount"`
	Total           decimal.Decimal `json:"total"`
}

type ClientPreview struct {
	ClientID       string           `json:"clientId"`
	ClientName     string           `json:"clientName"`
	Completed      CompletedSummary `json:"completed"`
	Scheduled      ScheduledSummary `json:"scheduled"`
	ProjectedTotal decimal.Decimal  `json:"projectedTotal"`
}

type Totals struct {
	Clients           int             `json:"clients"`
	CompletedSessions int             `json:"completedSessions"`
	ScheduledSessions int             `json:"scheduledSessions"`
	CompletedTotal    decimal.Decimal `json:"completedTotal"`
	ProjectedTotal    decimal.Decimal `json:"projectedTotal"`
}

type Preview struct {
	TrainerID      string          `json:"trainerId"`
	WorkspaceID    string          `json:"workspaceId"`
	Period         Period          `json:"period"`
	GeneratedAt    time.Time       `json:"generatedAt"`
	Clients        []ClientPreview `json:"clients"`
	Totals         Totals          `json:"totals"`
	SkippedClients []string        `json:"skippedClients,omitempty"`
}

type Aggregator struct {
	store  Store
	logger *logger.Logger
}

func NewAggregator(store Store, log *logger.Logger) *Aggregator {
	return &Aggregator{store: store, logger: log}
}

type SettingsReader interface {
	// GetTrainerSettings returns ErrNotFound when the trainer never saved settings.
	GetTrainerSettings(ctx context.Context, trainerID string) (*models.TrainerSettings, error)
}

// LoadSettings falls back to EXACT_MATCH with no default group rate when the
// trainer has no saved settings.
func LoadSettings(ctx context.Context, store SettingsReader, trainerID, workspaceID string) (*models.TrainerSettings, error) {
	settings, err := store.GetTrainerSettings(ctx, trainerID)
	if ierr.IsNotFound(err) {
		return &models.TrainerSettings{
			TrainerID:                 trainerID,
			WorkspaceID:               workspaceID,
			GroupSessionMatchingLogic: models.MatchExact,
			MonthlyInvoiceDay:         1,
		}, nil
	}
	return settings, err
}

// Preview computes the current month's billing preview for every MONTHLY
// client in the workspace. now is injected so the window is testable.
func (a *Aggregator) Preview(ctx context.Context, trainerID, workspaceID string, now time.Time) (*Preview, error) {
	period := MonthPeriod(now)

	settings, err := LoadSettings(ctx, a.store, trainerID, workspaceID)
	if err != nil {
		return nil, err
	}
	if settings.WorkspaceID != "" && settings.WorkspaceID != workspaceID {
		return nil, ierr.NewError("trainer belongs to another workspace").
			WithHint("You do not have access to this trainer").
			Mark(ierr.ErrPermissionDenied)
	}

	from, to := period.CandidateWindow()
	candidates, err := a.store.ListTrainerAppointments(ctx, trainerID, workspaceID, from, to)
	if err != nil {
		return nil, err
	}

	clients, err := a.store.ListClients(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	pricer := &Pricer{Settings: settings, Candidates: candidates}
	preview := &Preview{
		TrainerID:   trainerID,
		WorkspaceID: workspaceID,
		Period:      period,
		GeneratedAt: now,
		Clients:     make([]ClientPreview, 0, len(clients)),
	}

	for _, client := range clients {
		cp, err := a.previewClient(ctx, pricer, trainerID, workspaceID, client, period, now)
		if err != nil {
			// One bad client never sinks the whole preview.
			a.logger.Warnw("[BILLING] skipping client in preview",
				"client_id", client.ID,
				"trainer_id", trainerID,
				"error", err,
			)
			preview.SkippedClients = append(preview.SkippedClients, client.ID)
			continue
		}
		if cp == nil {
			continue
		}
		preview.Clients = append(preview.Clients, *cp)
	}

	sort.SliceStable(preview.Clients, func(i, j int) bool {
		return preview.Clients[i].ProjectedTotal.GreaterThan(preview.Clients[j].ProjectedTotal)
	})

	preview.Totals = sumTotals(preview.Clients)
	return preview, nil
}

// previewClient returns nil for clients that are not billed monthly or have
// no profile.
func (a *Aggregator) previewClient(ctx context.Context, pricer *Pricer, trainerID, workspaceID string, client models.Client, period Period, now time.Time) (*ClientPreview, error) {
	profile, err := a.store.GetClientProfile(ctx, client.ID)
	if ierr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if profile.BillingFrequency != models.BillingMonthly {
		return nil, nil
	}

	completed, err := a.store.ListUnbilledCompleted(ctx, trainerID, workspaceID, client.ID, period.Start, period.End)
	if err != nil {
		return nil, err
	}

	scheduled, err := a.store.ListScheduled(ctx, trainerID, workspaceID, client.ID, now, period.End)
	if err != nil {
		return nil, err
	}

	cp := &ClientPreview{
		ClientID:   client.ID,
		ClientName: client.Name,
		Completed: CompletedSummary{
			Sessions: make([]PricedSession, 0, len(completed)),
			Total:    decimal.Zero,
		},
		Scheduled: ScheduledSummary{Total: decimal.Zero},
	}

	for _, s := range pricer.PriceAll(profile, completed) {
		cp.Completed.Sessions = append(cp.Completed.Sessions, s)
		cp.Completed.Total = cp.Completed.Total.Add(s.Rate)
		if s.IsGroupSession {
			cp.Completed.GroupCount++
		} else {
			cp.Completed.IndividualCount++
		}
	}

	for _, s := range pricer.PriceAll(profile, scheduled) {
		cp.Scheduled.Count++
		cp.Scheduled.Total = cp.Scheduled.Total.Add(s.Rate)
		if s.IsGroupSession {
			cp.Scheduled.GroupCount++
		} else {
			cp.Scheduled.IndividualCount++
		}
	}

	cp.ProjectedTotal = cp.Completed.Total.Add(cp.Scheduled.Total)
	return cp, nil
}

func sumTotals(clients []ClientPreview) Totals {
	totals := Totals{
		Clients:        len(clients),
		CompletedTotal: decimal.Zero,
		ProjectedTotal: decimal.Zero,
	}
	for _, c := range clients {
		totals.CompletedSessions += len(c.Completed.Sessions)
		totals.ScheduledSessions += c.Scheduled.Count
		totals.CompletedTotal = totals.CompletedTotal.Add(c.Completed.Total)
		totals.ProjectedTotal = totals.ProjectedTotal.Add(c.ProjectedTotal)
	}
	return totals
}
