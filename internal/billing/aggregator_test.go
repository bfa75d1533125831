package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/logger"
	"github.com/trainerdesk/backend/internal/models"
)

type fakeStore struct {
	settings     *models.TrainerSettings
	clients      []models.Client
	profiles     map[string]*models.ClientProfile
	profileErrs  map[string]error
	appointments []models.Appointment
	billed       map[string]bool
}

func (f *fakeStore) GetTrainerSettings(ctx context.Context, trainerID string) (*models.TrainerSettings, error) {
	if f.settings == nil {
		return nil, ierr.NewError("no settings").Mark(ierr.ErrNotFound)
	}
	return f.settings, nil
}

func (f *fakeStore) ListClients(ctx context.Context, workspaceID string) ([]models.Client, error) {
	return f.clients, nil
}

func (f *fakeStore) GetClientProfile(ctx context.Context, clientID string) (*models.ClientProfile, error) {
	if err, ok := f.profileErrs[clientID]; ok {
		return nil, err
	}
	p, ok := f.profiles[clientID]
	if !ok {
		return nil, ierr.NewError("no profile").Mark(ierr.ErrNotFound)
	}
	return p, nil
}

func (f *fakeStore) ListTrainerAppointments(ctx context.Context, trainerID, workspaceID string, from, to time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range f.appointments {
		if a.Status == models.AppointmentCancelled {
			continue
		}
		if a.EndTime.After(from) && a.StartTime.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) ListUnbilledCompleted(ctx context.Context, trainerID, workspaceID, clientID string, from, to time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range f.appointments {
		if a.ClientID == clientID && a.Status == models.AppointmentCompleted && !f.billed[a.ID] &&
			!a.StartTime.Before(from) && !a.StartTime.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) ListScheduled(ctx context.Context, trainerID, workspaceID, clientID string, from, to time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range f.appointments {
		if a.ClientID == clientID && a.Status == models.AppointmentScheduled &&
			!a.StartTime.Before(from) && !a.StartTime.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func at(day, hour, minute int) time.Time {
	return time.Date(2025, 6, day, hour, minute, 0, 0, time.UTC)
}

func session(id, clientID string, start time.Time, minutes int, status models.AppointmentStatus) models.Appointment {
	return models.Appointment{
		ID:          id,
		TrainerID:   "trainer-1",
		ClientID:    clientID,
		WorkspaceID: "ws-1",
		StartTime:   start,
		EndTime:     start.Add(time.Duration(minutes) * time.Minute),
		Status:      status,
	}
}

func newFixture() *fakeStore {
	return &fakeStore{
		settings: &models.TrainerSettings{
			TrainerID:                 "trainer-1",
			WorkspaceID:               "ws-1",
			DefaultGroupSessionRate:   decPtr("50"),
			GroupSessionMatchingLogic: models.MatchExact,
		},
		clients: []models.Client{
			{ID: "alice", Name: "Alice"},
			{ID: "bob", Name: "Bob"},
			{ID: "carol", Name: "Carol"},
			{ID: "dave", Name: "Dave"},
		},
		profiles: map[string]*models.ClientProfile{
			"alice": {UserID: "alice", BillingFrequency: models.BillingMonthly, SessionRate: dec("60"), GroupSessionRate: decPtr("40")},
			"bob":   {UserID: "bob", BillingFrequency: models.BillingMonthly, SessionRate: dec("80")},
			"carol": {UserID: "carol", BillingFrequency: models.BillingPerSession, SessionRate: dec("100")},
			// dave has no profile
		},
		appointments: []models.Appointment{
			// alice + bob share a slot: group session
			session("a1", "alice", at(3, 9, 0), 60, models.AppointmentCompleted),
			session("b1", "bob", at(3, 9, 0), 60, models.AppointmentCompleted),
			// alice alone
			session("a2", "alice", at(5, 9, 0), 60, models.AppointmentCompleted),
			// bob future, alone
			session("b2", "bob", at(20, 9, 0), 60, models.AppointmentScheduled),
			// carol is per-session, never previewed
			session("c1", "carol", at(6, 9, 0), 60, models.AppointmentCompleted),
			// cancelled never counts
			session("a3", "alice", at(7, 9, 0), 60, models.AppointmentCancelled),
			// previous month
			session("a4", "alice", time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC), 60, models.AppointmentCompleted),
		},
		billed: map[string]bool{},
	}
}

var previewNow = at(15, 12, 0)

func TestAggregator_Preview(t *testing.T) {
	store := newFixture()
	agg := NewAggregator(store, logger.NewNop())

	preview, err := agg.Preview(context.Background(), "trainer-1", "ws-1", previewNow)
	require.NoError(t, err)

	assert.Equal(t, MonthPeriod(previewNow), preview.Period)
	require.Len(t, preview.Clients, 2)

	// bob: group 50 (trainer default) + scheduled 80 = 130 projected
	// alice: group 40 (client override) + individual 60 = 100
	bob := preview.Clients[0]
	assert.Equal(t, "bob", bob.ClientID)
	assert.True(t, dec("50").Equal(bob.Completed.Total))
	assert.Equal(t, 1, bob.Completed.GroupCount)
	assert.Equal(t, 1, bob.Scheduled.Count)
	assert.Equal(t, 1, bob.Scheduled.IndividualCount)
	assert.True(t, dec("130").Equal(bob.ProjectedTotal))

	alice := preview.Clients[1]
	assert.Equal(t, "alice", alice.ClientID)
	require.Len(t, alice.Completed.Sessions, 2)
	assert.Equal(t, 1, alice.Completed.GroupCount)
	assert.Equal(t, 1, alice.Completed.IndividualCount)
	assert.True(t, dec("100").Equal(alice.Completed.Total))
	assert.True(t, dec("100").Equal(alice.ProjectedTotal))

	assert.Equal(t, 2, preview.Totals.Clients)
	assert.Equal(t, 3, preview.Totals.CompletedSessions)
	assert.Equal(t, 1, preview.Totals.ScheduledSessions)
	assert.True(t, dec("150").Equal(preview.Totals.CompletedTotal))
	assert.True(t, dec("230").Equal(preview.Totals.ProjectedTotal))
	assert.Empty(t, preview.SkippedClients)
}

func TestAggregator_Preview_Idempotent(t *testing.T) {
	agg := NewAggregator(newFixture(), logger.NewNop())

	first, err := agg.Preview(context.Background(), "trainer-1", "ws-1", previewNow)
	require.NoError(t, err)
	second, err := agg.Preview(context.Background(), "trainer-1", "ws-1", previewNow)
	require.NoError(t, err)

	assert.Equal(t, first.Totals, second.Totals)
	assert.Equal(t, first.Clients, second.Clients)
}

func TestAggregator_Preview_ExcludesBilledAppointments(t *testing.T) {
	store := newFixture()
	store.billed["a2"] = true
	agg := NewAggregator(store, logger.NewNop())

	preview, err := agg.Preview(context.Background(), "trainer-1", "ws-1", previewNow)
	require.NoError(t, err)

	for _, c := range preview.Clients {
		for _, s := range c.Completed.Sessions {
			assert.NotEqual(t, "a2", s.AppointmentID)
		}
	}
	assert.True(t, dec("90").Equal(preview.Totals.CompletedTotal))
}

func TestAggregator_Preview_PolicyChangeReclassifies(t *testing.T) {
	store := newFixture()
	// bob's session shifted by 30 minutes: only ANY_OVERLAP groups it
	store.appointments[1] = session("b1", "bob", at(3, 9, 30), 60, models.AppointmentCompleted)
	agg := NewAggregator(store, logger.NewNop())

	exact, err := agg.Preview(context.Background(), "trainer-1", "ws-1", previewNow)
	require.NoError(t, err)
	assert.True(t, dec("200").Equal(exact.Totals.CompletedTotal)) // 60 + 60 + 80

	store.settings.GroupSessionMatchingLogic = models.MatchAnyOverlap
	overlap, err := agg.Preview(context.Background(), "trainer-1", "ws-1", previewNow)
	require.NoError(t, err)
	assert.True(t, dec("150").Equal(overlap.Totals.CompletedTotal)) // 40 + 60 + 50
}

func TestAggregator_Preview_IsolatesClientFailures(t *testing.T) {
	store := newFixture()
	store.profileErrs = map[string]error{"alice": errors.New("connection reset")}
	agg := NewAggregator(store, logger.NewNop())

	preview, err := agg.Preview(context.Background(), "trainer-1", "ws-1", previewNow)
	require.NoError(t, err)

	require.Len(t, preview.Clients, 1)
	assert.Equal(t, "bob", preview.Clients[0].ClientID)
	assert.Equal(t, []string{"alice"}, preview.SkippedClients)
}

func TestAggregator_Preview_DefaultsWithoutSettings(t *testing.T) {
	store := newFixture()
	store.settings = nil
	agg := NewAggregator(store, logger.NewNop())

	preview, err := agg.Preview(context.Background(), "trainer-1", "ws-1", previewNow)
	require.NoError(t, err)

	// No trainer default: bob's group session falls back to his individual rate.
	for _, c := range preview.Clients {
		if c.ClientID == "bob" {
			assert.True(t, dec("80").Equal(c.Completed.Total))
		}
	}
}

func TestAggregator_Preview_StableOrderOnTies(t *testing.T) {
	store := &fakeStore{
		settings: &models.TrainerSettings{GroupSessionMatchingLogic: models.MatchExact},
		clients:  []models.Client{{ID: "x"}, {ID: "y"}, {ID: "z"}},
		profiles: map[string]*models.ClientProfile{
			"x": {BillingFrequency: models.BillingMonthly, SessionRate: dec("50")},
			"y": {BillingFrequency: models.BillingMonthly, SessionRate: dec("50")},
			"z": {BillingFrequency: models.BillingMonthly, SessionRate: dec("50")},
		},
		billed: map[string]bool{},
	}
	agg := NewAggregator(store, logger.NewNop())

	preview, err := agg.Preview(context.Background(), "trainer-1", "ws-1", previewNow)
	require.NoError(t, err)

	ids := []string{preview.Clients[0].ClientID, preview.Clients[1].ClientID, preview.Clients[2].ClientID}
	assert.Equal(t, []string{"x", "y", "z"}, ids)
}

func TestAggregator_Preview_OtherWorkspace(t *testing.T) {
	agg := NewAggregator(newFixture(), logger.NewNop())

	_, err := agg.Preview(context.Background(), "trainer-1", "ws-2", previewNow)
	assert.True(t, ierr.IsPermissionDenied(err))
}
