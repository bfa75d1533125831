package services

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/trainerdesk/backend/internal/calendar"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/logger"
	"github.com/trainerdesk/backend/internal/models"
)

const (
	calendarSyncWindow    = 30 * 24 * time.Hour
	calendarDeleteTimeout = 30 * time.Second
)

type CalendarStore interface {
	ListConnections(ctx context.Context) ([]models.CalendarConnection, error)
	GetConnection(ctx context.Context, trainerID string) (*models.CalendarConnection, error)
	ReplaceBusyBlocks(ctx context.Context, trainerID string, from, to time.Time, blocks []models.BusyBlock) error
	ListUnsynced(ctx context.Context, trainerID string, from, to time.Time) ([]models.Appointment, error)
	SetExternalEventID(ctx context.Context, appointmentID, eventID string) error
	MarkSynced(ctx context.Context, trainerID string, at time.Time) error
}

type CalendarSyncResult struct {
	TrainerID     string `json:"trainerId"`
	BusyBlocks    int    `json:"busyBlocks"`
	EventsCreated int    `json:"eventsCreated"`
	EventsFailed  int    `json:"eventsFailed"`
}

type CalendarRunResult struct {
	Trainers      int `json:"trainers"`
	Synced        int `json:"synced"`
	Failed        int `json:"failed"`
	EventsCreated int `json:"eventsCreated"`
}

type CalendarService struct {
	store       CalendarStore
	provider    calendar.Provider
	logger      *logger.Logger
	concurrency int

	background sync.WaitGroup
}

func NewCalendarService(store CalendarStore, provider calendar.Provider, concurrency int, log *logger.Logger) *CalendarService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &CalendarService{
		store:       store,
		provider:    provider,
		logger:      log,
		concurrency: concurrency,
	}
}

// SyncTrainer pulls the trainer's external busy time for the next 30 days
// and pushes scheduled appointments that have no external event yet.
func (s *CalendarService) SyncTrainer(ctx context.Context, conn models.CalendarConnection, now time.Time) (*CalendarSyncResult, error) {
	from, to := now, now.Add(calendarSyncWindow)
	result := &CalendarSyncResult{TrainerID: conn.TrainerID}

	blocks, err := s.provider.ListBusy(ctx, conn, from, to)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceBusyBlocks(ctx, conn.TrainerID, from, to, blocks); err != nil {
		return nil, err
	}
	result.BusyBlocks = len(blocks)

	unsynced, err := s.store.ListUnsynced(ctx, conn.TrainerID, from, to)
	if err != nil {
		return nil, err
	}
	for _, appt := range unsynced {
		eventID, err := s.provider.CreateEvent(ctx, conn, calendar.Event{
			AppointmentID: appt.ID,
			Summary:       "Training session",
			Start:         appt.StartTime,
			End:           appt.EndTime,
		})
		if err != nil {
			s.logger.Warnw("[CALENDAR] failed to push appointment",
				"trainer_id", conn.TrainerID,
				"appointment_id", appt.ID,
				"error", err,
			)
			result.EventsFailed++
			continue
		}
		if err := s.store.SetExternalEventID(ctx, appt.ID, eventID); err != nil {
			// The event exists remotely but is unlinked; the next sync pushes
			// it again, so remove it now.
			s.logger.Errorw("[CALENDAR] failed to link event", "appointment_id", appt.ID, "event_id", eventID, "error", err)
			s.deleteEvent(conn, eventID)
			result.EventsFailed++
			continue
		}
		result.EventsCreated++
	}

	if err := s.store.MarkSynced(ctx, conn.TrainerID, now); err != nil {
		return nil, err
	}

	s.logger.Infow("[CALENDAR] trainer synced",
		"trainer_id", conn.TrainerID,
		"busy_blocks", result.BusyBlocks,
		"events_created", result.EventsCreated,
		"events_failed", result.EventsFailed,
	)
	return result, nil
}

// SyncTrainerByID syncs one trainer on demand. The connection must belong
// to workspaceID.
func (s *CalendarService) SyncTrainerByID(ctx context.Context, trainerID, workspaceID string, now time.Time) (*CalendarSyncResult, error) {
	conn, err := s.store.GetConnection(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	if conn.WorkspaceID != workspaceID {
		return nil, ierr.NewError("calendar connection belongs to another workspace").
			WithHint("You do not have access to this trainer").
			Mark(ierr.ErrPermissionDenied)
	}
	return s.SyncTrainer(ctx, *conn, now)
}

// SyncAll syncs every connected trainer. One trainer's failure is logged
// and counted; it never stops the others.
func (s *CalendarService) SyncAll(ctx context.Context, now time.Time) (*CalendarRunResult, error) {
	conns, err := s.store.ListConnections(ctx)
	if err != nil {
		return nil, err
	}

	result := &CalendarRunResult{Trainers: len(conns)}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(s.concurrency)
	for _, conn := range conns {
		conn := conn
		p.Go(func() {
			synced, err := s.SyncTrainer(ctx, conn, now)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Errorw("[CALENDAR] trainer sync failed", "trainer_id", conn.TrainerID, "error", err)
				result.Failed++
				return
			}
			result.Synced++
			result.EventsCreated += synced.EventsCreated
		})
	}
	p.Wait()

	return result, nil
}

// DeleteEventAsync removes an external event in the background. The caller
// does not wait; failures are logged.
func (s *CalendarService) DeleteEventAsync(trainerID, eventID string) {
	s.runBackground(func(ctx context.Context) {
		conn, err := s.store.GetConnection(ctx, trainerID)
		if err != nil {
			s.logger.Errorw("[CALENDAR] delete event: no connection", "trainer_id", trainerID, "event_id", eventID, "error", err)
			return
		}
		s.removeEvent(ctx, *conn, eventID)
	})
}

func (s *CalendarService) deleteEvent(conn models.CalendarConnection, eventID string) {
	s.runBackground(func(ctx context.Context) {
		s.removeEvent(ctx, conn, eventID)
	})
}

func (s *CalendarService) removeEvent(ctx context.Context, conn models.CalendarConnection, eventID string) {
	if err := s.provider.DeleteEvent(ctx, conn, eventID); err != nil {
		s.logger.Errorw("[CALENDAR] delete event failed", "trainer_id", conn.TrainerID, "event_id", eventID, "error", err)
	}
}

func (s *CalendarService) runBackground(fn func(ctx context.Context)) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), calendarDeleteTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until background deletions finish.
func (s *CalendarService) Wait() {
	s.background.Wait()
}
