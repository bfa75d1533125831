// Package calendar talks to trainers' external calendars.
package calendar

import (
	"context"
	"time"

	"github.com/trainerdesk/backend/internal/models"
)

// Event is an appointment pushed to an external calendar.
type Event struct {
	AppointmentID string
	Summary       string
	Start         time.Time
	End           time.Time
}

// Provider failures are marked ErrTransientProvider when a later sync may
// succeed.
type Provider interface {
	// ListBusy returns busy time in [from, to] that was not pushed from here.
	ListBusy(ctx context.Context, conn models.CalendarConnection, from, to time.Time) ([]models.BusyBlock, error)
	CreateEvent(ctx context.Context, conn models.CalendarConnection, event Event) (string, error)
	// DeleteEvent treats an already deleted event as success.
	DeleteEvent(ctx context.Context, conn models.CalendarConnection, eventID string) error
}
