package calendar

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/trainerdesk/backend/internal/config"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const appointmentProperty = "trainerdeskAppointmentId"

// GoogleProvider uses the Calendar v3 API with each trainer's stored
// refresh token.
type GoogleProvider struct {
	oauth *oauth2.Config
	// opts replaces per-connection token auth when set.
	opts []option.ClientOption
}

func NewGoogleProvider(cfg config.GoogleConfig) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gcal.CalendarEventsScope},
		},
	}
}

func (p *GoogleProvider) service(ctx context.Context, conn models.CalendarConnection) (*gcal.Service, error) {
	opts := p.opts
	if len(opts) == 0 {
		ts := p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: conn.RefreshToken})
		opts = []option.ClientOption{option.WithTokenSource(ts)}
	}

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, providerError(err, "create calendar service")
	}
	return svc, nil
}

func (p *GoogleProvider) ListBusy(ctx context.Context, conn models.CalendarConnection, from, to time.Time) ([]models.BusyBlock, error) {
	svc, err := p.service(ctx, conn)
	if err != nil {
		return nil, err
	}

	var blocks []models.BusyBlock
	call := svc.Events.List(conn.CalendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	err = call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			if item.Status == "cancelled" || item.Transparency == "transparent" {
				continue
			}
			if item.ExtendedProperties != nil && item.ExtendedProperties.Private[appointmentProperty] != "" {
				continue
			}

			start, err := parseEventTime(item.Start)
			if err != nil {
				return err
			}
			end, err := parseEventTime(item.End)
			if err != nil {
				return err
			}

			blocks = append(blocks, models.BusyBlock{
				TrainerID:       conn.TrainerID,
				ExternalEventID: item.Id,
				StartTime:       start,
				EndTime:         end,
			})
		}
		return nil
	})
	if err != nil {
		return nil, providerError(err, "list calendar events")
	}
	return blocks, nil
}

func (p *GoogleProvider) CreateEvent(ctx context.Context, conn models.CalendarConnection, event Event) (string, error) {
	svc, err := p.service(ctx, conn)
	if err != nil {
		return "", err
	}

	created, err := svc.Events.Insert(conn.CalendarID, &gcal.Event{
		Summary: event.Summary,
		Start:   &gcal.EventDateTime{DateTime: event.Start.Format(time.RFC3339)},
		End:     &gcal.EventDateTime{DateTime: event.End.Format(time.RFC3339)},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{appointmentProperty: event.AppointmentID},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", providerError(err, "create calendar event")
	}
	return created.Id, nil
}

func (p *GoogleProvider) DeleteEvent(ctx context.Context, conn models.CalendarConnection, eventID string) error {
	svc, err := p.service(ctx, conn)
	if err != nil {
		return err
	}

	err = svc.Events.Delete(conn.CalendarID, eventID).Context(ctx).Do()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone) {
		return nil
	}
	if err != nil {
		return providerError(err, "delete calendar event")
	}
	return nil
}

// parseEventTime handles timed events and all-day events, which only
// carry a date.
func parseEventTime(t *gcal.EventDateTime) (time.Time, error) {
	if t == nil {
		return time.Time{}, errors.New("event without time")
	}
	if t.DateTime != "" {
		return time.Parse(time.RFC3339, t.DateTime)
	}
	return time.ParseInLocation("2006-01-02", t.Date, time.Local)
}

// providerError marks provider failures transient unless Google rejected
// the request itself.
func providerError(err error, msg string) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code >= 400 && gerr.Code < 500 && gerr.Code != http.StatusTooManyRequests {
		if gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden {
			return ierr.WithError(err).
				WithMessage(msg).
				WithHint("Calendar access was revoked; reconnect the calendar").
				Mark(ierr.ErrPermissionDenied)
		}
		return ierr.WithError(err).WithMessage(msg).Mark(ierr.ErrValidation)
	}
	return ierr.WithError(err).
		WithMessage(msg).
		WithHint("Calendar provider unavailable").
		Mark(ierr.ErrTransientProvider)
}
