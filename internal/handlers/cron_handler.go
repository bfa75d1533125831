package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/trainerdesk/backend/internal/logger"
	"github.com/trainerdesk/backend/internal/services"
)

const (
	lockMonthlyInvoices    = "cron:monthly-invoices"
	lockNotificationsRetry = "cron:notifications-retry"
	lockCalendarSync       = "cron:calendar-sync"
)

type MonthlyInvoicer interface {
	GenerateMonthlyInvoices(ctx context.Context, now time.Time) (*services.InvoiceRunResult, error)
}

type NotificationRetrier interface {
	RetryPending(ctx context.Context, now time.Time) (*services.RetryResult, error)
}

type CalendarSyncer interface {
	SyncAll(ctx context.Context, now time.Time) (*services.CalendarRunResult, error)
}

// CronResponse is returned by every scheduler endpoint. Skipped is true
// when a previous run still holds the job lock.
type CronResponse struct {
	Job     string `json:"job"`
	Skipped bool   `json:"skipped"`
	Result  any    `json:"result,omitempty"`
}

// CronHandler exposes batch jobs to an external scheduler. Each job runs
// under its own lock so overlapping invocations become no-ops.
type CronHandler struct {
	invoices      MonthlyInvoicer
	notifications NotificationRetrier
	calendar      CalendarSyncer
	locker        services.JobLocker
	logger        *logger.Logger
	now           func() time.Time
}

func NewCronHandler(invoices MonthlyInvoicer, notifications NotificationRetrier, calendar CalendarSyncer, locker services.JobLocker, log *logger.Logger) *CronHandler {
	return &CronHandler{
		invoices:      invoices,
		notifications: notifications,
		calendar:      calendar,
		locker:        locker,
		logger:        log,
		now:           time.Now,
	}
}

// MonthlyInvoices generates last month's invoices for trainers due today
// @Summary Run monthly invoicing
// @Tags Cron
// @Produce json
// @Param X-Cron-Secret header string true "Scheduler secret"
// @Success 200 {object} CronResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /cron/monthly-invoices [post]
func (h *CronHandler) MonthlyInvoices(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, lockMonthlyInvoices, func(ctx context.Context, now time.Time) (any, error) {
		return h.invoices.GenerateMonthlyInvoices(ctx, now)
	})
}

// RetryNotifications resends failed notifications that are due
// @Summary Retry notifications
// @Tags Cron
// @Produce json
// @Param X-Cron-Secret header string true "Scheduler secret"
// @Success 200 {object} CronResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /cron/notifications/retry [post]
func (h *CronHandler) RetryNotifications(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, lockNotificationsRetry, func(ctx context.Context, now time.Time) (any, error) {
		return h.notifications.RetryPending(ctx, now)
	})
}

// SyncCalendars syncs every connected trainer calendar
// @Summary Sync all calendars
// @Tags Cron
// @Produce json
// @Param X-Cron-Secret header string true "Scheduler secret"
// @Success 200 {object} CronResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /cron/calendar/sync [post]
func (h *CronHandler) SyncCalendars(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, lockCalendarSync, func(ctx context.Context, now time.Time) (any, error) {
		return h.calendar.SyncAll(ctx, now)
	})
}

func (h *CronHandler) run(w http.ResponseWriter, r *http.Request, job string, fn func(ctx context.Context, now time.Time) (any, error)) {
	now := h.now()
	started := time.Now()
	var result any

	ran, err := h.locker.WithLock(r.Context(), job, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx, now)
		return err
	})
	if err != nil {
		h.logger.Errorw("[CRON] job failed", "job", job, "error", err)
		services.WriteError(w, err)
		return
	}
	if !ran {
		services.WriteJSON(w, http.StatusOK, CronResponse{Job: job, Skipped: true})
		return
	}

	h.logger.Infow("[CRON] job finished", "job", job, "duration_ms", time.Since(started).Milliseconds())
	services.WriteJSON(w, http.StatusOK, CronResponse{Job: job, Result: result})
}
