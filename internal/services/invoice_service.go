package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"github.com/trainerdesk/backend/internal/audit"
	"github.com/trainerdesk/backend/internal/billing"
	"github.com/trainerdesk/backend/internal/config"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/logger"
	"github.com/trainerdesk/backend/internal/models"
)

type InvoiceStore interface {
	// CreateInvoice inserts the invoice with its line items atomically and
	// fails with ErrAlreadyExists when any appointment is already billed.
	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	UpdateInvoiceStatus(ctx context.Context, invoiceID string, status models.InvoiceStatus) error
	GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error)
	ListInvoices(ctx context.Context, workspaceID string, filter models.InvoiceFilter) ([]models.Invoice, error)
}

type TrainerDirectory interface {
	ListTrainerSettings(ctx context.Context) ([]models.TrainerSettings, error)
}

type JobLocker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) (bool, error)
}

// InvoiceRunResult counts the outcome of one monthly invoicing run.
type InvoiceRunResult struct {
	Trainers        int `json:"trainers"`
	InvoicesCreated int `json:"invoicesCreated"`
	Skipped         int `json:"skipped"`
	Failed          int `json:"failed"`
}

func (r *InvoiceRunResult) add(other InvoiceRunResult) {
	r.Trainers += other.Trainers
	r.InvoicesCreated += other.InvoicesCreated
	r.Skipped += other.Skipped
	r.Failed += other.Failed
}

type InvoiceService struct {
	invoices    InvoiceStore
	billing     billing.Store
	trainers    TrainerDirectory
	locker      JobLocker
	notifier    *NotificationService
	payments    *PaymentQRService
	audit       *audit.AuditLogger
	logger      *logger.Logger
	dueDays     int
	concurrency int
	// lookbackMonths extends billing before the period so sessions marked
	// COMPLETED after their month's run are picked up by a later one.
	lookbackMonths int
}

func NewInvoiceService(
	invoices InvoiceStore,
	billingStore billing.Store,
	trainers TrainerDirectory,
	locker JobLocker,
	notifier *NotificationService,
	payments *PaymentQRService,
	auditLogger *audit.AuditLogger,
	cfg *config.Config,
	log *logger.Logger,
) *InvoiceService {
	s := &InvoiceService{
		invoices:    invoices,
		billing:     billingStore,
		trainers:    trainers,
		locker:      locker,
		notifier:    notifier,
		payments:    payments,
		audit:       auditLogger,
		logger:      log,
		dueDays:     cfg.Billing.InvoiceDueDays,
		concurrency: cfg.Cron.Concurrency,

		lookbackMonths: cfg.Billing.LookbackMonths,
	}
	if s.dueDays <= 0 {
		s.dueDays = 14
	}
	if s.concurrency <= 0 {
		s.concurrency = 1
	}
	return s
}

// GenerateMonthlyInvoices bills the previous calendar month for every
// trainer whose invoice day is today. Trainers run concurrently, each under
// a lock keyed by trainer and period, so overlapping runs cannot bill the
// same month twice.
func (s *InvoiceService) GenerateMonthlyInvoices(ctx context.Context, now time.Time) (*InvoiceRunResult, error) {
	all, err := s.trainers.ListTrainerSettings(ctx)
	if err != nil {
		return nil, err
	}

	period := billing.PreviousMonthPeriod(now)
	result := &InvoiceRunResult{}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(s.concurrency)
	for _, settings := range all {
		if !billing.IsInvoiceDay(now, settings.MonthlyInvoiceDay) {
			continue
		}
		settings := settings

		p.Go(func() {
			key := fmt.Sprintf("invoices:%s:%s", settings.TrainerID, period.Key())
			var trainerResult InvoiceRunResult

			ran, err := s.locker.WithLock(ctx, key, func(ctx context.Context) error {
				trainerResult = s.invoiceTrainer(ctx, &settings, period, now)
				return nil
			})
			if err != nil {
				s.logger.Errorw("[CRON] invoicing trainer failed",
					"trainer_id", settings.TrainerID,
					"period", period.Key(),
					"error", err,
				)
				trainerResult.Failed++
			}
			if !ran && err == nil {
				return
			}
			trainerResult.Trainers = 1

			mu.Lock()
			result.add(trainerResult)
			mu.Unlock()
		})
	}
	p.Wait()

	s.logger.Infow("[CRON] monthly invoicing finished",
		"period", period.Key(),
		"trainers", result.Trainers,
		"created", result.InvoicesCreated,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *InvoiceService) invoiceTrainer(ctx context.Context, settings *models.TrainerSettings, period billing.Period, now time.Time) InvoiceRunResult {
	var result InvoiceRunResult

	from, to := period.WithLookback(s.lookbackMonths).CandidateWindow()
	candidates, err := s.billing.ListTrainerAppointments(ctx, settings.TrainerID, settings.WorkspaceID, from, to)
	if err != nil {
		s.logger.Errorw("[BILLING] failed to load appointments", "trainer_id", settings.TrainerID, "error", err)
		result.Failed++
		return result
	}

	clients, err := s.billing.ListClients(ctx, settings.WorkspaceID)
	if err != nil {
		s.logger.Errorw("[BILLING] failed to load clients", "trainer_id", settings.TrainerID, "error", err)
		result.Failed++
		return result
	}

	pricer := &billing.Pricer{Settings: settings, Candidates: candidates}
	for _, client := range clients {
		if ctx.Err() != nil {
			result.Failed++
			return result
		}

		inv, err := s.invoiceClient(ctx, pricer, settings, client, period, now)
		switch {
		case ierr.IsAlreadyExists(err):
			s.logger.Infow("[BILLING] appointments already invoiced", "client_id", client.ID, "period", period.Key())
			result.Skipped++
		case err != nil:
			s.logger.Errorw("[BILLING] invoicing client failed",
				"client_id", client.ID,
				"trainer_id", settings.TrainerID,
				"error", err,
			)
			s.audit.LogError(settings.TrainerID, client.ID, err)
			result.Failed++
		case inv == nil:
			result.Skipped++
		default:
			result.InvoicesCreated++
			s.send(ctx, inv, client, now)
		}
	}
	return result
}

// invoiceClient returns nil when the client is not auto-invoiced monthly or
// has nothing to bill.
func (s *InvoiceService) invoiceClient(ctx context.Context, pricer *billing.Pricer, settings *models.TrainerSettings, client models.Client, period billing.Period, now time.Time) (*models.Invoice, error) {
	profile, err := s.billing.GetClientProfile(ctx, client.ID)
	if ierr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if profile.BillingFrequency != models.BillingMonthly || !profile.AutoInvoiceEnabled {
		return nil, nil
	}

	window := period.WithLookback(s.lookbackMonths)
	completed, err := s.billing.ListUnbilledCompleted(ctx, settings.TrainerID, settings.WorkspaceID, client.ID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	if len(completed) == 0 {
		return nil, nil
	}

	items, total := billing.LineItems(pricer.PriceAll(profile, completed))
	inv := &models.Invoice{
		ID:          uuid.NewString(),
		WorkspaceID: settings.WorkspaceID,
		TrainerID:   settings.TrainerID,
		ClientID:    client.ID,
		Amount:      total,
		Status:      models.InvoiceDraft,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		IssuedAt:    now,
		DueAt:       now.AddDate(0, 0, s.dueDays),
	}
	inv.Number = invoiceNumber(period, inv.ID)
	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].InvoiceID = inv.ID
	}
	inv.LineItems = items

	if err := s.invoices.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Infow("[BILLING] invoice created",
		"invoice_id", inv.ID,
		"number", inv.Number,
		"client_id", client.ID,
		"amount", inv.Amount.String(),
		"line_items", len(inv.LineItems),
	)
	s.audit.LogInvoice(inv.ID, client.ID, inv.Amount, len(inv.LineItems))
	return inv, nil
}

// send marks the invoice SENT and queues its notifications. Delivery is
// attempted once here; failures are left to the retry job.
func (s *InvoiceService) send(ctx context.Context, inv *models.Invoice, client models.Client, now time.Time) {
	if err := s.invoices.UpdateInvoiceStatus(ctx, inv.ID, models.InvoiceSent); err != nil {
		s.logger.Errorw("[BILLING] failed to mark invoice sent", "invoice_id", inv.ID, "error", err)
		return
	}
	inv.Status = models.InvoiceSent

	if s.notifier == nil {
		return
	}

	link := ""
	if s.payments != nil {
		qr, err := s.payments.Generate(ctx, inv.ID)
		if err != nil {
			s.logger.Warnw("[BILLING] invoice sent without payment link", "invoice_id", inv.ID, "error", err)
		} else {
			link = qr.URL
		}
	}

	var queued []*models.Notification
	if client.Email != "" {
		queued = append(queued, &models.Notification{
			WorkspaceID: inv.WorkspaceID,
			InvoiceID:   &inv.ID,
			Channel:     models.ChannelEmail,
			Recipient:   client.Email,
			Subject:     fmt.Sprintf("Invoice %s", inv.Number),
			Body:        invoiceEmailBody(inv, client, link),
		})
	}
	if client.Phone != "" {
		queued = append(queued, &models.Notification{
			WorkspaceID: inv.WorkspaceID,
			InvoiceID:   &inv.ID,
			Channel:     models.ChannelSMS,
			Recipient:   client.Phone,
			Body:        invoiceSMSBody(inv, link),
		})
	}

	for _, n := range queued {
		if err := s.notifier.Enqueue(ctx, n, now); err != nil {
			s.logger.Errorw("[NOTIFY] failed to queue invoice notification", "invoice_id", inv.ID, "channel", n.Channel, "error", err)
			continue
		}
		if err := s.notifier.Deliver(ctx, n, now); err != nil {
			s.logger.Errorw("[NOTIFY] failed to record invoice notification", "invoice_id", inv.ID, "channel", n.Channel, "error", err)
		}
	}
}

func (s *InvoiceService) GetInvoice(ctx context.Context, workspaceID, invoiceID string) (*models.Invoice, error) {
	inv, err := s.invoices.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.WorkspaceID != workspaceID {
		return nil, ierr.NewError("invoice belongs to another workspace").
			WithHint("You do not have access to this invoice").
			Mark(ierr.ErrPermissionDenied)
	}
	return inv, nil
}

// PaymentSummary is what a payment link reveals about its invoice.
type PaymentSummary struct {
	Number string               `json:"number"`
	Amount decimal.Decimal      `json:"amount"`
	Status models.InvoiceStatus `json:"status"`
	DueAt  time.Time            `json:"dueAt"`
}

// PaymentLink issues a fresh payment QR for an invoice in the workspace.
func (s *InvoiceService) PaymentLink(ctx context.Context, workspaceID, invoiceID string) (*PaymentQR, error) {
	if _, err := s.GetInvoice(ctx, workspaceID, invoiceID); err != nil {
		return nil, err
	}
	if s.payments == nil {
		return nil, ierr.NewError("payment links disabled").
			WithHint("Payment links are unavailable").
			Mark(ierr.ErrTransientProvider)
	}
	return s.payments.Generate(ctx, invoiceID)
}

// ResolvePayment looks up the invoice behind a payment token.
func (s *InvoiceService) ResolvePayment(ctx context.Context, token string) (*PaymentSummary, error) {
	if s.payments == nil {
		return nil, ierr.NewError("payment links disabled").
			WithHint("Payment links are unavailable").
			Mark(ierr.ErrTransientProvider)
	}
	invoiceID, err := s.payments.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	inv, err := s.invoices.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return &PaymentSummary{
		Number: inv.Number,
		Amount: inv.Amount,
		Status: inv.Status,
		DueAt:  inv.DueAt,
	}, nil
}

func (s *InvoiceService) ListInvoices(ctx context.Context, workspaceID string, filter models.InvoiceFilter) ([]models.Invoice, error) {
	switch filter.Status {
	case "", models.InvoiceDraft, models.InvoiceSent, models.InvoicePaid, models.InvoiceOverdue, models.InvoiceCancelled:
	default:
		return nil, ierr.NewError("unknown invoice status").
			WithHintf("Unknown invoice status %q", filter.Status).
			Mark(ierr.ErrValidation)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, ierr.NewError("negative pagination").
			WithHint("limit and offset must not be negative").
			Mark(ierr.ErrValidation)
	}
	if filter.Limit == 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	return s.invoices.ListInvoices(ctx, workspaceID, filter)
}

// invoiceNumber is INV-<yyyymm>-<first 8 hex of the invoice id>.
func invoiceNumber(period billing.Period, invoiceID string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(invoiceID, "-", ""))
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("INV-%s-%s", period.Start.Format("200601"), suffix)
}

func invoiceEmailBody(inv *models.Invoice, client models.Client, link string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", client.Name)
	fmt.Fprintf(&b, "Your invoice %s for %s is ready.\n\n", inv.Number, inv.PeriodStart.Format("January 2006"))
	for _, li := range inv.LineItems {
		fmt.Fprintf(&b, "  %s  %s\n", li.Description, li.Total.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal due: %s by %s\n", inv.Amount.StringFixed(2), inv.DueAt.Format("Jan 2, 2006"))
	if link != "" {
		fmt.Fprintf(&b, "Pay online: %s\n", link)
	}
	return b.String()
}

func invoiceSMSBody(inv *models.Invoice, link string) string {
	msg := fmt.Sprintf("Invoice %s: %s due %s.", inv.Number, inv.Amount.StringFixed(2), inv.DueAt.Format("Jan 2"))
	if link != "" {
		msg += " Pay: " + link
	}
	return msg
}
