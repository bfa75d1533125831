package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/trainerdesk/backend/internal/billing"
	"github.com/trainerdesk/backend/internal/middleware"
	"github.com/trainerdesk/backend/internal/models"
	"github.com/trainerdesk/backend/internal/services"
)

var (
	trainer = &middleware.Principal{UserID: "trainer-1", Role: models.RoleTrainer, WorkspaceID: "ws-1"}
	admin   = &middleware.Principal{UserID: "admin-1", Role: models.RoleAdmin, WorkspaceID: "ws-1"}
	client  = &middleware.Principal{UserID: "alice", Role: models.RoleClient, WorkspaceID: "ws-1"}
)

// serve routes one request through a chi router so URL params resolve.
func serve(method, pattern, target, body string, p *middleware.Principal, h http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if p != nil {
		req = req.WithContext(middleware.WithPrincipal(req.Context(), p))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type MockBilling struct {
	mock.Mock
}

func (m *MockBilling) Preview(ctx context.Context, trainerID, workspaceID string) (*billing.Preview, error) {
	args := m.Called(ctx, trainerID, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Preview), args.Error(1)
}

type MockSettings struct {
	mock.Mock
}

func (m *MockSettings) Get(ctx context.Context, trainerID, workspaceID string) (*models.TrainerSettings, error) {
	args := m.Called(ctx, trainerID, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrainerSettings), args.Error(1)
}

func (m *MockSettings) Update(ctx context.Context, trainerID, workspaceID string, req services.UpdateSettingsRequest) (*models.TrainerSettings, error) {
	args := m.Called(ctx, trainerID, workspaceID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrainerSettings), args.Error(1)
}

type MockInvoices struct {
	mock.Mock
}

func (m *MockInvoices) ListInvoices(ctx context.Context, workspaceID string, filter models.InvoiceFilter) ([]models.Invoice, error) {
	args := m.Called(ctx, workspaceID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *MockInvoices) GetInvoice(ctx context.Context, workspaceID, invoiceID string) (*models.Invoice, error) {
	args := m.Called(ctx, workspaceID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoices) PaymentLink(ctx context.Context, workspaceID, invoiceID string) (*services.PaymentQR, error) {
	args := m.Called(ctx, workspaceID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentQR), args.Error(1)
}

func (m *MockInvoices) ResolvePayment(ctx context.Context, token string) (*services.PaymentSummary, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentSummary), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) AddCredit(ctx context.Context, clientID string, amount decimal.Decimal, notes string) (*models.PrepaidTransaction, error) {
	args := m.Called(ctx, clientID, amount, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrepaidTransaction), args.Error(1)
}

func (m *MockLedger) Consume(ctx context.Context, clientID string, amount decimal.Decimal, notes string) (*models.PrepaidTransaction, error) {
	args := m.Called(ctx, clientID, amount, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrepaidTransaction), args.Error(1)
}

func (m *MockLedger) GetTransactions(ctx context.Context, clientID string, limit, offset int) (*models.PrepaidTransactionPage, error) {
	args := m.Called(ctx, clientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrepaidTransactionPage), args.Error(1)
}

func (m *MockLedger) Reconcile(ctx context.Context, clientID string) (*services.Reconciliation, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Reconciliation), args.Error(1)
}

type MockClients struct {
	mock.Mock
}

func (m *MockClients) GetClient(ctx context.Context, clientID string) (*models.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

type MockAppointments struct {
	mock.Mock
}

func (m *MockAppointments) UpdateStatus(ctx context.Context, workspaceID, trainerID, appointmentID string, status models.AppointmentStatus) (*models.Appointment, error) {
	args := m.Called(ctx, workspaceID, trainerID, appointmentID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

type MockCalendar struct {
	mock.Mock
}

func (m *MockCalendar) SyncTrainerByID(ctx context.Context, trainerID, workspaceID string, now time.Time) (*services.CalendarSyncResult, error) {
	args := m.Called(ctx, trainerID, workspaceID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CalendarSyncResult), args.Error(1)
}

func (m *MockCalendar) SyncAll(ctx context.Context, now time.Time) (*services.CalendarRunResult, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CalendarRunResult), args.Error(1)
}

type MockInvoicer struct {
	mock.Mock
}

func (m *MockInvoicer) GenerateMonthlyInvoices(ctx context.Context, now time.Time) (*services.InvoiceRunResult, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.InvoiceRunResult), args.Error(1)
}

type MockRetrier struct {
	mock.Mock
}

func (m *MockRetrier) RetryPending(ctx context.Context, now time.Time) (*services.RetryResult, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RetryResult), args.Error(1)
}
