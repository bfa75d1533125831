package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/trainerdesk/backend/internal/calendar"
	"github.com/trainerdesk/backend/internal/models"
	"github.com/trainerdesk/backend/internal/notify"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, recipient string, msg notify.Message) notify.SendResult {
	args := m.Called(ctx, recipient, msg)
	return args.Get(0).(notify.SendResult)
}

type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationStore) UpdateDelivery(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationStore) ListDue(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

type MockCalendarProvider struct {
	mock.Mock
}

func (m *MockCalendarProvider) ListBusy(ctx context.Context, conn models.CalendarConnection, from, to time.Time) ([]models.BusyBlock, error) {
	args := m.Called(ctx, conn, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BusyBlock), args.Error(1)
}

func (m *MockCalendarProvider) CreateEvent(ctx context.Context, conn models.CalendarConnection, event calendar.Event) (string, error) {
	args := m.Called(ctx, conn, event)
	return args.String(0), args.Error(1)
}

func (m *MockCalendarProvider) DeleteEvent(ctx context.Context, conn models.CalendarConnection, eventID string) error {
	args := m.Called(ctx, conn, eventID)
	return args.Error(0)
}

type MockCalendarStore struct {
	mock.Mock
}

func (m *MockCalendarStore) ListConnections(ctx context.Context) ([]models.CalendarConnection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CalendarConnection), args.Error(1)
}

func (m *MockCalendarStore) GetConnection(ctx context.Context, trainerID string) (*models.CalendarConnection, error) {
	args := m.Called(ctx, trainerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CalendarConnection), args.Error(1)
}

func (m *MockCalendarStore) ReplaceBusyBlocks(ctx context.Context, trainerID string, from, to time.Time, blocks []models.BusyBlock) error {
	args := m.Called(ctx, trainerID, from, to, blocks)
	return args.Error(0)
}

func (m *MockCalendarStore) ListUnsynced(ctx context.Context, trainerID string, from, to time.Time) ([]models.Appointment, error) {
	args := m.Called(ctx, trainerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *MockCalendarStore) SetExternalEventID(ctx context.Context, appointmentID, eventID string) error {
	args := m.Called(ctx, appointmentID, eventID)
	return args.Error(0)
}

func (m *MockCalendarStore) MarkSynced(ctx context.Context, trainerID string, at time.Time) error {
	args := m.Called(ctx, trainerID, at)
	return args.Error(0)
}
