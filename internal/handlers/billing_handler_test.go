package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trainerdesk/backend/internal/billing"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/models"
	"github.com/trainerdesk/backend/internal/services"
)

func TestBillingHandler_Preview(t *testing.T) {
	t.Run("trainer defaults to self", func(t *testing.T) {
		bill := new(MockBilling)
		bill.On("Preview", mock.Anything, "trainer-1", "ws-1").
			Return(&billing.Preview{TrainerID: "trainer-1", WorkspaceID: "ws-1"}, nil)
		h := NewBillingHandler(bill, new(MockSettings))

		w := serve(http.MethodGet, "/billing/preview", "/billing/preview", "", trainer, h.Preview)
		require.Equal(t, http.StatusOK, w.Code)

		var body billing.Preview
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "trainer-1", body.TrainerID)
		bill.AssertExpectations(t)
	})

	t.Run("trainer cannot preview another trainer", func(t *testing.T) {
		bill := new(MockBilling)
		h := NewBillingHandler(bill, new(MockSettings))

		w := serve(http.MethodGet, "/billing/preview", "/billing/preview?trainerId=trainer-2", "", trainer, h.Preview)
		assert.Equal(t, http.StatusForbidden, w.Code)
		bill.AssertNotCalled(t, "Preview", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin must name the trainer", func(t *testing.T) {
		h := NewBillingHandler(new(MockBilling), new(MockSettings))

		w := serve(http.MethodGet, "/billing/preview", "/billing/preview", "", admin, h.Preview)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("admin previews named trainer", func(t *testing.T) {
		bill := new(MockBilling)
		bill.On("Preview", mock.Anything, "trainer-2", "ws-1").Return(&billing.Preview{TrainerID: "trainer-2"}, nil)
		h := NewBillingHandler(bill, new(MockSettings))

		w := serve(http.MethodGet, "/billing/preview", "/billing/preview?trainerId=trainer-2", "", admin, h.Preview)
		assert.Equal(t, http.StatusOK, w.Code)
		bill.AssertExpectations(t)
	})

	t.Run("client is rejected", func(t *testing.T) {
		h := NewBillingHandler(new(MockBilling), new(MockSettings))

		w := serve(http.MethodGet, "/billing/preview", "/billing/preview", "", client, h.Preview)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		h := NewBillingHandler(new(MockBilling), new(MockSettings))

		w := serve(http.MethodGet, "/billing/preview", "/billing/preview", "", nil, h.Preview)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("settings in another workspace", func(t *testing.T) {
		bill := new(MockBilling)
		bill.On("Preview", mock.Anything, "trainer-1", "ws-1").
			Return(nil, ierr.NewError("other workspace").WithHint("You do not have access to this trainer").Mark(ierr.ErrPermissionDenied))
		h := NewBillingHandler(bill, new(MockSettings))

		w := serve(http.MethodGet, "/billing/preview", "/billing/preview", "", trainer, h.Preview)
		assert.Equal(t, http.StatusForbidden, w.Code)

		var body services.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "You do not have access to this trainer", body.Error)
	})
}

func TestBillingHandler_GetSettings(t *testing.T) {
	settings := new(MockSettings)
	settings.On("Get", mock.Anything, "trainer-1", "ws-1").Return(&models.TrainerSettings{
		TrainerID:                 "trainer-1",
		WorkspaceID:               "ws-1",
		GroupSessionMatchingLogic: models.MatchExact,
		MonthlyInvoiceDay:         1,
	}, nil)
	h := NewBillingHandler(new(MockBilling), settings)

	w := serve(http.MethodGet, "/trainers/{trainerId}/settings", "/trainers/trainer-1/settings", "", trainer, h.GetSettings)
	require.Equal(t, http.StatusOK, w.Code)

	var body models.TrainerSettings
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, models.MatchExact, body.GroupSessionMatchingLogic)
}

func TestBillingHandler_UpdateSettings(t *testing.T) {
	route := "/trainers/{trainerId}/settings"

	t.Run("partial update", func(t *testing.T) {
		settings := new(MockSettings)
		settings.On("Update", mock.Anything, "trainer-1", "ws-1", mock.MatchedBy(func(req services.UpdateSettingsRequest) bool {
			return req.MonthlyInvoiceDay != nil && *req.MonthlyInvoiceDay == 5 &&
				req.GroupSessionMatchingLogic == nil && req.DefaultGroupSessionRate == nil
		})).Return(&models.TrainerSettings{TrainerID: "trainer-1", MonthlyInvoiceDay: 5}, nil)
		h := NewBillingHandler(new(MockBilling), settings)

		w := serve(http.MethodPut, route, "/trainers/trainer-1/settings", `{"monthlyInvoiceDay":5}`, trainer, h.UpdateSettings)
		assert.Equal(t, http.StatusOK, w.Code)
		settings.AssertExpectations(t)
	})

	t.Run("unknown field", func(t *testing.T) {
		h := NewBillingHandler(new(MockBilling), new(MockSettings))

		w := serve(http.MethodPut, route, "/trainers/trainer-1/settings", `{"invoiceDay":5}`, trainer, h.UpdateSettings)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("trailing object", func(t *testing.T) {
		h := NewBillingHandler(new(MockBilling), new(MockSettings))

		w := serve(http.MethodPut, route, "/trainers/trainer-1/settings", `{"monthlyInvoiceDay":5}{}`, trainer, h.UpdateSettings)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation details are returned", func(t *testing.T) {
		settings := new(MockSettings)
		settings.On("Update", mock.Anything, "trainer-1", "ws-1", mock.Anything).Return(nil,
			ierr.NewError("invalid settings").
				WithHint("Invalid settings").
				WithReportableDetails(map[string]any{"MonthlyInvoiceDay": "Field Validation Failed on 'max' tag"}).
				Mark(ierr.ErrValidation))
		h := NewBillingHandler(new(MockBilling), settings)

		w := serve(http.MethodPut, route, "/trainers/trainer-1/settings", `{"monthlyInvoiceDay":40}`, trainer, h.UpdateSettings)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var body services.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "Invalid settings", body.Error)
		assert.Contains(t, body.Details, "MonthlyInvoiceDay")
	})

	t.Run("trainer cannot edit another trainer", func(t *testing.T) {
		settings := new(MockSettings)
		h := NewBillingHandler(new(MockBilling), settings)

		w := serve(http.MethodPut, route, "/trainers/trainer-2/settings", `{"monthlyInvoiceDay":5}`, trainer, h.UpdateSettings)
		assert.Equal(t, http.StatusForbidden, w.Code)
		settings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
