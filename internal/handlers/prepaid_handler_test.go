package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/models"
	"github.com/trainerdesk/backend/internal/services"
)

func newClientDirectory() *MockClients {
	clients := new(MockClients)
	clients.On("GetClient", mock.Anything, "alice").Return(&models.Client{ID: "alice", WorkspaceID: "ws-1"}, nil)
	clients.On("GetClient", mock.Anything, "bob").Return(&models.Client{ID: "bob", WorkspaceID: "ws-1"}, nil)
	clients.On("GetClient", mock.Anything, "zed").Return(&models.Client{ID: "zed", WorkspaceID: "ws-2"}, nil)
	clients.On("GetClient", mock.Anything, "ghost").Return(nil, ierr.NewError("client not found").Mark(ierr.ErrNotFound))
	return clients
}

func TestPrepaidHandler_GetTransactions(t *testing.T) {
	route := "/clients/{clientId}/prepaid/transactions"
	page := &models.PrepaidTransactionPage{
		Transactions: []models.PrepaidTransaction{{ID: "txn-1", Amount: decimal.RequireFromString("25")}},
		Total:        1,
		Limit:        20,
	}

	t.Run("client reads own history", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("GetTransactions", mock.Anything, "alice", 0, 0).Return(page, nil)
		h := NewPrepaidHandler(ledger, newClientDirectory())

		w := serve(http.MethodGet, route, "/clients/alice/prepaid/transactions", "", client, h.GetTransactions)
		require.Equal(t, http.StatusOK, w.Code)

		var body models.PrepaidTransactionPage
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, 1, body.Total)
	})

	t.Run("client cannot read another client", func(t *testing.T) {
		ledger := new(MockLedger)
		clients := newClientDirectory()
		h := NewPrepaidHandler(ledger, clients)

		w := serve(http.MethodGet, route, "/clients/bob/prepaid/transactions", "", client, h.GetTransactions)
		assert.Equal(t, http.StatusForbidden, w.Code)
		clients.AssertNotCalled(t, "GetClient", mock.Anything, "bob")
	})

	t.Run("trainer paginates", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("GetTransactions", mock.Anything, "bob", 5, 10).Return(page, nil)
		h := NewPrepaidHandler(ledger, newClientDirectory())

		w := serve(http.MethodGet, route, "/clients/bob/prepaid/transactions?limit=5&offset=10", "", trainer, h.GetTransactions)
		assert.Equal(t, http.StatusOK, w.Code)
		ledger.AssertExpectations(t)
	})

	t.Run("client in another workspace", func(t *testing.T) {
		h := NewPrepaidHandler(new(MockLedger), newClientDirectory())

		w := serve(http.MethodGet, route, "/clients/zed/prepaid/transactions", "", trainer, h.GetTransactions)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown client", func(t *testing.T) {
		h := NewPrepaidHandler(new(MockLedger), newClientDirectory())

		w := serve(http.MethodGet, route, "/clients/ghost/prepaid/transactions", "", admin, h.GetTransactions)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPrepaidHandler_AddCredit(t *testing.T) {
	route := "/clients/{clientId}/prepaid/credits"

	t.Run("credit is recorded", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("AddCredit", mock.Anything, "alice", mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.RequireFromString("25.50"))
		}), "10 session pack").Return(&models.PrepaidTransaction{
			ID:               "txn-1",
			Amount:           decimal.RequireFromString("25.50"),
			ResultingBalance: decimal.RequireFromString("125.50"),
		}, nil)
		h := NewPrepaidHandler(ledger, newClientDirectory())

		w := serve(http.MethodPost, route, "/clients/alice/prepaid/credits", `{"amount":"25.50","notes":"10 session pack"}`, trainer, h.AddCredit)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"resultingBalance":"125.5"`)
		ledger.AssertExpectations(t)
	})

	t.Run("numeric amount is accepted", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("AddCredit", mock.Anything, "alice", mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.NewFromInt(40))
		}), "").Return(&models.PrepaidTransaction{ID: "txn-2"}, nil)
		h := NewPrepaidHandler(ledger, newClientDirectory())

		w := serve(http.MethodPost, route, "/clients/alice/prepaid/credits", `{"amount":40}`, admin, h.AddCredit)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("AddCredit", mock.Anything, "alice", mock.Anything, mock.Anything).Return(nil,
			ierr.NewError("credit amount must be positive").WithHint("Amount must be greater than zero").Mark(ierr.ErrValidation))
		h := NewPrepaidHandler(ledger, newClientDirectory())

		w := serve(http.MethodPost, route, "/clients/alice/prepaid/credits", `{"amount":"0"}`, trainer, h.AddCredit)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var body services.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "Amount must be greater than zero", body.Error)
	})

	t.Run("malformed amount", func(t *testing.T) {
		ledger := new(MockLedger)
		h := NewPrepaidHandler(ledger, newClientDirectory())

		w := serve(http.MethodPost, route, "/clients/alice/prepaid/credits", `{"amount":"lots"}`, trainer, h.AddCredit)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		ledger.AssertNotCalled(t, "AddCredit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPrepaidHandler_Consume(t *testing.T) {
	route := "/clients/{clientId}/prepaid/debits"

	t.Run("insufficient balance", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("Consume", mock.Anything, "alice", mock.Anything, "session").Return(nil,
			ierr.NewError("insufficient prepaid balance").
				WithHint("Insufficient prepaid balance").
				WithReportableDetails(map[string]any{"balance": "10", "requested": "30"}).
				Mark(ierr.ErrInsufficientBalance))
		h := NewPrepaidHandler(ledger, newClientDirectory())

		w := serve(http.MethodPost, route, "/clients/alice/prepaid/debits", `{"amount":"30","notes":"session"}`, trainer, h.Consume)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var body services.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "10", body.Details["balance"])
	})

	t.Run("version conflict surfaces as 409", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("Consume", mock.Anything, "alice", mock.Anything, "").Return(nil,
			ierr.NewError("profile changed concurrently").Mark(ierr.ErrVersionConflict))
		h := NewPrepaidHandler(ledger, newClientDirectory())

		w := serve(http.MethodPost, route, "/clients/alice/prepaid/debits", `{"amount":"5"}`, trainer, h.Consume)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestPrepaidHandler_Reconcile(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("Reconcile", mock.Anything, "alice").Return(&services.Reconciliation{
		ClientID:  "alice",
		Balance:   decimal.RequireFromString("100"),
		LedgerSum: decimal.RequireFromString("100"),
		InBalance: true,
	}, nil)
	h := NewPrepaidHandler(ledger, newClientDirectory())

	w := serve(http.MethodGet, "/clients/{clientId}/prepaid/reconcile", "/clients/alice/prepaid/reconcile", "", admin, h.Reconcile)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"inBalance":true`)
}
