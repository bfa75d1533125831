package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/middleware"
	"github.com/trainerdesk/backend/internal/models"
	"github.com/trainerdesk/backend/internal/services"
)

type PrepaidLedger interface {
	AddCredit(ctx context.Context, clientID string, amount decimal.Decimal, notes string) (*models.PrepaidTransaction, error)
	Consume(ctx context.Context, clientID string, amount decimal.Decimal, notes string) (*models.PrepaidTransaction, error)
	GetTransactions(ctx context.Context, clientID string, limit, offset int) (*models.PrepaidTransactionPage, error)
	Reconcile(ctx context.Context, clientID string) (*services.Reconciliation, error)
}

// ClientDirectory resolves a client to its workspace.
type ClientDirectory interface {
	GetClient(ctx context.Context, clientID string) (*models.Client, error)
}

type PrepaidHandler struct {
	ledger    PrepaidLedger
	clients   ClientDirectory
	validator *services.ValidationHelper
}

func NewPrepaidHandler(ledger PrepaidLedger, clients ClientDirectory) *PrepaidHandler {
	return &PrepaidHandler{
		ledger:    ledger,
		clients:   clients,
		validator: services.NewValidationHelper(),
	}
}

// LedgerEntryRequest moves money in or out of a prepaid balance.
type LedgerEntryRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"50.00"`
	Notes  string          `json:"notes" validate:"max=500"`
}

// authorizeClient checks the client lives in the caller's workspace. A
// CLIENT caller may only touch its own record.
func (h *PrepaidHandler) authorizeClient(r *http.Request, p *middleware.Principal, clientID string) error {
	if p.Role == models.RoleClient && p.UserID != clientID {
		return ierr.NewError("client reading another client").
			WithHint("You do not have access to this client").
			Mark(ierr.ErrPermissionDenied)
	}

	client, err := h.clients.GetClient(r.Context(), clientID)
	if err != nil {
		return err
	}
	if client.WorkspaceID != p.WorkspaceID {
		return ierr.NewError("client belongs to another workspace").
			WithHint("You do not have access to this client").
			Mark(ierr.ErrPermissionDenied)
	}
	return nil
}

// GetTransactions lists a client's prepaid transactions, newest first
// @Summary List prepaid transactions
// @Tags Prepaid
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} models.PrepaidTransactionPage
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /clients/{clientId}/prepaid/transactions [get]
func (h *PrepaidHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	clientID := chi.URLParam(r, "clientId")
	if err := h.authorizeClient(r, p, clientID); err != nil {
		services.WriteError(w, err)
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		services.WriteError(w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		services.WriteError(w, err)
		return
	}

	page, err := h.ledger.GetTransactions(r.Context(), clientID, limit, offset)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, page)
}

// AddCredit tops up a client's prepaid balance
// @Summary Add prepaid credit
// @Tags Prepaid
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param request body LedgerEntryRequest true "Credit"
// @Success 201 {object} models.PrepaidTransaction
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /clients/{clientId}/prepaid/credits [post]
func (h *PrepaidHandler) AddCredit(w http.ResponseWriter, r *http.Request) {
	h.writeEntry(w, r, h.ledger.AddCredit)
}

// Consume debits a client's prepaid balance
// @Summary Consume prepaid balance
// @Tags Prepaid
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param request body LedgerEntryRequest true "Debit"
// @Success 201 {object} models.PrepaidTransaction
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /clients/{clientId}/prepaid/debits [post]
func (h *PrepaidHandler) Consume(w http.ResponseWriter, r *http.Request) {
	h.writeEntry(w, r, h.ledger.Consume)
}

func (h *PrepaidHandler) writeEntry(w http.ResponseWriter, r *http.Request, apply func(context.Context, string, decimal.Decimal, string) (*models.PrepaidTransaction, error)) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	clientID := chi.URLParam(r, "clientId")
	if err := h.authorizeClient(r, p, clientID); err != nil {
		services.WriteError(w, err)
		return
	}

	var req LedgerEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	txn, err := apply(r.Context(), clientID, req.Amount, req.Notes)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusCreated, txn)
}

// Reconcile compares a client's balance with its ledger sum
// @Summary Reconcile prepaid balance
// @Tags Prepaid
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {object} services.Reconciliation
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /clients/{clientId}/prepaid/reconcile [get]
func (h *PrepaidHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	clientID := chi.URLParam(r, "clientId")
	if err := h.authorizeClient(r, p, clientID); err != nil {
		services.WriteError(w, err)
		return
	}

	rec, err := h.ledger.Reconcile(r.Context(), clientID)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, rec)
}
