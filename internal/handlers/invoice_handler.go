package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/trainerdesk/backend/internal/models"
	"github.com/trainerdesk/backend/internal/services"
)

type InvoiceReader interface {
	ListInvoices(ctx context.Context, workspaceID string, filter models.InvoiceFilter) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, workspaceID, invoiceID string) (*models.Invoice, error)
	PaymentLink(ctx context.Context, workspaceID, invoiceID string) (*services.PaymentQR, error)
	ResolvePayment(ctx context.Context, token string) (*services.PaymentSummary, error)
}

type InvoiceHandler struct {
	invoices InvoiceReader
}

func NewInvoiceHandler(invoices InvoiceReader) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// ListInvoices lists invoices in the caller's workspace
// @Summary List invoices
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param clientId query string false "Filter by client"
// @Param status query string false "Filter by status" Enums(DRAFT, SENT, PAID, OVERDUE, CANCELLED)
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.Invoice
// @Failure 400 {object} services.ErrorResponse
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
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

	filter := models.InvoiceFilter{
		ClientID: r.URL.Query().Get("clientId"),
		Status:   models.InvoiceStatus(r.URL.Query().Get("status")),
		Limit:    limit,
		Offset:   offset,
	}

	invoices, err := h.invoices.ListInvoices(r.Context(), p.WorkspaceID, filter)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	services.WriteJSON(w, http.StatusOK, invoices)
}

// GetInvoice returns one invoice with its line items
// @Summary Get invoice
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param invoiceId path string true "Invoice ID"
// @Success 200 {object} models.Invoice
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /invoices/{invoiceId} [get]
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	inv, err := h.invoices.GetInvoice(r.Context(), p.WorkspaceID, chi.URLParam(r, "invoiceId"))
	if err != nil {
		services.WriteError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, inv)
}

// PaymentLink issues a payment QR code for an invoice
// @Summary Create payment link
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param invoiceId path string true "Invoice ID"
// @Success 201 {object} services.PaymentQR
// @Failure 404 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /invoices/{invoiceId}/payment-link [post]
func (h *InvoiceHandler) PaymentLink(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	qr, err := h.invoices.PaymentLink(r.Context(), p.WorkspaceID, chi.URLParam(r, "invoiceId"))
	if err != nil {
		services.WriteError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusCreated, qr)
}

// ResolvePayment shows what a payment token is for
// @Summary Resolve payment token
// @Description Public endpoint behind the payment QR code
// @Tags Payments
// @Produce json
// @Param token path string true "Payment token"
// @Success 200 {object} services.PaymentSummary
// @Failure 404 {object} services.ErrorResponse
// @Router /pay/{token} [get]
func (h *InvoiceHandler) ResolvePayment(w http.ResponseWriter, r *http.Request) {
	summary, err := h.invoices.ResolvePayment(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		services.WriteError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, summary)
}
