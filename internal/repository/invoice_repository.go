package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/trainerdesk/backend/internal/database"
	"github.com/trainerdesk/backend/internal/models"
)

type InvoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// CreateInvoice inserts the invoice and its line items in one transaction.
// A line item whose appointment is already billed fails the whole insert
// with ErrAlreadyExists.
func (r *InvoiceRepository) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO invoices (id, number, workspace_id, trainer_id, client_id, amount, status, period_start, period_end, issued_at, due_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			inv.ID, inv.Number, inv.WorkspaceID, inv.TrainerID, inv.ClientID, inv.Amount, string(inv.Status),
			inv.PeriodStart, inv.PeriodEnd, inv.IssuedAt, inv.DueAt)
		if err != nil {
			return dbError(err, "insert invoice")
		}

		for _, li := range inv.LineItems {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO invoice_line_items (id, invoice_id, appointment_id, description, quantity, unit_price, total)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				li.ID, inv.ID, li.AppointmentID, li.Description, li.Quantity, li.UnitPrice, li.Total)
			if err != nil {
				return dbError(err, "insert invoice line item")
			}
		}
		return nil
	})
}

func (r *InvoiceRepository) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status models.InvoiceStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE invoices SET status = $1 WHERE id = $2`, string(status), invoiceID)
	if err != nil {
		return dbError(err, "update invoice status")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return dbError(sql.ErrNoRows, "update invoice status")
	}
	return nil
}

const invoiceColumns = `id, number, workspace_id, trainer_id, client_id, amount, status, period_start, period_end, issued_at, due_at`

func (r *InvoiceRepository) GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, invoiceID).Scan(
		&inv.ID, &inv.Number, &inv.WorkspaceID, &inv.TrainerID, &inv.ClientID, &inv.Amount, &inv.Status,
		&inv.PeriodStart, &inv.PeriodEnd, &inv.IssuedAt, &inv.DueAt)
	if err != nil {
		return nil, dbError(err, "get invoice")
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, invoice_id, appointment_id, description, quantity, unit_price, total
		FROM invoice_line_items
		WHERE invoice_id = $1
		ORDER BY id`, invoiceID)
	if err != nil {
		return nil, dbError(err, "list invoice line items")
	}
	defer rows.Close()

	for rows.Next() {
		var li models.InvoiceLineItem
		if err := rows.Scan(&li.ID, &li.InvoiceID, &li.AppointmentID, &li.Description, &li.Quantity, &li.UnitPrice, &li.Total); err != nil {
			return nil, dbError(err, "scan invoice line item")
		}
		inv.LineItems = append(inv.LineItems, li)
	}
	return &inv, dbError(rows.Err(), "iterate invoice line items")
}

// ListInvoices returns the workspace's invoices, newest first, without
// line items.
func (r *InvoiceRepository) ListInvoices(ctx context.Context, workspaceID string, filter models.InvoiceFilter) ([]models.Invoice, error) {
	conds := []string{"workspace_id = $1"}
	args := []any{workspaceID}

	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		conds = append(conds, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE %s ORDER BY issued_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		invoiceColumns, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "list invoices")
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		var inv models.Invoice
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.WorkspaceID, &inv.TrainerID, &inv.ClientID, &inv.Amount, &inv.Status,
			&inv.PeriodStart, &inv.PeriodEnd, &inv.IssuedAt, &inv.DueAt); err != nil {
			return nil, dbError(err, "scan invoice")
		}
		invoices = append(invoices, inv)
	}
	return invoices, dbError(rows.Err(), "iterate invoices")
}
