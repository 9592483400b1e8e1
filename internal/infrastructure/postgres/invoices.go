package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aada-api/internal/domain"
)

const invoiceColumns = `invoice_id, student_id, plan_id, due_date, amount_cents, description, status,
	billing_invoice_id, reminder_sent, late_notice_sent, receipt_sent, created_at, updated_at`

// InvoiceRepo persists invoices. Every state change is its own autocommitted
// statement, guarded so status and notice flags can only move forward.
type InvoiceRepo struct {
	db *pgxpool.Pool
}

func NewInvoiceRepo(db *pgxpool.Pool) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

func (r *InvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	_, err := r.db.Exec(ctx, `INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		inv.InvoiceID, inv.StudentID, inv.PlanID, inv.DueDate, inv.AmountCents, inv.Description, string(inv.Status),
		inv.BillingInvoiceID, inv.ReminderSent, inv.LateNoticeSent, inv.ReceiptSent, inv.CreatedAt, inv.UpdatedAt)
	return mapErr(err, "invoice")
}

func (r *InvoiceRepo) Get(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_id = $1`, invoiceID))
}

func (r *InvoiceRepo) GetByPlan(ctx context.Context, planID string) (*domain.Invoice, error) {
	return scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE plan_id = $1`, planID))
}

func (r *InvoiceRepo) ListByStudent(ctx context.Context, studentID string) ([]domain.Invoice, error) {
	return r.list(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE student_id = $1 ORDER BY due_date`, studentID)
}

func (r *InvoiceRepo) ListWithBillingID(ctx context.Context) ([]domain.Invoice, error) {
	return r.list(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE billing_invoice_id IS NOT NULL ORDER BY due_date`)
}

func (r *InvoiceRepo) MarkPaid(ctx context.Context, invoiceID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE invoices SET status = 'PAID', updated_at = NOW()
		WHERE invoice_id = $1 AND status = 'PENDING'`, invoiceID)
	if err != nil {
		return false, mapErr(err, "invoice")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *InvoiceRepo) MarkReminderSent(ctx context.Context, invoiceID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE invoices SET reminder_sent = TRUE, updated_at = NOW() WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return mapErr(err, "invoice")
	}
	return requireRow(tag, "invoice")
}

func (r *InvoiceRepo) MarkLateNoticeSent(ctx context.Context, invoiceID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE invoices SET late_notice_sent = TRUE, updated_at = NOW() WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return mapErr(err, "invoice")
	}
	return requireRow(tag, "invoice")
}

func (r *InvoiceRepo) MarkReceiptSent(ctx context.Context, invoiceID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE invoices SET receipt_sent = TRUE, updated_at = NOW() WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return mapErr(err, "invoice")
	}
	return requireRow(tag, "invoice")
}

func (r *InvoiceRepo) list(ctx context.Context, query string, args ...any) ([]domain.Invoice, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "invoices")
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, mapErr(rows.Err(), "invoices")
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var (
		inv    domain.Invoice
		status string
	)
	err := row.Scan(&inv.InvoiceID, &inv.StudentID, &inv.PlanID, &inv.DueDate, &inv.AmountCents, &inv.Description, &status,
		&inv.BillingInvoiceID, &inv.ReminderSent, &inv.LateNoticeSent, &inv.ReceiptSent, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, mapErr(err, "invoice")
	}
	inv.Status = domain.InvoiceStatus(status)
	return &inv, nil
}
