// Package billing turns payment plans into externally billed invoices and
// records manual payment confirmations.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aada-api/internal/domain"
	"github.com/aada-api/internal/pkg/id"
)

type Service interface {
	IssueInvoice(ctx context.Context, planID string) (*domain.Invoice, error)
	// IssueMissing issues an invoice for every plan that has none yet.
	IssueMissing(ctx context.Context) (IssueReport, error)
	ConfirmPaid(ctx context.Context, invoiceID string) (*domain.Invoice, error)
}

type IssueReport struct {
	Issued  int `json:"issued"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type planStore interface {
	Get(ctx context.Context, planID string) (*domain.PaymentPlan, error)
	List(ctx context.Context) ([]domain.PaymentPlan, error)
}

type invoiceStore interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	Get(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	GetByPlan(ctx context.Context, planID string) (*domain.Invoice, error)
	MarkPaid(ctx context.Context, invoiceID string) (bool, error)
}

type studentStore interface {
	Get(ctx context.Context, studentID string) (*domain.Student, error)
	SetBillingCustomerID(ctx context.Context, studentID, customerID string) error
}

// Gateway is the external billing system. Writes must be idempotent per
// student (CreateCustomer) and per inv.PlanID (CreateInvoice).
type Gateway interface {
	CreateCustomer(ctx context.Context, s *domain.Student) (string, error)
	CreateInvoice(ctx context.Context, customerID string, inv *domain.Invoice) (string, error)
}

type service struct {
	plans    planStore
	invoices invoiceStore
	students studentStore
	gateway  Gateway
	now      func() time.Time
}

type ServiceDeps struct {
	PlanRepo    planStore
	InvoiceRepo invoiceStore
	StudentRepo studentStore
	Gateway     Gateway
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		plans:    deps.PlanRepo,
		invoices: deps.InvoiceRepo,
		students: deps.StudentRepo,
		gateway:  deps.Gateway,
		now:      deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) IssueInvoice(ctx context.Context, planID string) (*domain.Invoice, error) {
	plan, err := s.plans.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	if _, err := s.invoices.GetByPlan(ctx, planID); err == nil {
		return nil, fmt.Errorf("plan %s already invoiced: %w", planID, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	student, err := s.students.Get(ctx, plan.StudentID)
	if err != nil {
		return nil, err
	}
	customerID, err := s.ensureCustomer(ctx, student)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	pid := plan.PlanID
	inv := &domain.Invoice{
		InvoiceID:   id.New(),
		StudentID:   student.StudentID,
		PlanID:      &pid,
		DueDate:     domain.DateOf(plan.DueDate, time.UTC),
		AmountCents: plan.AmountCents,
		Description: domain.DefaultInvoiceDescription,
		Status:      domain.InvoicePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	billingID, err := s.gateway.CreateInvoice(ctx, customerID, inv)
	if err != nil {
		return nil, fmt.Errorf("create billing invoice: %w", err)
	}
	inv.BillingInvoiceID = &billingID
	if err := s.invoices.Create(ctx, inv); err != nil {
		slog.Error("billing invoice created but not recorded", "plan_id", planID, "billing_invoice_id", billingID, "err", err)
		return nil, err
	}
	return inv, nil
}

func (s *service) ensureCustomer(ctx context.Context, student *domain.Student) (string, error) {
	if student.BillingCustomerID != nil && *student.BillingCustomerID != "" {
		return *student.BillingCustomerID, nil
	}
	customerID, err := s.gateway.CreateCustomer(ctx, student)
	if err != nil {
		return "", fmt.Errorf("create billing customer: %w", err)
	}
	if err := s.students.SetBillingCustomerID(ctx, student.StudentID, customerID); err != nil {
		return "", err
	}
	student.BillingCustomerID = &customerID
	return customerID, nil
}

func (s *service) IssueMissing(ctx context.Context) (IssueReport, error) {
	var rep IssueReport
	plans, err := s.plans.List(ctx)
	if err != nil {
		return rep, err
	}
	for _, p := range plans {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		inv, err := s.IssueInvoice(ctx, p.PlanID)
		switch {
		case err == nil:
			rep.Issued++
			slog.Info("invoice issued", "plan_id", p.PlanID, "invoice_id", inv.InvoiceID)
		case errors.Is(err, domain.ErrConflict):
			rep.Skipped++
		default:
			rep.Failed++
			slog.Warn("issue invoice failed", "plan_id", p.PlanID, "err", err)
		}
	}
	return rep, nil
}

// ConfirmPaid records a payment taken outside the billing system. Confirming
// an invoice that is already paid is a no-op.
func (s *service) ConfirmPaid(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	if _, err := s.invoices.Get(ctx, invoiceID); err != nil {
		return nil, err
	}
	if _, err := s.invoices.MarkPaid(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.invoices.Get(ctx, invoiceID)
}
