package payment

import (
	"context"
	"fmt"

	"github.com/aada-api/internal/domain"
)

type Service interface {
	// ListPlans returns the student's plans ordered by due date.
	ListPlans(ctx context.Context, actor domain.Actor, studentID string) ([]domain.PaymentPlan, error)
	ListInvoices(ctx context.Context, actor domain.Actor, studentID string) ([]domain.Invoice, error)
}

type studentStore interface {
	Get(ctx context.Context, studentID string) (*domain.Student, error)
}

type planStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]domain.PaymentPlan, error)
}

type invoiceStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]domain.Invoice, error)
}

type service struct {
	students studentStore
	plans    planStore
	invoices invoiceStore
}

type ServiceDeps struct {
	StudentRepo studentStore
	PlanRepo    planStore
	InvoiceRepo invoiceStore
}

func NewService(deps ServiceDeps) Service {
	return &service{students: deps.StudentRepo, plans: deps.PlanRepo, invoices: deps.InvoiceRepo}
}

func (s *service) authorize(ctx context.Context, actor domain.Actor, studentID string) error {
	if studentID == "" {
		return fmt.Errorf("student_id is required: %w", domain.ErrBadRequest)
	}
	if !actor.CanAccessStudent(studentID) {
		return fmt.Errorf("student %s: %w", studentID, domain.ErrForbidden)
	}
	_, err := s.students.Get(ctx, studentID)
	return err
}

func (s *service) ListPlans(ctx context.Context, actor domain.Actor, studentID string) ([]domain.PaymentPlan, error) {
	if err := s.authorize(ctx, actor, studentID); err != nil {
		return nil, err
	}
	return s.plans.ListByStudent(ctx, studentID)
}

func (s *service) ListInvoices(ctx context.Context, actor domain.Actor, studentID string) ([]domain.Invoice, error) {
	if err := s.authorize(ctx, actor, studentID); err != nil {
		return nil, err
	}
	return s.invoices.ListByStudent(ctx, studentID)
}
