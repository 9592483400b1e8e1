package domain

import (
	"context"
	"time"
)

// Repository contracts shared by the Postgres and DynamoDB backends.
// Get-style lookups wrap ErrNotFound; unique-key violations wrap ErrConflict.

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	MarkEmailConfirmed(ctx context.Context, userID string) error
}

type SessionRepository interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	GetByRefreshToken(ctx context.Context, token string) (*Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	Disable(ctx context.Context, sessionID string) error
}

type VerificationRepository interface {
	Put(ctx context.Context, v *UserVerification) error
	Get(ctx context.Context, userID, verType string) (*UserVerification, error)
	Delete(ctx context.Context, userID, verType string) error
}

type StudentRepository interface {
	Create(ctx context.Context, s *Student) error
	Get(ctx context.Context, studentID string) (*Student, error)
	GetByEmail(ctx context.Context, email string) (*Student, error)
	List(ctx context.Context) ([]Student, error)
	SetDeviceToken(ctx context.Context, studentID, token string) error
	SetBillingCustomerID(ctx context.Context, studentID, customerID string) error
}

type PaymentPlanRepository interface {
	Create(ctx context.Context, p *PaymentPlan) error
	Get(ctx context.Context, planID string) (*PaymentPlan, error)
	// ListByStudent returns plans ordered by due date ascending.
	ListByStudent(ctx context.Context, studentID string) ([]PaymentPlan, error)
	List(ctx context.Context) ([]PaymentPlan, error)
}

type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, invoiceID string) (*Invoice, error)
	GetByPlan(ctx context.Context, planID string) (*Invoice, error)
	ListByStudent(ctx context.Context, studentID string) ([]Invoice, error)
	// ListWithBillingID returns every invoice that carries an external billing id.
	ListWithBillingID(ctx context.Context) ([]Invoice, error)
	// MarkPaid moves PENDING to PAID and reports whether this call made the change.
	MarkPaid(ctx context.Context, invoiceID string) (bool, error)
	MarkReminderSent(ctx context.Context, invoiceID string) error
	MarkLateNoticeSent(ctx context.Context, invoiceID string) error
	MarkReceiptSent(ctx context.Context, invoiceID string) error
}

type ExternshipRepository interface {
	Get(ctx context.Context, studentID string) (*ExternshipStatus, error)
	Put(ctx context.Context, e *ExternshipStatus) error
}

type DocumentRepository interface {
	Create(ctx context.Context, d *Document) error
	Get(ctx context.Context, documentID string) (*Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Document, error)
	ListPending(ctx context.Context) ([]Document, error)
	Delete(ctx context.Context, documentID string) error
	SetVerification(ctx context.Context, documentID, status, verifiedBy string, notes *string, at time.Time) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	Get(ctx context.Context, notificationID string) (*Notification, error)
	ListByStudent(ctx context.Context, studentID string) ([]Notification, error)
	MarkRead(ctx context.Context, notificationID string) error
}

// Repositories bundles one backend's stores.
type Repositories struct {
	Users         UserRepository
	Sessions      SessionRepository
	Verifications VerificationRepository
	Students      StudentRepository
	PaymentPlans  PaymentPlanRepository
	Invoices      InvoiceRepository
	Externships   ExternshipRepository
	Documents     DocumentRepository
	Notifications NotificationRepository
}
