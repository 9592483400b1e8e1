// Package reminder reconciles invoices against the billing system and sends
// the one-shot payment notifications (received, due soon, overdue).
//
// The job is a single pass over every invoice that has a billing id. Each
// state change is committed on its own, so a crash leaves earlier invoices
// updated and a re-run picks up where it stopped. Two runs must not overlap.
//
// All three notices follow one rule: the invoice flag for a notice is set only
// after its push went out. A failed push or a missing device token leaves the
// flag unset and the next run tries again. Each push is bounded by its own
// timeout so one unresponsive provider call cannot stall the batch.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aada-api/internal/domain"
	"github.com/aada-api/internal/pkg/id"
	"github.com/aada-api/internal/pkg/mask"
)

const (
	TitleReceived = "Payment Received"
	TitleDueSoon  = "Payment Due Soon"
	TitleOverdue  = "Payment Overdue"

	DefaultLeadDays = 3
	DefaultLateDays = 2
)

type invoiceStore interface {
	ListWithBillingID(ctx context.Context) ([]domain.Invoice, error)
	MarkPaid(ctx context.Context, invoiceID string) (bool, error)
	MarkReminderSent(ctx context.Context, invoiceID string) error
	MarkLateNoticeSent(ctx context.Context, invoiceID string) error
	MarkReceiptSent(ctx context.Context, invoiceID string) error
}

type studentStore interface {
	Get(ctx context.Context, studentID string) (*domain.Student, error)
}

type notificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// PaymentChecker reports whether an external invoice has been paid.
type PaymentChecker interface {
	IsPaid(ctx context.Context, billingInvoiceID string) (bool, error)
}

// Report summarises one run.
type Report struct {
	Scanned         int `json:"scanned"`
	Skipped         int `json:"skipped"`
	MarkedPaid      int `json:"marked_paid"`
	ReceiptsSent    int `json:"receipts_sent"`
	RemindersSent   int `json:"reminders_sent"`
	LateNoticesSent int `json:"late_notices_sent"`
	Failures        int `json:"failures"`
}

type Deps struct {
	Invoices      invoiceStore
	Students      studentStore
	Notifications notificationStore
	Billing       PaymentChecker
	Push          domain.PushSender
	// PushTimeout bounds each push. Defaults to domain.DefaultPushTimeout.
	PushTimeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
	// Location decides which calendar day "today" is. Defaults to UTC.
	Location *time.Location
	LeadDays int
	LateDays int
	Logger   *slog.Logger
}

type Job struct {
	invoices      invoiceStore
	students      studentStore
	notifications notificationStore
	billing       PaymentChecker
	push          domain.PushSender
	pushTimeout   time.Duration
	now           func() time.Time
	loc           *time.Location
	leadDays      int
	lateDays      int
	log           *slog.Logger
}

func NewJob(deps Deps) *Job {
	j := &Job{
		invoices:      deps.Invoices,
		students:      deps.Students,
		notifications: deps.Notifications,
		billing:       deps.Billing,
		push:          deps.Push,
		pushTimeout:   deps.PushTimeout,
		now:           deps.Now,
		loc:           deps.Location,
		leadDays:      deps.LeadDays,
		lateDays:      deps.LateDays,
		log:           deps.Logger,
	}
	if j.now == nil {
		j.now = time.Now
	}
	if j.pushTimeout <= 0 {
		j.pushTimeout = domain.DefaultPushTimeout
	}
	if j.loc == nil {
		j.loc = time.UTC
	}
	if j.leadDays <= 0 {
		j.leadDays = DefaultLeadDays
	}
	if j.lateDays <= 0 {
		j.lateDays = DefaultLateDays
	}
	if j.log == nil {
		j.log = slog.Default()
	}
	return j
}

// Run processes every invoice once. Per-invoice failures are logged and
// counted in the report; only a failure to list invoices or a cancelled
// context ends the run early.
func (j *Job) Run(ctx context.Context) (Report, error) {
	var rep Report
	invoices, err := j.invoices.ListWithBillingID(ctx)
	if err != nil {
		return rep, fmt.Errorf("list invoices: %w", err)
	}
	today := domain.DateOf(j.now(), j.loc)
	j.log.InfoContext(ctx, "reminder run started", "invoices", len(invoices), "today", today.Format(time.DateOnly))

	for i := range invoices {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		j.process(ctx, &invoices[i], today, &rep)
	}

	j.log.InfoContext(ctx, "reminder run finished",
		"scanned", rep.Scanned,
		"skipped", rep.Skipped,
		"marked_paid", rep.MarkedPaid,
		"receipts_sent", rep.ReceiptsSent,
		"reminders_sent", rep.RemindersSent,
		"late_notices_sent", rep.LateNoticesSent,
		"failures", rep.Failures,
	)
	return rep, nil
}

func (j *Job) process(ctx context.Context, inv *domain.Invoice, today time.Time, rep *Report) {
	rep.Scanned++
	log := j.log.With("invoice_id", inv.InvoiceID, "student_id", inv.StudentID)

	if inv.BillingInvoiceID == nil || (inv.IsPaid() && inv.ReceiptSent) {
		rep.Skipped++
		return
	}

	student, err := j.students.Get(ctx, inv.StudentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.WarnContext(ctx, "invoice has no matching student; skipping")
			rep.Skipped++
			return
		}
		log.ErrorContext(ctx, "load student", "err", err)
		rep.Failures++
		return
	}

	paid := inv.IsPaid()
	if !paid {
		paid, err = j.billing.IsPaid(ctx, *inv.BillingInvoiceID)
		if err != nil {
			log.WarnContext(ctx, "could not check billing status; treating as unpaid", "billing_invoice_id", *inv.BillingInvoiceID, "err", err)
			paid = false
		}
		if paid {
			changed, err := j.invoices.MarkPaid(ctx, inv.InvoiceID)
			if err != nil {
				log.ErrorContext(ctx, "mark invoice paid", "err", err)
				rep.Failures++
				return
			}
			if changed {
				rep.MarkedPaid++
			}
		}
	}

	if paid {
		if !inv.ReceiptSent {
			body := fmt.Sprintf("Thanks, we received your payment for %s.", domain.FormatCents(inv.AmountCents))
			j.notifyAndFlag(ctx, log, student, inv, domain.NotificationPaymentReceived, TitleReceived, body,
				j.invoices.MarkReceiptSent, &rep.ReceiptsSent, rep)
		}
		return
	}

	due := domain.DateOf(inv.DueDate, time.UTC)
	daysUntilDue := domain.DaysBetween(today, due)
	amount := domain.FormatCents(inv.AmountCents)
	dueStr := due.Format(time.DateOnly)

	if !inv.ReminderSent && daysUntilDue == j.leadDays {
		body := fmt.Sprintf("Your payment of %s is due on %s.", amount, dueStr)
		j.notifyAndFlag(ctx, log, student, inv, domain.NotificationPaymentReminder, TitleDueSoon, body,
			j.invoices.MarkReminderSent, &rep.RemindersSent, rep)
	}

	if !inv.LateNoticeSent && -daysUntilDue >= j.lateDays {
		body := fmt.Sprintf("Your payment of %s was due on %s. Please pay as soon as possible.", amount, dueStr)
		j.notifyAndFlag(ctx, log, student, inv, domain.NotificationPaymentOverdue, TitleOverdue, body,
			j.invoices.MarkLateNoticeSent, &rep.LateNoticesSent, rep)
	}
}

// notifyAndFlag sends the notice and sets the flag only if the push went out.
func (j *Job) notifyAndFlag(ctx context.Context, log *slog.Logger, student *domain.Student, inv *domain.Invoice,
	kind, title, body string, mark func(context.Context, string) error, counter *int, rep *Report) {
	sent, err := j.notify(ctx, student, inv, kind, title, body)
	if err != nil {
		rep.Failures++
		return
	}
	if !sent {
		return
	}
	if err := mark(ctx, inv.InvoiceID); err != nil {
		log.ErrorContext(ctx, "persist notice flag", "kind", kind, "err", err)
		rep.Failures++
		return
	}
	*counter++
}

// notify pushes to the student's device. It returns false without error when
// the student has no device token.
func (j *Job) notify(ctx context.Context, student *domain.Student, inv *domain.Invoice, kind, title, body string) (bool, error) {
	if !student.HasDeviceToken() {
		j.log.InfoContext(ctx, "no device token; notification not sent", "student_id", student.StudentID, "invoice_id", inv.InvoiceID, "kind", kind)
		return false, nil
	}
	token := *student.DeviceToken
	if err := j.send(ctx, token, title, body); err != nil {
		j.log.WarnContext(ctx, "push failed", "student_id", student.StudentID, "invoice_id", inv.InvoiceID,
			"token", mask.Token(token), "kind", kind, "err", err)
		return false, err
	}

	invoiceID := inv.InvoiceID
	n := &domain.Notification{
		NotificationID: id.New(),
		StudentID:      student.StudentID,
		InvoiceID:      &invoiceID,
		Kind:           kind,
		Title:          title,
		Message:        body,
		CreatedAt:      j.now().UTC(),
	}
	if j.notifications != nil {
		if err := j.notifications.Create(ctx, n); err != nil {
			j.log.WarnContext(ctx, "record notification", "invoice_id", inv.InvoiceID, "err", err)
		}
	}
	return true, nil
}

func (j *Job) send(ctx context.Context, token, title, body string) error {
	ctx, cancel := context.WithTimeout(ctx, j.pushTimeout)
	defer cancel()
	return j.push.Send(ctx, token, title, body)
}
