package domain

import (
	"fmt"
	"time"
)

type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "PENDING"
	InvoicePaid    InvoiceStatus = "PAID"
)

const DefaultInvoiceDescription = "Monthly Tuition Payment"

// Invoice is one tuition installment. Status only moves PENDING -> PAID and the
// three notice flags only move false -> true.
type Invoice struct {
	InvoiceID        string        `json:"id" dynamodbav:"invoice_id"`
	StudentID        string        `json:"student_id" dynamodbav:"student_id"`
	PlanID           *string       `json:"plan_id,omitempty" dynamodbav:"plan_id,omitempty"`
	DueDate          time.Time     `json:"due_date" dynamodbav:"due_date"`
	AmountCents      int64         `json:"amount_cents" dynamodbav:"amount_cents"`
	Description      string        `json:"description" dynamodbav:"description"`
	Status           InvoiceStatus `json:"status" dynamodbav:"status"`
	BillingInvoiceID *string       `json:"billing_invoice_id,omitempty" dynamodbav:"billing_invoice_id,omitempty"`
	ReminderSent     bool          `json:"reminder_sent" dynamodbav:"reminder_sent"`
	LateNoticeSent   bool          `json:"late_notice_sent" dynamodbav:"late_notice_sent"`
	ReceiptSent      bool          `json:"receipt_sent" dynamodbav:"receipt_sent"`
	CreatedAt        time.Time     `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time     `json:"updated" dynamodbav:"updated_at"`
}

func (i *Invoice) IsPaid() bool { return i.Status == InvoicePaid }

// FormatCents renders minor units as a dollar amount, e.g. 12345 -> "$123.45".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// DateOf truncates t to its calendar date in loc, returned as UTC midnight.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b, time.UTC).Sub(DateOf(a, time.UTC)).Hours() / 24)
}
