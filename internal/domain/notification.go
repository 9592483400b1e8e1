package domain

import "time"

const (
	NotificationPaymentReceived = "payment_received"
	NotificationPaymentReminder = "payment_reminder"
	NotificationPaymentOverdue  = "payment_overdue"
	NotificationGeneral         = "general"
)

type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	StudentID      string    `json:"student_id" dynamodbav:"student_id"`
	InvoiceID      *string   `json:"invoice_id" dynamodbav:"invoice_id"`
	Kind           string    `json:"kind" dynamodbav:"kind"`
	Title          string    `json:"title" dynamodbav:"title"`
	Message        string    `json:"message" dynamodbav:"message"`
	Read           bool      `json:"read" dynamodbav:"read"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}
