package domain

import "time"

type PaymentPlan struct {
	PlanID      string    `json:"id" dynamodbav:"plan_id"`
	StudentID   string    `json:"student_id" dynamodbav:"student_id"`
	AmountCents int64     `json:"amount" dynamodbav:"amount_cents"`
	DueDate     time.Time `json:"due_date" dynamodbav:"due_date"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
}
