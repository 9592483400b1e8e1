package domain

import "time"

const ExternshipNotStarted = "Not Started"

type ExternshipStatus struct {
	StudentID string    `json:"student_id" dynamodbav:"student_id"`
	Status    string    `json:"status" dynamodbav:"status"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type ExternshipStatusInput struct {
	Status string `json:"status" validate:"required,max=30"`
}
