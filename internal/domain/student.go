package domain

import "time"

const (
	EnrollmentEnrolling = "Enrolling"
	EnrollmentEnrolled  = "Enrolled"
	EnrollmentSuspended = "Suspended"
	EnrollmentGraduated = "Graduated"
)

// Student is the long-lived aggregate that owns invoices, payment plans and
// externship status. A nil DeviceToken suppresses all push delivery.
type Student struct {
	StudentID         string    `json:"id" dynamodbav:"student_id"`
	Name              string    `json:"name" dynamodbav:"name"`
	Email             string    `json:"email" dynamodbav:"email"`
	DeviceToken       *string   `json:"-" dynamodbav:"device_token"`
	BillingCustomerID *string   `json:"billing_customer_id,omitempty" dynamodbav:"billing_customer_id"`
	EnrollmentStatus  string    `json:"enrollment_status" dynamodbav:"enrollment_status"`
	CreatedAt         time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt         time.Time `json:"updated" dynamodbav:"updated_at"`
}

// HasDeviceToken reports whether push notifications can be delivered.
func (s *Student) HasDeviceToken() bool {
	return s.DeviceToken != nil && *s.DeviceToken != ""
}

type DeviceTokenRequest struct {
	FCMToken string `json:"fcm_token" validate:"required"`
}
