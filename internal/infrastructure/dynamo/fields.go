package dynamo

// DynamoDB attribute names used in update expressions across all repos.
const (
	fieldUpdatedAt          = "updated_at"
	fieldEnable             = "enable"
	fieldRefreshToken       = "refresh_token"
	fieldRefreshExpiresAt   = "refresh_expires_at"
	fieldPasswordHash       = "password_hash"
	fieldEmailConfirmed     = "email_confirmed"
	fieldDeviceToken        = "device_token"
	fieldBillingCustomerID  = "billing_customer_id"
	fieldStatus             = "status"
	fieldReminderSent       = "reminder_sent"
	fieldLateNoticeSent     = "late_notice_sent"
	fieldReceiptSent        = "receipt_sent"
	fieldVerificationStatus = "verification_status"
	fieldVerifiedBy         = "verified_by"
	fieldVerificationNotes  = "verification_notes"
	fieldVerifiedAt         = "verified_at"
	fieldRead               = "read"
)
