package domain

const (
	VerificationEmail         = "email"
	VerificationPasswordReset = "password_reset"
)

// UserVerification stores email confirmation tokens and password reset codes.
// PK: user_id, SK: type. ExpiresAt is a Unix timestamp (DynamoDB TTL attribute).
type UserVerification struct {
	UserID    string `json:"user_id" dynamodbav:"user_id"`
	Type      string `json:"type" dynamodbav:"type"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
}
