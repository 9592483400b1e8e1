package domain

import "time"

const (
	DocumentPending  = "pending"
	DocumentApproved = "approved"
	DocumentRejected = "rejected"
)

type Document struct {
	DocumentID         string     `json:"id" dynamodbav:"document_id"`
	OwnerID            string     `json:"owner_id" dynamodbav:"owner_id"`
	DocumentType       string     `json:"document_type" dynamodbav:"document_type"`
	FileName           string     `json:"file_name" dynamodbav:"file_name"`
	StorageKey         string     `json:"-" dynamodbav:"storage_key"`
	FileURL            string     `json:"file_url" dynamodbav:"file_url"`
	FileSize           int64      `json:"file_size" dynamodbav:"file_size"`
	ContentType        string     `json:"content_type" dynamodbav:"content_type"`
	VerificationStatus string     `json:"verification_status" dynamodbav:"verification_status"`
	VerifiedBy         *string    `json:"verified_by,omitempty" dynamodbav:"verified_by"`
	VerificationNotes  *string    `json:"verification_notes" dynamodbav:"verification_notes"`
	UploadedAt         time.Time  `json:"uploaded_at" dynamodbav:"uploaded_at"`
	VerifiedAt         *time.Time `json:"verified_at" dynamodbav:"verified_at"`
}

type VerifyDocumentRequest struct {
	VerificationStatus string  `json:"verification_status" validate:"required,oneof=approved rejected"`
	VerificationNotes  *string `json:"verification_notes"`
}
