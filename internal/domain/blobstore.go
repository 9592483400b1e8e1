package domain

import (
	"context"
	"io"
	"time"
)

// BlobStore is the object storage capability used for uploaded documents.
// Implementations must return the same shape for every backend: the caller keeps
// the key it passed in and the URL returned by Upload.
type BlobStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	// Delete removes the object. A missing object is not an error.
	Delete(ctx context.Context, key string) error
	URL(key string) string
	DownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	ListByOwner(ctx context.Context, ownerID string) ([]string, error)
}

// DefaultPushTimeout bounds a single PushSender.Send call.
const DefaultPushTimeout = 10 * time.Second

// PushSender delivers a titled text notification to one device token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string) error
}

// Mailer sends plain-text email.
type Mailer interface {
	Send(to, subject, body string) error
}
