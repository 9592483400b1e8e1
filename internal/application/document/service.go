package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/aada-api/internal/domain"
	"github.com/aada-api/internal/pkg/blobkey"
	"github.com/aada-api/internal/pkg/id"
)

// MaxFileSize is the upload ceiling in bytes.
const MaxFileSize = 10 << 20

var (
	AllowedTypes      = []string{"id", "diploma", "certificate", "transcript", "other"}
	AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".pdf", ".doc", ".docx"}
)

type UploadInput struct {
	OwnerID      string
	DocumentType string
	FileName     string
	ContentType  string
	// Size is the declared size, or -1 when unknown.
	Size   int64
	Reader io.Reader
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*domain.Document, error)
	List(ctx context.Context, ownerID string) ([]domain.Document, error)
	Get(ctx context.Context, documentID, requesterID string) (*domain.Document, error)
	DownloadURL(ctx context.Context, documentID, requesterID string) (string, error)
	Delete(ctx context.Context, documentID, requesterID string) error
	Verify(ctx context.Context, documentID, verifierID, verifierRole string, req domain.VerifyDocumentRequest) (*domain.Document, error)
	ListPending(ctx context.Context) ([]domain.Document, error)
}

type documentStore interface {
	Create(ctx context.Context, d *domain.Document) error
	Get(ctx context.Context, documentID string) (*domain.Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error)
	ListPending(ctx context.Context) ([]domain.Document, error)
	Delete(ctx context.Context, documentID string) error
	SetVerification(ctx context.Context, documentID, status, verifiedBy string, notes *string, at time.Time) error
}

type service struct {
	repo        documentStore
	store       domain.BlobStore
	downloadTTL time.Duration
	now         func() time.Time
}

type ServiceDeps struct {
	DocumentRepo documentStore
	Store        domain.BlobStore
	DownloadTTL  time.Duration
	Now          func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:        deps.DocumentRepo,
		store:       deps.Store,
		downloadTTL: deps.DownloadTTL,
		now:         deps.Now,
	}
	if s.downloadTTL <= 0 {
		s.downloadTTL = 24 * time.Hour
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Upload validates type, extension and size before anything reaches storage.
func (s *service) Upload(ctx context.Context, in UploadInput) (*domain.Document, error) {
	if !slices.Contains(AllowedTypes, in.DocumentType) {
		return nil, fmt.Errorf("document type must be one of %s: %w", strings.Join(AllowedTypes, ", "), domain.ErrBadRequest)
	}
	name := sanitizeFilename(in.FileName)
	ext := strings.ToLower(path.Ext(name))
	if !slices.Contains(AllowedExtensions, ext) {
		return nil, fmt.Errorf("file type %q not allowed: %w", ext, domain.ErrBadRequest)
	}
	if in.Size > MaxFileSize {
		return nil, fmt.Errorf("file exceeds %d MB: %w", MaxFileSize>>20, domain.ErrTooLarge)
	}
	data, err := io.ReadAll(io.LimitReader(in.Reader, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", domain.ErrBadRequest)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("file exceeds %d MB: %w", MaxFileSize>>20, domain.ErrTooLarge)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("file is empty: %w", domain.ErrBadRequest)
	}

	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFromExt(ext)
	}

	now := s.now().UTC()
	key := blobkey.New(in.OwnerID, in.DocumentType, ext, now)
	url, err := s.store.Upload(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		return nil, fmt.Errorf("store document: %v: %w", err, domain.ErrUnavailable)
	}

	d := &domain.Document{
		DocumentID:         id.New(),
		OwnerID:            in.OwnerID,
		DocumentType:       in.DocumentType,
		FileName:           name,
		StorageKey:         key,
		FileURL:            url,
		FileSize:           int64(len(data)),
		ContentType:        contentType,
		VerificationStatus: domain.DocumentPending,
		UploadedAt:         now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			slog.Warn("failed to remove orphaned upload", "key", key, "err", derr)
		}
		return nil, err
	}
	return d, nil
}

func (s *service) List(ctx context.Context, ownerID string) ([]domain.Document, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Get returns the document only to its owner; anyone else sees not found.
func (s *service) Get(ctx context.Context, documentID, requesterID string) (*domain.Document, error) {
	d, err := s.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if d.OwnerID != requesterID {
		return nil, fmt.Errorf("document not found: %w", domain.ErrNotFound)
	}
	return d, nil
}

func (s *service) DownloadURL(ctx context.Context, documentID, requesterID string) (string, error) {
	d, err := s.Get(ctx, documentID, requesterID)
	if err != nil {
		return "", err
	}
	u, err := s.store.DownloadURL(ctx, d.StorageKey, s.downloadTTL)
	if err != nil {
		return "", fmt.Errorf("download url: %v: %w", err, domain.ErrUnavailable)
	}
	return u, nil
}

// Delete removes the object and then its record. Deleting an unknown id
// succeeds so that repeated deletes are safe.
func (s *service) Delete(ctx context.Context, documentID, requesterID string) error {
	d, err := s.Get(ctx, documentID, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.store.Delete(ctx, d.StorageKey); err != nil {
		return fmt.Errorf("delete object: %v: %w", err, domain.ErrUnavailable)
	}
	if err := s.repo.Delete(ctx, documentID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *service) Verify(ctx context.Context, documentID, verifierID, verifierRole string, req domain.VerifyDocumentRequest) (*domain.Document, error) {
	if verifierRole != domain.RoleAdmin {
		return nil, fmt.Errorf("only administrators can verify documents: %w", domain.ErrForbidden)
	}
	if req.VerificationStatus != domain.DocumentApproved && req.VerificationStatus != domain.DocumentRejected {
		return nil, fmt.Errorf("verification_status must be approved or rejected: %w", domain.ErrBadRequest)
	}
	if _, err := s.repo.Get(ctx, documentID); err != nil {
		return nil, err
	}
	if err := s.repo.SetVerification(ctx, documentID, req.VerificationStatus, verifierID, req.VerificationNotes, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, documentID)
}

func (s *service) ListPending(ctx context.Context) ([]domain.Document, error) {
	return s.repo.ListPending(ctx)
}

func contentTypeFromExt(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// sanitizeFilename strips directory components and replaces anything other
// than letters, digits, dot, dash and underscore.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); strings.Trim(result, ".") != "" {
		return result
	}
	return "_"
}
