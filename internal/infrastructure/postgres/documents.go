package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aada-api/internal/domain"
)

const documentColumns = `document_id, owner_id, document_type, file_name, storage_key, file_url, file_size,
	content_type, verification_status, verified_by, verification_notes, uploaded_at, verified_at`

type DocumentRepo struct {
	db *pgxpool.Pool
}

func NewDocumentRepo(db *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx, `INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		d.DocumentID, d.OwnerID, d.DocumentType, d.FileName, d.StorageKey, d.FileURL, d.FileSize,
		d.ContentType, d.VerificationStatus, d.VerifiedBy, d.VerificationNotes, d.UploadedAt, d.VerifiedAt)
	return mapErr(err, "document")
}

func (r *DocumentRepo) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return scanDocument(r.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE document_id = $1`, documentID))
}

func (r *DocumentRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error) {
	return r.list(ctx, `SELECT `+documentColumns+` FROM documents WHERE owner_id = $1 ORDER BY uploaded_at DESC`, ownerID)
}

func (r *DocumentRepo) ListPending(ctx context.Context) ([]domain.Document, error) {
	return r.list(ctx, `SELECT `+documentColumns+` FROM documents WHERE verification_status = 'pending' ORDER BY uploaded_at`)
}

func (r *DocumentRepo) Delete(ctx context.Context, documentID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM documents WHERE document_id = $1`, documentID)
	return mapErr(err, "document")
}

func (r *DocumentRepo) SetVerification(ctx context.Context, documentID, status, verifiedBy string, notes *string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE documents
		SET verification_status = $2, verified_by = $3, verification_notes = $4, verified_at = $5
		WHERE document_id = $1`, documentID, status, verifiedBy, notes, at)
	if err != nil {
		return mapErr(err, "document")
	}
	return requireRow(tag, "document")
}

func (r *DocumentRepo) list(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "documents")
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, mapErr(rows.Err(), "documents")
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var d domain.Document
	err := row.Scan(&d.DocumentID, &d.OwnerID, &d.DocumentType, &d.FileName, &d.StorageKey, &d.FileURL, &d.FileSize,
		&d.ContentType, &d.VerificationStatus, &d.VerifiedBy, &d.VerificationNotes, &d.UploadedAt, &d.VerifiedAt)
	if err != nil {
		return nil, mapErr(err, "document")
	}
	return &d, nil
}
