package dynamo

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/aada-api/internal/domain"
)

// DocumentRepo provides typed DynamoDB operations for the documents table.
type DocumentRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewDocumentRepo(client *dynamodb.Client, tableName string) *DocumentRepo {
	return &DocumentRepo{client: client, tableName: tableName}
}

func (r *DocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	return putNew(ctx, r.client, r.tableName, "document_id", d)
}

func (r *DocumentRepo) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	var d domain.Document
	if err := getItem(ctx, r.client, r.tableName, strKey("document_id", documentID), "document", &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error) {
	var docs []domain.Document
	if err := queryIndex(ctx, r.client, r.tableName, "owner_id-index", "owner_id", ownerID, &docs); err != nil {
		return nil, err
	}
	sortNewestFirst(docs)
	return docs, nil
}

func (r *DocumentRepo) ListPending(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	if err := queryIndex(ctx, r.client, r.tableName, "verification_status-index", fieldVerificationStatus, domain.DocumentPending, &docs); err != nil {
		return nil, err
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].UploadedAt.Before(docs[j].UploadedAt) })
	return docs, nil
}

// Delete removes the metadata row. Deleting a missing row is not an error.
func (r *DocumentRepo) Delete(ctx context.Context, documentID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("document_id", documentID),
	})
	return err
}

func (r *DocumentRepo) SetVerification(ctx context.Context, documentID, status, verifiedBy string, notes *string, at time.Time) error {
	return updateExisting(ctx, r.client, r.tableName, strKey("document_id", documentID), "document_id",
		map[string]interface{}{
			fieldVerificationStatus: status,
			fieldVerifiedBy:         verifiedBy,
			fieldVerificationNotes:  notes,
			fieldVerifiedAt:         at.UTC(),
		})
}

func sortNewestFirst(docs []domain.Document) {
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].UploadedAt.After(docs[j].UploadedAt) })
}
