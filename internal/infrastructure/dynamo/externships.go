package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/aada-api/internal/domain"
)

// ExternshipRepo stores one status row per student. PK: student_id.
type ExternshipRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewExternshipRepo(client *dynamodb.Client, tableName string) *ExternshipRepo {
	return &ExternshipRepo{client: client, tableName: tableName}
}

func (r *ExternshipRepo) Get(ctx context.Context, studentID string) (*domain.ExternshipStatus, error) {
	var e domain.ExternshipStatus
	if err := getItem(ctx, r.client, r.tableName, strKey("student_id", studentID), "externship status", &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ExternshipRepo) Put(ctx context.Context, e *domain.ExternshipStatus) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal externship status: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}
