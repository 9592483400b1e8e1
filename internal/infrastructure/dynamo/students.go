package dynamo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/aada-api/internal/domain"
)

// StudentRepo provides typed DynamoDB operations for the students table.
type StudentRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewStudentRepo(client *dynamodb.Client, tableName string) *StudentRepo {
	return &StudentRepo{client: client, tableName: tableName}
}

func (r *StudentRepo) Create(ctx context.Context, s *domain.Student) error {
	s.Email = strings.ToLower(s.Email)
	if _, err := r.GetByEmail(ctx, s.Email); err == nil {
		return fmt.Errorf("student email already exists: %w", domain.ErrConflict)
	}
	return putNew(ctx, r.client, r.tableName, "student_id", s)
}

func (r *StudentRepo) Get(ctx context.Context, studentID string) (*domain.Student, error) {
	var s domain.Student
	if err := getItem(ctx, r.client, r.tableName, strKey("student_id", studentID), "student", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StudentRepo) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	var students []domain.Student
	if err := queryIndex(ctx, r.client, r.tableName, "email-index", "email", strings.ToLower(email), &students); err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, fmt.Errorf("student not found: %w", domain.ErrNotFound)
	}
	return &students[0], nil
}

func (r *StudentRepo) List(ctx context.Context) ([]domain.Student, error) {
	var students []domain.Student
	if err := scanAll(ctx, r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)}, &students); err != nil {
		return nil, err
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (r *StudentRepo) SetDeviceToken(ctx context.Context, studentID, token string) error {
	return updateExisting(ctx, r.client, r.tableName, strKey("student_id", studentID), "student_id",
		map[string]interface{}{fieldDeviceToken: token})
}

func (r *StudentRepo) SetBillingCustomerID(ctx context.Context, studentID, customerID string) error {
	return updateExisting(ctx, r.client, r.tableName, strKey("student_id", studentID), "student_id",
		map[string]interface{}{fieldBillingCustomerID: customerID})
}
