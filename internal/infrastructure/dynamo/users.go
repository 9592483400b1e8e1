package dynamo

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/aada-api/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	u.Email = strings.ToLower(u.Email)
	if _, err := r.GetByEmail(ctx, u.Email); err == nil {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	return putNew(ctx, r.client, r.tableName, "user_id", u)
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	var u domain.User
	if err := getItem(ctx, r.client, r.tableName, strKey("user_id", userID), "user", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var users []domain.User
	if err := queryIndex(ctx, r.client, r.tableName, "email-index", "email", strings.ToLower(email), &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return &users[0], nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return updateExisting(ctx, r.client, r.tableName, strKey("user_id", userID), "user_id",
		map[string]interface{}{fieldPasswordHash: passwordHash})
}

func (r *UserRepo) MarkEmailConfirmed(ctx context.Context, userID string) error {
	return updateExisting(ctx, r.client, r.tableName, strKey("user_id", userID), "user_id",
		map[string]interface{}{fieldEmailConfirmed: true})
}
