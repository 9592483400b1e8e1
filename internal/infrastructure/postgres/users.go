package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aada-api/internal/domain"
)

const userColumns = `user_id, email, password_hash, role, student_id, first_name, last_name,
	phone, is_active, email_confirmed, created_at, updated_at`

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	u.Email = strings.ToLower(u.Email)
	_, err := r.db.Exec(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.UserID, u.Email, u.PasswordHash, u.Role, u.StudentID, u.FirstName, u.LastName,
		u.Phone, u.IsActive, u.EmailConfirmed, u.CreatedAt, u.UpdatedAt)
	return mapErr(err, "user")
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE user_id = $1`, userID, passwordHash)
	if err != nil {
		return mapErr(err, "user")
	}
	return requireRow(tag, "user")
}

func (r *UserRepo) MarkEmailConfirmed(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET email_confirmed = TRUE, updated_at = NOW() WHERE user_id = $1`, userID)
	if err != nil {
		return mapErr(err, "user")
	}
	return requireRow(tag, "user")
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.UserID, &u.Email, &u.PasswordHash, &u.Role, &u.StudentID, &u.FirstName, &u.LastName,
		&u.Phone, &u.IsActive, &u.EmailConfirmed, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr(err, "user")
	}
	return &u, nil
}
