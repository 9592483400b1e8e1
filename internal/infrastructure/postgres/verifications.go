package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aada-api/internal/domain"
)

type VerificationRepo struct {
	db *pgxpool.Pool
}

func NewVerificationRepo(db *pgxpool.Pool) *VerificationRepo {
	return &VerificationRepo{db: db}
}

// Put replaces any outstanding code of the same type.
func (r *VerificationRepo) Put(ctx context.Context, v *domain.UserVerification) error {
	_, err := r.db.Exec(ctx, `INSERT INTO user_verifications (user_id, type, code, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, type) DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at`,
		v.UserID, v.Type, v.Code, v.ExpiresAt)
	return mapErr(err, "verification")
}

func (r *VerificationRepo) Get(ctx context.Context, userID, verType string) (*domain.UserVerification, error) {
	var v domain.UserVerification
	err := r.db.QueryRow(ctx, `SELECT user_id, type, code, expires_at FROM user_verifications
		WHERE user_id = $1 AND type = $2`, userID, verType).Scan(&v.UserID, &v.Type, &v.Code, &v.ExpiresAt)
	if err != nil {
		return nil, mapErr(err, "verification")
	}
	return &v, nil
}

func (r *VerificationRepo) Delete(ctx context.Context, userID, verType string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM user_verifications WHERE user_id = $1 AND type = $2`, userID, verType)
	return mapErr(err, "verification")
}
