package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aada-api/internal/domain"
)

const sessionColumns = `session_id, user_id, enable, refresh_token, refresh_expires_at, created_at, updated_at`

type SessionRepo struct {
	db *pgxpool.Pool
}

func NewSessionRepo(db *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Put(ctx context.Context, s *domain.Session) error {
	_, err := r.db.Exec(ctx, `INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO UPDATE SET
			enable = EXCLUDED.enable,
			refresh_token = EXCLUDED.refresh_token,
			refresh_expires_at = EXCLUDED.refresh_expires_at,
			updated_at = EXCLUDED.updated_at`,
		s.SessionID, s.UserID, s.Enable, s.RefreshToken, s.RefreshExpiresAt, s.CreatedAt, s.UpdatedAt)
	return mapErr(err, "session")
}

func (r *SessionRepo) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	return scanSession(r.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE session_id = $1`, sessionID))
}

func (r *SessionRepo) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	s, err := scanSession(r.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE refresh_token = $1`, token))
	if err != nil {
		return nil, err
	}
	if !s.Enable {
		return nil, fmt.Errorf("session disabled: %w", domain.ErrUnauthorized)
	}
	return s, nil
}

func (r *SessionRepo) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE sessions SET refresh_token = $2, refresh_expires_at = $3, updated_at = NOW()
		WHERE session_id = $1`, sessionID, newToken, newExpiry)
	if err != nil {
		return mapErr(err, "session")
	}
	return requireRow(tag, "session")
}

func (r *SessionRepo) Disable(ctx context.Context, sessionID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE sessions SET enable = FALSE, updated_at = NOW() WHERE session_id = $1`, sessionID)
	if err != nil {
		return mapErr(err, "session")
	}
	return requireRow(tag, "session")
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	if err := row.Scan(&s.SessionID, &s.UserID, &s.Enable, &s.RefreshToken, &s.RefreshExpiresAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, mapErr(err, "session")
	}
	return &s, nil
}
