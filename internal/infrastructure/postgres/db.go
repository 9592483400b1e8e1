package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aada-api/internal/domain"
)

// Open creates a connection pool and verifies the database is reachable.
func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// NewRepositories wires every Postgres-backed store onto one pool.
func NewRepositories(pool *pgxpool.Pool) domain.Repositories {
	return domain.Repositories{
		Users:         NewUserRepo(pool),
		Sessions:      NewSessionRepo(pool),
		Verifications: NewVerificationRepo(pool),
		Students:      NewStudentRepo(pool),
		PaymentPlans:  NewPaymentPlanRepo(pool),
		Invoices:      NewInvoiceRepo(pool),
		Externships:   NewExternshipRepo(pool),
		Documents:     NewDocumentRepo(pool),
		Notifications: NewNotificationRepo(pool),
	}
}

const uniqueViolation = "23505"

// mapErr translates driver errors into domain sentinels.
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s not found: %w", what, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s already exists: %w", what, domain.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// requireRow reports ErrNotFound when an UPDATE or DELETE touched nothing.
func requireRow(tag pgconn.CommandTag, what string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s not found: %w", what, domain.ErrNotFound)
	}
	return nil
}
