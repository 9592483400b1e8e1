package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aada-api/internal/domain"
)

type ExternshipRepo struct {
	db *pgxpool.Pool
}

func NewExternshipRepo(db *pgxpool.Pool) *ExternshipRepo {
	return &ExternshipRepo{db: db}
}

func (r *ExternshipRepo) Get(ctx context.Context, studentID string) (*domain.ExternshipStatus, error) {
	var e domain.ExternshipStatus
	err := r.db.QueryRow(ctx, `SELECT student_id, status, updated_at FROM externship_status WHERE student_id = $1`, studentID).
		Scan(&e.StudentID, &e.Status, &e.UpdatedAt)
	if err != nil {
		return nil, mapErr(err, "externship status")
	}
	return &e, nil
}

func (r *ExternshipRepo) Put(ctx context.Context, e *domain.ExternshipStatus) error {
	_, err := r.db.Exec(ctx, `INSERT INTO externship_status (student_id, status, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`,
		e.StudentID, e.Status, e.UpdatedAt)
	return mapErr(err, "externship status")
}
