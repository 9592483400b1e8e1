package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aada-api/internal/domain"
)

const planColumns = `plan_id, student_id, amount_cents, due_date, created_at`

type PaymentPlanRepo struct {
	db *pgxpool.Pool
}

func NewPaymentPlanRepo(db *pgxpool.Pool) *PaymentPlanRepo {
	return &PaymentPlanRepo{db: db}
}

func (r *PaymentPlanRepo) Create(ctx context.Context, p *domain.PaymentPlan) error {
	_, err := r.db.Exec(ctx, `INSERT INTO payment_plans (`+planColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		p.PlanID, p.StudentID, p.AmountCents, p.DueDate, p.CreatedAt)
	return mapErr(err, "payment plan")
}

func (r *PaymentPlanRepo) Get(ctx context.Context, planID string) (*domain.PaymentPlan, error) {
	return scanPlan(r.db.QueryRow(ctx, `SELECT `+planColumns+` FROM payment_plans WHERE plan_id = $1`, planID))
}

func (r *PaymentPlanRepo) ListByStudent(ctx context.Context, studentID string) ([]domain.PaymentPlan, error) {
	return r.list(ctx, `SELECT `+planColumns+` FROM payment_plans WHERE student_id = $1 ORDER BY due_date`, studentID)
}

func (r *PaymentPlanRepo) List(ctx context.Context) ([]domain.PaymentPlan, error) {
	return r.list(ctx, `SELECT `+planColumns+` FROM payment_plans ORDER BY due_date`)
}

func (r *PaymentPlanRepo) list(ctx context.Context, query string, args ...any) ([]domain.PaymentPlan, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "payment plans")
	}
	defer rows.Close()

	var plans []domain.PaymentPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, mapErr(rows.Err(), "payment plans")
}

func scanPlan(row pgx.Row) (*domain.PaymentPlan, error) {
	var p domain.PaymentPlan
	if err := row.Scan(&p.PlanID, &p.StudentID, &p.AmountCents, &p.DueDate, &p.CreatedAt); err != nil {
		return nil, mapErr(err, "payment plan")
	}
	return &p, nil
}
