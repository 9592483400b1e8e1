package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aada-api/internal/domain"
)

const studentColumns = `student_id, name, email, device_token, billing_customer_id, enrollment_status, created_at, updated_at`

type StudentRepo struct {
	db *pgxpool.Pool
}

func NewStudentRepo(db *pgxpool.Pool) *StudentRepo {
	return &StudentRepo{db: db}
}

func (r *StudentRepo) Create(ctx context.Context, s *domain.Student) error {
	s.Email = strings.ToLower(s.Email)
	_, err := r.db.Exec(ctx, `INSERT INTO students (`+studentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.StudentID, s.Name, s.Email, s.DeviceToken, s.BillingCustomerID, s.EnrollmentStatus, s.CreatedAt, s.UpdatedAt)
	return mapErr(err, "student")
}

func (r *StudentRepo) Get(ctx context.Context, studentID string) (*domain.Student, error) {
	return scanStudent(r.db.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE student_id = $1`, studentID))
}

func (r *StudentRepo) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	return scanStudent(r.db.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE email = $1`, strings.ToLower(email)))
}

func (r *StudentRepo) List(ctx context.Context) ([]domain.Student, error) {
	rows, err := r.db.Query(ctx, `SELECT `+studentColumns+` FROM students ORDER BY name`)
	if err != nil {
		return nil, mapErr(err, "students")
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *s)
	}
	return students, mapErr(rows.Err(), "students")
}

func (r *StudentRepo) SetDeviceToken(ctx context.Context, studentID, token string) error {
	tag, err := r.db.Exec(ctx, `UPDATE students SET device_token = $2, updated_at = NOW() WHERE student_id = $1`, studentID, token)
	if err != nil {
		return mapErr(err, "student")
	}
	return requireRow(tag, "student")
}

func (r *StudentRepo) SetBillingCustomerID(ctx context.Context, studentID, customerID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE students SET billing_customer_id = $2, updated_at = NOW() WHERE student_id = $1`, studentID, customerID)
	if err != nil {
		return mapErr(err, "student")
	}
	return requireRow(tag, "student")
}

func scanStudent(row pgx.Row) (*domain.Student, error) {
	var s domain.Student
	err := row.Scan(&s.StudentID, &s.Name, &s.Email, &s.DeviceToken, &s.BillingCustomerID, &s.EnrollmentStatus, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, mapErr(err, "student")
	}
	return &s, nil
}
