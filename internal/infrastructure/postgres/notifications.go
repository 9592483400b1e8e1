package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aada-api/internal/domain"
)

const notificationColumns = `notification_id, student_id, invoice_id, kind, title, message, read, created_at`

type NotificationRepo struct {
	db *pgxpool.Pool
}

func NewNotificationRepo(db *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.Exec(ctx, `INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.NotificationID, n.StudentID, n.InvoiceID, n.Kind, n.Title, n.Message, n.Read, n.CreatedAt)
	return mapErr(err, "notification")
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	return scanNotification(r.db.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE notification_id = $1`, notificationID))
}

func (r *NotificationRepo) ListByStudent(ctx context.Context, studentID string) ([]domain.Notification, error) {
	rows, err := r.db.Query(ctx, `SELECT `+notificationColumns+` FROM notifications
		WHERE student_id = $1 ORDER BY created_at DESC LIMIT 100`, studentID)
	if err != nil {
		return nil, mapErr(err, "notifications")
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, mapErr(rows.Err(), "notifications")
}

func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE notification_id = $1`, notificationID)
	if err != nil {
		return mapErr(err, "notification")
	}
	return requireRow(tag, "notification")
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	if err := row.Scan(&n.NotificationID, &n.StudentID, &n.InvoiceID, &n.Kind, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
		return nil, mapErr(err, "notification")
	}
	return &n, nil
}
