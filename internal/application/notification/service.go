package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/aada-api/internal/domain"
	"github.com/aada-api/internal/pkg/id"
)

type Service interface {
	ListByStudent(ctx context.Context, actor domain.Actor, studentID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, actor domain.Actor, notificationID string) (*domain.Notification, error)
	// Send pushes a general message to the student's device and records it.
	Send(ctx context.Context, studentID, title, body string) (*domain.Notification, error)
}

type notificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByStudent(ctx context.Context, studentID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID string) error
}

type studentStore interface {
	Get(ctx context.Context, studentID string) (*domain.Student, error)
}

type service struct {
	repo     notificationStore
	students studentStore
	push     domain.PushSender
	timeout  time.Duration
	now      func() time.Time
}

type ServiceDeps struct {
	NotificationRepo notificationStore
	StudentRepo      studentStore
	Push             domain.PushSender
	// PushTimeout bounds each push. Defaults to domain.DefaultPushTimeout.
	PushTimeout time.Duration
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{repo: deps.NotificationRepo, students: deps.StudentRepo, push: deps.Push, timeout: deps.PushTimeout, now: deps.Now}
	if s.now == nil {
		s.now = time.Now
	}
	if s.timeout <= 0 {
		s.timeout = domain.DefaultPushTimeout
	}
	return s
}

func (s *service) ListByStudent(ctx context.Context, actor domain.Actor, studentID string) ([]domain.Notification, error) {
	if !actor.CanAccessStudent(studentID) {
		return nil, fmt.Errorf("student %s: %w", studentID, domain.ErrForbidden)
	}
	return s.repo.ListByStudent(ctx, studentID)
}

func (s *service) MarkRead(ctx context.Context, actor domain.Actor, notificationID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if actor.StudentID == "" || n.StudentID != actor.StudentID {
		return nil, fmt.Errorf("forbidden: %w", domain.ErrForbidden)
	}
	if n.Read {
		return n, nil
	}
	if err := s.repo.MarkRead(ctx, notificationID); err != nil {
		return nil, err
	}
	n.Read = true
	return n, nil
}

func (s *service) Send(ctx context.Context, studentID, title, body string) (*domain.Notification, error) {
	st, err := s.students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !st.HasDeviceToken() {
		return nil, fmt.Errorf("student %s has no device token: %w", studentID, domain.ErrBadRequest)
	}
	pushCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err = s.push.Send(pushCtx, *st.DeviceToken, title, body)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("push: %v: %w", err, domain.ErrUpstream)
	}
	n := &domain.Notification{
		NotificationID: id.New(),
		StudentID:      studentID,
		Kind:           domain.NotificationGeneral,
		Title:          title,
		Message:        body,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}
