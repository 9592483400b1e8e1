package student

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aada-api/internal/domain"
	"github.com/aada-api/internal/pkg/mask"
)

type Service interface {
	Get(ctx context.Context, actor domain.Actor, studentID string) (*domain.Student, error)
	List(ctx context.Context, actor domain.Actor) ([]domain.Student, error)
	SetDeviceToken(ctx context.Context, actor domain.Actor, studentID, token string) error
}

type studentStore interface {
	Get(ctx context.Context, studentID string) (*domain.Student, error)
	List(ctx context.Context) ([]domain.Student, error)
	SetDeviceToken(ctx context.Context, studentID, token string) error
}

type service struct {
	repo studentStore
}

func NewService(repo studentStore) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, actor domain.Actor, studentID string) (*domain.Student, error) {
	if !actor.CanAccessStudent(studentID) {
		return nil, fmt.Errorf("student %s: %w", studentID, domain.ErrForbidden)
	}
	return s.repo.Get(ctx, studentID)
}

func (s *service) List(ctx context.Context, actor domain.Actor) ([]domain.Student, error) {
	if !domain.IsStaff(actor.Role) {
		return nil, fmt.Errorf("list students: %w", domain.ErrForbidden)
	}
	return s.repo.List(ctx)
}

// SetDeviceToken replaces the student's push token. The latest registration wins.
func (s *service) SetDeviceToken(ctx context.Context, actor domain.Actor, studentID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("fcm_token is required: %w", domain.ErrBadRequest)
	}
	if !actor.CanAccessStudent(studentID) {
		return fmt.Errorf("student %s: %w", studentID, domain.ErrForbidden)
	}
	if err := s.repo.SetDeviceToken(ctx, studentID, token); err != nil {
		return err
	}
	slog.Info("device token registered", "student_id", studentID, "token", mask.Token(token))
	return nil
}
