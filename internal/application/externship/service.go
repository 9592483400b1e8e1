package externship

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aada-api/internal/domain"
)

type Service interface {
	// Get returns the student's status, or "Not Started" when none is recorded.
	Get(ctx context.Context, actor domain.Actor, studentID string) (*domain.ExternshipStatus, error)
	Set(ctx context.Context, actor domain.Actor, studentID string, in domain.ExternshipStatusInput) (*domain.ExternshipStatus, error)
}

type studentStore interface {
	Get(ctx context.Context, studentID string) (*domain.Student, error)
}

type externshipStore interface {
	Get(ctx context.Context, studentID string) (*domain.ExternshipStatus, error)
	Put(ctx context.Context, e *domain.ExternshipStatus) error
}

type service struct {
	students    studentStore
	externships externshipStore
	now         func() time.Time
}

type ServiceDeps struct {
	StudentRepo    studentStore
	ExternshipRepo externshipStore
	Now            func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{students: deps.StudentRepo, externships: deps.ExternshipRepo, now: deps.Now}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Get(ctx context.Context, actor domain.Actor, studentID string) (*domain.ExternshipStatus, error) {
	if studentID == "" {
		return nil, fmt.Errorf("student_id is required: %w", domain.ErrBadRequest)
	}
	if !actor.CanAccessStudent(studentID) {
		return nil, fmt.Errorf("student %s: %w", studentID, domain.ErrForbidden)
	}
	if _, err := s.students.Get(ctx, studentID); err != nil {
		return nil, err
	}
	e, err := s.externships.Get(ctx, studentID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.ExternshipStatus{StudentID: studentID, Status: domain.ExternshipNotStarted}, nil
	}
	return e, err
}

func (s *service) Set(ctx context.Context, actor domain.Actor, studentID string, in domain.ExternshipStatusInput) (*domain.ExternshipStatus, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("update externship: %w", domain.ErrForbidden)
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		return nil, fmt.Errorf("status is required: %w", domain.ErrBadRequest)
	}
	if _, err := s.students.Get(ctx, studentID); err != nil {
		return nil, err
	}
	e := &domain.ExternshipStatus{StudentID: studentID, Status: status, UpdatedAt: s.now().UTC()}
	if err := s.externships.Put(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}
