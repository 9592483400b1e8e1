package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aada-api/internal/domain"
	"github.com/aada-api/internal/pkg/id"
)

type Service interface {
	// Register creates a student account and links it to the student record
	// with the same email, if one exists.
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	// CreateStaff creates an instructor or admin account.
	CreateStaff(ctx context.Context, req domain.CreateUserRequest, role string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type studentStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Student, error)
}

type service struct {
	repo        userStore
	studentRepo studentStore
	now         func() time.Time
}

type ServiceDeps struct {
	UserRepo    userStore
	StudentRepo studentStore
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{repo: deps.UserRepo, studentRepo: deps.StudentRepo, now: deps.Now}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	u, err := s.build(ctx, req, domain.RoleStudent)
	if err != nil {
		return nil, err
	}
	st, err := s.studentRepo.GetByEmail(ctx, u.Email)
	switch {
	case err == nil:
		u.StudentID = &st.StudentID
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) CreateStaff(ctx context.Context, req domain.CreateUserRequest, role string) (*domain.User, error) {
	if !domain.IsStaff(role) {
		return nil, fmt.Errorf("role must be admin or instructor: %w", domain.ErrBadRequest)
	}
	u, err := s.build(ctx, req, role)
	if err != nil {
		return nil, err
	}
	u.EmailConfirmed = true
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) build(ctx context.Context, req domain.CreateUserRequest, role string) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	return &domain.User{
		UserID:       id.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}
