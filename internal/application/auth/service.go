package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aada-api/internal/domain"
	pkgtoken "github.com/aada-api/internal/pkg/token"
)

const (
	emailTokenTTL    = 24 * time.Hour
	passwordResetTTL = 15 * time.Minute
	otpDigits        = 6
)

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirm struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type EmailConfirm struct {
	Token string `json:"token" validate:"required"`
}

type Service interface {
	RequestEmailVerification(ctx context.Context, userID string) error
	ConfirmEmail(ctx context.Context, userID, token string) error
	// RequestPasswordReset mails a one-time code. Unknown addresses succeed
	// silently so the endpoint does not reveal which emails are registered.
	RequestPasswordReset(ctx context.Context, req PasswordResetRequest) error
	ConfirmPasswordReset(ctx context.Context, req PasswordResetConfirm) error
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.UserVerification) error
	Get(ctx context.Context, userID, verType string) (*domain.UserVerification, error)
	Delete(ctx context.Context, userID, verType string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	MarkEmailConfirmed(ctx context.Context, userID string) error
}

type service struct {
	verificationRepo verificationStore
	userRepo         userStore
	mailer           domain.Mailer
	now              func() time.Time
}

type ServiceDeps struct {
	VerificationRepo verificationStore
	UserRepo         userStore
	Mailer           domain.Mailer
	Now              func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		verificationRepo: deps.VerificationRepo,
		userRepo:         deps.UserRepo,
		mailer:           deps.Mailer,
		now:              deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) RequestEmailVerification(ctx context.Context, userID string) error {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if u.EmailConfirmed {
		return fmt.Errorf("email already confirmed: %w", domain.ErrConflict)
	}
	token, err := generateToken(32)
	if err != nil {
		return err
	}
	v := &domain.UserVerification{
		UserID:    userID,
		Type:      domain.VerificationEmail,
		Code:      token,
		ExpiresAt: s.now().Add(emailTokenTTL).Unix(),
	}
	if err := s.verificationRepo.Put(ctx, v); err != nil {
		return err
	}
	return s.mailer.Send(u.Email, "Confirm your email", "Your confirmation token: "+token)
}

func (s *service) ConfirmEmail(ctx context.Context, userID, token string) error {
	if err := s.consume(ctx, userID, domain.VerificationEmail, token); err != nil {
		return err
	}
	return s.userRepo.MarkEmailConfirmed(ctx, userID)
}

func (s *service) RequestPasswordReset(ctx context.Context, req PasswordResetRequest) error {
	u, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, domain.ErrNotFound) {
		slog.Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	otp, err := pkgtoken.NewOTP(otpDigits)
	if err != nil {
		return err
	}
	v := &domain.UserVerification{
		UserID:    u.UserID,
		Type:      domain.VerificationPasswordReset,
		Code:      otp,
		ExpiresAt: s.now().Add(passwordResetTTL).Unix(),
	}
	if err := s.verificationRepo.Put(ctx, v); err != nil {
		return err
	}
	return s.mailer.Send(u.Email, "Password reset code", "Your password reset code: "+otp+"\nIt expires in 15 minutes.")
}

func (s *service) ConfirmPasswordReset(ctx context.Context, req PasswordResetConfirm) error {
	u, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return fmt.Errorf("invalid code: %w", domain.ErrUnauthorized)
	}
	if err := s.consume(ctx, u.UserID, domain.VerificationPasswordReset, req.OTP); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, u.UserID, string(hash))
}

// consume checks a stored code and deletes it on success.
func (s *service) consume(ctx context.Context, userID, verType, code string) error {
	v, err := s.verificationRepo.Get(ctx, userID, verType)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("code not found: %w", domain.ErrUnauthorized)
		}
		return err
	}
	if v.Code != code {
		return fmt.Errorf("invalid code: %w", domain.ErrUnauthorized)
	}
	if v.ExpiresAt < s.now().Unix() {
		return fmt.Errorf("code expired: %w", domain.ErrUnauthorized)
	}
	if err := s.verificationRepo.Delete(ctx, userID, verType); err != nil {
		slog.Warn("failed to delete verification record", "user_id", userID, "type", verType, "err", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateToken(n int) (string, error) {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		b[i] = letters[idx.Int64()]
	}
	return string(b), nil
}
