package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aada-api/internal/domain"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionStore) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionStore) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	return m.Called(ctx, sessionID, newToken, newExpiry).Error(0)
}

func (m *mockSessionStore) Disable(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, studentID, role, sessionID string) (string, error) {
	args := m.Called(userID, studentID, role, sessionID)
	return args.String(0), args.Error(1)
}

// --- helpers ---

var now = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func newSvc(us *mockUserStore, ss *mockSessionStore, jwt *mockJWTSigner) Service {
	return NewService(ServiceDeps{
		UserRepo:        us,
		SessionRepo:     ss,
		JWTProvider:     jwt,
		RefreshTokenDur: 24 * time.Hour,
		Now:             func() time.Time { return now },
	})
}

func studentUser(t *testing.T) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)
	sid := "stu-1"
	return &domain.User{
		UserID:       "user-1",
		Email:        "ana@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleStudent,
		StudentID:    &sid,
		IsActive:     true,
	}
}

// --- Login ---

func TestLogin_HappyPath(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	us.On("GetByEmail", mock.Anything, "ana@example.com").Return(studentUser(t), nil)
	ss.On("Put", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)
	jwt.On("Sign", "user-1", "stu-1", domain.RoleStudent, mock.Anything).Return("bearer", nil)

	res, err := newSvc(us, ss, jwt).Login(context.Background(), LoginRequest{Email: "Ana@example.com", Password: "s3cretpass"})

	require.NoError(t, err)
	assert.Equal(t, "bearer", res.Bearer)
	assert.Len(t, res.RefreshToken, 64)
	assert.Equal(t, now.Add(24*time.Hour).Unix(), res.Session.RefreshExpiresAt)
	assert.Equal(t, "user-1", res.Session.User.UserID)
}

func TestLogin_WrongPassword(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	us.On("GetByEmail", mock.Anything, "ana@example.com").Return(studentUser(t), nil)

	_, err := newSvc(us, ss, jwt).Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "nope"})

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	ss.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestLogin_UnknownEmail(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	us.On("GetByEmail", mock.Anything, "who@example.com").Return(nil, domain.ErrNotFound)

	_, err := newSvc(us, ss, jwt).Login(context.Background(), LoginRequest{Email: "who@example.com", Password: "x"})

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_InactiveUser(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	u := studentUser(t)
	u.IsActive = false
	us.On("GetByEmail", mock.Anything, "ana@example.com").Return(u, nil)

	_, err := newSvc(us, ss, jwt).Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "s3cretpass"})

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// --- Refresh ---

func TestRefresh_RotatesToken(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	ss.On("GetByRefreshToken", mock.Anything, "old").Return(&domain.Session{SessionID: "s1", UserID: "user-1", Enable: true, RefreshExpiresAt: now.Add(time.Hour).Unix()}, nil)
	ss.On("RotateRefreshToken", mock.Anything, "s1", mock.AnythingOfType("string"), now.Add(24*time.Hour).Unix()).Return(nil)
	us.On("Get", mock.Anything, "user-1").Return(studentUser(t), nil)
	jwt.On("Sign", "user-1", "stu-1", domain.RoleStudent, "s1").Return("bearer2", nil)

	bearer, refresh, err := newSvc(us, ss, jwt).Refresh(context.Background(), "old")

	require.NoError(t, err)
	assert.Equal(t, "bearer2", bearer)
	assert.NotEqual(t, "old", refresh)
}

func TestRefresh_Expired(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	ss.On("GetByRefreshToken", mock.Anything, "old").Return(&domain.Session{SessionID: "s1", Enable: true, RefreshExpiresAt: now.Add(-time.Second).Unix()}, nil)

	_, _, err := newSvc(us, ss, jwt).Refresh(context.Background(), "old")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	ss.AssertNotCalled(t, "RotateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefresh_DisabledSession(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	ss.On("GetByRefreshToken", mock.Anything, "old").Return(&domain.Session{SessionID: "s1", Enable: false, RefreshExpiresAt: now.Add(time.Hour).Unix()}, nil)

	_, _, err := newSvc(us, ss, jwt).Refresh(context.Background(), "old")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// --- GetCurrent / Logout ---

func TestGetCurrent_Disabled(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	ss.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", Enable: false}, nil)

	_, err := newSvc(us, ss, jwt).GetCurrent(context.Background(), "s1")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGetCurrent_AttachesUser(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	ss.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", UserID: "user-1", Enable: true}, nil)
	us.On("Get", mock.Anything, "user-1").Return(studentUser(t), nil)

	sess, err := newSvc(us, ss, jwt).GetCurrent(context.Background(), "s1")

	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", sess.User.Email)
}

func TestLogout(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}
	ss.On("Disable", mock.Anything, "s1").Return(nil)

	require.NoError(t, newSvc(us, ss, jwt).Logout(context.Background(), "s1"))
	ss.AssertExpectations(t)
}
