package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aada-api/internal/domain"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockStudentStore struct{ mock.Mock }

func (m *mockStudentStore) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	args := m.Called(ctx, email)
	if s, _ := args.Get(0).(*domain.Student); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func newSvc(us *mockUserStore, ss *mockStudentStore) Service {
	return NewService(ServiceDeps{UserRepo: us, StudentRepo: ss})
}

func validReq() domain.CreateUserRequest {
	return domain.CreateUserRequest{
		Email:     "Ana@Example.com ",
		Password:  "s3cretpass",
		FirstName: "Ana",
		LastName:  "Lima",
	}
}

// --- Register ---

func TestRegister_EmailConflict(t *testing.T) {
	us, ss := &mockUserStore{}, &mockStudentStore{}
	us.On("GetByEmail", mock.Anything, "ana@example.com").Return(&domain.User{UserID: "u0"}, nil)

	_, err := newSvc(us, ss).Register(context.Background(), validReq())

	assert.ErrorIs(t, err, domain.ErrConflict)
	us.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_LinksStudentByEmail(t *testing.T) {
	us, ss := &mockUserStore{}, &mockStudentStore{}
	us.On("GetByEmail", mock.Anything, "ana@example.com").Return(nil, domain.ErrNotFound)
	ss.On("GetByEmail", mock.Anything, "ana@example.com").Return(&domain.Student{StudentID: "stu-1"}, nil)
	us.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	u, err := newSvc(us, ss).Register(context.Background(), validReq())

	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, u.Role)
	require.NotNil(t, u.StudentID)
	assert.Equal(t, "stu-1", *u.StudentID)
	assert.True(t, u.IsActive)
	assert.False(t, u.EmailConfirmed)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cretpass")))
}

func TestRegister_WithoutStudentRecord(t *testing.T) {
	us, ss := &mockUserStore{}, &mockStudentStore{}
	us.On("GetByEmail", mock.Anything, "ana@example.com").Return(nil, domain.ErrNotFound)
	ss.On("GetByEmail", mock.Anything, "ana@example.com").Return(nil, domain.ErrNotFound)
	us.On("Create", mock.Anything, mock.Anything).Return(nil)

	u, err := newSvc(us, ss).Register(context.Background(), validReq())

	require.NoError(t, err)
	assert.Nil(t, u.StudentID)
}

func TestRegister_StoreConflictPropagates(t *testing.T) {
	us, ss := &mockUserStore{}, &mockStudentStore{}
	us.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	ss.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	us.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	_, err := newSvc(us, ss).Register(context.Background(), validReq())

	assert.ErrorIs(t, err, domain.ErrConflict)
}

// --- CreateStaff ---

func TestCreateStaff_RejectsStudentRole(t *testing.T) {
	us, ss := &mockUserStore{}, &mockStudentStore{}

	_, err := newSvc(us, ss).CreateStaff(context.Background(), validReq(), domain.RoleStudent)

	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestCreateStaff_Admin(t *testing.T) {
	us, ss := &mockUserStore{}, &mockStudentStore{}
	us.On("GetByEmail", mock.Anything, "ana@example.com").Return(nil, domain.ErrNotFound)
	us.On("Create", mock.Anything, mock.Anything).Return(nil)

	u, err := newSvc(us, ss).CreateStaff(context.Background(), validReq(), domain.RoleAdmin)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.True(t, u.EmailConfirmed)
	ss.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}
