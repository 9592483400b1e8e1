package externship

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aada-api/internal/domain"
)

type mockStudentStore struct{ mock.Mock }

func (m *mockStudentStore) Get(ctx context.Context, studentID string) (*domain.Student, error) {
	args := m.Called(ctx, studentID)
	if s, _ := args.Get(0).(*domain.Student); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockExternshipStore struct{ mock.Mock }

func (m *mockExternshipStore) Get(ctx context.Context, studentID string) (*domain.ExternshipStatus, error) {
	args := m.Called(ctx, studentID)
	if e, _ := args.Get(0).(*domain.ExternshipStatus); e != nil {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockExternshipStore) Put(ctx context.Context, e *domain.ExternshipStatus) error {
	return m.Called(ctx, e).Error(0)
}

var (
	self  = domain.Actor{UserID: "u1", StudentID: "s1", Role: domain.RoleStudent}
	admin = domain.Actor{UserID: "a1", Role: domain.RoleAdmin}
	now   = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
)

func newTestService() (Service, *mockStudentStore, *mockExternshipStore) {
	students, ext := new(mockStudentStore), new(mockExternshipStore)
	return NewService(ServiceDeps{StudentRepo: students, ExternshipRepo: ext, Now: func() time.Time { return now }}), students, ext
}

func TestGet_DefaultsToNotStarted(t *testing.T) {
	svc, students, ext := newTestService()
	students.On("Get", mock.Anything, "s1").Return(&domain.Student{StudentID: "s1"}, nil)
	ext.On("Get", mock.Anything, "s1").Return(nil, domain.ErrNotFound)

	e, err := svc.Get(context.Background(), self, "s1")

	require.NoError(t, err)
	assert.Equal(t, domain.ExternshipNotStarted, e.Status)
}

func TestGet_Recorded(t *testing.T) {
	svc, students, ext := newTestService()
	students.On("Get", mock.Anything, "s1").Return(&domain.Student{StudentID: "s1"}, nil)
	ext.On("Get", mock.Anything, "s1").Return(&domain.ExternshipStatus{StudentID: "s1", Status: "Placed"}, nil)

	e, err := svc.Get(context.Background(), self, "s1")

	require.NoError(t, err)
	assert.Equal(t, "Placed", e.Status)
}

func TestGet_UnknownStudent(t *testing.T) {
	svc, students, _ := newTestService()
	students.On("Get", mock.Anything, "s9").Return(nil, domain.ErrNotFound)

	_, err := svc.Get(context.Background(), admin, "s9")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSet_AdminOnly(t *testing.T) {
	svc, _, ext := newTestService()

	_, err := svc.Set(context.Background(), self, "s1", domain.ExternshipStatusInput{Status: "Placed"})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	ext.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSet(t *testing.T) {
	svc, students, ext := newTestService()
	students.On("Get", mock.Anything, "s1").Return(&domain.Student{StudentID: "s1"}, nil)
	ext.On("Put", mock.Anything, &domain.ExternshipStatus{StudentID: "s1", Status: "In Progress", UpdatedAt: now}).Return(nil)

	e, err := svc.Set(context.Background(), admin, "s1", domain.ExternshipStatusInput{Status: " In Progress "})

	require.NoError(t, err)
	assert.Equal(t, "In Progress", e.Status)
	ext.AssertExpectations(t)
}
