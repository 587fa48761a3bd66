package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/remotedeskpro/backend/internal/models"
)

type AdminRepoMock struct {
	mock.Mock
}

func (m *AdminRepoMock) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *AdminRepoMock) CountActiveSubscriptions(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *AdminRepoMock) CountOnlineDevices(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *AdminRepoMock) CountActiveSessions(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *AdminRepoMock) ListUsers(ctx context.Context, limit int) ([]*models.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *AdminRepoMock) ListAllSessions(ctx context.Context, limit int) ([]*models.Session, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Session), args.Error(1)
}

func TestStats_Success(t *testing.T) {
	repo := new(AdminRepoMock)
	service := NewAdminService(repo)

	repo.On("CountUsers", mock.Anything).Return(12, nil)
	repo.On("CountActiveSubscriptions", mock.Anything).Return(3, nil)
	repo.On("CountOnlineDevices", mock.Anything).Return(7, nil)
	repo.On("CountActiveSessions", mock.Anything).Return(2, nil)

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Stats{
		TotalUsers:          12,
		ActiveSubscriptions: 3,
		OnlineDevices:       7,
		ActiveSessions:      2,
	}, stats)
	repo.AssertExpectations(t)
}

func TestStats_RepoError(t *testing.T) {
	repo := new(AdminRepoMock)
	service := NewAdminService(repo)

	repo.On("CountUsers", mock.Anything).Return(0, errors.New("db down"))

	_, err := service.Stats(context.Background())
	assert.Error(t, err)
	repo.AssertNotCalled(t, "CountActiveSubscriptions", mock.Anything)
}

func TestListUsers_RedactsSensitiveFields(t *testing.T) {
	repo := new(AdminRepoMock)
	service := NewAdminService(repo)

	repo.On("ListUsers", mock.Anything, 1000).Return([]*models.User{
		{ID: "user-1", Email: "a@b.com", PasswordHash: "secret-hash", Role: models.RoleUser},
	}, nil)

	views, err := service.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "user-1", views[0].ID)
	assert.Equal(t, "a@b.com", views[0].Email)
	repo.AssertExpectations(t)
}

func TestListSessions_PassesLimit(t *testing.T) {
	repo := new(AdminRepoMock)
	service := NewAdminService(repo)

	expected := []*models.Session{{SessionID: "sess_deadbeef"}}
	repo.On("ListAllSessions", mock.Anything, 200).Return(expected, nil)

	got, err := service.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, got)
}
