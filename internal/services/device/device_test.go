package device

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/remotedeskpro/backend/internal/lib/devicekey"
	"github.com/remotedeskpro/backend/internal/models"
	"github.com/remotedeskpro/backend/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateDevice(ctx context.Context, device models.Device) error {
	return m.Called(ctx, device).Error(0)
}

func (m *RepoMock) GetDeviceByMACHash(ctx context.Context, macHash string) (*models.Device, error) {
	args := m.Called(ctx, macHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Device), args.Error(1)
}

func (m *RepoMock) GetDeviceByCredentials(ctx context.Context, deviceID, deviceSecret string) (*models.Device, error) {
	args := m.Called(ctx, deviceID, deviceSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Device), args.Error(1)
}

func (m *RepoMock) CountDevicesByUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListDevicesByUser(ctx context.Context, userID string, limit int) ([]*models.Device, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Device), args.Error(1)
}

func (m *RepoMock) DeleteDevice(ctx context.Context, deviceID, userID string) (int, error) {
	args := m.Called(ctx, deviceID, userID)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) MarkDeviceOnline(ctx context.Context, deviceID string, seenAt time.Time) error {
	return m.Called(ctx, deviceID, seenAt).Error(0)
}

type SubsMock struct{ mock.Mock }

func (m *SubsMock) ActiveForUser(ctx context.Context, userID string) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestDeviceService_Register_Quota(t *testing.T) {
	user := &models.User{ID: "u1", Email: "user@example.com"}
	input := RegisterInput{MACAddress: "AA:BB:CC:DD:EE:FF", CPUID: "cpu", Hostname: "host"}

	tests := []struct {
		name        string
		active      *models.Subscription
		deviceCount int
		wantErr     error
	}{
		{
			name:        "first device without subscription",
			active:      nil,
			deviceCount: 0,
		},
		{
			name:        "second device without subscription hits quota",
			active:      nil,
			deviceCount: 1,
			wantErr:     ErrDeviceLimit,
		},
		{
			name:        "tenth device with active subscription",
			active:      &models.Subscription{ID: "s1", Status: models.SubscriptionActive},
			deviceCount: 9,
		},
		{
			name:        "eleventh device with active subscription hits quota",
			active:      &models.Subscription{ID: "s1", Status: models.SubscriptionActive},
			deviceCount: 10,
			wantErr:     ErrDeviceLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			subs := new(SubsMock)
			service := NewDeviceService(repo, subs, newNoopLogger())

			subs.On("ActiveForUser", mock.Anything, "u1").Return(tt.active, nil).Once()
			repo.On("CountDevicesByUser", mock.Anything, "u1").Return(tt.deviceCount, nil).Once()
			if tt.wantErr == nil {
				repo.On("GetDeviceByMACHash", mock.Anything, mock.Anything).
					Return(nil, repository.ErrNotFound).Once()
				repo.On("CreateDevice", mock.Anything, mock.Anything).Return(nil).Once()
			}

			deviceID, secret, err := service.Register(context.Background(), user, input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "CreateDevice", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, deviceID)
			assert.Len(t, secret, 32)
		})
	}
}

func TestDeviceService_Register_DuplicateMAC(t *testing.T) {
	repo := new(RepoMock)
	subs := new(SubsMock)
	service := NewDeviceService(repo, subs, newNoopLogger())

	macHash := devicekey.MACHash("AA:BB:CC:DD:EE:FF")
	subs.On("ActiveForUser", mock.Anything, "u2").Return(nil, nil).Once()
	repo.On("CountDevicesByUser", mock.Anything, "u2").Return(0, nil).Once()
	// MAC уже зарегистрирован другим аккаунтом
	repo.On("GetDeviceByMACHash", mock.Anything, macHash).
		Return(&models.Device{ID: "d1", UserID: "u1", MACHash: macHash}, nil).Once()

	_, _, err := service.Register(context.Background(), &models.User{ID: "u2"},
		RegisterInput{MACAddress: "AA:BB:CC:DD:EE:FF", CPUID: "cpu", Hostname: "host"})
	assert.ErrorIs(t, err, ErrDeviceExists)
	repo.AssertNotCalled(t, "CreateDevice", mock.Anything, mock.Anything)
}

func TestDeviceService_Delete(t *testing.T) {
	repo := new(RepoMock)
	service := NewDeviceService(repo, new(SubsMock), newNoopLogger())

	repo.On("DeleteDevice", mock.Anything, "d1", "u1").Return(1, nil).Once()
	assert.NoError(t, service.Delete(context.Background(), "d1", "u1"))

	repo.On("DeleteDevice", mock.Anything, "ghost", "u1").Return(0, nil).Once()
	assert.ErrorIs(t, service.Delete(context.Background(), "ghost", "u1"), ErrDeviceNotFound)
}

func TestDeviceService_Heartbeat(t *testing.T) {
	repo := new(RepoMock)
	service := NewDeviceService(repo, new(SubsMock), newNoopLogger())

	device := &models.Device{ID: "d1", DeviceSecret: "correct-secret"}
	repo.On("GetDeviceByCredentials", mock.Anything, "d1", "correct-secret").
		Return(device, nil).Once()
	repo.On("MarkDeviceOnline", mock.Anything, "d1", mock.Anything).Return(nil).Once()

	require.NoError(t, service.Heartbeat(context.Background(), "d1", "correct-secret"))
	repo.AssertExpectations(t)
}

func TestDeviceService_Heartbeat_WrongSecret(t *testing.T) {
	repo := new(RepoMock)
	service := NewDeviceService(repo, new(SubsMock), newNoopLogger())

	repo.On("GetDeviceByCredentials", mock.Anything, "d1", "wrong-secret").
		Return(nil, repository.ErrNotFound).Once()

	err := service.Heartbeat(context.Background(), "d1", "wrong-secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	// состояние устройства не трогаем
	repo.AssertNotCalled(t, "MarkDeviceOnline", mock.Anything, mock.Anything, mock.Anything)
}
