package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remotedeskpro/backend/internal/models"
)

func newTestUser() models.User {
	return models.User{
		ID:           uuid.New().String(),
		Email:        uuid.New().String() + "@example.com",
		Name:         "Test User",
		PasswordHash: "hashedpassword",
		Role:         models.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
}

func newTestDevice(userID, macHash string) models.Device {
	now := time.Now().UTC()
	return models.Device{
		ID:           uuid.New().String(),
		UserID:       userID,
		MACHash:      macHash,
		CPUID:        "cpu-0001",
		Hostname:     "workstation",
		OSVersion:    "Windows 11",
		DeviceSecret: "secret-secret-secret-secret-1234",
		Online:       true,
		LastSeen:     &now,
		CreatedAt:    now,
	}
}

func TestStorage_DeviceUniqueMACHash(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	first := newTestUser()
	second := newTestUser()
	factory.CreateUser(t, first)
	factory.CreateUser(t, second)

	factory.CreateDevice(t, newTestDevice(first.ID, "machash-1"))

	// тот же MAC от другого аккаунта отбивается уникальным индексом
	err := storage.CreateDevice(context.Background(), newTestDevice(second.ID, "machash-1"))
	require.Error(t, err)

	got, err := storage.GetDeviceByMACHash(context.Background(), "machash-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.UserID)
}

func TestStorage_CountDevicesByUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	user := newTestUser()
	factory.CreateUser(t, user)
	factory.CreateDevice(t, newTestDevice(user.ID, "machash-a"))
	factory.CreateDevice(t, newTestDevice(user.ID, "machash-b"))

	count, err := storage.CountDevicesByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = storage.CountDevicesByUser(context.Background(), uuid.New().String())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStorage_ActivateSubscription_Idempotent(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	user := newTestUser()
	factory.CreateUser(t, user)

	sub := models.Subscription{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		DurationDays: 30,
		Amount:       42.75,
		Status:       models.SubscriptionPending,
		CreatedAt:    time.Now().UTC(),
	}
	factory.CreateSubscription(t, sub)

	paymentID := uuid.New().String()
	start := time.Now().UTC()
	end := start.AddDate(0, 0, sub.DurationDays)

	affected, err := storage.ActivateSubscription(ctx, sub.ID, paymentID, start, end)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	// повторная доставка webhook не перезаписывает даты
	affected, err = storage.ActivateSubscription(ctx, sub.ID, paymentID, start.Add(time.Hour), end.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, affected)

	got, err := storage.GetActiveSubscriptionByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, got.Status)
	require.NotNil(t, got.StartDate)
	require.NotNil(t, got.EndDate)
	assert.WithinDuration(t, start, *got.StartDate, time.Second)
	assert.WithinDuration(t, end, *got.EndDate, time.Second)
}

func TestStorage_GetPaymentByReference(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	user := newTestUser()
	factory.CreateUser(t, user)

	payment := models.Payment{
		ID:                uuid.New().String(),
		UserID:            user.ID,
		SubscriptionID:    uuid.New().String(),
		Amount:            121.50,
		Status:            models.PaymentPending,
		PaymentLinkURL:    "https://pay.devcraftor.com/demo/sub_x_1",
		ProviderReference: "sub_x_1",
		CreatedAt:         time.Now().UTC(),
	}
	factory.CreatePayment(t, payment)

	got, err := storage.GetPaymentByReference(ctx, "sub_x_1")
	require.NoError(t, err)
	assert.Equal(t, payment.ID, got.ID)

	_, err = storage.GetPaymentByReference(ctx, "unknown-reference")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_ListSessionsByUser_Order(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	user := newTestUser()
	factory.CreateUser(t, user)

	base := time.Now().UTC().Add(-time.Hour)
	for i := range 3 {
		factory.CreateSession(t, models.Session{
			ID:        uuid.New().String(),
			SessionID: "sess_" + uuid.New().String()[:8],
			DeviceID:  uuid.New().String(),
			UserID:    user.ID,
			Status:    models.SessionActive,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	sessions, err := storage.ListSessionsByUser(ctx, user.ID, 50)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.True(t, sessions[0].StartedAt.After(sessions[1].StartedAt))
	assert.True(t, sessions[1].StartedAt.After(sessions[2].StartedAt))
}
