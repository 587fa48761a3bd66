package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/remotedeskpro/backend/internal/migrations"
	"github.com/remotedeskpro/backend/internal/models"
)

// setupTestDatabase поднимает контейнер PostgreSQL, применяет миграции
// и возвращает готовое хранилище. Тесты пропускаются, если интеграционное
// окружение не включено переменной INTEGRATION_TESTS.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run repository integration tests")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(3*time.Minute)),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	require.NoError(t, migrations.Run(storage.DB, "../../../migrations"), "failed to run migrations")

	cleanup := func() {
		_ = storage.DB.Close()
		_ = container.Terminate(ctx)
	}
	return storage, cleanup
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя
func (f *TestDataFactory) CreateUser(t *testing.T, user models.User) {
	t.Helper()
	require.NoError(t, f.storage.CreateUser(context.Background(), user))
}

// CreateDevice создает тестовое устройство
func (f *TestDataFactory) CreateDevice(t *testing.T, device models.Device) {
	t.Helper()
	require.NoError(t, f.storage.CreateDevice(context.Background(), device))
}

// CreateSubscription создает тестовую подписку
func (f *TestDataFactory) CreateSubscription(t *testing.T, sub models.Subscription) {
	t.Helper()
	require.NoError(t, f.storage.CreateSubscription(context.Background(), sub))
}

// CreatePayment создает тестовый платеж
func (f *TestDataFactory) CreatePayment(t *testing.T, payment models.Payment) {
	t.Helper()
	require.NoError(t, f.storage.CreatePayment(context.Background(), payment))
}

// CreateSession создает тестовую сессию
func (f *TestDataFactory) CreateSession(t *testing.T, session models.Session) {
	t.Helper()
	require.NoError(t, f.storage.CreateSession(context.Background(), session))
}
