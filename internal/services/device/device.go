// Package device содержит бизнес-логику реестра устройств: регистрацию
// с квотой по подписке, листинг, удаление и heartbeat-отметки.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/remotedeskpro/backend/internal/lib/devicekey"
	"github.com/remotedeskpro/backend/internal/models"
	"github.com/remotedeskpro/backend/internal/storage/repository"
)

// Квоты устройств: одна машина без активной подписки, десять с ней.
const (
	QuotaFree       = 1
	QuotaSubscribed = 10
)

// Ошибки бизнес-логики реестра устройств.
var (
	// ErrDeviceExists возвращается, если MAC-адрес уже зарегистрирован
	// (в любом аккаунте системы).
	ErrDeviceExists = errors.New("device already registered")
	// ErrDeviceLimit возвращается при превышении квоты устройств.
	ErrDeviceLimit = errors.New("device limit reached")
	// ErrDeviceNotFound возвращается, если устройство не принадлежит пользователю.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrInvalidCredentials возвращается при несовпадении пары (id, secret).
	ErrInvalidCredentials = errors.New("invalid device credentials")
)

// DeviceRepository определяет методы для работы с устройствами в хранилище.
type DeviceRepository interface {
	CreateDevice(ctx context.Context, device models.Device) error
	GetDeviceByMACHash(ctx context.Context, macHash string) (*models.Device, error)
	GetDeviceByCredentials(ctx context.Context, deviceID, deviceSecret string) (*models.Device, error)
	CountDevicesByUser(ctx context.Context, userID string) (int, error)
	ListDevicesByUser(ctx context.Context, userID string, limit int) ([]*models.Device, error)
	DeleteDevice(ctx context.Context, deviceID, userID string) (int, error)
	MarkDeviceOnline(ctx context.Context, deviceID string, seenAt time.Time) error
}

// SubscriptionChecker сообщает, есть ли у пользователя активная подписка.
type SubscriptionChecker interface {
	// ActiveForUser возвращает активную подписку или (nil, nil), если её нет.
	ActiveForUser(ctx context.Context, userID string) (*models.Subscription, error)
}

// RegisterInput содержит данные регистрации нового устройства.
type RegisterInput struct {
	MACAddress string
	CPUID      string
	Hostname   string
	OSVersion  string
}

// DeviceService реализует бизнес-логику реестра устройств.
type DeviceService struct {
	repo          DeviceRepository
	subscriptions SubscriptionChecker
	log           *slog.Logger
}

// NewDeviceService создает новый экземпляр DeviceService.
func NewDeviceService(repo DeviceRepository, subscriptions SubscriptionChecker, log *slog.Logger) *DeviceService {
	return &DeviceService{
		repo:          repo,
		subscriptions: subscriptions,
		log:           log,
	}
}

// Register регистрирует новое устройство пользователя.
//
// Квота определяется наличием активной подписки. Проверка count-then-insert
// не транзакционна: две конкурентные регистрации могут обе пройти проверку,
// квота остается best-effort лимитом. Секрет устройства возвращается
// ровно один раз и не извлекается повторно.
func (s *DeviceService) Register(ctx context.Context, user *models.User, input RegisterInput) (string, string, error) {
	const op = "device.Register"

	active, err := s.subscriptions.ActiveForUser(ctx, user.ID)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	quota := QuotaFree
	if active != nil {
		quota = QuotaSubscribed
	}

	count, err := s.repo.CountDevicesByUser(ctx, user.ID)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if count >= quota {
		return "", "", fmt.Errorf("%w (%d devices)", ErrDeviceLimit, quota)
	}

	macHash := devicekey.MACHash(input.MACAddress)
	_, err = s.repo.GetDeviceByMACHash(ctx, macHash)
	if err == nil {
		return "", "", ErrDeviceExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	device := models.Device{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		MACHash:      macHash,
		CPUID:        input.CPUID,
		Hostname:     input.Hostname,
		OSVersion:    input.OSVersion,
		DeviceSecret: devicekey.NewSecret(),
		Online:       true,
		LastSeen:     &now,
		CreatedAt:    now,
	}
	if err := s.repo.CreateDevice(ctx, device); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("device registered",
		slog.String("device_id", device.ID),
		slog.String("user_id", user.ID))
	return device.ID, device.DeviceSecret, nil
}

// List возвращает устройства пользователя (до 100 записей).
func (s *DeviceService) List(ctx context.Context, userID string) ([]*models.Device, error) {
	return s.repo.ListDevicesByUser(ctx, userID, 100)
}

// Delete удаляет устройство пользователя.
func (s *DeviceService) Delete(ctx context.Context, deviceID, userID string) error {
	const op = "device.Delete"

	deleted, err := s.repo.DeleteDevice(ctx, deviceID, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if deleted == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// Heartbeat аутентифицирует устройство парой (id, secret) и отмечает его
// онлайн-статус. Bearer-токен владельца здесь не нужен: headless-устройство
// аутентифицирует само себя. Несовпавший секрет не меняет состояние устройства.
func (s *DeviceService) Heartbeat(ctx context.Context, deviceID, deviceSecret string) error {
	const op = "device.Heartbeat"

	device, err := s.repo.GetDeviceByCredentials(ctx, deviceID, deviceSecret)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.MarkDeviceOnline(ctx, device.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
