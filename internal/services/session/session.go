// Package session содержит бизнес-логику журнала сессий удалённого доступа.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/remotedeskpro/backend/internal/models"
	"github.com/remotedeskpro/backend/internal/storage/repository"
)

// listLimit — максимум сессий в пользовательском листинге.
const listLimit = 50

// Ошибки бизнес-логики журнала сессий.
var (
	// ErrDeviceNotFound возвращается, если устройство не принадлежит пользователю.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrDeviceOffline возвращается при попытке открыть сессию к устройству не в сети.
	ErrDeviceOffline = errors.New("device is offline")
	// ErrSessionNotFound возвращается, если сессия не принадлежит пользователю.
	ErrSessionNotFound = errors.New("session not found")
)

// SessionRepository определяет методы для работы с сессиями в хранилище.
type SessionRepository interface {
	CreateSession(ctx context.Context, session models.Session) error
	GetSessionByPublicID(ctx context.Context, sessionID, userID string) (*models.Session, error)
	EndSession(ctx context.Context, sessionID string, endedAt time.Time) error
	ListSessionsByUser(ctx context.Context, userID string, limit int) ([]*models.Session, error)
}

// DeviceRepository определяет доступ к устройствам для проверки владения и онлайна.
type DeviceRepository interface {
	GetDeviceByIDAndUser(ctx context.Context, deviceID, userID string) (*models.Device, error)
}

// SessionService реализует бизнес-логику журнала сессий.
type SessionService struct {
	sessions SessionRepository
	devices  DeviceRepository
	log      *slog.Logger
}

// NewSessionService создает новый экземпляр SessionService.
func NewSessionService(sessions SessionRepository, devices DeviceRepository, log *slog.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		devices:  devices,
		log:      log,
	}
}

// Start открывает сессию к устройству пользователя. Устройство должно
// принадлежать вызывающему и быть в сети. Возвращает публичный токен сессии.
func (s *SessionService) Start(ctx context.Context, userID, deviceID string) (*models.Session, error) {
	const op = "session.Start"

	device, err := s.devices.GetDeviceByIDAndUser(ctx, deviceID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !device.Online {
		return nil, ErrDeviceOffline
	}

	session := models.Session{
		ID:        uuid.New().String(),
		SessionID: "sess_" + uuid.New().String()[:8],
		DeviceID:  deviceID,
		UserID:    userID,
		Status:    models.SessionActive,
		StartedAt: time.Now().UTC(),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("session started",
		slog.String("session_id", session.SessionID),
		slog.String("device_id", deviceID))
	return &session, nil
}

// End завершает сессию пользователя по публичному токену.
// Повторное завершение проходит успешно и перештамповывает ended_at —
// исходное поведение API сохранено сознательно.
func (s *SessionService) End(ctx context.Context, userID, sessionID string) error {
	const op = "session.End"

	_, err := s.sessions.GetSessionByPublicID(ctx, sessionID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sessions.EndSession(ctx, sessionID, time.Now().UTC()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// List возвращает сессии пользователя, свежие первыми, не более 50.
func (s *SessionService) List(ctx context.Context, userID string) ([]*models.Session, error) {
	return s.sessions.ListSessionsByUser(ctx, userID, listLimit)
}
