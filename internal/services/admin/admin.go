// Package admin содержит read-only бизнес-логику административной панели.
package admin

import (
	"context"
	"fmt"

	"github.com/remotedeskpro/backend/internal/models"
)

// Лимиты административных листингов.
const (
	usersLimit    = 1000
	sessionsLimit = 200
)

// Stats — агрегированные счетчики по всей системе.
type Stats struct {
	TotalUsers          int `json:"total_users"`
	ActiveSubscriptions int `json:"active_subscriptions"`
	OnlineDevices       int `json:"online_devices"`
	ActiveSessions      int `json:"active_sessions"`
}

// AdminRepository определяет read-only запросы административной панели.
type AdminRepository interface {
	CountUsers(ctx context.Context) (int, error)
	CountActiveSubscriptions(ctx context.Context) (int, error)
	CountOnlineDevices(ctx context.Context) (int, error)
	CountActiveSessions(ctx context.Context) (int, error)
	ListUsers(ctx context.Context, limit int) ([]*models.User, error)
	ListAllSessions(ctx context.Context, limit int) ([]*models.Session, error)
}

// AdminService реализует read-only операции административной панели.
type AdminService struct {
	repo AdminRepository
}

// NewAdminService создает новый экземпляр AdminService.
func NewAdminService(repo AdminRepository) *AdminService {
	return &AdminService{repo: repo}
}

// Stats возвращает агрегированные счетчики по системе.
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	const op = "admin.Stats"

	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	subs, err := s.repo.CountActiveSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	devices, err := s.repo.CountOnlineDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sessions, err := s.repo.CountActiveSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Stats{
		TotalUsers:          users,
		ActiveSubscriptions: subs,
		OnlineDevices:       devices,
		ActiveSessions:      sessions,
	}, nil
}

// ListUsers возвращает пользователей без чувствительных полей, не более 1000.
func (s *AdminService) ListUsers(ctx context.Context) ([]models.UserView, error) {
	const op = "admin.ListUsers"

	users, err := s.repo.ListUsers(ctx, usersLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views := make([]models.UserView, 0, len(users))
	for _, user := range users {
		views = append(views, user.View())
	}
	return views, nil
}

// ListSessions возвращает сессии всех пользователей, свежие первыми, не более 200.
func (s *AdminService) ListSessions(ctx context.Context) ([]*models.Session, error) {
	const op = "admin.ListSessions"

	sessions, err := s.repo.ListAllSessions(ctx, sessionsLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sessions, nil
}
