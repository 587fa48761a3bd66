package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/remotedeskpro/backend/internal/models"
)

const sessionColumns = `id, session_id, device_id, user_id, admin_id, status, started_at, ended_at`

// CreateSession сохраняет новую сессию удалённого доступа.
func (s *Storage) CreateSession(ctx context.Context, session models.Session) error {
	const op = "repository.CreateSession"

	query := `INSERT INTO sessions (id, session_id, device_id, user_id, admin_id, status, started_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.DB.ExecContext(ctx, query,
		session.ID, session.SessionID, session.DeviceID, session.UserID,
		session.AdminID, session.Status, session.StartedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetSessionByPublicID возвращает сессию пользователя по публичному токену или ErrNotFound.
func (s *Storage) GetSessionByPublicID(ctx context.Context, sessionID, userID string) (*models.Session, error) {
	const op = "repository.GetSessionByPublicID"

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE session_id = $1 AND user_id = $2`
	var session models.Session
	var adminID sql.NullString
	err := s.DB.QueryRowContext(ctx, query, sessionID, userID).Scan(
		&session.ID, &session.SessionID, &session.DeviceID, &session.UserID,
		&adminID, &session.Status, &session.StartedAt, &session.EndedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if adminID.Valid {
		session.AdminID = &adminID.String
	}
	return &session, nil
}

// EndSession помечает сессию завершенной и проставляет время окончания.
// Повторный вызов перештамповывает ended_at, как и в исходном поведении API.
func (s *Storage) EndSession(ctx context.Context, sessionID string, endedAt time.Time) error {
	const op = "repository.EndSession"

	_, err := s.DB.ExecContext(ctx,
		`UPDATE sessions SET status = $2, ended_at = $3 WHERE session_id = $1`,
		sessionID, models.SessionEnded, endedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListSessionsByUser возвращает до limit сессий пользователя, свежие первыми.
func (s *Storage) ListSessionsByUser(ctx context.Context, userID string, limit int) ([]*models.Session, error) {
	const op = "repository.ListSessionsByUser"

	query := `SELECT ` + sessionColumns + `
			  FROM sessions
			  WHERE user_id = $1
			  ORDER BY started_at DESC
			  LIMIT $2`
	return s.scanSessions(ctx, op, query, userID, limit)
}

// ListAllSessions возвращает до limit сессий всех пользователей, свежие первыми.
func (s *Storage) ListAllSessions(ctx context.Context, limit int) ([]*models.Session, error) {
	const op = "repository.ListAllSessions"

	query := `SELECT ` + sessionColumns + `
			  FROM sessions
			  ORDER BY started_at DESC
			  LIMIT $1`
	return s.scanSessions(ctx, op, query, limit)
}

func (s *Storage) scanSessions(ctx context.Context, op, query string, args ...any) ([]*models.Session, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Session
	for rows.Next() {
		var session models.Session
		var adminID sql.NullString
		if err := rows.Scan(&session.ID, &session.SessionID, &session.DeviceID,
			&session.UserID, &adminID, &session.Status, &session.StartedAt,
			&session.EndedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if adminID.Valid {
			session.AdminID = &adminID.String
		}
		result = append(result, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountActiveSessions возвращает количество активных сессий.
func (s *Storage) CountActiveSessions(ctx context.Context) (int, error) {
	const op = "repository.CountActiveSessions"

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE status = $1`, models.SessionActive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
