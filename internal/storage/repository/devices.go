package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/remotedeskpro/backend/internal/models"
)

const deviceColumns = `id, user_id, mac_hash, cpu_id, hostname, os_version,
			device_secret, online, last_seen, created_at`

// CreateDevice сохраняет новое устройство.
func (s *Storage) CreateDevice(ctx context.Context, device models.Device) error {
	const op = "repository.CreateDevice"

	query := `INSERT INTO devices (id, user_id, mac_hash, cpu_id, hostname, os_version,
				  device_secret, online, last_seen, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.DB.ExecContext(ctx, query,
		device.ID, device.UserID, device.MACHash, device.CPUID, device.Hostname,
		device.OSVersion, device.DeviceSecret, device.Online, device.LastSeen, device.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetDeviceByMACHash возвращает устройство по хэшу MAC-адреса или ErrNotFound.
// Поиск ведется по всей системе: MAC может принадлежать только одному аккаунту.
func (s *Storage) GetDeviceByMACHash(ctx context.Context, macHash string) (*models.Device, error) {
	const op = "repository.GetDeviceByMACHash"

	query := `SELECT ` + deviceColumns + ` FROM devices WHERE mac_hash = $1`
	return s.scanDevice(ctx, op, query, macHash)
}

// GetDeviceByIDAndUser возвращает устройство, принадлежащее пользователю, или ErrNotFound.
func (s *Storage) GetDeviceByIDAndUser(ctx context.Context, deviceID, userID string) (*models.Device, error) {
	const op = "repository.GetDeviceByIDAndUser"

	query := `SELECT ` + deviceColumns + ` FROM devices WHERE id = $1 AND user_id = $2`
	return s.scanDevice(ctx, op, query, deviceID, userID)
}

// GetDeviceByCredentials возвращает устройство по точной паре (id, secret) или ErrNotFound.
func (s *Storage) GetDeviceByCredentials(ctx context.Context, deviceID, deviceSecret string) (*models.Device, error) {
	const op = "repository.GetDeviceByCredentials"

	query := `SELECT ` + deviceColumns + ` FROM devices WHERE id = $1 AND device_secret = $2`
	return s.scanDevice(ctx, op, query, deviceID, deviceSecret)
}

func (s *Storage) scanDevice(ctx context.Context, op, query string, args ...any) (*models.Device, error) {
	var device models.Device
	var osVersion sql.NullString
	err := s.DB.QueryRowContext(ctx, query, args...).Scan(
		&device.ID, &device.UserID, &device.MACHash, &device.CPUID, &device.Hostname,
		&osVersion, &device.DeviceSecret, &device.Online, &device.LastSeen, &device.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	device.OSVersion = osVersion.String
	return &device, nil
}

// CountDevicesByUser возвращает количество устройств пользователя.
func (s *Storage) CountDevicesByUser(ctx context.Context, userID string) (int, error) {
	const op = "repository.CountDevicesByUser"

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM devices WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ListDevicesByUser возвращает до limit устройств пользователя.
func (s *Storage) ListDevicesByUser(ctx context.Context, userID string, limit int) ([]*models.Device, error) {
	const op = "repository.ListDevicesByUser"

	query := `SELECT ` + deviceColumns + `
			  FROM devices
			  WHERE user_id = $1
			  ORDER BY created_at
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Device
	for rows.Next() {
		var device models.Device
		var osVersion sql.NullString
		if err := rows.Scan(&device.ID, &device.UserID, &device.MACHash, &device.CPUID,
			&device.Hostname, &osVersion, &device.DeviceSecret, &device.Online,
			&device.LastSeen, &device.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		device.OSVersion = osVersion.String
		result = append(result, &device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteDevice удаляет устройство пользователя и возвращает количество удалённых строк.
func (s *Storage) DeleteDevice(ctx context.Context, deviceID, userID string) (int, error) {
	const op = "repository.DeleteDevice"

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM devices WHERE id = $1 AND user_id = $2`, deviceID, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// MarkDeviceOnline помечает устройство как находящееся в сети и обновляет last_seen.
func (s *Storage) MarkDeviceOnline(ctx context.Context, deviceID string, seenAt time.Time) error {
	const op = "repository.MarkDeviceOnline"

	_, err := s.DB.ExecContext(ctx,
		`UPDATE devices SET online = TRUE, last_seen = $2 WHERE id = $1`, deviceID, seenAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CountOnlineDevices возвращает количество устройств в сети.
func (s *Storage) CountOnlineDevices(ctx context.Context) (int, error) {
	const op = "repository.CountOnlineDevices"

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM devices WHERE online = TRUE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
