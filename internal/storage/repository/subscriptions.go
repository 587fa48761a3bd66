package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/remotedeskpro/backend/internal/models"
)

const subscriptionColumns = `id, user_id, duration_days, amount, status,
			payment_id, start_date, end_date, created_at`

// CreateSubscription сохраняет новую подписку в статусе pending.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "repository.CreateSubscription"

	query := `INSERT INTO subscriptions (id, user_id, duration_days, amount, status, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.DB.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.DurationDays, sub.Amount, sub.Status, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetSubscriptionByID возвращает подписку по ID или ErrNotFound.
func (s *Storage) GetSubscriptionByID(ctx context.Context, id string) (*models.Subscription, error) {
	const op = "repository.GetSubscriptionByID"

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	return s.scanSubscription(ctx, op, query, id)
}

// GetActiveSubscriptionByUser возвращает активную подписку пользователя или ErrNotFound.
func (s *Storage) GetActiveSubscriptionByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "repository.GetActiveSubscriptionByUser"

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_id = $1 AND status = $2
			  ORDER BY created_at DESC
			  LIMIT 1`
	return s.scanSubscription(ctx, op, query, userID, models.SubscriptionActive)
}

func (s *Storage) scanSubscription(ctx context.Context, op, query string, args ...any) (*models.Subscription, error) {
	var sub models.Subscription
	var paymentID sql.NullString
	err := s.DB.QueryRowContext(ctx, query, args...).Scan(
		&sub.ID, &sub.UserID, &sub.DurationDays, &sub.Amount, &sub.Status,
		&paymentID, &sub.StartDate, &sub.EndDate, &sub.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if paymentID.Valid {
		sub.PaymentID = &paymentID.String
	}
	return &sub, nil
}

// ActivateSubscription переводит подписку в статус active, если она еще не активна,
// и проставляет платеж и даты действия. Возвращает количество изменённых строк:
// ноль означает, что подписка уже была активирована ранее (повторная доставка webhook).
func (s *Storage) ActivateSubscription(ctx context.Context, id, paymentID string, startDate, endDate time.Time) (int, error) {
	const op = "repository.ActivateSubscription"

	query := `UPDATE subscriptions
			  SET status = $2, payment_id = $3, start_date = $4, end_date = $5
			  WHERE id = $1 AND status <> $2`
	result, err := s.DB.ExecContext(ctx, query,
		id, models.SubscriptionActive, paymentID, startDate, endDate)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// MarkSubscriptionFailed переводит подписку в статус failed.
func (s *Storage) MarkSubscriptionFailed(ctx context.Context, id string) error {
	const op = "repository.MarkSubscriptionFailed"

	_, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET status = $2 WHERE id = $1`, id, models.SubscriptionFailed)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CountActiveSubscriptions возвращает количество активных подписок.
func (s *Storage) CountActiveSubscriptions(ctx context.Context) (int, error) {
	const op = "repository.CountActiveSubscriptions"

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE status = $1`,
		models.SubscriptionActive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
