package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/remotedeskpro/backend/internal/models"
)

const paymentColumns = `id, user_id, subscription_id, amount, status,
			payment_link_url, devcraftor_reference, created_at`

// CreatePayment сохраняет новый платеж.
func (s *Storage) CreatePayment(ctx context.Context, payment models.Payment) error {
	const op = "repository.CreatePayment"

	query := `INSERT INTO payments (id, user_id, subscription_id, amount, status,
				  payment_link_url, devcraftor_reference, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.DB.ExecContext(ctx, query,
		payment.ID, payment.UserID, payment.SubscriptionID, payment.Amount,
		payment.Status, payment.PaymentLinkURL, payment.ProviderReference, payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetPaymentByReference возвращает платеж по корреляционному токену провайдера
// или ErrNotFound.
func (s *Storage) GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error) {
	const op = "repository.GetPaymentByReference"

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE devcraftor_reference = $1`
	return s.scanPayment(ctx, op, query, reference)
}

// GetPaymentByIDAndUser возвращает платеж, принадлежащий пользователю, или ErrNotFound.
func (s *Storage) GetPaymentByIDAndUser(ctx context.Context, paymentID, userID string) (*models.Payment, error) {
	const op = "repository.GetPaymentByIDAndUser"

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 AND user_id = $2`
	return s.scanPayment(ctx, op, query, paymentID, userID)
}

func (s *Storage) scanPayment(ctx context.Context, op, query string, args ...any) (*models.Payment, error) {
	var payment models.Payment
	var linkURL sql.NullString
	err := s.DB.QueryRowContext(ctx, query, args...).Scan(
		&payment.ID, &payment.UserID, &payment.SubscriptionID, &payment.Amount,
		&payment.Status, &linkURL, &payment.ProviderReference, &payment.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	payment.PaymentLinkURL = linkURL.String
	return &payment, nil
}

// UpdatePaymentStatus переводит платеж в указанный статус.
func (s *Storage) UpdatePaymentStatus(ctx context.Context, id, status string) error {
	const op = "repository.UpdatePaymentStatus"

	_, err := s.DB.ExecContext(ctx,
		`UPDATE payments SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
