// Package payment содержит бизнес-логику платежей: чтение статуса платежа
// владельцем и применение асинхронных webhook-событий провайдера
// к паре платеж+подписка.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/remotedeskpro/backend/internal/lib/sl"
	"github.com/remotedeskpro/backend/internal/metrics"
	"github.com/remotedeskpro/backend/internal/models"
	"github.com/remotedeskpro/backend/internal/services/subscription"
	"github.com/remotedeskpro/backend/internal/storage/repository"
)

// Исходы обработки webhook-события.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeNotFound  = "not_found"
	OutcomeIgnored   = "ignored"
)

// Ключи маршрутизации публикуемых событий.
const (
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
)

// ErrPaymentNotFound возвращается, если платеж не принадлежит пользователю.
var ErrPaymentNotFound = errors.New("payment not found")

// PaymentRepository определяет методы для работы с платежами в хранилище.
type PaymentRepository interface {
	GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error)
	GetPaymentByIDAndUser(ctx context.Context, paymentID, userID string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id, status string) error
}

// SubscriptionRepository определяет методы для изменения статуса подписки.
type SubscriptionRepository interface {
	GetSubscriptionByID(ctx context.Context, id string) (*models.Subscription, error)
	ActivateSubscription(ctx context.Context, id, paymentID string, startDate, endDate time.Time) (int, error)
	MarkSubscriptionFailed(ctx context.Context, id string) error
}

// Cache описывает инвалидацию кэша активной подписки.
type Cache interface {
	Invalidate(ctx context.Context, key string) error
}

// EventPublisher публикует события платежного цикла во внешний брокер.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// Event — сообщение о платежном событии для внешних потребителей.
type Event struct {
	Reference      string  `json:"reference"`
	PaymentID      string  `json:"payment_id"`
	SubscriptionID string  `json:"subscription_id"`
	UserID         string  `json:"user_id"`
	Amount         float64 `json:"amount"`
	Status         string  `json:"status"`
}

// PaymentService реализует бизнес-логику платежей.
type PaymentService struct {
	payments PaymentRepository
	subs     SubscriptionRepository
	cache    Cache
	events   EventPublisher // nil — публикация событий отключена
	log      *slog.Logger
}

// NewPaymentService создает новый экземпляр PaymentService.
func NewPaymentService(payments PaymentRepository, subs SubscriptionRepository,
	cache Cache, events EventPublisher, log *slog.Logger) *PaymentService {
	return &PaymentService{
		payments: payments,
		subs:     subs,
		cache:    cache,
		events:   events,
		log:      log,
	}
}

// StatusForUser возвращает платеж, принадлежащий пользователю.
func (s *PaymentService) StatusForUser(ctx context.Context, paymentID, userID string) (*models.Payment, error) {
	const op = "payment.StatusForUser"

	payment, err := s.payments.GetPaymentByIDAndUser(ctx, paymentID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payment, nil
}

// ProcessWebhookEvent применяет webhook-событие провайдера к внутреннему
// состоянию. Доставка считается at-least-once: неизвестный токен — no-op,
// повторная доставка "completed" по уже активной подписке не перештамповывает
// даты действия. Возвращает исход обработки для ответа и метрик.
func (s *PaymentService) ProcessWebhookEvent(ctx context.Context, reference, status string) (string, error) {
	const op = "payment.ProcessWebhookEvent"

	payment, err := s.payments.GetPaymentByReference(ctx, reference)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Info("webhook for unknown reference", slog.String("reference", reference))
		metrics.WebhookEvents.WithLabelValues(OutcomeNotFound).Inc()
		return OutcomeNotFound, nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	switch status {
	case "completed", "SUCCESS":
		return s.applyCompleted(ctx, payment)
	case "failed":
		return s.applyFailed(ctx, payment)
	default:
		s.log.Info("ignored webhook status",
			slog.String("reference", reference), slog.String("status", status))
		metrics.WebhookEvents.WithLabelValues(OutcomeIgnored).Inc()
		return OutcomeIgnored, nil
	}
}

func (s *PaymentService) applyCompleted(ctx context.Context, payment *models.Payment) (string, error) {
	const op = "payment.applyCompleted"

	if err := s.payments.UpdatePaymentStatus(ctx, payment.ID, models.PaymentCompleted); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	sub, err := s.subs.GetSubscriptionByID(ctx, payment.SubscriptionID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if sub != nil {
		startDate := time.Now().UTC()
		endDate := startDate.AddDate(0, 0, sub.DurationDays)
		affected, err := s.subs.ActivateSubscription(ctx, sub.ID, payment.ID, startDate, endDate)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if affected == 0 {
			s.log.Info("subscription already active, webhook redelivery ignored",
				slog.String("subscription_id", sub.ID))
		} else {
			s.invalidateActive(ctx, sub.UserID)
			s.publish(EventPaymentCompleted, payment, models.PaymentCompleted)
		}
	}

	metrics.WebhookEvents.WithLabelValues(OutcomeCompleted).Inc()
	return OutcomeCompleted, nil
}

func (s *PaymentService) applyFailed(ctx context.Context, payment *models.Payment) (string, error) {
	const op = "payment.applyFailed"

	if err := s.payments.UpdatePaymentStatus(ctx, payment.ID, models.PaymentFailed); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.subs.MarkSubscriptionFailed(ctx, payment.SubscriptionID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateActive(ctx, payment.UserID)
	s.publish(EventPaymentFailed, payment, models.PaymentFailed)
	metrics.WebhookEvents.WithLabelValues(OutcomeFailed).Inc()
	return OutcomeFailed, nil
}

func (s *PaymentService) invalidateActive(ctx context.Context, userID string) {
	key := subscription.ActiveCacheKey(userID)
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("failed to invalidate subscription cache", slog.String("key", key), sl.Err(err))
	}
}

func (s *PaymentService) publish(routingKey string, payment *models.Payment, status string) {
	if s.events == nil {
		return
	}
	event := Event{
		Reference:      payment.ProviderReference,
		PaymentID:      payment.ID,
		SubscriptionID: payment.SubscriptionID,
		UserID:         payment.UserID,
		Amount:         payment.Amount,
		Status:         status,
	}
	if err := s.events.Publish(routingKey, event); err != nil {
		s.log.Error("failed to publish payment event", sl.Err(err))
	}
}
