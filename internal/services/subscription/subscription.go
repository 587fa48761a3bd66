// Package subscription содержит бизнес-логику жизненного цикла подписок:
// расчет цены, создание пары подписка+платеж и получение ссылки на оплату
// у внешнего провайдера с локальным fallback при его недоступности.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/remotedeskpro/backend/internal/lib/pricing"
	"github.com/remotedeskpro/backend/internal/lib/sl"
	"github.com/remotedeskpro/backend/internal/metrics"
	"github.com/remotedeskpro/backend/internal/models"
	"github.com/remotedeskpro/backend/internal/paymentprovider"
	"github.com/remotedeskpro/backend/internal/storage/repository"
)

// activeCacheTTL — время жизни кэша активной подписки.
const activeCacheTTL = 5 * time.Minute

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) error
	GetActiveSubscriptionByUser(ctx context.Context, userID string) (*models.Subscription, error)
}

// PaymentRepository определяет методы для работы с платежами в хранилище.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment models.Payment) error
}

// LinkProvider описывает клиент платежного провайдера.
type LinkProvider interface {
	CreatePaymentLink(ctx context.Context, req paymentprovider.CreatePaymentLinkRequest) (*paymentprovider.CreatePaymentLinkResponse, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Options содержит параметры окружения, попадающие в запрос провайдеру.
type Options struct {
	PricePerDay float64
	FrontendURL string
	BackendURL  string
}

// CreateResult возвращается после создания подписки.
type CreateResult struct {
	SubscriptionID string  `json:"subscription_id"`
	PaymentID      string  `json:"payment_id"`
	Amount         float64 `json:"amount"`
	PaymentURL     string  `json:"payment_url"`
}

// SubscriptionService реализует бизнес-логику подписок.
type SubscriptionService struct {
	subs     SubscriptionRepository
	payments PaymentRepository
	provider LinkProvider
	cache    Cache
	opts     Options
	log      *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(subs SubscriptionRepository, payments PaymentRepository,
	provider LinkProvider, cache Cache, opts Options, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		subs:     subs,
		payments: payments,
		provider: provider,
		cache:    cache,
		opts:     opts,
		log:      log,
	}
}

// ActiveCacheKey возвращает ключ кэша активной подписки пользователя.
func ActiveCacheKey(userID string) string {
	return "subscription:active:" + userID
}

// Calculate возвращает котировку цены за days дней.
// Использует ровно ту же функцию, что и Create: котировка и покупка
// никогда не расходятся.
func (s *SubscriptionService) Calculate(days int) (float64, error) {
	return pricing.Price(days, s.opts.PricePerDay)
}

// ActiveForUser возвращает активную подписку пользователя либо (nil, nil),
// если её нет. Положительный результат кэшируется в Redis.
func (s *SubscriptionService) ActiveForUser(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "subscription.ActiveForUser"

	cacheKey := ActiveCacheKey(userID)
	var cached models.Subscription
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read subscription cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found && cached.Status == models.SubscriptionActive {
		return &cached, nil
	}

	sub, err := s.subs.GetActiveSubscriptionByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(ctx, cacheKey, sub, activeCacheTTL); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", cacheKey), sl.Err(err))
	}
	return sub, nil
}

// Create создает пару Subscription(pending) + Payment(pending) и запрашивает
// у DevCraftor hosted payment link, помеченный корреляционным токеном.
//
// Любая ошибка провайдера (не-200, таймаут, сетевая) не валит запрос:
// вместо ссылки провайдера подставляется детерминированный fallback URL,
// выведенный из токена. Реальный платеж в этом случае собран не будет.
func (s *SubscriptionService) Create(ctx context.Context, user *models.User, durationDays int) (*CreateResult, error) {
	const op = "subscription.Create"

	amount, err := pricing.Price(durationDays, s.opts.PricePerDay)
	if err != nil {
		return nil, err
	}

	sub := models.Subscription{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		DurationDays: durationDays,
		Amount:       amount,
		Status:       models.SubscriptionPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.subs.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.SubscriptionsCreated.Inc()

	reference := fmt.Sprintf("sub_%s_%d", sub.ID, time.Now().Unix())

	linkURL := s.requestPaymentLink(ctx, user, &sub, reference)

	payment := models.Payment{
		ID:                uuid.New().String(),
		UserID:            user.ID,
		SubscriptionID:    sub.ID,
		Amount:            amount,
		Status:            models.PaymentPending,
		PaymentLinkURL:    linkURL,
		ProviderReference: reference,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription created",
		slog.String("subscription_id", sub.ID),
		slog.String("payment_id", payment.ID),
		slog.String("reference", reference))

	return &CreateResult{
		SubscriptionID: sub.ID,
		PaymentID:      payment.ID,
		Amount:         amount,
		PaymentURL:     linkURL,
	}, nil
}

// requestPaymentLink запрашивает ссылку у провайдера и возвращает fallback URL
// при любой ошибке. Таймаут ограничен клиентом провайдера.
func (s *SubscriptionService) requestPaymentLink(ctx context.Context, user *models.User,
	sub *models.Subscription, reference string) string {

	resp, err := s.provider.CreatePaymentLink(ctx, paymentprovider.CreatePaymentLinkRequest{
		Amount:        int(sub.Amount * 100),
		Currency:      "USD",
		Description:   fmt.Sprintf("RemoteDesk Pro - %d days subscription", sub.DurationDays),
		CustomerEmail: user.Email,
		ReturnURL:     s.opts.FrontendURL + "/payment/success",
		WebhookURL:    s.opts.BackendURL + "/api/v1/webhook/devcraftor",
		Metadata: map[string]string{
			"user_id":         user.ID,
			"subscription_id": sub.ID,
			"reference":       reference,
		},
	})
	if err != nil || resp.PaymentURL == "" {
		if err != nil {
			s.log.Error("devcraftor payment link request failed", sl.Err(err))
		}
		metrics.PaymentLinkFallbacks.Inc()
		return FallbackURL(reference)
	}
	return resp.PaymentURL
}

// FallbackURL возвращает детерминированную демо-ссылку для корреляционного токена.
func FallbackURL(reference string) string {
	return "https://pay.devcraftor.com/demo/" + reference
}
