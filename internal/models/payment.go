package models

import "time"

// Статусы платежа.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment представляет платеж за подписку через провайдера DevCraftor.
// ProviderReference — корреляционный токен, по которому асинхронный
// webhook-колбэк провайдера сопоставляется с внутренним платежом.
type Payment struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	SubscriptionID    string    `json:"subscription_id"`
	Amount            float64   `json:"amount"`
	Status            string    `json:"status"`
	PaymentLinkURL    string    `json:"payment_link_url,omitempty"`
	ProviderReference string    `json:"devcraftor_reference"`
	CreatedAt         time.Time `json:"created_at"`
}
