package models

import "time"

// Статусы подписки.
const (
	SubscriptionPending = "pending"
	SubscriptionActive  = "active"
	SubscriptionFailed  = "failed"
)

// Subscription представляет оплачиваемую подписку пользователя
// на период DurationDays. Даты начала и окончания заполняются
// только после подтверждения платежа провайдером.
type Subscription struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	DurationDays int        `json:"duration_days"`
	Amount       float64    `json:"amount"`
	Status       string     `json:"status"`
	PaymentID    *string    `json:"payment_id,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
