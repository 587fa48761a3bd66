// Package pricing реализует расчет стоимости подписки в зависимости
// от её длительности. Функция чистая и детерминированная: один и тот же
// расчет используется и для предварительной котировки, и для создания
// реальной подписки, поэтому значения никогда не расходятся.
package pricing

import (
	"fmt"
	"math"
)

// Допустимые границы длительности подписки в днях.
const (
	MinDays = 1
	MaxDays = 365
)

// ErrInvalidDuration возвращается, если длительность вне диапазона [1, 365].
var ErrInvalidDuration = fmt.Errorf("duration_days must be between %d and %d", MinDays, MaxDays)

// Price возвращает стоимость подписки на days дней при базовой цене
// pricePerDay за день. Скидочные пороги: от 180 дней — 15%, от 90 — 10%,
// от 30 — 5%. Результат округляется до двух знаков.
func Price(days int, pricePerDay float64) (float64, error) {
	if days < MinDays || days > MaxDays {
		return 0, ErrInvalidDuration
	}
	base := float64(days) * pricePerDay
	switch {
	case days >= 180:
		base *= 0.85
	case days >= 90:
		base *= 0.90
	case days >= 30:
		base *= 0.95
	}
	return math.Round(base*100) / 100, nil
}
