// Package metrics содержит Prometheus-счетчики платежного цикла.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEvents считает обработанные webhook-события по исходу:
	// completed, failed, not_found, ignored, rejected_signature.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "remotedesk_webhook_events_total",
		Help: "Processed payment webhook deliveries by outcome.",
	}, []string{"outcome"})

	// PaymentLinkFallbacks считает случаи, когда ссылка на оплату
	// подменялась fallback-значением из-за недоступности провайдера.
	PaymentLinkFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "remotedesk_payment_link_fallbacks_total",
		Help: "Payment link requests substituted with the fallback URL.",
	})

	// SubscriptionsCreated считает созданные подписки.
	SubscriptionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "remotedesk_subscriptions_created_total",
		Help: "Subscriptions created in pending state.",
	})
)
