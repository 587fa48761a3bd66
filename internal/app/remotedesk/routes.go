// Package remotedesk предоставляет маршруты для основного приложения.
package remotedesk

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	adminsessions "github.com/remotedeskpro/backend/internal/http/handlers/admin/sessions"
	adminstats "github.com/remotedeskpro/backend/internal/http/handlers/admin/stats"
	adminusers "github.com/remotedeskpro/backend/internal/http/handlers/admin/users"
	"github.com/remotedeskpro/backend/internal/http/handlers/auth/login"
	"github.com/remotedeskpro/backend/internal/http/handlers/auth/me"
	authregister "github.com/remotedeskpro/backend/internal/http/handlers/auth/register"
	"github.com/remotedeskpro/backend/internal/http/handlers/device/heartbeat"
	devicelist "github.com/remotedeskpro/backend/internal/http/handlers/device/list"
	deviceregister "github.com/remotedeskpro/backend/internal/http/handlers/device/register"
	deviceremove "github.com/remotedeskpro/backend/internal/http/handlers/device/remove"
	"github.com/remotedeskpro/backend/internal/http/handlers/health"
	paymentstatus "github.com/remotedeskpro/backend/internal/http/handlers/payment/status"
	"github.com/remotedeskpro/backend/internal/http/handlers/payment/webhook"
	sessionend "github.com/remotedeskpro/backend/internal/http/handlers/session/end"
	sessionlist "github.com/remotedeskpro/backend/internal/http/handlers/session/list"
	sessionstart "github.com/remotedeskpro/backend/internal/http/handlers/session/start"
	"github.com/remotedeskpro/backend/internal/http/handlers/subscription/calculate"
	"github.com/remotedeskpro/backend/internal/http/handlers/subscription/create"
	"github.com/remotedeskpro/backend/internal/http/middlewarectx"
	adminservice "github.com/remotedeskpro/backend/internal/services/admin"
	authservice "github.com/remotedeskpro/backend/internal/services/auth"
	deviceservice "github.com/remotedeskpro/backend/internal/services/device"
	paymentservice "github.com/remotedeskpro/backend/internal/services/payment"
	sessionservice "github.com/remotedeskpro/backend/internal/services/session"
	subservice "github.com/remotedeskpro/backend/internal/services/subscription"
)

// Services группирует сервисы, нужные маршрутам приложения.
type Services struct {
	Auth         *authservice.AuthService
	Device       *deviceservice.DeviceService
	Subscription *subservice.SubscriptionService
	Payment      *paymentservice.PaymentService
	Session      *sessionservice.SessionService
	Admin        *adminservice.AdminService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services, webhookSecret string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", authregister.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
		r.Post("/subscription/calculate", calculate.New(logger, s.Subscription).ServeHTTP)

		// Устройства аутентифицируются своим секретом, не JWT
		r.Post("/device/heartbeat", heartbeat.New(logger, s.Device).ServeHTTP)

		// Webhook endpoint (подпись вместо аутентификации)
		r.Post("/webhook/devcraftor", webhook.New(logger, s.Payment, webhookSecret).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/auth/me", me.New(logger, s.Subscription).ServeHTTP)

			r.Post("/device/register", deviceregister.New(logger, s.Device).ServeHTTP)
			r.Get("/device/list", devicelist.New(logger, s.Device).ServeHTTP)
			r.Delete("/device/{id}", deviceremove.New(logger, s.Device).ServeHTTP)

			r.Post("/subscription/create", create.New(logger, s.Subscription).ServeHTTP)
			r.Get("/payment/{id}/status", paymentstatus.New(logger, s.Payment).ServeHTTP)

			r.Post("/session/start", sessionstart.New(logger, s.Session).ServeHTTP)
			r.Post("/session/{session_id}/end", sessionend.New(logger, s.Session).ServeHTTP)
			r.Get("/session/list", sessionlist.New(logger, s.Session).ServeHTTP)

			// Административная панель
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminMiddleware(logger))
				r.Get("/admin/stats", adminstats.New(logger, s.Admin).ServeHTTP)
				r.Get("/admin/users", adminusers.New(logger, s.Admin).ServeHTTP)
				r.Get("/admin/sessions", adminsessions.New(logger, s.Admin).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
