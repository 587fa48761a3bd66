// Package remotedesk собирает приложение: хранилище, кэш, брокер событий,
// клиент платежного провайдера, сервисы и HTTP-сервер.
package remotedesk

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/remotedeskpro/backend/internal/cache"
	"github.com/remotedeskpro/backend/internal/config"
	jwtlib "github.com/remotedeskpro/backend/internal/lib/jwt"
	"github.com/remotedeskpro/backend/internal/lib/rabbitmq"
	"github.com/remotedeskpro/backend/internal/lib/sl"
	"github.com/remotedeskpro/backend/internal/migrations"
	"github.com/remotedeskpro/backend/internal/paymentprovider"
	adminservice "github.com/remotedeskpro/backend/internal/services/admin"
	authservice "github.com/remotedeskpro/backend/internal/services/auth"
	deviceservice "github.com/remotedeskpro/backend/internal/services/device"
	paymentservice "github.com/remotedeskpro/backend/internal/services/payment"
	sessionservice "github.com/remotedeskpro/backend/internal/services/session"
	subservice "github.com/remotedeskpro/backend/internal/services/subscription"
	"github.com/remotedeskpro/backend/internal/storage/repository"
)

// App держит HTTP-сервер и внешние соединения приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	broker *amqp.Connection // nil — публикация событий отключена
}

// New инициализирует все зависимости и возвращает готовое приложение.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var broker *amqp.Connection
	var events paymentservice.EventPublisher
	if cfg.RabbitMQ.AddressRabbit != "" {
		broker, err = rabbitmq.Connect(cfg.RabbitMQ.AddressRabbit, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(broker, []rabbitmq.QueueConfig{
			{QueueName: "payment_completed", RoutingKey: paymentservice.EventPaymentCompleted},
			{QueueName: "payment_failed", RoutingKey: paymentservice.EventPaymentFailed},
		})
		if err != nil {
			return nil, err
		}
		events = rabbitmq.NewPublisher(ch)
	} else {
		logger.Warn("rabbitmq address is empty, event publishing disabled")
	}

	providerClient := paymentprovider.NewClient(
		cfg.DevCraftor.APIKey,
		cfg.DevCraftor.APISecret,
		cfg.DevCraftor.BaseURL,
		cfg.DevCraftor.Timeout,
	)

	jwtMaker := jwtlib.NewMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)

	authService := authservice.NewAuthService(db, jwtMaker)
	subscriptionService := subservice.NewSubscriptionService(db, db, providerClient, cacheRedis,
		subservice.Options{
			PricePerDay: cfg.Pricing.PricePerDay,
			FrontendURL: cfg.FrontendURL,
			BackendURL:  cfg.BackendURL,
		}, logger)
	deviceService := deviceservice.NewDeviceService(db, subscriptionService, logger)
	paymentService := paymentservice.NewPaymentService(db, db, cacheRedis, events, logger)
	sessionService := sessionservice.NewSessionService(db, db, logger)
	adminService := adminservice.NewAdminService(db)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:         authService,
		Device:       deviceService,
		Subscription: subscriptionService,
		Payment:      paymentService,
		Session:      sessionService,
		Admin:        adminService,
	}, cfg.DevCraftor.WebhookSecret)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		broker: broker,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста.
// По отмене сервер гасится с бюджетом 15 секунд, соединения закрываются.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.db.DB.Close(); cerr != nil {
			a.logger.Error("failed to close database", sl.Err(cerr))
		}
		if a.broker != nil {
			if cerr := a.broker.Close(); cerr != nil {
				a.logger.Error("failed to close broker connection", sl.Err(cerr))
			}
		}
		return err
	}
}
