// Package scrubtech собирает и запускает основное HTTP-приложение:
// хранилище, кеш, брокер сообщений, платёжный провайдер и все сервисы.
package scrubtech

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/scrubtech-backend/internal/cache"
	"github.com/magabrotheeeer/scrubtech-backend/internal/config"
	"github.com/magabrotheeeer/scrubtech-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/scrubtech-backend/internal/migrations"
	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
	"github.com/magabrotheeeer/scrubtech-backend/internal/paymentprovider"
	"github.com/magabrotheeeer/scrubtech-backend/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/scrubtech-backend/internal/services/auth"
	billingservice "github.com/magabrotheeeer/scrubtech-backend/internal/services/billing"
	communityservice "github.com/magabrotheeeer/scrubtech-backend/internal/services/community"
	contentservice "github.com/magabrotheeeer/scrubtech-backend/internal/services/content"
	"github.com/magabrotheeeer/scrubtech-backend/internal/services/entitlement"
	selectionservice "github.com/magabrotheeeer/scrubtech-backend/internal/services/selection"
	"github.com/magabrotheeeer/scrubtech-backend/internal/storage/repository"
)

// App агрегирует HTTP-сервер и ресурсы, требующие освобождения при остановке.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	rabbitmq *amqp.Connection
}

// New собирает приложение из конфигурации: подключает базу, прогоняет
// миграции, поднимает кеш и брокер, связывает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}
	if err = repository.CheckDatabaseReady(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitMQ.AddressRabbitMQ, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	rabbitChannel, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewNotificationPublisher(rabbitChannel)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	providerClient := paymentprovider.NewClient(cfg.Stripe.SecretKey, cfg.Stripe.APITimeout)

	policy := entitlement.New(cfg.Entitlements)
	authService := authservice.NewAuthService(db, jwtMaker, models.ParseTier(cfg.Entitlements.DefaultTier))
	selectionService := selectionservice.New(db, policy, cacheRedis, logger)
	billingService := billingservice.New(db, providerClient, publisher, cfg.Stripe, logger)
	contentService := contentservice.New(db, selectionService, cacheRedis, logger)
	communityService := communityservice.New(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:      authService,
		Selection: selectionService,
		Billing:   billingService,
		Content:   contentService,
		Community: communityService,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		rabbitmq: rabbitConn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
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
		_ = a.db.DB.Close()
		_ = a.rabbitmq.Close()
		return err
	}
}
