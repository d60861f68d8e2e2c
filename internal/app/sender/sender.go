// Package sender собирает и запускает воркер отправки email-уведомлений:
// читает события из очередей RabbitMQ и рассылает письма через SMTP.
package sender

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/scrubtech-backend/internal/config"
	"github.com/magabrotheeeer/scrubtech-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/scrubtech-backend/internal/rabbitmq"
	notificationservice "github.com/magabrotheeeer/scrubtech-backend/internal/services/notification"
)

// App агрегирует соединение с брокером и сервис уведомлений.
type App struct {
	conn                *amqp.Connection
	ch                  *amqp.Channel
	notificationService *notificationservice.Service
	logger              *slog.Logger
}

// New собирает воркер уведомлений из конфигурации.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.AddressRabbitMQ, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	notificationService := notificationservice.New(transport, logger)

	return &App{
		conn:                conn,
		ch:                  ch,
		notificationService: notificationService,
		logger:              logger,
	}, nil
}

// Run запускает потребителей очередей и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, "notifications.tier-changed", a.notificationService.SendTierChanged)
	if err != nil {
		a.logger.Error("failed to start tier-changed consumer", slog.Any("err", err))
		return err
	}

	err = rabbitmq.ConsumerMessage(ctx, a.ch, "notifications.trial-ending", a.notificationService.SendTrialEnding)
	if err != nil {
		a.logger.Error("failed to start trial-ending consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notification sender shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}
