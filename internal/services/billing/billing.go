// Package billing связывает состояние подписки у платёжного провайдера
// с локальной записью пользователя: создание checkout- и portal-сессий,
// обработка webhook-событий и проекция статуса подписки.
//
// Тариф пользователя меняется только из webhook-обработчика, чтобы
// локальная запись всегда следовала за данными провайдера.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/scrubtech-backend/internal/config"
	"github.com/magabrotheeeer/scrubtech-backend/internal/lib/sl"
	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
	"github.com/magabrotheeeer/scrubtech-backend/internal/paymentprovider"
	"github.com/magabrotheeeer/scrubtech-backend/internal/rabbitmq"
)

// Ошибки платёжных операций.
var (
	// ErrInvalidPrice неизвестный идентификатор цены в запросе.
	ErrInvalidPrice = errors.New("unknown price id")
	// ErrNoSubscription у пользователя нет платёжной связи с провайдером.
	ErrNoSubscription = errors.New("no billing relationship established")
)

// Repository определяет методы хранилища, нужные платёжному сервису.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error)
	AttachStripeSubscription(ctx context.Context, userUID, customerID, subscriptionID string, tier models.Tier, status string) error
	UpdateSubscriptionTier(ctx context.Context, userUID string, tier models.Tier, status string) error
	ClearStripeSubscription(ctx context.Context, userUID string) error
	HasWebhookEvent(ctx context.Context, eventID string) (bool, error)
	InsertWebhookEvent(ctx context.Context, eventID, eventType string) (bool, error)
}

// Provider описывает клиент платёжного провайдера.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req paymentprovider.CreateCheckoutSessionRequest) (*paymentprovider.CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*paymentprovider.PortalSession, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*paymentprovider.Subscription, error)
}

// Publisher публикует события уведомлений в очередь.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service реализует жизненный цикл подписки.
type Service struct {
	repo      Repository
	provider  Provider
	publisher Publisher
	prices    config.Stripe
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, provider Provider, publisher Publisher, prices config.Stripe, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		provider:  provider,
		publisher: publisher,
		prices:    prices,
		log:       log,
	}
}

// TierForPrice возвращает тариф, соответствующий идентификатору цены.
func (s *Service) TierForPrice(priceID string) (models.Tier, bool) {
	switch priceID {
	case s.prices.PriceStandardMonthly, s.prices.PriceStandardAnnual:
		return models.TierStandard, true
	case s.prices.PricePremiumMonthly, s.prices.PricePremiumAnnual:
		return models.TierPremium, true
	default:
		return models.TierFree, false
	}
}

// CreateCheckoutSession создаёт checkout-сессию и возвращает URL редиректа.
//
// Локальное состояние не меняется: тариф обновится позже из webhook.
func (s *Service) CreateCheckoutSession(ctx context.Context, userUID, priceID, successURL, cancelURL string) (string, error) {
	if _, ok := s.TierForPrice(priceID); !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidPrice, priceID)
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return "", err
	}

	session, err := s.provider.CreateCheckoutSession(ctx, paymentprovider.CreateCheckoutSessionRequest{
		PriceID:           priceID,
		ClientReferenceID: user.UID,
		CustomerEmail:     user.Email,
		SuccessURL:        successURL,
		CancelURL:         cancelURL,
	})
	if err != nil {
		return "", err
	}

	s.log.Info("checkout session created",
		slog.String("user_uid", userUID),
		slog.String("session_id", session.ID))
	return session.URL, nil
}

// CreatePortalSession создаёт portal-сессию для управления подпиской.
func (s *Service) CreatePortalSession(ctx context.Context, userUID, returnURL string) (string, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return "", err
	}
	if user.StripeCustomerID == nil {
		return "", ErrNoSubscription
	}

	session, err := s.provider.CreatePortalSession(ctx, *user.StripeCustomerID, returnURL)
	if err != nil {
		return "", err
	}
	return session.URL, nil
}

// GetStatus возвращает проекцию статуса подписки для клиента.
//
// При недоступности провайдера возвращаются локальные данные и Degraded=true:
// сбой платёжного API не должен ломать загрузку страницы.
func (s *Service) GetStatus(ctx context.Context, userUID string) (*models.SubscriptionStatus, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	status := &models.SubscriptionStatus{
		Tier:   user.SubscriptionTier,
		Active: user.SubscriptionStatus == "active" || user.SubscriptionStatus == "trialing",
	}
	if user.StripeSubscriptionID == nil {
		return status, nil
	}

	sub, err := s.provider.GetSubscription(ctx, *user.StripeSubscriptionID)
	if err != nil {
		s.log.Warn("failed to fetch live subscription, degrading to local data",
			slog.String("user_uid", userUID), sl.Err(err))
		status.Degraded = true
		return status, nil
	}

	status.Active = sub.Status == "active" || sub.Status == "trialing"
	status.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
	if sub.CurrentPeriodEnd > 0 {
		periodEnd := unixTime(sub.CurrentPeriodEnd)
		status.CurrentPeriodEnd = &periodEnd
	}
	return status, nil
}

func (s *Service) publishTierChanged(user *models.User, oldTier, newTier models.Tier) {
	if s.publisher == nil || oldTier == newTier {
		return
	}
	event := models.TierChangedEvent{
		Email:    user.Email,
		Username: user.Username,
		OldTier:  oldTier,
		NewTier:  newTier,
	}
	if err := s.publisher.Publish(rabbitmq.RoutingKeyTierChanged, event); err != nil {
		s.log.Warn("failed to publish tier change notification", sl.Err(err))
	}
}
