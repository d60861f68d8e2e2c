package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/scrubtech-backend/internal/lib/sl"
	"github.com/magabrotheeeer/scrubtech-backend/internal/metrics"
	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
	"github.com/magabrotheeeer/scrubtech-backend/internal/paymentprovider"
	"github.com/magabrotheeeer/scrubtech-backend/internal/rabbitmq"
)

// Типы webhook-событий провайдера, которые обрабатывает сервис.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventTrialWillEnd        = "customer.subscription.trial_will_end"
)

// ProcessWebhookEvent проверяет подпись уведомления и применяет событие
// к локальной записи пользователя.
//
// Провайдер доставляет события минимум один раз и без гарантии порядка,
// поэтому обработка устроена так:
//   - уже обработанные event id пропускаются по журналу webhook_events;
//   - тариф выводится из актуального снимка подписки, запрошенного в момент
//     обработки, а не из тела события — устаревшее событие не может
//     откатить тариф назад;
//   - запись в журнал выполняется после успешного применения; повторная
//     обработка при сбое между этими шагами безопасна, так как эффект
//     выводится из того же снимка.
func (s *Service) ProcessWebhookEvent(ctx context.Context, payload []byte, signatureHeader string) error {
	if err := paymentprovider.VerifySignature(payload, signatureHeader,
		s.prices.WebhookSecret, paymentprovider.DefaultTolerance, time.Now()); err != nil {
		return err
	}

	var event paymentprovider.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal webhook event: %w", err)
	}

	log := s.log.With(
		slog.String("event_id", event.ID),
		slog.String("event_type", event.Type))

	switch event.Type {
	case EventCheckoutCompleted, EventSubscriptionUpdated,
		EventSubscriptionDeleted, EventTrialWillEnd:
	default:
		log.Info("ignored webhook event")
		metrics.WebhookEvents.WithLabelValues(event.Type, "ignored").Inc()
		return nil
	}

	seen, err := s.repo.HasWebhookEvent(ctx, event.ID)
	if err != nil {
		return err
	}
	if seen {
		log.Info("duplicate webhook event skipped")
		metrics.WebhookEvents.WithLabelValues(event.Type, "duplicate").Inc()
		return nil
	}

	switch event.Type {
	case EventCheckoutCompleted:
		err = s.applyCheckoutCompleted(ctx, log, event.Data.Object)
	case EventSubscriptionUpdated:
		err = s.applySubscriptionUpdated(ctx, log, event.Data.Object)
	case EventSubscriptionDeleted:
		err = s.applySubscriptionDeleted(ctx, log, event.Data.Object)
	case EventTrialWillEnd:
		err = s.applyTrialWillEnd(ctx, log, event.Data.Object)
	}
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(event.Type, "error").Inc()
		return err
	}

	if _, err := s.repo.InsertWebhookEvent(ctx, event.ID, event.Type); err != nil {
		return err
	}
	metrics.WebhookEvents.WithLabelValues(event.Type, "processed").Inc()
	log.Info("webhook event processed")
	return nil
}

// applyCheckoutCompleted привязывает подписку провайдера к пользователю
// и устанавливает тариф по оплаченной цене.
func (s *Service) applyCheckoutCompleted(ctx context.Context, log *slog.Logger, object json.RawMessage) error {
	var session paymentprovider.CheckoutSession
	if err := json.Unmarshal(object, &session); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}
	if session.ClientReferenceID == "" || session.Subscription == "" {
		return fmt.Errorf("checkout session %s missing user reference or subscription", session.ID)
	}

	user, err := s.repo.GetUser(ctx, session.ClientReferenceID)
	if err != nil {
		return err
	}

	sub, err := s.provider.GetSubscription(ctx, session.Subscription)
	if err != nil {
		return err
	}
	tier, ok := s.TierForPrice(sub.PriceID())
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, sub.PriceID())
	}

	if err := s.repo.AttachStripeSubscription(ctx, user.UID,
		session.Customer, sub.ID, tier, sub.Status); err != nil {
		return err
	}

	log.Info("checkout completed",
		slog.String("user_uid", user.UID),
		slog.String("tier", tier.String()))
	metrics.TierChanges.WithLabelValues(user.SubscriptionTier.String(), tier.String()).Inc()
	s.publishTierChanged(user, user.SubscriptionTier, tier)
	return nil
}

// applySubscriptionUpdated перечитывает снимок подписки и переустанавливает тариф.
func (s *Service) applySubscriptionUpdated(ctx context.Context, log *slog.Logger, object json.RawMessage) error {
	var eventSub paymentprovider.Subscription
	if err := json.Unmarshal(object, &eventSub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	user, err := s.repo.GetUserByStripeSubscriptionID(ctx, eventSub.ID)
	if err != nil {
		return err
	}

	// Снимок запрашивается заново: событие могло устареть в очереди доставки.
	sub, err := s.provider.GetSubscription(ctx, eventSub.ID)
	if err != nil {
		return err
	}
	tier, ok := s.TierForPrice(sub.PriceID())
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, sub.PriceID())
	}

	if err := s.repo.UpdateSubscriptionTier(ctx, user.UID, tier, sub.Status); err != nil {
		return err
	}

	if tier != user.SubscriptionTier {
		log.Info("subscription tier updated",
			slog.String("user_uid", user.UID),
			slog.String("from", user.SubscriptionTier.String()),
			slog.String("to", tier.String()))
		metrics.TierChanges.WithLabelValues(user.SubscriptionTier.String(), tier.String()).Inc()
		s.publishTierChanged(user, user.SubscriptionTier, tier)
	}
	return nil
}

// applySubscriptionDeleted понижает пользователя до бесплатного тарифа.
func (s *Service) applySubscriptionDeleted(ctx context.Context, log *slog.Logger, object json.RawMessage) error {
	var eventSub paymentprovider.Subscription
	if err := json.Unmarshal(object, &eventSub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	user, err := s.repo.GetUserByStripeSubscriptionID(ctx, eventSub.ID)
	if err != nil {
		return err
	}

	if err := s.repo.ClearStripeSubscription(ctx, user.UID); err != nil {
		return err
	}

	log.Info("subscription deleted, user downgraded",
		slog.String("user_uid", user.UID),
		slog.String("from", user.SubscriptionTier.String()))
	metrics.TierChanges.WithLabelValues(user.SubscriptionTier.String(), models.TierFree.String()).Inc()
	s.publishTierChanged(user, user.SubscriptionTier, models.TierFree)
	return nil
}

// applyTrialWillEnd публикует уведомление об окончании пробного периода.
func (s *Service) applyTrialWillEnd(ctx context.Context, log *slog.Logger, object json.RawMessage) error {
	var eventSub paymentprovider.Subscription
	if err := json.Unmarshal(object, &eventSub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	user, err := s.repo.GetUserByStripeSubscriptionID(ctx, eventSub.ID)
	if err != nil {
		return err
	}

	if s.publisher != nil {
		event := models.TrialEndingEvent{Email: user.Email, Username: user.Username}
		if err := s.publisher.Publish(rabbitmq.RoutingKeyTrialEnding, event); err != nil {
			s.log.Warn("failed to publish trial ending notification", sl.Err(err))
		}
	}
	log.Info("trial ending notification queued", slog.String("user_uid", user.UID))
	return nil
}

func unixTime(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}
