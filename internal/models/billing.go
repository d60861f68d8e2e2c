package models

import "time"

// WebhookEvent запись об обработанном событии платёжного провайдера.
//
// Уникальность по EventID гарантирует, что повторная доставка
// одного и того же события не применит изменение тарифа дважды.
type WebhookEvent struct {
	EventID    string
	Type       string
	ReceivedAt time.Time
}

// SubscriptionStatus проекция состояния подписки для клиента.
//
// Live-поля заполняются из ответа провайдера; при его недоступности
// возвращаются только локальные данные и Degraded=true.
type SubscriptionStatus struct {
	Tier              Tier       `json:"tier"`
	Active            bool       `json:"active"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end,omitempty"`
	Degraded          bool       `json:"degraded,omitempty"`
}

// DummyCheckoutRequest используется для приёма запроса на создание
// checkout-сессии из JSON-запроса.
type DummyCheckoutRequest struct {
	PriceID    string `json:"price_id" validate:"required"`
	SuccessURL string `json:"success_url" validate:"required,url"`
	CancelURL  string `json:"cancel_url" validate:"required,url"`
}

// DummyPortalRequest используется для приёма запроса на создание
// portal-сессии из JSON-запроса.
type DummyPortalRequest struct {
	ReturnURL string `json:"return_url" validate:"required,url"`
}

// TierChangedEvent сообщение в очередь уведомлений о смене тарифа.
type TierChangedEvent struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	OldTier  Tier   `json:"old_tier"`
	NewTier  Tier   `json:"new_tier"`
}

// TrialEndingEvent сообщение в очередь уведомлений об окончании триала.
type TrialEndingEvent struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}
