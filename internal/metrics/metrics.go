// Package metrics описывает счётчики Prometheus приложения.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEvents счётчик webhook-событий по типу и результату обработки.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrubtech_webhook_events_total",
		Help: "Processed payment provider webhook events.",
	}, []string{"type", "result"})

	// SelectionDenied счётчик отклонённых попыток смены специализаций по причине.
	SelectionDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrubtech_selection_denied_total",
		Help: "Specialty selection attempts rejected by the entitlement policy.",
	}, []string{"reason"})

	// TierChanges счётчик переходов между тарифами.
	TierChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrubtech_tier_changes_total",
		Help: "Subscription tier transitions applied from webhooks.",
	}, []string{"from", "to"})
)
