package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации в exchange "notifications".
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Ключи маршрутизации событий уведомлений.
const (
	RoutingKeyTierChanged = "tier.changed"
	RoutingKeyTrialEnding = "trial.ending"
)

// GetNotificationQueues возвращает очереди воркера уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.tier-changed", RoutingKey: RoutingKeyTierChanged},
		{QueueName: "notifications.trial-ending", RoutingKey: RoutingKeyTrialEnding},
	}
}
