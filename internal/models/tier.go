// Package models содержит доменные структуры сервиса: пользователей,
// специализации, процедуры, заметки, форум и платёжные записи.
package models

// Tier определяет уровень подписки пользователя.
//
// От уровня зависят лимиты выбора специализаций и доступ к контенту.
type Tier string

const (
	// TierFree бесплатный тариф: одна специализация, выбор постоянный.
	TierFree Tier = "free"
	// TierStandard платный тариф: несколько специализаций, смена раз в два месяца.
	TierStandard Tier = "standard"
	// TierPremium платный тариф: без ограничений.
	TierPremium Tier = "premium"
)

// ParseTier возвращает Tier по строке из базы или запроса.
// Неизвестные значения считаются бесплатным тарифом.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierStandard:
		return TierStandard
	case TierPremium:
		return TierPremium
	default:
		return TierFree
	}
}

// IsPaid сообщает, является ли тариф платным.
func (t Tier) IsPaid() bool {
	return t == TierStandard || t == TierPremium
}

func (t Tier) String() string {
	return string(t)
}
