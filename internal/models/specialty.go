package models

import "time"

// Specialty описывает хирургическую специализацию из справочника.
type Specialty struct {
	Slug string `json:"slug"` // Уникальный идентификатор, например "orthopedics"
	Name string `json:"name"` // Отображаемое название
}

// Selection представляет текущий выбор специализаций пользователя.
type Selection struct {
	Specialties []string   `json:"specialties"`            // Слаги выбранных специализаций
	LockedUntil *time.Time `json:"locked_until,omitempty"` // Момент окончания блокировки, nil если блокировки нет
}

// DummySelectRequest используется для приёма запроса на смену выбора
// специализаций из JSON-запроса.
type DummySelectRequest struct {
	Specialties []string `json:"specialties" validate:"required"`
}

// TierLimits описывает вычисленные ограничения тарифа для клиента.
type TierLimits struct {
	MaxSpecialties int  `json:"max_specialties"` // -1 означает без ограничений
	Changeable     bool `json:"changeable"`
}
