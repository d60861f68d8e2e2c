package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID                  string     // Уникальный идентификатор пользователя
	Email                string     // Электронная почта
	Username             string     // Имя пользователя (уникальное)
	PasswordHash         string     // Хэш пароля пользователя
	Role                 string     // Роль пользователя, admin или user
	SubscriptionTier     Tier       // Текущий тариф подписки
	SubscriptionStatus   string     // Статус подписки у платёжного провайдера
	TrialEndDate         *time.Time // Дата истечения пробного периода
	SpecialtyLockedUntil *time.Time // До какого момента выбор специализаций заблокирован
	StripeCustomerID     *string    // Идентификатор клиента у платёжного провайдера
	StripeSubscriptionID *string    // Идентификатор подписки у платёжного провайдера
	CreatedAt            time.Time
}

// DummyRegisterRequest используется для приёма данных регистрации из JSON-запроса.
type DummyRegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
}

// DummyLoginRequest используется для приёма данных входа из JSON-запроса.
type DummyLoginRequest struct {
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required"`
}
