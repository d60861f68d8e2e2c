// Package entitlement содержит чистую бизнес-логику ограничений тарифов:
// сколько специализаций доступно пользователю и когда выбор можно менять.
//
// Логика не имеет побочных эффектов: решение принимается только по тарифу,
// текущему выбору и метке блокировки. Запись результата выполняет сервис
// выбора в одной транзакции с проверкой.
package entitlement

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/magabrotheeeer/scrubtech-backend/internal/config"
	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
)

// Unlimited обозначает отсутствие лимита на количество специализаций.
const Unlimited = -1

// Ошибки проверки выбора специализаций. Все они исправимы пользователем
// и возвращаются клиенту как 4xx с сообщением из текста ошибки.
var (
	ErrEmptySelection   = errors.New("selection must contain at least one specialty")
	ErrLimitExceeded    = errors.New("specialty limit exceeded")
	ErrSelectionLocked  = errors.New("specialty selection is locked")
	ErrUnknownSpecialty = errors.New("unknown specialty")
)

// Policy вычисляет ограничения тарифов. Лимиты и длительность блокировки
// берутся из конфигурации, а не зашиваются в код.
type Policy struct {
	freeMax     int
	standardMax int
	lockMonths  int
}

// New создает Policy из конфигурации.
func New(cfg config.Entitlements) *Policy {
	return &Policy{
		freeMax:     cfg.FreeMax,
		standardMax: cfg.StandardMax,
		lockMonths:  cfg.LockMonths,
	}
}

// Limits возвращает лимиты тарифа: максимум специализаций и
// возможность менять выбор в принципе.
func (p *Policy) Limits(tier models.Tier) models.TierLimits {
	switch tier {
	case models.TierPremium:
		return models.TierLimits{MaxSpecialties: Unlimited, Changeable: true}
	case models.TierStandard:
		return models.TierLimits{MaxSpecialties: p.standardMax, Changeable: true}
	default:
		// Бесплатный тариф: выбор становится постоянным после первого сохранения.
		return models.TierLimits{MaxSpecialties: p.freeMax, Changeable: false}
	}
}

// CanModify сообщает, может ли пользователь менять выбор в момент now.
//
// Бесплатный тариф блокируется навсегда самим фактом непустого выбора,
// standard — до истечения specialty_locked_until, premium — никогда.
func (p *Policy) CanModify(user *models.User, currentSelection []string, now time.Time) bool {
	switch user.SubscriptionTier {
	case models.TierPremium:
		return true
	case models.TierStandard:
		return user.SpecialtyLockedUntil == nil || !now.Before(*user.SpecialtyLockedUntil)
	default:
		return len(currentSelection) == 0
	}
}

// ValidateSelection проверяет запрошенный набор специализаций и возвращает
// нормализованный (без дубликатов, отсортированный) набор слагов.
//
// Лимит проверяется по запрошенному набору, а не по текущему: существующий
// выбор, превышающий лимит после понижения тарифа, не трогается до
// следующей попытки изменения.
func (p *Policy) ValidateSelection(user *models.User, currentSelection, requested []string, now time.Time) ([]string, error) {
	normalized := dedupe(requested)
	if len(normalized) == 0 {
		return nil, ErrEmptySelection
	}

	if !p.CanModify(user, currentSelection, now) {
		return nil, fmt.Errorf("%w: %s", ErrSelectionLocked, p.lockReason(user, now))
	}

	limits := p.Limits(user.SubscriptionTier)
	if limits.MaxSpecialties != Unlimited && len(normalized) > limits.MaxSpecialties {
		return nil, fmt.Errorf("%w: your plan allows up to %d", ErrLimitExceeded, limits.MaxSpecialties)
	}
	return normalized, nil
}

// LockAfterSave возвращает метку окончания блокировки, которую нужно
// записать после сохранения выбора.
//
// Для standard это now + настроенное число месяцев. Для free метка не
// нужна: сигналом постоянной блокировки служит сам непустой выбор.
// Для premium блокировка не применяется.
func (p *Policy) LockAfterSave(tier models.Tier, now time.Time) *time.Time {
	if tier != models.TierStandard {
		return nil
	}
	lockedUntil := now.AddDate(0, p.lockMonths, 0)
	return &lockedUntil
}

func (p *Policy) lockReason(user *models.User, now time.Time) string {
	if user.SubscriptionTier == models.TierStandard && user.SpecialtyLockedUntil != nil {
		remaining := user.SpecialtyLockedUntil.Sub(now).Round(time.Hour)
		return fmt.Sprintf("next change available in %s", remaining)
	}
	return "upgrade to change your specialties"
}

func dedupe(slugs []string) []string {
	seen := make(map[string]struct{}, len(slugs))
	result := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		result = append(result, slug)
	}
	sort.Strings(result)
	return result
}
