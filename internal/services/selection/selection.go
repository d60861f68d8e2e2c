// Package selection содержит бизнес-логику выбора специализаций:
// проверку запроса через политику тарифов, атомарное сохранение
// и кеширование текущего выбора.
package selection

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
	"github.com/magabrotheeeer/scrubtech-backend/internal/services/entitlement"
)

// Repository определяет методы для работы с выбором специализаций в хранилище.
type Repository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// GetSelection возвращает текущий выбор пользователя.
	GetSelection(ctx context.Context, userUID string) (*models.Selection, error)
	// UpdateSelectionTx атомарно заменяет выбор после успешной проверки.
	UpdateSelectionTx(ctx context.Context, userUID string,
		validate func(user *models.User, current []string) ([]string, *time.Time, error)) (*models.Selection, error)
	// ListSpecialties возвращает справочник специализаций.
	ListSpecialties(ctx context.Context) ([]*models.Specialty, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Status текущее состояние выбора для клиента.
type Status struct {
	Selection *models.Selection `json:"selection"`
	Limits    models.TierLimits `json:"limits"`
	CanModify bool              `json:"can_modify"`
	Tier      models.Tier       `json:"tier"`
}

// Service реализует бизнес-логику выбора специализаций.
type Service struct {
	repo   Repository
	policy *entitlement.Policy
	cache  Cache
	log    *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, policy *entitlement.Policy, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		policy: policy,
		cache:  cache,
		log:    log,
	}
}

// Select заменяет выбор специализаций пользователя.
//
// Слаги проверяются по справочнику, затем политика и запись выполняются
// в одной транзакции поверх заблокированной строки пользователя.
func (s *Service) Select(ctx context.Context, userUID string, requested []string) (*models.Selection, error) {
	known, err := s.knownSlugs(ctx)
	if err != nil {
		return nil, err
	}
	for _, slug := range requested {
		if _, ok := known[slug]; !ok {
			return nil, fmt.Errorf("%w: %q", entitlement.ErrUnknownSpecialty, slug)
		}
	}

	now := time.Now().UTC()
	result, err := s.repo.UpdateSelectionTx(ctx, userUID,
		func(user *models.User, current []string) ([]string, *time.Time, error) {
			normalized, err := s.policy.ValidateSelection(user, current, requested, now)
			if err != nil {
				return nil, nil, err
			}
			return normalized, s.policy.LockAfterSave(user.SubscriptionTier, now), nil
		})
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("selection:%s", userUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate selection cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	s.log.Info("selection saved",
		slog.String("user_uid", userUID),
		slog.Int("count", len(result.Specialties)))
	return result, nil
}

// GetStatus возвращает текущий выбор, лимиты тарифа и возможность изменения.
func (s *Service) GetStatus(ctx context.Context, userUID string) (*Status, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	var sel *models.Selection
	cacheKey := fmt.Sprintf("selection:%s", userUID)
	found, err := s.cache.Get(cacheKey, &sel)
	if err != nil {
		s.log.Warn("failed to read selection cache", slog.String("key", cacheKey), slog.Any("err", err))
		found = false
	}
	if !found {
		sel, err = s.repo.GetSelection(ctx, userUID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(cacheKey, sel, time.Hour); err != nil {
			s.log.Warn("failed to cache selection", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}

	return &Status{
		Selection: sel,
		Limits:    s.policy.Limits(user.SubscriptionTier),
		CanModify: s.policy.CanModify(user, sel.Specialties, time.Now().UTC()),
		Tier:      user.SubscriptionTier,
	}, nil
}

// Catalog возвращает справочник специализаций вместе с лимитами тарифа
// запрашивающего пользователя.
func (s *Service) Catalog(ctx context.Context, userUID string) ([]*models.Specialty, models.TierLimits, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, models.TierLimits{}, err
	}
	specialties, err := s.repo.ListSpecialties(ctx)
	if err != nil {
		return nil, models.TierLimits{}, err
	}
	return specialties, s.policy.Limits(user.SubscriptionTier), nil
}

// HasSpecialty сообщает, входит ли специализация в текущий выбор пользователя.
// Используется для гейтинга контента процедур.
func (s *Service) HasSpecialty(ctx context.Context, userUID, slug string) (bool, error) {
	status, err := s.GetStatus(ctx, userUID)
	if err != nil {
		return false, err
	}
	for _, have := range status.Selection.Specialties {
		if have == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) knownSlugs(ctx context.Context) (map[string]struct{}, error) {
	var specialties []*models.Specialty
	const cacheKey = "specialties:catalog"
	found, err := s.cache.Get(cacheKey, &specialties)
	if err != nil {
		s.log.Warn("failed to read catalog cache", slog.Any("err", err))
		found = false
	}
	if !found {
		specialties, err = s.repo.ListSpecialties(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(cacheKey, specialties, 12*time.Hour); err != nil {
			s.log.Warn("failed to cache catalog", slog.Any("err", err))
		}
	}
	known := make(map[string]struct{}, len(specialties))
	for _, sp := range specialties {
		known[sp.Slug] = struct{}{}
	}
	return known, nil
}
