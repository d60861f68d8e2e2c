// Package content реализует бизнес-логику справочника процедур,
// личных заметок и избранного.
//
// Доступ к процедурам ограничен выбранными специализациями пользователя,
// а ссылки на видео возвращаются только на платных тарифах.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
)

var (
	// ErrNotSelected специализация не входит в текущий выбор пользователя.
	ErrNotSelected = errors.New("specialty is not in your selection")
	// ErrNoteNotFound заметка не найдена или принадлежит другому пользователю.
	ErrNoteNotFound = errors.New("note not found")
	// ErrFavoriteNotFound процедура не находится в избранном пользователя.
	ErrFavoriteNotFound = errors.New("favorite not found")
)

// Repository описывает методы хранилища для работы с процедурами и заметками.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	ListProcedures(ctx context.Context, specialtySlug string, limit, offset int) ([]*models.Procedure, error)
	ReadProcedure(ctx context.Context, id int) (*models.Procedure, error)
	CreateNote(ctx context.Context, note models.Note) (int, error)
	ListNotes(ctx context.Context, userUID string, limit, offset int) ([]*models.Note, error)
	UpdateNote(ctx context.Context, userUID string, id int, text string) (int, error)
	RemoveNote(ctx context.Context, userUID string, id int) (int, error)
	AddFavorite(ctx context.Context, userUID string, procedureID int) error
	RemoveFavorite(ctx context.Context, userUID string, procedureID int) (int, error)
	ListFavorites(ctx context.Context, userUID string) ([]*models.Procedure, error)
}

// SelectionChecker проверяет принадлежность специализации к выбору пользователя.
type SelectionChecker interface {
	HasSpecialty(ctx context.Context, userUID, slug string) (bool, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, dest any) (bool, error)
	Set(key string, value any, ttl time.Duration) error
	Invalidate(key string) error
}

// Service предоставляет операции над процедурами, заметками и избранным.
type Service struct {
	repo      Repository
	selection SelectionChecker
	cache     Cache
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, selection SelectionChecker, cache Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, selection: selection, cache: cache, log: log}
}

// ListProcedures возвращает процедуры по специализации, если она входит
// в текущий выбор пользователя.
//
// Списки кэшируются до обрезки video_url, поэтому один кэш обслуживает
// пользователей разных тарифов.
func (s *Service) ListProcedures(ctx context.Context, userUID, specialtySlug string, limit, offset int) ([]*models.Procedure, error) {
	const op = "services.content.ListProcedures"

	ok, err := s.selection.HasSpecialty(ctx, userUID, specialtySlug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNotSelected)
	}

	cacheKey := fmt.Sprintf("procedures:%s:%d:%d", specialtySlug, limit, offset)
	var procedures []*models.Procedure
	found, err := s.cache.Get(cacheKey, &procedures)
	if err != nil {
		s.log.Warn("failed to read procedures cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if !found {
		procedures, err = s.repo.ListProcedures(ctx, specialtySlug, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := s.cache.Set(cacheKey, procedures, 10*time.Minute); err != nil {
			s.log.Warn("failed to cache procedures", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.SubscriptionTier.IsPaid() {
		for _, p := range procedures {
			p.VideoURL = ""
		}
	}
	return procedures, nil
}

// ReadProcedure возвращает процедуру с полным описанием.
//
// Процедура доступна, только если её специализация входит в выбор пользователя.
func (s *Service) ReadProcedure(ctx context.Context, userUID string, id int) (*models.Procedure, error) {
	const op = "services.content.ReadProcedure"

	procedure, err := s.repo.ReadProcedure(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ok, err := s.selection.HasSpecialty(ctx, userUID, procedure.SpecialtySlug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNotSelected)
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.SubscriptionTier.IsPaid() {
		procedure.VideoURL = ""
	}
	return procedure, nil
}

// CreateNote сохраняет личную заметку пользователя к процедуре.
func (s *Service) CreateNote(ctx context.Context, userUID string, req models.DummyNoteRequest) (int, error) {
	const op = "services.content.CreateNote"

	if _, err := s.repo.ReadProcedure(ctx, req.ProcedureID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.repo.CreateNote(ctx, models.Note{
		UserUID:     userUID,
		ProcedureID: req.ProcedureID,
		Text:        req.Text,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListNotes возвращает заметки пользователя.
func (s *Service) ListNotes(ctx context.Context, userUID string, limit, offset int) ([]*models.Note, error) {
	const op = "services.content.ListNotes"

	notes, err := s.repo.ListNotes(ctx, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return notes, nil
}

// UpdateNote изменяет текст заметки пользователя.
func (s *Service) UpdateNote(ctx context.Context, userUID string, id int, text string) error {
	const op = "services.content.UpdateNote"

	affected, err := s.repo.UpdateNote(ctx, userUID, id, text)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoteNotFound)
	}
	return nil
}

// RemoveNote удаляет заметку пользователя.
func (s *Service) RemoveNote(ctx context.Context, userUID string, id int) error {
	const op = "services.content.RemoveNote"

	affected, err := s.repo.RemoveNote(ctx, userUID, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoteNotFound)
	}
	return nil
}

// AddFavorite добавляет процедуру в избранное пользователя.
func (s *Service) AddFavorite(ctx context.Context, userUID string, procedureID int) error {
	const op = "services.content.AddFavorite"

	if _, err := s.repo.ReadProcedure(ctx, procedureID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.AddFavorite(ctx, userUID, procedureID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveFavorite убирает процедуру из избранного пользователя.
func (s *Service) RemoveFavorite(ctx context.Context, userUID string, procedureID int) error {
	const op = "services.content.RemoveFavorite"

	affected, err := s.repo.RemoveFavorite(ctx, userUID, procedureID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrFavoriteNotFound)
	}
	return nil
}

// ListFavorites возвращает избранные процедуры пользователя.
func (s *Service) ListFavorites(ctx context.Context, userUID string) ([]*models.Procedure, error) {
	const op = "services.content.ListFavorites"

	procedures, err := s.repo.ListFavorites(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return procedures, nil
}
