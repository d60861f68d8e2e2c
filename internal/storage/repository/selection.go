package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
)

// GetSelection возвращает текущий выбор специализаций пользователя
// вместе с моментом окончания блокировки.
func (s *Storage) GetSelection(ctx context.Context, userUID string) (*models.Selection, error) {
	const op = "storage.GetSelection"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var lockedUntil sql.NullTime
	query := `SELECT specialty_locked_until FROM users WHERE uid = $1`
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&lockedUntil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query = `SELECT specialty_slug FROM user_specialties
			 WHERE user_uid = $1
			 ORDER BY specialty_slug`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	result := &models.Selection{Specialties: []string{}}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result.Specialties = append(result.Specialties, slug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if lockedUntil.Valid {
		result.LockedUntil = &lockedUntil.Time
	}
	return result, nil
}

// UpdateSelectionTx атомарно заменяет выбор специализаций пользователя.
//
// Строка пользователя блокируется через SELECT ... FOR UPDATE, после чего
// текущее состояние передаётся в validate. Возвращённый набор и новая
// блокировка записываются в той же транзакции, поэтому два конкурентных
// запроса не могут пройти проверку по устаревшему состоянию и вместе
// превысить лимит тарифа.
//
// Ошибка validate откатывает транзакцию и возвращается вызывающему как есть.
func (s *Storage) UpdateSelectionTx(ctx context.Context, userUID string,
	validate func(user *models.User, current []string) ([]string, *time.Time, error)) (*models.Selection, error) {
	const op = "storage.UpdateSelectionTx"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	u := &models.User{UID: userUID}
	var tier string
	var lockedUntil sql.NullTime
	query := `SELECT subscription_tier, specialty_locked_until
			  FROM users WHERE uid = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, query, userUID).Scan(&tier, &lockedUntil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.SubscriptionTier = models.ParseTier(tier)
	if lockedUntil.Valid {
		u.SpecialtyLockedUntil = &lockedUntil.Time
	}

	query = `SELECT specialty_slug FROM user_specialties WHERE user_uid = $1`
	rows, err := tx.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var current []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		current = append(current, slug)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_ = rows.Close()

	newSelection, newLockedUntil, err := validate(u, current)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_specialties WHERE user_uid = $1`, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, slug := range newSelection {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_specialties (user_uid, specialty_slug) VALUES ($1, $2)`,
			userUID, slug); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET specialty_locked_until = $1 WHERE uid = $2`,
		newLockedUntil, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.Selection{
		Specialties: newSelection,
		LockedUntil: newLockedUntil,
	}, nil
}

// ListSpecialties возвращает справочник специализаций.
func (s *Storage) ListSpecialties(ctx context.Context) ([]*models.Specialty, error) {
	const op = "storage.ListSpecialties"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT slug, name FROM specialties ORDER BY name`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Specialty
	for rows.Next() {
		sp := &models.Specialty{}
		if err := rows.Scan(&sp.Slug, &sp.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
