package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
)

// CreateNote вставляет новую заметку и возвращает её ID.
func (s *Storage) CreateNote(ctx context.Context, note models.Note) (int, error) {
	const op = "storage.CreateNote"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO notes (user_uid, procedure_id, text)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		note.UserUID, note.ProcedureID, note.Text).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListNotes возвращает заметки пользователя с пагинацией.
func (s *Storage) ListNotes(ctx context.Context, userUID string, limit, offset int) ([]*models.Note, error) {
	const op = "storage.ListNotes"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, procedure_id, text, created_at, updated_at
			  FROM notes
			  WHERE user_uid = $1
			  ORDER BY id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Note
	for rows.Next() {
		n := &models.Note{}
		if err := rows.Scan(&n.ID, &n.UserUID, &n.ProcedureID, &n.Text,
			&n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateNote обновляет текст заметки пользователя и возвращает количество
// изменённых строк. Чужие заметки не затрагиваются.
func (s *Storage) UpdateNote(ctx context.Context, userUID string, id int, text string) (int, error) {
	const op = "storage.UpdateNote"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notes SET text = $1, updated_at = now()
			  WHERE id = $2 AND user_uid = $3`
	result, err := s.DB.ExecContext(ctx, query, text, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveNote удаляет заметку пользователя и возвращает количество удалённых строк.
func (s *Storage) RemoveNote(ctx context.Context, userUID string, id int) (int, error) {
	const op = "storage.RemoveNote"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM notes WHERE id = $1 AND user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// AddFavorite добавляет процедуру в избранное. Повторное добавление
// не является ошибкой.
func (s *Storage) AddFavorite(ctx context.Context, userUID string, procedureID int) error {
	const op = "storage.AddFavorite"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO favorites (user_uid, procedure_id)
			  VALUES ($1, $2)
			  ON CONFLICT (user_uid, procedure_id) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, userUID, procedureID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveFavorite убирает процедуру из избранного и возвращает количество
// удалённых строк.
func (s *Storage) RemoveFavorite(ctx context.Context, userUID string, procedureID int) (int, error) {
	const op = "storage.RemoveFavorite"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM favorites WHERE user_uid = $1 AND procedure_id = $2`
	result, err := s.DB.ExecContext(ctx, query, userUID, procedureID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListFavorites возвращает избранные процедуры пользователя.
func (s *Storage) ListFavorites(ctx context.Context, userUID string) ([]*models.Procedure, error) {
	const op = "storage.ListFavorites"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.specialty_slug, p.title, p.summary, p.video_url
			  FROM favorites f
			  JOIN procedures p ON p.id = f.procedure_id
			  WHERE f.user_uid = $1
			  ORDER BY f.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Procedure
	for rows.Next() {
		p := &models.Procedure{}
		if err := rows.Scan(&p.ID, &p.SpecialtySlug, &p.Title, &p.Summary, &p.VideoURL); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
