package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
)

// ErrProcedureNotFound возвращается, когда процедура отсутствует в базе.
var ErrProcedureNotFound = errors.New("procedure not found")

// ListProcedures возвращает процедуры указанной специализации с пагинацией.
// Тело процедуры в списке не возвращается.
func (s *Storage) ListProcedures(ctx context.Context, specialtySlug string, limit, offset int) ([]*models.Procedure, error) {
	const op = "storage.ListProcedures"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, specialty_slug, title, summary, video_url
			  FROM procedures
			  WHERE specialty_slug = $1
			  ORDER BY id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, specialtySlug, limit, offset)
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

// ReadProcedure возвращает процедуру по её ID вместе с телом.
func (s *Storage) ReadProcedure(ctx context.Context, id int) (*models.Procedure, error) {
	const op = "storage.ReadProcedure"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, specialty_slug, title, summary, body, video_url
			  FROM procedures WHERE id = $1`
	p := &models.Procedure{}
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.SpecialtySlug, &p.Title, &p.Summary, &p.Body, &p.VideoURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrProcedureNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}
