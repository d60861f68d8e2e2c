package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
)

// ErrPostNotFound возвращается, когда тема форума отсутствует в базе.
var ErrPostNotFound = errors.New("forum post not found")

// CreatePost вставляет новую тему форума и возвращает её ID.
func (s *Storage) CreatePost(ctx context.Context, authorUID, title, body string) (int, error) {
	const op = "storage.CreatePost"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO forum_posts (author_uid, title, body)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query, authorUID, title, body).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListPosts возвращает темы форума с количеством комментариев и пагинацией.
func (s *Storage) ListPosts(ctx context.Context, limit, offset int) ([]*models.ForumPost, error) {
	const op = "storage.ListPosts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT fp.id, u.username, fp.title, fp.body, fp.created_at,
			      (SELECT COUNT(*) FROM forum_comments fc WHERE fc.post_id = fp.id)
			  FROM forum_posts fp
			  JOIN users u ON u.uid = fp.author_uid
			  ORDER BY fp.created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.ForumPost
	for rows.Next() {
		p := &models.ForumPost{}
		if err := rows.Scan(&p.ID, &p.AuthorName, &p.Title, &p.Body,
			&p.CreatedAt, &p.CommentsCount); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ReadPost возвращает тему форума вместе с комментариями.
func (s *Storage) ReadPost(ctx context.Context, id int) (*models.ForumPost, []*models.ForumComment, error) {
	const op = "storage.ReadPost"
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT fp.id, u.username, fp.title, fp.body, fp.created_at
			  FROM forum_posts fp
			  JOIN users u ON u.uid = fp.author_uid
			  WHERE fp.id = $1`
	post := &models.ForumPost{}
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.AuthorName, &post.Title, &post.Body, &post.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrPostNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	query = `SELECT fc.id, fc.post_id, u.username, fc.body, fc.created_at
			 FROM forum_comments fc
			 JOIN users u ON u.uid = fc.author_uid
			 WHERE fc.post_id = $1
			 ORDER BY fc.created_at`
	rows, err := s.DB.QueryContext(ctx, query, id)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var comments []*models.ForumComment
	for rows.Next() {
		c := &models.ForumComment{}
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	post.CommentsCount = len(comments)
	return post, comments, nil
}

// CreateComment вставляет комментарий к теме форума и возвращает его ID.
func (s *Storage) CreateComment(ctx context.Context, postID int, authorUID, body string) (int, error) {
	const op = "storage.CreateComment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO forum_comments (post_id, author_uid, body)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query, postID, authorUID, body).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}
