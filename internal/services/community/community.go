// Package community реализует бизнес-логику форума сообщества.
//
// Чтение тем доступно всем авторизованным пользователям, публикация тем
// и комментариев — только на платных тарифах.
package community

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
)

// ErrPostingRestricted публикация на форуме доступна только платным тарифам.
var ErrPostingRestricted = errors.New("posting requires a paid subscription")

// Repository описывает методы хранилища для работы с форумом.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	CreatePost(ctx context.Context, authorUID, title, body string) (int, error)
	ListPosts(ctx context.Context, limit, offset int) ([]*models.ForumPost, error)
	ReadPost(ctx context.Context, id int) (*models.ForumPost, []*models.ForumComment, error)
	CreateComment(ctx context.Context, postID int, authorUID, body string) (int, error)
}

// Service предоставляет операции форума сообщества.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CreatePost публикует новую тему от имени пользователя.
func (s *Service) CreatePost(ctx context.Context, userUID string, req models.DummyPostRequest) (int, error) {
	const op = "services.community.CreatePost"

	if err := s.requirePaid(ctx, userUID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.repo.CreatePost(ctx, userUID, req.Title, req.Body)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListPosts возвращает список тем форума.
func (s *Service) ListPosts(ctx context.Context, limit, offset int) ([]*models.ForumPost, error) {
	const op = "services.community.ListPosts"

	posts, err := s.repo.ListPosts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return posts, nil
}

// ReadPost возвращает тему с комментариями.
func (s *Service) ReadPost(ctx context.Context, id int) (*models.ForumPost, []*models.ForumComment, error) {
	const op = "services.community.ReadPost"

	post, comments, err := s.repo.ReadPost(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return post, comments, nil
}

// CreateComment публикует комментарий к теме от имени пользователя.
func (s *Service) CreateComment(ctx context.Context, userUID string, postID int, body string) (int, error) {
	const op = "services.community.CreateComment"

	if err := s.requirePaid(ctx, userUID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if _, _, err := s.repo.ReadPost(ctx, postID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.repo.CreateComment(ctx, postID, userUID, body)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (s *Service) requirePaid(ctx context.Context, userUID string) error {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return err
	}
	if !user.SubscriptionTier.IsPaid() {
		return ErrPostingRestricted
	}
	return nil
}
