package models

import "time"

// ForumPost тема на форуме сообщества.
type ForumPost struct {
	ID            int       `json:"id"`
	AuthorName    string    `json:"author"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ForumComment комментарий к теме форума.
type ForumComment struct {
	ID         int       `json:"id"`
	PostID     int       `json:"post_id"`
	AuthorName string    `json:"author"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// DummyPostRequest используется для приёма новой темы из JSON-запроса.
type DummyPostRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"required"`
}

// DummyCommentRequest используется для приёма комментария из JSON-запроса.
type DummyCommentRequest struct {
	Body string `json:"body" validate:"required"`
}
