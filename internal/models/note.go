package models

import "time"

// Note личная заметка пользователя к процедуре.
type Note struct {
	ID          int       `json:"id"`
	UserUID     string    `json:"-"`
	ProcedureID int       `json:"procedure_id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DummyNoteRequest используется для приёма данных заметки из JSON-запроса.
type DummyNoteRequest struct {
	ProcedureID int    `json:"procedure_id" validate:"required,gt=0"`
	Text        string `json:"text" validate:"required"`
}

// DummyNoteUpdateRequest используется для обновления текста заметки.
type DummyNoteUpdateRequest struct {
	Text string `json:"text" validate:"required"`
}

// Favorite отметка процедуры как избранной.
type Favorite struct {
	UserUID     string    `json:"-"`
	ProcedureID int       `json:"procedure_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// DummyFavoriteRequest используется для добавления процедуры в избранное.
type DummyFavoriteRequest struct {
	ProcedureID int `json:"procedure_id" validate:"required,gt=0"`
}
