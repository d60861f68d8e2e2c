// Package read реализует HTTP-обработчик выдачи одной процедуры с полным описанием.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/scrubtech-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/scrubtech-backend/internal/http/response"
	"github.com/magabrotheeeer/scrubtech-backend/internal/lib/sl"
	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
	"github.com/magabrotheeeer/scrubtech-backend/internal/services/content"
	"github.com/magabrotheeeer/scrubtech-backend/internal/storage/repository"
)

// Handler обрабатывает HTTP-запросы на чтение процедуры.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения процедуры.
type Service interface {
	ReadProcedure(ctx context.Context, userUID string, id int) (*models.Procedure, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Чтение процедуры
// @Description Возвращает процедуру с полным описанием, если её специализация входит в выбор пользователя.
// @Tags Procedures
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID процедуры"
// @Success 200 {object} models.Procedure "Процедура"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Специализация не входит в выбор"
// @Failure 404 {object} response.ErrorResponse "Процедура не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /procedures/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.procedure.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		log.Error("invalid procedure id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid procedure id"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	procedure, err := h.service.ReadProcedure(r.Context(), userUID, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProcedureNotFound):
			log.Info("procedure not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("procedure not found"))
		case errors.Is(err, content.ErrNotSelected):
			log.Info("procedure denied: specialty not selected", slog.Int("id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("failed to read procedure", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not read procedure"))
		}
		return
	}

	log.Info("procedure read", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(procedure))
}
