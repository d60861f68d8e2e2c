// Package list реализует HTTP-обработчик выдачи списка процедур по специализации.
//
// Список доступен, только если специализация входит в текущий выбор пользователя.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/scrubtech-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/scrubtech-backend/internal/http/response"
	"github.com/magabrotheeeer/scrubtech-backend/internal/lib/sl"
	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
	"github.com/magabrotheeeer/scrubtech-backend/internal/services/content"
)

// Handler обрабатывает HTTP-запросы на получение списка процедур.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики справочника процедур.
type Service interface {
	ListProcedures(ctx context.Context, userUID, specialtySlug string, limit, offset int) ([]*models.Procedure, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список процедур
// @Description Возвращает процедуры выбранной специализации. Ссылки на видео доступны только платным тарифам.
// @Tags Procedures
// @Produce  json
// @Security BearerAuth
// @Param specialty query string true "Слаг специализации"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список процедур"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Специализация не входит в выбор"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /procedures [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.procedure.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	specialtySlug := r.URL.Query().Get("specialty")
	if specialtySlug == "" {
		log.Error("specialty query parameter is missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("specialty query parameter is required"))
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	procedures, err := h.service.ListProcedures(r.Context(), userUID, specialtySlug, limit, offset)
	if err != nil {
		if errors.Is(err, content.ErrNotSelected) {
			log.Info("procedures denied: specialty not selected", slog.String("specialty", specialtySlug))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		log.Error("failed to list procedures", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list procedures"))
		return
	}

	log.Info("procedures listed", slog.Int("count", len(procedures)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"procedures": procedures,
	}))
}
