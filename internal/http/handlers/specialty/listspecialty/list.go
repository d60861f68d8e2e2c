// Package listspecialty реализует HTTP-обработчик выдачи справочника специализаций.
package listspecialty

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/scrubtech-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/scrubtech-backend/internal/http/response"
	"github.com/magabrotheeeer/scrubtech-backend/internal/lib/sl"
	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
)

// Handler обрабатывает HTTP-запросы на получение справочника специализаций.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики справочника специализаций.
type Service interface {
	Catalog(ctx context.Context, userUID string) ([]*models.Specialty, models.TierLimits, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Справочник специализаций
// @Description Возвращает все специализации и ограничения текущего тарифа пользователя.
// @Tags Specialties
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Справочник и лимиты тарифа"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /specialties [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.specialty.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	specialties, limits, err := h.service.Catalog(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list specialties", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list specialties"))
		return
	}

	log.Info("specialties listed", slog.Int("count", len(specialties)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"specialties": specialties,
		"limits":      limits,
	}))
}
