// Package readselection реализует HTTP-обработчик выдачи текущего выбора
// специализаций пользователя вместе с ограничениями тарифа.
package readselection

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/scrubtech-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/scrubtech-backend/internal/http/response"
	"github.com/magabrotheeeer/scrubtech-backend/internal/lib/sl"
	"github.com/magabrotheeeer/scrubtech-backend/internal/services/selection"
)

// Handler обрабатывает HTTP-запросы на чтение текущего выбора специализаций.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения выбора.
type Service interface {
	GetStatus(ctx context.Context, userUID string) (*selection.Status, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Текущий выбор специализаций
// @Description Возвращает выбранные специализации, лимиты тарифа и возможность изменения.
// @Tags Specialties
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Текущий выбор и лимиты"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /specialties/selection [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.specialty.readselection"

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

	status, err := h.service.GetStatus(r.Context(), userUID)
	if err != nil {
		log.Error("failed to read selection", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read selection"))
		return
	}

	log.Info("selection read", slog.Int("count", len(status.Selection.Specialties)))
	render.JSON(w, r, response.OKWithData(status))
}
