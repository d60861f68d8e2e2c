// Package status реализует HTTP-обработчик выдачи состояния подписки пользователя.
package status

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

// Handler обрабатывает HTTP-запросы на чтение состояния подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики состояния подписки.
type Service interface {
	GetStatus(ctx context.Context, userUID string) (*models.SubscriptionStatus, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Состояние подписки
// @Description Возвращает тариф и состояние подписки. При недоступности провайдера возвращает локальные данные с пометкой degraded.
// @Tags Billing
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} models.SubscriptionStatus "Состояние подписки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /billing/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.status"

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

	subscriptionStatus, err := h.service.GetStatus(r.Context(), userUID)
	if err != nil {
		log.Error("failed to read subscription status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read subscription status"))
		return
	}

	log.Info("subscription status read", slog.String("tier", string(subscriptionStatus.Tier)))
	render.JSON(w, r, response.OKWithData(subscriptionStatus))
}
