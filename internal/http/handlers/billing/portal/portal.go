// Package portal реализует HTTP-обработчик создания сессии личного кабинета
// платёжного провайдера для управления подпиской.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/scrubtech-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/scrubtech-backend/internal/http/response"
	"github.com/magabrotheeeer/scrubtech-backend/internal/lib/sl"
	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
	"github.com/magabrotheeeer/scrubtech-backend/internal/paymentprovider"
	"github.com/magabrotheeeer/scrubtech-backend/internal/services/billing"
)

// Handler обрабатывает HTTP-запросы на создание portal-сессии.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания portal-сессии.
type Service interface {
	CreatePortalSession(ctx context.Context, userUID, returnURL string) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать portal-сессию
// @Description Создает сессию кабинета управления подпиской у платёжного провайдера.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyPortalRequest true "URL возврата"
// @Success 200 {object} map[string]any "URL portal-сессии"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или нет платёжной связи"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Платёжный провайдер недоступен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /billing/portal-session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.portal"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPortalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	url, err := h.service.CreatePortalSession(r.Context(), userUID, req.ReturnURL)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrNoSubscription):
			log.Error("no billing relationship", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, paymentprovider.ErrUnavailable):
			log.Error("payment provider unavailable", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("payment provider unavailable"))
		default:
			log.Error("failed to create portal session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create portal session"))
		}
		return
	}

	log.Info("portal session created")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"portal_url": url,
	}))
}
