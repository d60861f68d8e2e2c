// Package selectspecialty реализует HTTP-обработчик смены выбора специализаций.
//
// Handler принимает JSON со списком слагов, валидирует его и делегирует
// проверку тарифных ограничений и запись выбора сервису. Отказы политики
// (лимит, блокировка, неизвестный слаг) транслируются в клиентские ошибки
// с человекочитаемой причиной.
package selectspecialty

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
	"github.com/magabrotheeeer/scrubtech-backend/internal/metrics"
	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
	"github.com/magabrotheeeer/scrubtech-backend/internal/services/entitlement"
)

// Handler обрабатывает HTTP-запросы на смену выбора специализаций.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики выбора специализаций
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики выбора специализаций.
type Service interface {
	Select(ctx context.Context, userUID string, requested []string) (*models.Selection, error)
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
// @Summary Сменить выбор специализаций
// @Description Полностью заменяет выбор специализаций пользователя с учётом ограничений тарифа.
// @Tags Specialties
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummySelectRequest true "Новый список слагов специализаций"
// @Success 200 {object} map[string]any "Сохранённый выбор"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Выбор заблокирован тарифом"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или превышен лимит"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /specialties/select [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.specialty.select"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("specialties", req.Specialties))

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

	selection, err := h.service.Select(r.Context(), userUID, req.Specialties)
	if err != nil {
		switch {
		case errors.Is(err, entitlement.ErrSelectionLocked):
			metrics.SelectionDenied.WithLabelValues("locked").Inc()
			log.Info("selection denied: locked", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, entitlement.ErrLimitExceeded):
			metrics.SelectionDenied.WithLabelValues("limit").Inc()
			log.Info("selection denied: limit exceeded", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, entitlement.ErrEmptySelection),
			errors.Is(err, entitlement.ErrUnknownSpecialty):
			metrics.SelectionDenied.WithLabelValues("invalid").Inc()
			log.Info("selection denied: invalid request", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("failed to update selection", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update selection"))
		}
		return
	}

	log.Info("selection updated", slog.Any("specialties", selection.Specialties))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"specialties":  selection.Specialties,
		"locked_until": selection.LockedUntil,
	}))
}
