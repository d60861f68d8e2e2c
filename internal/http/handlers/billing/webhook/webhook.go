// Package webhook реализует HTTP-обработчик событий платёжного провайдера.
//
// Handler читает сырое тело запроса без декодирования и передаёт его сервису
// вместе с заголовком Stripe-Signature: проверка подписи выполняется по байтам
// исходного тела. Запрос с неверной подписью отклоняется без каких-либо
// изменений состояния.
package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/scrubtech-backend/internal/lib/sl"
	"github.com/magabrotheeeer/scrubtech-backend/internal/paymentprovider"
)

// Handler обрабатывает webhook-запросы платёжного провайдера.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс обработки webhook-событий.
type Service interface {
	ProcessWebhookEvent(ctx context.Context, payload []byte, signatureHeader string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Webhook платёжного провайдера
// @Description Принимает события подписки, проверяет подпись и применяет смену тарифа.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param Stripe-Signature header string true "Подпись тела запроса"
// @Success 200 {object} map[string]any "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или тело запроса"
// @Failure 500 {object} response.ErrorResponse "Ошибка обработки события"
// @Router /billing/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, map[string]any{"received": false})
		return
	}
	defer func() { _ = r.Body.Close() }()

	signature := r.Header.Get("Stripe-Signature")
	if err := h.service.ProcessWebhookEvent(r.Context(), body, signature); err != nil {
		if errors.Is(err, paymentprovider.ErrInvalidSignature) {
			log.Error("webhook signature rejected", sl.Err(err), slog.String("remote_addr", r.RemoteAddr))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, map[string]any{"received": false})
			return
		}
		log.Error("failed to process webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, map[string]any{"received": false})
		return
	}

	log.Info("webhook processed")
	render.JSON(w, r, map[string]any{"received": true})
}
