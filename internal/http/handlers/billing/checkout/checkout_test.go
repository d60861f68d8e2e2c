package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/scrubtech-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
	"github.com/magabrotheeeer/scrubtech-backend/internal/paymentprovider"
	"github.com/magabrotheeeer/scrubtech-backend/internal/services/billing"
)

// MockService реализует интерфейс checkout.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateCheckoutSession(ctx context.Context, userUID, priceID, successURL, cancelURL string) (string, error) {
	args := m.Called(ctx, userUID, priceID, successURL, cancelURL)
	return args.String(0), args.Error(1)
}

func TestCheckoutHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validRequest := models.DummyCheckoutRequest{
		PriceID:    "price_std_m",
		SuccessURL: "https://app.example.com/success",
		CancelURL:  "https://app.example.com/cancel",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешное создание сессии",
			requestBody: validRequest,
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, "uid-1", "price_std_m",
					"https://app.example.com/success", "https://app.example.com/cancel").
					Return("https://checkout.stripe.com/c/pay/cs_test_1", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"checkout_url":"https://checkout.stripe.com/c/pay/cs_test_1"`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "ошибка валидации",
			requestBody: models.DummyCheckoutRequest{
				PriceID:    "price_std_m",
				SuccessURL: "not-a-url",
				CancelURL:  "https://app.example.com/cancel",
			},
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field SuccessURL must be a valid url`,
		},
		{
			name:           "отсутствует авторизация",
			requestBody:    validRequest,
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:        "неизвестная цена",
			requestBody: validRequest,
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, "uid-1", "price_std_m",
					"https://app.example.com/success", "https://app.example.com/cancel").
					Return("", billing.ErrInvalidPrice)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:        "провайдер недоступен",
			requestBody: validRequest,
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, "uid-1", "price_std_m",
					"https://app.example.com/success", "https://app.example.com/cancel").
					Return("", paymentprovider.ErrUnavailable)
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"status":"Error","error":"payment provider unavailable"}`,
		},
		{
			name:        "ошибка сервиса",
			requestBody: validRequest,
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, "uid-1", "price_std_m",
					"https://app.example.com/success", "https://app.example.com/cancel").
					Return("", errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not create checkout session"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/billing/checkout-session", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
