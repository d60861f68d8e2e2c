package selectspecialty

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
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/scrubtech-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
	"github.com/magabrotheeeer/scrubtech-backend/internal/services/entitlement"
)

// MockService реализует интерфейс selectspecialty.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Select(ctx context.Context, userUID string, requested []string) (*models.Selection, error) {
	args := m.Called(ctx, userUID, requested)
	if sel, ok := args.Get(0).(*models.Selection); ok {
		return sel, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSelectHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	lockedUntil := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		requestBody    interface{}
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешная смена выбора",
			requestBody: models.DummySelectRequest{Specialties: []string{"cardiac", "ortho"}},
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Select", mock.Anything, "uid-1", []string{"cardiac", "ortho"}).
					Return(&models.Selection{
						Specialties: []string{"cardiac", "ortho"},
						LockedUntil: &lockedUntil,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"specialties":["cardiac","ortho"]`,
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
			name:           "ошибка валидации",
			requestBody:    map[string]any{},
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Specialties is a required field`,
		},
		{
			name:           "отсутствует авторизация",
			requestBody:    models.DummySelectRequest{Specialties: []string{"cardiac"}},
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:        "выбор заблокирован тарифом",
			requestBody: models.DummySelectRequest{Specialties: []string{"neuro"}},
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Select", mock.Anything, "uid-1", []string{"neuro"}).
					Return(nil, entitlement.ErrSelectionLocked)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:        "превышен лимит специализаций",
			requestBody: models.DummySelectRequest{Specialties: []string{"cardiac", "ortho"}},
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Select", mock.Anything, "uid-1", []string{"cardiac", "ortho"}).
					Return(nil, entitlement.ErrLimitExceeded)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:        "неизвестная специализация",
			requestBody: models.DummySelectRequest{Specialties: []string{"nope"}},
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Select", mock.Anything, "uid-1", []string{"nope"}).
					Return(nil, entitlement.ErrUnknownSpecialty)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:        "ошибка сервиса",
			requestBody: models.DummySelectRequest{Specialties: []string{"cardiac"}},
			userUID:     "uid-1",
			setupMock: func(m *MockService) {
				m.On("Select", mock.Anything, "uid-1", []string{"cardiac"}).
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not update selection"}`,
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

			req := httptest.NewRequest(http.MethodPost, "/specialties/select", bytes.NewReader(body))
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
