package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/scrubtech-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
	"github.com/magabrotheeeer/scrubtech-backend/internal/services/content"
	"github.com/magabrotheeeer/scrubtech-backend/internal/storage/repository"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ReadProcedure(ctx context.Context, userUID string, id int) (*models.Procedure, error) {
	args := m.Called(ctx, userUID, id)
	if p, ok := args.Get(0).(*models.Procedure); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		id             string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешное чтение процедуры",
			id:      "42",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("ReadProcedure", mock.Anything, "uid-1", 42).
					Return(&models.Procedure{
						ID:            42,
						SpecialtySlug: "cardiac",
						Title:         "CABG",
						Summary:       "Coronary artery bypass grafting",
						Body:          "Step by step",
						VideoURL:      "https://cdn.example.com/cabg.mp4",
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"title":"CABG"`,
		},
		{
			name:           "некорректный id в url",
			id:             "abc",
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid procedure id"}`,
		},
		{
			name:           "отсутствует авторизация",
			id:             "42",
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:    "процедура не найдена",
			id:      "42",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("ReadProcedure", mock.Anything, "uid-1", 42).
					Return(nil, repository.ErrProcedureNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"procedure not found"}`,
		},
		{
			name:    "специализация не выбрана",
			id:      "42",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("ReadProcedure", mock.Anything, "uid-1", 42).
					Return(nil, content.ErrNotSelected)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:    "ошибка сервиса",
			id:      "42",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("ReadProcedure", mock.Anything, "uid-1", 42).
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not read procedure"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/procedures/"+tt.id, nil)

			ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			// Устанавливаем URL параметр id для chi
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
