package end

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/remotedeskpro/backend/internal/http/middlewarectx"
	"github.com/remotedeskpro/backend/internal/models"
	"github.com/remotedeskpro/backend/internal/services/session"
)

// MockService реализует интерфейс end.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) End(ctx context.Context, userID, sessionID string) error {
	args := m.Called(ctx, userID, sessionID)
	return args.Error(0)
}

func TestSessionEndHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	user := &models.User{ID: "user-1", Role: models.RoleUser}

	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "успешное завершение",
			sessionID: "sess_abcd1234",
			setupMock: func(m *MockService) {
				m.On("End", mock.Anything, "user-1", "sess_abcd1234").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"ended"`,
		},
		{
			name:      "сессия не найдена",
			sessionID: "sess_missing0",
			setupMock: func(m *MockService) {
				m.On("End", mock.Anything, "user-1", "sess_missing0").
					Return(session.ErrSessionNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"session not found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/session/"+tt.sessionID+"/end", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("session_id", tt.sessionID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middlewarectx.CurrentUser, user)
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
