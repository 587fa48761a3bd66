package start

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/remotedeskpro/backend/internal/http/middlewarectx"
	"github.com/remotedeskpro/backend/internal/models"
	"github.com/remotedeskpro/backend/internal/services/session"
)

// MockService реализует интерфейс start.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Start(ctx context.Context, userID, deviceID string) (*models.Session, error) {
	args := m.Called(ctx, userID, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func TestSessionStartHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	user := &models.User{ID: "user-1", Role: models.RoleUser}

	tests := []struct {
		name           string
		body           string
		withUser       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешное открытие сессии",
			body:     `{"device_id":"dev-1"}`,
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Start", mock.Anything, "user-1", "dev-1").Return(&models.Session{
					SessionID: "sess_abcd1234",
					DeviceID:  "dev-1",
					UserID:    "user-1",
					Status:    models.SessionActive,
					StartedAt: time.Now().UTC(),
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"session_id":"sess_abcd1234"`,
		},
		{
			name:     "устройство не найдено",
			body:     `{"device_id":"dev-2"}`,
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Start", mock.Anything, "user-1", "dev-2").
					Return(nil, session.ErrDeviceNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"device not found"`,
		},
		{
			name:     "устройство не в сети",
			body:     `{"device_id":"dev-1"}`,
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Start", mock.Anything, "user-1", "dev-1").
					Return(nil, session.ErrDeviceOffline)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"device is offline"`,
		},
		{
			name:           "без пользователя в контексте",
			body:           `{"device_id":"dev-1"}`,
			withUser:       false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"unauthorized"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/session/start", strings.NewReader(tt.body))
			if tt.withUser {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.CurrentUser, user))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
