package register

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/remotedeskpro/backend/internal/http/middlewarectx"
	"github.com/remotedeskpro/backend/internal/models"
	"github.com/remotedeskpro/backend/internal/services/device"
)

// MockService реализует интерфейс register.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, user *models.User, input device.RegisterInput) (string, string, error) {
	args := m.Called(ctx, user, input)
	return args.String(0), args.String(1), args.Error(2)
}

func TestDeviceRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	user := &models.User{ID: "user-1", Email: "a@b.com", Role: models.RoleUser}

	tests := []struct {
		name           string
		body           string
		withUser       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешная регистрация устройства",
			body:     `{"mac_address":"AA:BB:CC:DD:EE:FF","cpu_id":"cpu-1","hostname":"desk-01"}`,
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, user, device.RegisterInput{
					MACAddress: "AA:BB:CC:DD:EE:FF",
					CPUID:      "cpu-1",
					Hostname:   "desk-01",
				}).Return("dev-1", "0123456789abcdef0123456789abcdef", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"device_secret":"0123456789abcdef0123456789abcdef"`,
		},
		{
			name:     "превышен лимит устройств",
			body:     `{"mac_address":"AA:BB:CC:DD:EE:FF","cpu_id":"cpu-1","hostname":"desk-01"}`,
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, user, mock.Anything).
					Return("", "", device.ErrDeviceLimit)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"device limit reached"`,
		},
		{
			name:     "устройство уже зарегистрировано",
			body:     `{"mac_address":"AA:BB:CC:DD:EE:FF","cpu_id":"cpu-1","hostname":"desk-01"}`,
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, user, mock.Anything).
					Return("", "", device.ErrDeviceExists)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"device already registered"`,
		},
		{
			name:           "без пользователя в контексте",
			body:           `{"mac_address":"AA:BB:CC:DD:EE:FF","cpu_id":"cpu-1","hostname":"desk-01"}`,
			withUser:       false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"unauthorized"`,
		},
		{
			name:           "пустой mac_address не проходит валидацию",
			body:           `{"cpu_id":"cpu-1","hostname":"desk-01"}`,
			withUser:       true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field MACAddress is a required field`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/device/register", strings.NewReader(tt.body))
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
