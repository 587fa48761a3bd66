package calculate

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/remotedeskpro/backend/internal/lib/pricing"
)

// MockService реализует интерфейс calculate.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Calculate(days int) (float64, error) {
	args := m.Called(days)
	return args.Get(0).(float64), args.Error(1)
}

func TestCalculateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "месячная подписка со скидкой",
			body: `{"duration_days":30}`,
			setupMock: func(m *MockService) {
				m.On("Calculate", 30).Return(42.75, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"amount":42.75`,
		},
		{
			name: "длительность вне диапазона",
			body: `{"duration_days":366}`,
			setupMock: func(m *MockService) {
				m.On("Calculate", 366).Return(0.0, pricing.ErrInvalidDuration)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"duration must be between 1 and 365 days"`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"duration_days":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"invalid request body"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/subscription/calculate", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
