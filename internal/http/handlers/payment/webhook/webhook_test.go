package webhook

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testSecret = "webhook-secret"

// MockService реализует интерфейс webhook.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ProcessWebhookEvent(ctx context.Context, reference, status string) (string, error) {
	args := m.Called(ctx, reference, status)
	return args.String(0), args.Error(1)
}

func TestWebhookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		signature      func(body []byte) string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "успешное завершение платежа",
			body:      `{"reference":"sub_abc_123","status":"completed"}`,
			signature: func(body []byte) string { return Sign(body, testSecret) },
			setupMock: func(m *MockService) {
				m.On("ProcessWebhookEvent", mock.Anything, "sub_abc_123", "completed").
					Return("completed", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"completed"`,
		},
		{
			name:           "неверная подпись отклоняется",
			body:           `{"reference":"sub_abc_123","status":"completed"}`,
			signature:      func(_ []byte) string { return "deadbeef" },
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"invalid signature"`,
		},
		{
			name:           "отсутствующая подпись отклоняется",
			body:           `{"reference":"sub_abc_123","status":"completed"}`,
			signature:      func(_ []byte) string { return "" },
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"invalid signature"`,
		},
		{
			name:      "неизвестная ссылка подтверждается",
			body:      `{"reference":"sub_unknown_1","status":"completed"}`,
			signature: func(body []byte) string { return Sign(body, testSecret) },
			setupMock: func(m *MockService) {
				m.On("ProcessWebhookEvent", mock.Anything, "sub_unknown_1", "completed").
					Return("not_found", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"not_found"`,
		},
		{
			name:      "ошибка обработки подтверждается статусом 200",
			body:      `{"reference":"sub_abc_123","status":"completed"}`,
			signature: func(body []byte) string { return Sign(body, testSecret) },
			setupMock: func(m *MockService) {
				m.On("ProcessWebhookEvent", mock.Anything, "sub_abc_123", "completed").
					Return("", errors.New("db error"))
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"error"`,
		},
		{
			name:           "некорректный JSON с валидной подписью",
			body:           `{"reference":`,
			signature:      func(body []byte) string { return Sign(body, testSecret) },
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"invalid request body"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, testSecret)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/devcraftor", strings.NewReader(tt.body))
			req.Header.Set(SignatureHeader, tt.signature([]byte(tt.body)))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}

func TestSign_MatchesKnownVector(t *testing.T) {
	// HMAC-SHA256("secret", "body") — проверка стабильности формата подписи.
	got := Sign([]byte("body"), "secret")
	assert.Len(t, got, 64)
	assert.Equal(t, Sign([]byte("body"), "secret"), got)
	assert.NotEqual(t, Sign([]byte("body"), "other"), got)
}
