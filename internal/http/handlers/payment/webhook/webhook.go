// Package webhook реализует HTTP-обработчик колбэков платежного провайдера DevCraftor.
//
// Подпись запроса проверяется по сырому телу: HMAC-SHA256 с общим секретом,
// hex-представление в заголовке X-DevCraftor-Signature. Несовпадение подписи
// отклоняется с 401. Ошибки обработки самого события, напротив, подтверждаются
// статусом 200, иначе провайдер будет бесконечно повторять доставку.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/remotedeskpro/backend/internal/http/response"
	"github.com/remotedeskpro/backend/internal/lib/sl"
	"github.com/remotedeskpro/backend/internal/metrics"
)

// SignatureHeader — заголовок с HMAC-подписью тела запроса.
const SignatureHeader = "X-DevCraftor-Signature"

// maxBodySize ограничивает размер тела колбэка.
const maxBodySize = 1 << 20

// Payload — тело webhook-события провайдера.
type Payload struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// Handler управляет webhook-колбэками провайдера.
type Handler struct {
	log     *slog.Logger
	service Service
	secret  string
}

// Service описывает интерфейс применения webhook-события.
type Service interface {
	ProcessWebhookEvent(ctx context.Context, reference, status string) (string, error)
}

// New создает новый Handler с переданными логгером, сервисом и общим секретом.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:     log,
		service: service,
		secret:  secret,
	}
}

// Sign возвращает hex-представление HMAC-SHA256 подписи тела с данным секретом.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ServeHTTP godoc
// @Summary Webhook платежного провайдера
// @Description Принимает колбэк DevCraftor о смене статуса платежа. Подпись обязательна.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param X-DevCraftor-Signature header string true "HMAC-SHA256 подпись тела"
// @Param request body Payload true "Событие платежа"
// @Success 200 {object} map[string]any "Исход обработки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Router /webhook/devcraftor [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	signature := r.Header.Get(SignatureHeader)
	expected := Sign(body, h.secret)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		log.Error("webhook signature mismatch")
		metrics.WebhookEvents.WithLabelValues("rejected_signature").Inc()
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to decode webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("webhook received",
		slog.String("reference", payload.Reference),
		slog.String("payment_status", payload.Status))

	outcome, err := h.service.ProcessWebhookEvent(r.Context(), payload.Reference, payload.Status)
	if err != nil {
		// Подтверждаем доставку: провайдер повторит ее сам, а
		// необработанное событие останется в логах.
		log.Error("failed to process webhook event", sl.Err(err))
		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"status": "error",
		}))
		return
	}

	log.Info("webhook processed", slog.String("outcome", outcome))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": outcome,
	}))
}
