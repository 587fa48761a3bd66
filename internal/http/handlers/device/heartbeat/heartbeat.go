// Package heartbeat реализует HTTP-обработчик heartbeat-сигналов устройств.
//
// Аутентификация здесь не по JWT: устройство предъявляет пару
// (device_id, device_secret), выданную при регистрации.
package heartbeat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/remotedeskpro/backend/internal/http/response"
	"github.com/remotedeskpro/backend/internal/lib/sl"
	"github.com/remotedeskpro/backend/internal/services/device"
)

// Request — учетные данные устройства.
type Request struct {
	DeviceID     string `json:"device_id" validate:"required"`
	DeviceSecret string `json:"device_secret" validate:"required"`
}

// Handler управляет heartbeat-запросами устройств.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики heartbeat.
type Service interface {
	Heartbeat(ctx context.Context, deviceID, deviceSecret string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Heartbeat устройства
// @Description Отмечает устройство как находящееся в сети по его учетным данным.
// @Tags Devices
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные устройства"
// @Success 200 {object} map[string]any "Подтверждение"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные устройства"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /device/heartbeat [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.device.heartbeat"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	err := h.service.Heartbeat(r.Context(), req.DeviceID, req.DeviceSecret)
	if errors.Is(err, device.ErrInvalidCredentials) {
		log.Error("invalid device credentials", slog.String("device_id", req.DeviceID))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid device credentials"))
		return
	}
	if err != nil {
		log.Error("failed to process heartbeat", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to process heartbeat"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "online",
	}))
}
