// Package register реализует HTTP-обработчик регистрации нового устройства.
//
// Секрет устройства возвращается клиенту ровно один раз, в ответе на
// регистрацию; дальше наружу отдается только публичное представление.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/remotedeskpro/backend/internal/http/middlewarectx"
	"github.com/remotedeskpro/backend/internal/http/response"
	"github.com/remotedeskpro/backend/internal/lib/sl"
	"github.com/remotedeskpro/backend/internal/models"
	"github.com/remotedeskpro/backend/internal/services/device"
)

// Request — входные данные для регистрации устройства.
type Request struct {
	MACAddress string `json:"mac_address" validate:"required"`
	CPUID      string `json:"cpu_id" validate:"required"`
	Hostname   string `json:"hostname" validate:"required"`
	OSVersion  string `json:"os_version"`
}

// Handler управляет HTTP-запросами на регистрацию устройств.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики регистрации устройства.
type Service interface {
	Register(ctx context.Context, user *models.User, input device.RegisterInput) (string, string, error)
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
// @Summary Зарегистрировать устройство
// @Description Регистрирует устройство текущего пользователя. Секрет устройства возвращается один раз.
// @Tags Devices
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Данные устройства"
// @Success 200 {object} map[string]any "ID и секрет устройства"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или устройство уже зарегистрировано"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Превышен лимит устройств"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /device/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.device.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

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

	deviceID, deviceSecret, err := h.service.Register(r.Context(), user, device.RegisterInput{
		MACAddress: req.MACAddress,
		CPUID:      req.CPUID,
		Hostname:   req.Hostname,
		OSVersion:  req.OSVersion,
	})
	switch {
	case errors.Is(err, device.ErrDeviceLimit):
		log.Error("device limit reached", slog.String("user_id", user.ID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("device limit reached"))
		return
	case errors.Is(err, device.ErrDeviceExists):
		log.Error("device already registered", slog.String("user_id", user.ID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("device already registered"))
		return
	case err != nil:
		log.Error("failed to register device", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register device"))
		return
	}

	log.Info("device registered", slog.String("device_id", deviceID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"device_id":     deviceID,
		"device_secret": deviceSecret,
	}))
}
