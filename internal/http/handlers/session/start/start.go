// Package start реализует HTTP-обработчик открытия сессии удалённого доступа.
package start

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
	"github.com/remotedeskpro/backend/internal/services/session"
)

// Request — параметры открытия сессии.
type Request struct {
	DeviceID string `json:"device_id" validate:"required"`
}

// Handler управляет HTTP-запросами на открытие сессий.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики открытия сессии.
type Service interface {
	Start(ctx context.Context, userID, deviceID string) (*models.Session, error)
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
// @Summary Открыть сессию
// @Description Открывает сессию удалённого доступа к устройству текущего пользователя.
// @Tags Sessions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "ID устройства"
// @Success 200 {object} map[string]any "Открытая сессия"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или устройство не в сети"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Устройство не найдено"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /session/start [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.start"

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

	result, err := h.service.Start(r.Context(), user.ID, req.DeviceID)
	switch {
	case errors.Is(err, session.ErrDeviceNotFound):
		log.Error("device not found", slog.String("device_id", req.DeviceID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("device not found"))
		return
	case errors.Is(err, session.ErrDeviceOffline):
		log.Error("device is offline", slog.String("device_id", req.DeviceID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("device is offline"))
		return
	case err != nil:
		log.Error("failed to start session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to start session"))
		return
	}

	log.Info("session started", slog.String("session_id", result.SessionID))
	render.JSON(w, r, response.StatusOKWithData(result))
}
