// Package remove реализует HTTP-обработчик удаления устройства пользователя.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/remotedeskpro/backend/internal/http/middlewarectx"
	"github.com/remotedeskpro/backend/internal/http/response"
	"github.com/remotedeskpro/backend/internal/lib/sl"
	"github.com/remotedeskpro/backend/internal/services/device"
)

// Handler управляет HTTP-запросами на удаление устройств.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления устройства.
type Service interface {
	Delete(ctx context.Context, deviceID, userID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить устройство
// @Description Удаляет устройство текущего пользователя по ID.
// @Tags Devices
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID устройства"
// @Success 200 {object} map[string]any "Подтверждение удаления"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Устройство не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /device/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.device.remove"

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

	deviceID := chi.URLParam(r, "id")
	if deviceID == "" {
		log.Error("missing device id")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid device id"))
		return
	}

	err := h.service.Delete(r.Context(), deviceID, user.ID)
	if errors.Is(err, device.ErrDeviceNotFound) {
		log.Error("device not found", slog.String("device_id", deviceID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("device not found"))
		return
	}
	if err != nil {
		log.Error("failed to delete device", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete device"))
		return
	}

	log.Info("device deleted", slog.String("device_id", deviceID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deleted": deviceID,
	}))
}
