// Package list реализует HTTP-обработчик списка устройств текущего пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/remotedeskpro/backend/internal/http/middlewarectx"
	"github.com/remotedeskpro/backend/internal/http/response"
	"github.com/remotedeskpro/backend/internal/lib/sl"
	"github.com/remotedeskpro/backend/internal/models"
)

// Handler управляет HTTP-запросами списка устройств.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики листинга устройств.
type Service interface {
	List(ctx context.Context, userID string) ([]*models.Device, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список устройств
// @Description Возвращает устройства текущего пользователя без секретов.
// @Tags Devices
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Список устройств"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /device/list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.device.list"

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

	devices, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to list devices", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list devices"))
		return
	}

	views := make([]models.DeviceView, 0, len(devices))
	for _, d := range devices {
		views = append(views, d.View())
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"devices": views,
		"count":   len(views),
	}))
}
