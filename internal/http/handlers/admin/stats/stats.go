// Package stats реализует HTTP-обработчик агрегированной статистики
// административной панели.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/remotedeskpro/backend/internal/http/response"
	"github.com/remotedeskpro/backend/internal/lib/sl"
	"github.com/remotedeskpro/backend/internal/services/admin"
)

// Handler управляет HTTP-запросами статистики.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс получения агрегированных счетчиков.
type Service interface {
	Stats(ctx context.Context) (*admin.Stats, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статистика системы
// @Description Возвращает агрегированные счетчики по пользователям, подпискам, устройствам и сессиям.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Счетчики"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.stats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		log.Error("failed to collect stats", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to collect stats"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(stats))
}
