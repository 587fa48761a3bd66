// Package sessions реализует HTTP-обработчик списка всех сессий
// административной панели.
package sessions

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/remotedeskpro/backend/internal/http/response"
	"github.com/remotedeskpro/backend/internal/lib/sl"
	"github.com/remotedeskpro/backend/internal/models"
)

// Handler управляет HTTP-запросами списка сессий всех пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс листинга сессий по всей системе.
type Service interface {
	ListSessions(ctx context.Context) ([]*models.Session, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список всех сессий
// @Description Возвращает сессии всех пользователей, свежие первыми.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Список сессий"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/sessions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.sessions"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sessions, err := h.service.ListSessions(r.Context())
	if err != nil {
		log.Error("failed to list sessions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list sessions"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	}))
}
