// Package calculate реализует HTTP-обработчик расчета стоимости подписки.
//
// Обработчик открыт без аутентификации и использует ту же функцию
// расчета, что и создание подписки.
package calculate

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/remotedeskpro/backend/internal/http/response"
	"github.com/remotedeskpro/backend/internal/lib/pricing"
	"github.com/remotedeskpro/backend/internal/lib/sl"
)

// Request — параметры расчета стоимости.
type Request struct {
	DurationDays int `json:"duration_days" validate:"required"`
}

// Handler управляет HTTP-запросами расчета стоимости подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс расчета стоимости.
type Service interface {
	Calculate(days int) (float64, error)
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
// @Summary Рассчитать стоимость подписки
// @Description Возвращает стоимость подписки на указанное число дней с учетом скидок за длительность.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body Request true "Длительность в днях"
// @Success 200 {object} map[string]any "Стоимость подписки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или длительность вне диапазона"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /subscription/calculate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.calculate"

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

	amount, err := h.service.Calculate(req.DurationDays)
	if errors.Is(err, pricing.ErrInvalidDuration) {
		log.Error("invalid subscription duration", slog.Int("duration_days", req.DurationDays))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("duration must be between 1 and 365 days"))
		return
	}
	if err != nil {
		log.Error("failed to calculate price", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to calculate price"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"duration_days": req.DurationDays,
		"amount":        amount,
		"currency":      "USD",
	}))
}
