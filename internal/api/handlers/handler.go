// handler.go — основной обработчик API планировщика.
// Объединяет доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/bigkaa/goartstore/planner-module/internal/api/errors"
	"github.com/bigkaa/goartstore/planner-module/internal/auth"
	"github.com/bigkaa/goartstore/planner-module/internal/service"
)

// APIHandler — основной обработчик API Planner Module.
type APIHandler struct {
	health      *HealthHandler
	assignments *service.AssignmentService
	holidays    *service.HolidayService
	sections    *service.SectionService
	persons     *service.PersonService
	projects    *service.ProjectService
	users       *service.UserService
	login       *service.LoginService
	sessions    *auth.SessionManager
	logger      *slog.Logger
	now         func() time.Time
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	assignments *service.AssignmentService,
	holidays *service.HolidayService,
	sections *service.SectionService,
	persons *service.PersonService,
	projects *service.ProjectService,
	users *service.UserService,
	login *service.LoginService,
	sessions *auth.SessionManager,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:      health,
		assignments: assignments,
		holidays:    holidays,
		sections:    sections,
		persons:     persons,
		projects:    projects,
		users:       users,
		login:       login,
		sessions:    sessions,
		logger:      logger.With(slog.String("component", "api_handler")),
		now:         time.Now,
	}
}

// HealthLive — liveness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса. При ошибке отвечает 400 и возвращает false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return false
	}
	return true
}

// writeServiceError переводит ошибку сервисного слоя в HTTP-ответ.
// notFound — сообщение для ответа 404.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		apierrors.ValidationFields(w, "Ошибка валидации", verr.Fields)
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, notFound)
	case errors.Is(err, service.ErrConflict):
		apierrors.Conflict(w, err.Error())
	case errors.Is(err, service.ErrForbidden):
		apierrors.Forbidden(w, "Недостаточно прав")
	case errors.Is(err, service.ErrInvalidCredentials):
		apierrors.Unauthorized(w, "Неверный email или пароль")
	default:
		h.logger.Error("Ошибка обработки запроса",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}
