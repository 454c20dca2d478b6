// auth.go — обработчики /api/v1/auth: вход, выход, текущий пользователь.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/bigkaa/goartstore/planner-module/internal/api/errors"
	"github.com/bigkaa/goartstore/planner-module/internal/api/middleware"
	"github.com/bigkaa/goartstore/planner-module/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type meResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Login — POST /api/v1/auth/login.
// Устанавливает cookie сессии и возвращает Bearer-токен для API-клиентов.
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.login.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err, userNotFound)
		return
	}

	if h.sessions != nil {
		if err := h.sessions.SetSessionCookie(w, h.sessions.NewSession(service.Identity(res.User))); err != nil {
			h.logger.Error("Ошибка установки сессии", slog.String("error", err.Error()))
			apierrors.InternalError(w, "Ошибка создания сессии")
			return
		}
	}

	writeJSON(w, http.StatusOK, loginResponse{
		User:      mapUser(res.User),
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	})
}

// Logout — POST /api/v1/auth/logout. Удаляет cookie сессии.
// Выпущенные Bearer-токены действуют до истечения срока.
func (h *APIHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	if h.sessions != nil {
		h.sessions.ClearSessionCookie(w)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me — GET /api/v1/auth/me.
func (h *APIHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	if id == nil {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}
	writeJSON(w, http.StatusOK, meResponse{ID: id.UserID, Name: id.Name, Email: id.Email, Role: id.Role})
}
