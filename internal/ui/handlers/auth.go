// auth.go — вход и выход в UI по email и паролю.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bigkaa/goartstore/planner-module/internal/auth"
	"github.com/bigkaa/goartstore/planner-module/internal/service"
	uimiddleware "github.com/bigkaa/goartstore/planner-module/internal/ui/middleware"
	"github.com/bigkaa/goartstore/planner-module/internal/ui/pages"
)

// HomePath — страница после входа по умолчанию.
const HomePath = "/planner"

// Authenticator проверяет учётные данные.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
}

// AuthHandler — обработчики входа и выхода UI.
type AuthHandler struct {
	login          Authenticator
	sessionManager *auth.SessionManager
	logger         *slog.Logger
}

// NewAuthHandler создаёт новый AuthHandler.
func NewAuthHandler(login Authenticator, sessionManager *auth.SessionManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		login:          login,
		sessionManager: sessionManager,
		logger:         logger.With(slog.String("component", "ui_auth")),
	}
}

// HandleLoginPage — GET /login.
// Пользователя с действующей сессией сразу отправляет дальше.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if session, err := h.sessionManager.GetSessionFromRequest(r); err == nil && session != nil {
		http.Redirect(w, r, next, http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, pages.LoginData{Next: next})
}

// HandleLogin — POST /login.
// Успешный вход создаёт session cookie и перенаправляет на next.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	next := safeNext(r.PostFormValue("next"))

	res, err := h.login.Login(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.render(w, r, http.StatusUnauthorized, pages.LoginData{Email: email, Failed: true, Next: next})
			return
		}
		h.logger.Error("Ошибка входа", slog.String("error", err.Error()))
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	if err := h.sessionManager.SetSessionCookie(w, h.sessionManager.NewSession(service.Identity(res.User))); err != nil {
		h.logger.Error("Ошибка создания сессии", slog.String("error", err.Error()))
		http.Error(w, "Ошибка создания сессии", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Пользователь вошёл в UI",
		slog.String("user_id", res.User.ID),
		slog.String("role", res.User.Role),
	)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// HandleLogout — POST /logout. Удаляет session cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessionManager.ClearSessionCookie(w)
	http.Redirect(w, r, uimiddleware.LoginPath, http.StatusSeeOther)
}

func (h *AuthHandler) render(w http.ResponseWriter, r *http.Request, status int, data pages.LoginData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.Login(data).Render(r.Context(), w); err != nil {
		h.logger.Error("Ошибка рендеринга страницы входа", slog.String("error", err.Error()))
	}
}

// safeNext допускает только локальные пути, иначе HomePath.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") ||
		strings.HasPrefix(next, uimiddleware.LoginPath) {
		return HomePath
	}
	return next
}
