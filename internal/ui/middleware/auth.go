// Пакет middleware — HTTP middleware для UI планировщика.
// auth.go — проверка UI-сессии (cookie-based), redirect на /login.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/bigkaa/goartstore/planner-module/internal/auth"
)

// contextKey — тип для ключей контекста UI (избегаем коллизий с API middleware).
type contextKey string

const (
	// ContextKeyUISession — данные UI-сессии в контексте запроса.
	ContextKeyUISession contextKey = "ui_session"
)

// LoginPath — страница входа.
const LoginPath = "/login"

// UIAuth — middleware для проверки аутентификации UI-пользователей.
// Извлекает сессию из зашифрованного cookie, redirect на /login при её отсутствии.
type UIAuth struct {
	sessionManager *auth.SessionManager
	logger         *slog.Logger
}

// NewUIAuth создаёт новый UIAuth middleware.
func NewUIAuth(sessionManager *auth.SessionManager, logger *slog.Logger) *UIAuth {
	return &UIAuth{
		sessionManager: sessionManager,
		logger:         logger.With(slog.String("component", "ui_auth_middleware")),
	}
}

// Middleware возвращает HTTP middleware для проверки UI-сессии.
func (ua *UIAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := ua.sessionManager.GetSessionFromRequest(r)
			if err != nil {
				ua.logger.Debug("Ошибка чтения UI-сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				// Повреждённый или просроченный cookie — очищаем
				ua.sessionManager.ClearSessionCookie(w)
				http.Redirect(w, r, loginRedirect(r), http.StatusFound)
				return
			}
			if session == nil {
				http.Redirect(w, r, loginRedirect(r), http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUISession, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// loginRedirect — адрес страницы входа с возвратом на текущую страницу.
func loginRedirect(r *http.Request) string {
	return LoginPath + "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
}

// SessionFromContext извлекает SessionData из контекста запроса.
// Возвращает nil если сессия не найдена (не прошёл через UIAuth middleware).
func SessionFromContext(ctx context.Context) *auth.SessionData {
	session, ok := ctx.Value(ContextKeyUISession).(*auth.SessionData)
	if !ok {
		return nil
	}
	return session
}
