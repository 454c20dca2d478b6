// auth.go — middleware аутентификации и авторизации API планировщика.
// Пользователь определяется по Bearer-токену (API-клиенты) или по
// cookie сессии (браузер после входа через /login или /api/v1/auth/login).
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/bigkaa/goartstore/planner-module/internal/api/errors"
	"github.com/bigkaa/goartstore/planner-module/internal/auth"
	"github.com/bigkaa/goartstore/planner-module/internal/domain/rbac"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

const (
	// ContextKeyIdentity — аутентифицированный пользователь в контексте запроса.
	ContextKeyIdentity contextKey = "identity"
	// contextKeyIdentityHolder — ячейка для передачи пользователя в RequestLogger.
	contextKeyIdentityHolder contextKey = "identity_holder"
)

// Ошибки извлечения учётных данных.
var (
	errBadAuthHeader = errors.New("неверный формат Authorization: ожидается Bearer <token>")
	errEmptyToken    = errors.New("пустой Bearer token")
)

// Authenticator — middleware аутентификации.
type Authenticator struct {
	tokens   *auth.TokenManager
	sessions *auth.SessionManager
	logger   *slog.Logger
}

// NewAuthenticator создаёт middleware аутентификации.
// sessions может быть nil — тогда принимаются только Bearer-токены.
func NewAuthenticator(tokens *auth.TokenManager, sessions *auth.SessionManager, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		tokens:   tokens,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "auth")),
	}
}

// Identify определяет пользователя запроса.
// Заголовок Authorization имеет приоритет над cookie сессии.
// Возвращает nil, nil, если учётные данные не переданы.
func (a *Authenticator) Identify(r *http.Request) (*auth.Identity, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return nil, errBadAuthHeader
		}
		token := strings.TrimSpace(parts[1])
		if token == "" {
			return nil, errEmptyToken
		}

		claims, err := a.tokens.Parse(r.Context(), token)
		if err != nil {
			return nil, err
		}
		id := claims.Identity()
		return &id, nil
	}

	if a.sessions == nil {
		return nil, nil
	}
	session, err := a.sessions.GetSessionFromRequest(r)
	if err != nil || session == nil {
		return nil, err
	}
	id := session.Identity()
	return &id, nil
}

// Middleware возвращает HTTP middleware, требующий аутентификации.
// Пользователь помещается в контекст запроса.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Identify(r)
			if err != nil {
				a.logger.Debug("Аутентификация не пройдена",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				switch {
				case errors.Is(err, errBadAuthHeader), errors.Is(err, errEmptyToken):
					apierrors.Unauthorized(w, upperFirst(err.Error()))
				case errors.Is(err, auth.ErrSessionExpired):
					apierrors.Unauthorized(w, "Сессия истекла")
				default:
					apierrors.Unauthorized(w, "Невалидный или просроченный токен")
				}
				return
			}
			if id == nil {
				apierrors.Unauthorized(w, "Требуется аутентификация")
				return
			}
			if id.UserID == "" || !rbac.IsValidRole(id.Role) {
				apierrors.Unauthorized(w, "Невалидный токен")
				return
			}

			if holder, ok := r.Context().Value(contextKeyIdentityHolder).(*identityHolder); ok {
				holder.userID = id.UserID
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity помещает пользователя в контекст.
func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, id)
}

// IdentityFromContext извлекает пользователя из контекста.
// Возвращает nil, если запрос не аутентифицирован.
func IdentityFromContext(ctx context.Context) *auth.Identity {
	id, _ := ctx.Value(ContextKeyIdentity).(*auth.Identity)
	return id
}

// identityHolder заполняется аутентификацией и читается логгером запросов.
type identityHolder struct {
	userID string
}

func withIdentityHolder(ctx context.Context, h *identityHolder) context.Context {
	return context.WithValue(ctx, contextKeyIdentityHolder, h)
}

// RequireRole возвращает middleware, пропускающий пользователей
// с ролью не ниже required.
func RequireRole(required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id == nil {
				apierrors.Unauthorized(w, "Требуется аутентификация")
				return
			}
			if !rbac.Allows(id.Role, required) {
				apierrors.Forbidden(w, "Недостаточно прав: требуется роль "+required)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoleForWrites пропускает чтение (GET, HEAD) любому пользователю,
// а для остальных методов требует роль required.
func RequireRoleForWrites(required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		guarded := RequireRole(required)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			guarded.ServeHTTP(w, r)
		})
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
