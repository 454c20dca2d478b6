// login.go — вход по email и паролю.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bigkaa/goartstore/planner-module/internal/auth"
	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"
	"github.com/bigkaa/goartstore/planner-module/internal/repository"
)

// LoginResult — результат успешного входа.
type LoginResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// LoginService проверяет учётные данные и выпускает API-токен.
type LoginService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	logger *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewLoginService создаёт сервис входа.
func NewLoginService(users repository.UserRepository, tokens *auth.TokenManager, logger *slog.Logger) *LoginService {
	return &LoginService{
		users:  users,
		tokens: tokens,
		logger: logger.With(slog.String("component", "login_service")),
	}
}

// Login проверяет email и пароль. Неизвестный email и неверный пароль
// неразличимы для вызывающего (ErrInvalidCredentials).
func (s *LoginService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("поиск пользователя: %w", err)
		}
		// Сравнение с фиктивным хэшем выравнивает время ответа
		auth.CheckPassword(s.dummy(), password)
		s.logger.Info("Неудачный вход", slog.String("email", email), slog.String("reason", "not_found"))
		return nil, ErrInvalidCredentials
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		s.logger.Info("Неудачный вход", slog.String("email", email), slog.String("reason", "password"))
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(Identity(u))
	if err != nil {
		return nil, fmt.Errorf("выпуск токена: %w", err)
	}

	s.logger.Info("Вход выполнен", slog.String("id", u.ID), slog.String("role", u.Role))
	return &LoginResult{User: u, Token: token, ExpiresAt: expiresAt}, nil
}

// Identity переводит пользователя в auth.Identity.
func Identity(u *model.User) auth.Identity {
	return auth.Identity{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (s *LoginService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword("planner-dummy-password")
	})
	return s.dummyHash
}
