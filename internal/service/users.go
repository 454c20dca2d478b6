// users.go — сервис учётных записей (доступен только ADMIN, кроме смены
// собственного пароля).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/bigkaa/goartstore/planner-module/internal/auth"
	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"
	"github.com/bigkaa/goartstore/planner-module/internal/domain/rbac"
	"github.com/bigkaa/goartstore/planner-module/internal/repository"
)

// UserInput — поля пользователя. nil — поле не меняется.
// Password используется только при создании.
type UserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

// PasswordChange — запрос смены пароля.
type PasswordChange struct {
	OldPassword string
	NewPassword string
}

// UserService — сервис пользователей.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

// NewUserService создаёт сервис пользователей.
func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger.With(slog.String("component", "user_service")),
	}
}

// List возвращает пользователей по имени.
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	return list, nil
}

// Get возвращает пользователя по ID.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

// Create создаёт пользователя. Роль по умолчанию — USER.
func (s *UserService) Create(ctx context.Context, in UserInput) (*model.User, error) {
	u := &model.User{ID: uuid.New().String(), Role: rbac.RoleUser}
	verr := applyUser(u, in, true)
	if in.Password == nil || len(*in.Password) < auth.MinPasswordLength {
		verr.Add("password", auth.ErrPasswordTooShort.Error())
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(*in.Password)
	if err != nil {
		return nil, fmt.Errorf("хэширование пароля: %w", err)
	}
	u.PasswordHash = hash

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: email %q уже используется", ErrConflict, u.Email)
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	s.logger.Info("Пользователь создан",
		slog.String("id", u.ID),
		slog.String("email", u.Email),
		slog.String("role", u.Role),
	)
	return u, nil
}

// Update частично обновляет имя, email и роль.
func (s *UserService) Update(ctx context.Context, id string, in UserInput) (*model.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyUser(u, in, false).Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%w: email %q уже используется", ErrConflict, u.Email)
		}
		return nil, fmt.Errorf("обновление пользователя: %w", err)
	}
	return u, nil
}

// Delete удаляет пользователя. Удалить собственную учётную запись нельзя.
func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	if actorID == id {
		return NewValidationError("id", "нельзя удалить собственную учётную запись")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление пользователя: %w", err)
	}

	s.logger.Info("Пользователь удалён", slog.String("id", id), slog.String("by", actorID))
	return nil
}

// ChangePassword меняет пароль пользователя targetID от имени actor.
// Себе — со старым паролем; ADMIN другому — без него.
func (s *UserService) ChangePassword(ctx context.Context, actor auth.Identity, targetID string, req PasswordChange) error {
	if !rbac.CanChangePassword(actor.UserID, actor.Role, targetID) {
		return ErrForbidden
	}

	u, err := s.Get(ctx, targetID)
	if err != nil {
		return err
	}

	verr := &ValidationError{}
	if len(req.NewPassword) < auth.MinPasswordLength {
		verr.Add("newPassword", auth.ErrPasswordTooShort.Error())
	}
	if rbac.RequiresOldPassword(actor.UserID, actor.Role, targetID) {
		switch {
		case req.OldPassword == "":
			verr.Add("oldPassword", "требуется текущий пароль")
		case !auth.CheckPassword(u.PasswordHash, req.OldPassword):
			verr.Add("oldPassword", "неверный текущий пароль")
		}
	}
	if err := verr.Err(); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("хэширование пароля: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("смена пароля: %w", err)
	}

	s.logger.Info("Пароль изменён", slog.String("id", u.ID), slog.String("by", actor.UserID))
	return nil
}

// EnsureAdmin создаёт администратора или обновляет существующего по email
// (пароль и роль перезаписываются). Используется командой create-admin.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (*model.User, error) {
	u := &model.User{ID: uuid.New().String(), Role: rbac.RoleAdmin}
	in := UserInput{Name: &name, Email: &email, Password: &password}
	verr := applyUser(u, in, true)
	if len(password) < auth.MinPasswordLength {
		verr.Add("password", auth.ErrPasswordTooShort.Error())
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("хэширование пароля: %w", err)
	}
	u.PasswordHash = hash

	if err := s.repo.Upsert(ctx, u); err != nil {
		return nil, fmt.Errorf("сохранение администратора: %w", err)
	}
	s.logger.Info("Администратор сохранён", slog.String("id", u.ID), slog.String("email", u.Email))
	return u, nil
}

func applyUser(u *model.User, in UserInput, create bool) *ValidationError {
	verr := &ValidationError{}

	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if (create || in.Name != nil) && u.Name == "" {
		verr.Add("name", "имя обязательно")
	}

	if in.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if create || in.Email != nil {
		if !validEmail(u.Email) {
			verr.Add("email", "некорректный email")
		}
	}

	if in.Role != nil {
		u.Role = rbac.NormalizeRole(*in.Role)
		if !rbac.IsValidRole(u.Role) {
			verr.Add("role", "допустимые роли: ADMIN, USER")
		}
	}
	return verr
}

// validEmail принимает только голый адрес без отображаемого имени.
func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
