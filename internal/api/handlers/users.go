// users.go — обработчики /api/v1/users.
// Управление пользователями доступно только ADMIN; сменить пароль
// может и сам пользователь.
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/goartstore/planner-module/internal/api/errors"
	"github.com/bigkaa/goartstore/planner-module/internal/api/middleware"
	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"
	"github.com/bigkaa/goartstore/planner-module/internal/service"
)

type userRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

type passwordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const userNotFound = "Пользователь не найден"

// ListUsers — GET /api/v1/users. Доступ: ADMIN.
func (h *APIHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, userNotFound)
		return
	}

	items := make([]userResponse, len(list))
	for i, u := range list {
		items[i] = mapUser(u)
	}
	writeJSON(w, http.StatusOK, items)
}

// GetUser — GET /api/v1/users/{id}. Доступ: ADMIN.
func (h *APIHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err, userNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(u))
}

// CreateUser — POST /api/v1/users. Доступ: ADMIN.
func (h *APIHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.Create(r.Context(), service.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.writeServiceError(w, r, err, userNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, mapUser(u))
}

// UpdateUser — PUT /api/v1/users/{id}. Пароль здесь не меняется. Доступ: ADMIN.
func (h *APIHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.Update(r.Context(), chi.URLParam(r, "id"), service.UserInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		h.writeServiceError(w, r, err, userNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(u))
}

// DeleteUser — DELETE /api/v1/users/{id}. Свою учётную запись удалить нельзя.
// Доступ: ADMIN.
func (h *APIHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := middleware.IdentityFromContext(r.Context())
	if actor == nil {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	if err := h.users.Delete(r.Context(), actor.UserID, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err, userNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword — PUT /api/v1/users/{id}/password.
// Доступ: сам пользователь или ADMIN.
func (h *APIHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor := middleware.IdentityFromContext(r.Context())
	if actor == nil {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	var req passwordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.users.ChangePassword(r.Context(), *actor, chi.URLParam(r, "id"), service.PasswordChange{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.writeServiceError(w, r, err, userNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func mapUser(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
