// projects.go — обработчики /api/v1/projects.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"
	"github.com/bigkaa/goartstore/planner-module/internal/service"
)

type projectRequest struct {
	ProjectID *string        `json:"projectId"`
	Name      *string        `json:"name"`
	Label     nullableString `json:"label"`
	Color     nullableString `json:"color"`
	IsActive  *bool          `json:"isActive"`
}

func (req projectRequest) input() service.ProjectInput {
	return service.ProjectInput{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Label:     req.Label.input(),
		Color:     req.Color.input(),
		IsActive:  req.IsActive,
	}
}

type projectResponse struct {
	ID        string  `json:"id"`
	ProjectID string  `json:"projectId"`
	Name      string  `json:"name"`
	Label     *string `json:"label"`
	Color     *string `json:"color"`
	IsActive  bool    `json:"isActive"`
}

const projectNotFound = "Проект не найден"

// ListProjects — GET /api/v1/projects?active.
func (h *APIHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	var active *bool
	if !bindQuery(w, r, "active", false, &active) {
		return
	}

	list, err := h.projects.List(r.Context(), active != nil && *active)
	if err != nil {
		h.writeServiceError(w, r, err, projectNotFound)
		return
	}

	items := make([]projectResponse, len(list))
	for i, p := range list {
		items[i] = mapProject(p)
	}
	writeJSON(w, http.StatusOK, items)
}

// GetProject — GET /api/v1/projects/{id}.
func (h *APIHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err, projectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mapProject(p))
}

// CreateProject — POST /api/v1/projects. Доступ: ADMIN.
func (h *APIHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.projects.Create(r.Context(), req.input())
	if err != nil {
		h.writeServiceError(w, r, err, projectNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, mapProject(p))
}

// UpdateProject — PUT /api/v1/projects/{id}. Доступ: ADMIN.
func (h *APIHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.projects.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		h.writeServiceError(w, r, err, projectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mapProject(p))
}

// DeactivateProject — DELETE /api/v1/projects/{id}.
// Назначения проекта сохраняются. Доступ: ADMIN.
func (h *APIHandler) DeactivateProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err, projectNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func mapProject(p *model.Project) projectResponse {
	return projectResponse{
		ID:        p.ID,
		ProjectID: p.ProjectID,
		Name:      p.Name,
		Label:     p.Label,
		Color:     p.Color,
		IsActive:  p.IsActive,
	}
}
