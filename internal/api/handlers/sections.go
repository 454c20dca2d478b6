// sections.go — обработчики /api/v1/sections.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"
	"github.com/bigkaa/goartstore/planner-module/internal/service"
)

type sectionRequest struct {
	Name      *string `json:"name"`
	SortOrder *int    `json:"sortOrder"`
}

func (req sectionRequest) input() service.SectionInput {
	return service.SectionInput{Name: req.Name, SortOrder: req.SortOrder}
}

type sectionResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
}

const sectionNotFound = "Отдел не найден"

// ListSections — GET /api/v1/sections.
func (h *APIHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	list, err := h.sections.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, sectionNotFound)
		return
	}

	items := make([]sectionResponse, len(list))
	for i, s := range list {
		items[i] = mapSection(s)
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateSection — POST /api/v1/sections. Доступ: ADMIN.
func (h *APIHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sec, err := h.sections.Create(r.Context(), req.input())
	if err != nil {
		h.writeServiceError(w, r, err, sectionNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, mapSection(sec))
}

// UpdateSection — PUT /api/v1/sections/{id}. Доступ: ADMIN.
func (h *APIHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sec, err := h.sections.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		h.writeServiceError(w, r, err, sectionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mapSection(sec))
}

// DeleteSection — DELETE /api/v1/sections/{id}.
// Отдел, в котором есть сотрудники, не удаляется (409). Доступ: ADMIN.
func (h *APIHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	if err := h.sections.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err, sectionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func mapSection(s *model.Section) sectionResponse {
	return sectionResponse{ID: s.ID, Name: s.Name, SortOrder: s.SortOrder}
}
