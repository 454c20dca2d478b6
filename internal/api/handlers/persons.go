// persons.go — обработчики /api/v1/persons.
// DELETE не удаляет сотрудника, а снимает признак активности.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"
	"github.com/bigkaa/goartstore/planner-module/internal/repository"
	"github.com/bigkaa/goartstore/planner-module/internal/service"
)

type personRequest struct {
	FirstName *string        `json:"firstName"`
	LastName  *string        `json:"lastName"`
	SectionID *string        `json:"sectionId"`
	SdmID     nullableString `json:"sdmId"`
	IsActive  *bool          `json:"isActive"`
	SortOrder *int           `json:"sortOrder"`
}

func (req personRequest) input() service.PersonInput {
	return service.PersonInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		SectionID: req.SectionID,
		SdmID:     req.SdmID.input(),
		IsActive:  req.IsActive,
		SortOrder: req.SortOrder,
	}
}

type personSummaryResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type personResponse struct {
	ID        string                 `json:"id"`
	FirstName string                 `json:"firstName"`
	LastName  string                 `json:"lastName"`
	SectionID string                 `json:"sectionId"`
	SdmID     *string                `json:"sdmId"`
	IsActive  bool                   `json:"isActive"`
	SortOrder int                    `json:"sortOrder"`
	Section   *sectionResponse       `json:"section,omitempty"`
	Sdm       *personSummaryResponse `json:"sdm,omitempty"`
}

const personNotFound = "Сотрудник не найден"

// ListPersons — GET /api/v1/persons?active&sectionId.
func (h *APIHandler) ListPersons(w http.ResponseWriter, r *http.Request) {
	var (
		active    *bool
		sectionID *string
	)
	if !bindQuery(w, r, "active", false, &active) || !bindQuery(w, r, "sectionId", false, &sectionID) {
		return
	}

	filter := repository.PersonFilter{ActiveOnly: active != nil && *active}
	if sectionID != nil {
		filter.SectionID = *sectionID
	}

	list, err := h.persons.List(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err, personNotFound)
		return
	}

	items := make([]personResponse, len(list))
	for i, p := range list {
		items[i] = mapPerson(p)
	}
	writeJSON(w, http.StatusOK, items)
}

// GetPerson — GET /api/v1/persons/{id}.
func (h *APIHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	p, err := h.persons.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err, personNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mapPerson(p))
}

// CreatePerson — POST /api/v1/persons. Доступ: ADMIN.
func (h *APIHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.persons.Create(r.Context(), req.input())
	if err != nil {
		h.writeServiceError(w, r, err, personNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, mapPerson(p))
}

// UpdatePerson — PUT /api/v1/persons/{id}. Доступ: ADMIN.
func (h *APIHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.persons.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		h.writeServiceError(w, r, err, personNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mapPerson(p))
}

// DeactivatePerson — DELETE /api/v1/persons/{id}. Доступ: ADMIN.
func (h *APIHandler) DeactivatePerson(w http.ResponseWriter, r *http.Request) {
	if err := h.persons.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err, personNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func mapPerson(p *model.Person) personResponse {
	resp := personResponse{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		SectionID: p.SectionID,
		SdmID:     p.SdmID,
		IsActive:  p.IsActive,
		SortOrder: p.SortOrder,
	}
	if p.Section != nil {
		sec := mapSection(p.Section)
		resp.Section = &sec
	}
	if p.Sdm != nil {
		resp.Sdm = &personSummaryResponse{
			ID:        p.Sdm.ID,
			FirstName: p.Sdm.FirstName,
			LastName:  p.Sdm.LastName,
		}
	}
	return resp
}
