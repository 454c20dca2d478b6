// assignments.go — обработчики /api/v1/assignments и /api/v1/holidays.
package handlers

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/bigkaa/goartstore/planner-module/internal/calendar"
	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"
	"github.com/bigkaa/goartstore/planner-module/internal/service"
)

// replaceAssignmentsRequest — тело POST /api/v1/assignments.
type replaceAssignmentsRequest struct {
	PersonID         string   `json:"personId"`
	Dates            []string `json:"dates"`
	ProjectIDs       []string `json:"projectIds"`
	PrimaryProjectID string   `json:"primaryProjectId"`
	Workload         string   `json:"workload"`
}

// deleteAssignmentsRequest — тело DELETE /api/v1/assignments/bulk.
type deleteAssignmentsRequest struct {
	PersonID string   `json:"personId"`
	Dates    []string `json:"dates"`
}

type projectSummaryResponse struct {
	ID        string  `json:"id"`
	ProjectID string  `json:"projectId"`
	Name      string  `json:"name"`
	Label     *string `json:"label"`
	Color     *string `json:"color"`
}

type assignmentResponse struct {
	ID        string                  `json:"id"`
	PersonID  string                  `json:"personId"`
	ProjectID string                  `json:"projectId"`
	Date      string                  `json:"date"`
	IsPrimary bool                    `json:"isPrimary"`
	Workload  string                  `json:"workload"`
	Project   *projectSummaryResponse `json:"project,omitempty"`
}

// ListAssignments — GET /api/v1/assignments?dateFrom&dateTo&personId.
func (h *APIHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	var (
		from, to openapi_types.Date
		personID *string
	)
	if !bindQuery(w, r, "dateFrom", true, &from) ||
		!bindQuery(w, r, "dateTo", true, &to) ||
		!bindQuery(w, r, "personId", false, &personID) {
		return
	}

	list, err := h.assignments.List(r.Context(),
		calendar.Normalize(from.Time), calendar.Normalize(to.Time), personID)
	if err != nil {
		h.writeServiceError(w, r, err, "Назначения не найдены")
		return
	}

	items := make([]assignmentResponse, len(list))
	for i, a := range list {
		items[i] = mapAssignment(a)
	}
	writeJSON(w, http.StatusOK, items)
}

// ReplaceAssignments — POST /api/v1/assignments.
// Заменяет назначения сотрудника на выбранные даты. Доступ: ADMIN.
func (h *APIHandler) ReplaceAssignments(w http.ResponseWriter, r *http.Request) {
	var req replaceAssignmentsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	count, err := h.assignments.Replace(r.Context(), service.ReplaceInput{
		PersonID:         req.PersonID,
		Dates:            req.Dates,
		ProjectIDs:       req.ProjectIDs,
		PrimaryProjectID: req.PrimaryProjectID,
		Workload:         req.Workload,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "Сотрудник не найден")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int{"count": count})
}

// DeleteAssignments — DELETE /api/v1/assignments/bulk. Доступ: ADMIN.
func (h *APIHandler) DeleteAssignments(w http.ResponseWriter, r *http.Request) {
	var req deleteAssignmentsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	deleted, err := h.assignments.Delete(r.Context(), req.PersonID, req.Dates)
	if err != nil {
		h.writeServiceError(w, r, err, "Сотрудник не найден")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": deleted})
}

// ListHolidays — GET /api/v1/holidays?year. По умолчанию текущий год.
func (h *APIHandler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	var year *int
	if !bindQuery(w, r, "year", false, &year) {
		return
	}
	y := h.now().Year()
	if year != nil {
		y = *year
	}

	keys, err := h.holidays.Year(y)
	if err != nil {
		h.writeServiceError(w, r, err, "Праздники не найдены")
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

// --- Маппинг domain → API ---

func mapAssignment(a *model.Assignment) assignmentResponse {
	resp := assignmentResponse{
		ID:        a.ID,
		PersonID:  a.PersonID,
		ProjectID: a.ProjectID,
		Date:      calendar.DateKey(a.Date),
		IsPrimary: a.IsPrimary,
		Workload:  string(a.Workload),
	}
	if a.Project != nil {
		resp.Project = &projectSummaryResponse{
			ID:        a.Project.ID,
			ProjectID: a.Project.ProjectID,
			Name:      a.Project.Name,
			Label:     a.Project.Label,
			Color:     a.Project.Color,
		}
	}
	return resp
}
