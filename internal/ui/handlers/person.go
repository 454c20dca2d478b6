// person.go — календарь сотрудника: выделение рабочих дней двух месяцев
// и запись назначений на выделенные даты.
//
// Состояние выделения живёт в query-параметрах: sel — выбранные даты,
// anchor — якорь незавершённого протягивания. Действие над днём передаётся
// одним из параметров down (начать, с extend=1 — добавить диапазон),
// enter (завершить протягивание) или clear.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goartstore/planner-module/internal/calendar"
	"github.com/bigkaa/goartstore/planner-module/internal/calendar/dragselect"
	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"
	"github.com/bigkaa/goartstore/planner-module/internal/domain/rbac"
	"github.com/bigkaa/goartstore/planner-module/internal/service"
	uimiddleware "github.com/bigkaa/goartstore/planner-module/internal/ui/middleware"
	"github.com/bigkaa/goartstore/planner-module/internal/ui/pages"
)

// PersonPathPrefix — префикс страницы календаря сотрудника.
const PersonPathPrefix = "/person/"

// monthLayout — формат параметра month.
const monthLayout = "2006-01"

// Результаты записи, показываемые после redirect.
const (
	statusSaved   = "saved"
	statusDeleted = "deleted"
	statusInvalid = "invalid"
)

var (
	errBadMonth = errors.New("параметр month: ожидается формат YYYY-MM")
	errBadDay   = errors.New("параметр дня: ожидается формат YYYY-MM-DD")
)

// PersonGetter — источник карточки сотрудника.
type PersonGetter interface {
	Get(ctx context.Context, id string) (*model.Person, error)
}

// ProjectLister — источник проектов для формы.
type ProjectLister interface {
	List(ctx context.Context, activeOnly bool) ([]*model.Project, error)
}

// AssignmentEditor — чтение и запись назначений сотрудника.
type AssignmentEditor interface {
	AssignmentLister
	Replace(ctx context.Context, in service.ReplaceInput) (int, error)
	Delete(ctx context.Context, personID string, dateKeys []string) (int64, error)
}

// PersonHandler — обработчик календаря сотрудника.
type PersonHandler struct {
	persons     PersonGetter
	projects    ProjectLister
	assignments AssignmentEditor
	holidays    HolidayProvider
	logger      *slog.Logger
	now         func() time.Time
}

// NewPersonHandler создаёт PersonHandler.
func NewPersonHandler(
	persons PersonGetter,
	projects ProjectLister,
	assignments AssignmentEditor,
	holidays HolidayProvider,
	logger *slog.Logger,
) *PersonHandler {
	return &PersonHandler{
		persons:     persons,
		projects:    projects,
		assignments: assignments,
		holidays:    holidays,
		logger:      logger.With(slog.String("component", "ui.person")),
		now:         time.Now,
	}
}

// HandlePerson обрабатывает GET /person/{id}.
func (h *PersonHandler) HandlePerson(w http.ResponseWriter, r *http.Request) {
	session := uimiddleware.SessionFromContext(r.Context())
	if session == nil {
		http.Redirect(w, r, uimiddleware.LoginPath, http.StatusFound)
		return
	}

	ctx := r.Context()
	q := r.URL.Query()

	month, err := h.parseMonth(q.Get("month"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	person, err := h.persons.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, "Ошибка загрузки сотрудника", err)
		return
	}

	cal := newEditorCalendar(month, h.holidays)
	sel, err := applySelection(cal.selector(), q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	assignments, err := h.assignments.List(ctx, cal.from(), cal.to(), &person.ID)
	if err != nil {
		h.serverError(w, "Ошибка загрузки назначений", err)
		return
	}
	projects, err := h.projects.List(ctx, true)
	if err != nil {
		h.serverError(w, "Ошибка загрузки проектов", err)
		return
	}

	data := buildPersonData(personInput{
		person:      person,
		month:       month,
		today:       calendar.Normalize(h.now()),
		cal:         cal,
		sel:         sel,
		assignments: assignments,
		projects:    projects,
		status:      q.Get("status"),
		canEdit:     rbac.Allows(session.Role, rbac.RoleAdmin),
	})
	data.Header = pages.Header{UserName: session.Name, Role: session.Role}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.PersonEditor(data).Render(ctx, w); err != nil {
		h.logger.Error("Ошибка рендеринга календаря",
			slog.String("error", err.Error()),
			slog.String("person_id", person.ID),
		)
		http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
	}
}

// HandleSubmit обрабатывает POST /person/{id}: action=save заменяет
// назначения на выделенных датах, action=delete удаляет их.
// Только для ADMIN.
func (h *PersonHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	session := uimiddleware.SessionFromContext(r.Context())
	if session == nil {
		http.Redirect(w, r, uimiddleware.LoginPath, http.StatusFound)
		return
	}
	if !rbac.Allows(session.Role, rbac.RoleAdmin) {
		http.Error(w, "Недостаточно прав", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}

	personID := chi.URLParam(r, "id")
	month := r.PostForm.Get("month")
	if _, err := time.Parse(monthLayout, month); err != nil {
		http.Error(w, errBadMonth.Error(), http.StatusBadRequest)
		return
	}
	dates := r.PostForm["dates"]

	var err error
	status := statusSaved
	switch r.PostForm.Get("action") {
	case "save":
		projectIDs := r.PostForm["projects"]
		primary := r.PostForm.Get("primary")
		if primary == "" && len(projectIDs) > 0 {
			primary = projectIDs[0]
		}
		_, err = h.assignments.Replace(r.Context(), service.ReplaceInput{
			PersonID:         personID,
			Dates:            dates,
			ProjectIDs:       projectIDs,
			PrimaryProjectID: primary,
			Workload:         r.PostForm.Get("workload"),
		})
	case "delete":
		status = statusDeleted
		_, err = h.assignments.Delete(r.Context(), personID, dates)
	default:
		http.Error(w, "Неизвестное действие", http.StatusBadRequest)
		return
	}

	q := url.Values{"month": {month}}
	switch {
	case errors.Is(err, service.ErrValidation):
		h.logger.Info("Назначения не записаны",
			slog.String("person_id", personID),
			slog.String("error", err.Error()),
		)
		// Выделение сохраняется, чтобы исправить форму
		q.Set("status", statusInvalid)
		if len(dates) > 0 {
			q.Set("sel", strings.Join(dates, ","))
		}
	case err != nil:
		h.serverError(w, "Ошибка записи назначений", err)
		return
	default:
		q.Set("status", status)
	}

	http.Redirect(w, r, PersonPathPrefix+url.PathEscape(personID)+"?"+q.Encode(), http.StatusSeeOther)
}

// parseMonth разбирает YYYY-MM; без значения — текущий месяц.
func (h *PersonHandler) parseMonth(s string) (time.Time, error) {
	if s == "" {
		now := h.now()
		return calendar.Date(now.Year(), now.Month(), 1), nil
	}
	m, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, errBadMonth
	}
	return m, nil
}

func (h *PersonHandler) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.String("error", err.Error()))
	http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
}

// editorCalendar — сетки двух соседних месяцев и их рабочие дни.
type editorCalendar struct {
	months   [2]time.Time
	grids    [2][]time.Time
	holidays calendar.HolidaySet
	// selectable — рабочие дни обоих месяцев по возрастанию.
	selectable []string
}

func newEditorCalendar(month time.Time, holidays HolidayProvider) *editorCalendar {
	c := &editorCalendar{months: [2]time.Time{month, month.AddDate(0, 1, 0)}}
	for i, m := range c.months {
		c.grids[i] = monthGrid(m)
	}
	c.holidays = holidays.Range(c.from(), c.to())

	for i, m := range c.months {
		var inMonth []time.Time
		for _, d := range c.grids[i] {
			if d.Month() == m.Month() {
				inMonth = append(inMonth, d)
			}
		}
		c.selectable = append(c.selectable, calendar.DateKeys(calendar.WorkingDays(inMonth, c.holidays))...)
	}
	return c
}

func (c *editorCalendar) from() time.Time { return c.grids[0][0] }

func (c *editorCalendar) to() time.Time {
	last := c.grids[1]
	return last[len(last)-1]
}

func (c *editorCalendar) selector() *dragselect.Selector {
	return dragselect.New(c.selectable)
}

// monthGrid — полные недели (пн–вс), покрывающие месяц.
func monthGrid(month time.Time) []time.Time {
	first := calendar.Date(month.Year(), month.Month(), 1)
	last := first.AddDate(0, 1, -1)
	weeks := int(calendar.WeekStart(last).Sub(calendar.WeekStart(first)).Hours()/24)/7 + 1
	return calendar.GenerateDays(first, weeks)
}

// applySelection восстанавливает выделение из query и применяет действие.
func applySelection(s *dragselect.Selector, q url.Values) (*dragselect.Selector, error) {
	s.Restore(splitKeys(q.Get("sel")), q.Get("anchor"))

	switch {
	case q.Get("clear") != "":
		s.PointerUp()
		s.Clear()
	case q.Get("down") != "":
		key := q.Get("down")
		if _, err := calendar.ParseDateKey(key); err != nil {
			return nil, errBadDay
		}
		if !s.Selectable(key) {
			break
		}
		extend := q.Get("extend") == "1"
		s.PointerDown(key, extend)
		if extend {
			s.PointerUp()
		}
	case q.Get("enter") != "":
		key := q.Get("enter")
		if _, err := calendar.ParseDateKey(key); err != nil {
			return nil, errBadDay
		}
		s.PointerEnter(key)
		s.PointerUp()
	}
	return s, nil
}

func splitKeys(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// personInput — всё, что нужно для страницы календаря.
type personInput struct {
	person      *model.Person
	month       time.Time
	today       time.Time
	cal         *editorCalendar
	sel         *dragselect.Selector
	assignments []*model.Assignment
	projects    []*model.Project
	status      string
	canEdit     bool
}

// buildPersonData раскладывает назначения по дням и готовит ссылки
// для следующего шага выделения.
func buildPersonData(in personInput) pages.PersonData {
	selected := in.sel.Selected()
	base := url.Values{"month": {in.month.Format(monthLayout)}}
	if len(selected) > 0 {
		base.Set("sel", strings.Join(selected, ","))
	}
	if in.sel.IsDragging() {
		base.Set("anchor", in.sel.Anchor())
	}
	path := PersonPathPrefix + url.PathEscape(in.person.ID)
	link := func(extra ...string) string {
		q := url.Values{}
		for k, v := range base {
			q[k] = v
		}
		for i := 0; i+1 < len(extra); i += 2 {
			q.Set(extra[i], extra[i+1])
		}
		return path + "?" + q.Encode()
	}
	monthLink := func(m time.Time) string {
		return path + "?" + url.Values{"month": {m.Format(monthLayout)}}.Encode()
	}

	data := pages.PersonData{
		PersonID:  in.person.ID,
		Name:      strings.TrimSpace(in.person.FirstName + " " + in.person.LastName),
		Month:     in.month.Format(monthLayout),
		PrevURL:   monthLink(in.month.AddDate(0, -1, 0)),
		NextURL:   monthLink(in.month.AddDate(0, 1, 0)),
		ClearURL:  link("clear", "1"),
		Selected:  selected,
		Dragging:  in.sel.IsDragging(),
		Status:    in.status,
		CanEdit:   in.canEdit,
		Workload:  string(model.WorkloadYellow),
		BackURL:   HomePath,
		Anchor:    in.sel.Anchor(),
		Workloads: []string{string(model.WorkloadRed), string(model.WorkloadYellow), string(model.WorkloadGreen)},
	}
	if in.person.Section != nil {
		data.SectionName = in.person.Section.Name
	}

	byDate := make(map[string][]*model.Assignment)
	for _, a := range in.assignments {
		key := calendar.DateKey(a.Date)
		byDate[key] = append(byDate[key], a)
	}

	todayKey := calendar.DateKey(in.today)
	for i, m := range in.cal.months {
		grid := pages.MonthGrid{Month: m.Month(), Year: m.Year()}
		var week []pages.EditorDay
		for _, d := range in.cal.grids[i] {
			key := calendar.DateKey(d)
			day := pages.EditorDay{
				Key:        key,
				Day:        d.Day(),
				InMonth:    d.Month() == m.Month(),
				NonWorking: calendar.IsNonWorkingDay(d, in.cal.holidays),
				Today:      key == todayKey,
			}
			day.Selectable = day.InMonth && in.sel.Selectable(key)
			if day.Selectable {
				day.Selected = in.sel.IsSelected(key)
				day.Anchor = in.sel.IsDragging() && in.sel.Anchor() == key
				if in.sel.IsDragging() {
					day.Href = link("enter", key)
				} else {
					day.Href = link("down", key)
					if len(selected) > 0 {
						day.ExtendHref = link("down", key, "extend", "1")
					}
				}
			}
			if day.InMonth && !day.NonWorking {
				fillEditorDay(&day, byDate[key])
			}
			week = append(week, day)
			if len(week) == 7 {
				grid.Weeks = append(grid.Weeks, week)
				week = nil
			}
		}
		data.Months = append(data.Months, grid)
	}

	// Форма заполняется назначениями первой выбранной даты
	current := map[string]bool{}
	if len(selected) > 0 {
		if existing := byDate[selected[0]]; len(existing) > 0 {
			data.Workload = string(existing[0].Workload)
			for _, a := range existing {
				current[a.ProjectID] = true
				if a.IsPrimary {
					data.Primary = a.ProjectID
				}
			}
		}
	}
	for _, p := range in.projects {
		opt := pages.ProjectOption{ID: p.ID, Name: p.Name, Checked: current[p.ID]}
		if p.Label != nil {
			opt.Label = *p.Label
		}
		data.Projects = append(data.Projects, opt)
	}
	return data
}

// fillEditorDay подписывает день так же, как ячейку сетки планировщика.
func fillEditorDay(day *pages.EditorDay, list []*model.Assignment) {
	var cell pages.Cell
	fillCell(&cell, list)
	day.Workload, day.Text, day.Title = cell.Workload, cell.Text, cell.Title
}
