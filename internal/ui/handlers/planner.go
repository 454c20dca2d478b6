// Пакет handlers — HTTP-обработчики UI планировщика.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bigkaa/goartstore/planner-module/internal/calendar"
	"github.com/bigkaa/goartstore/planner-module/internal/domain/model"
	"github.com/bigkaa/goartstore/planner-module/internal/repository"
	uimiddleware "github.com/bigkaa/goartstore/planner-module/internal/ui/middleware"
	"github.com/bigkaa/goartstore/planner-module/internal/ui/pages"
)

// MaxPlannerWeeks — верхняя граница параметра weeks.
const MaxPlannerWeeks = 12

var (
	errBadStart = errors.New("параметр start: ожидается формат YYYY-MM-DD")
	errBadWeeks = errors.New("параметр weeks: ожидается целое от 1 до 12")
)

// PersonLister — источник сотрудников для сетки.
type PersonLister interface {
	List(ctx context.Context, filter repository.PersonFilter) ([]*model.Person, error)
}

// SectionLister — источник отделов.
type SectionLister interface {
	List(ctx context.Context) ([]*model.Section, error)
}

// AssignmentLister — источник назначений за период.
type AssignmentLister interface {
	List(ctx context.Context, from, to time.Time, personID *string) ([]*model.Assignment, error)
}

// HolidayProvider — праздники за период.
type HolidayProvider interface {
	Range(from, to time.Time) calendar.HolidaySet
}

// PlannerHandler — обработчик страницы сетки назначений.
type PlannerHandler struct {
	persons     PersonLister
	sections    SectionLister
	assignments AssignmentLister
	holidays    HolidayProvider
	weeks       int
	logger      *slog.Logger
	now         func() time.Time
}

// NewPlannerHandler создаёт PlannerHandler. weeks — число недель
// на странице по умолчанию, 1..MaxPlannerWeeks (проверяется config.Load).
func NewPlannerHandler(
	persons PersonLister,
	sections SectionLister,
	assignments AssignmentLister,
	holidays HolidayProvider,
	weeks int,
	logger *slog.Logger,
) *PlannerHandler {
	return &PlannerHandler{
		persons:     persons,
		sections:    sections,
		assignments: assignments,
		holidays:    holidays,
		weeks:       weeks,
		logger:      logger.With(slog.String("component", "ui.planner")),
		now:         time.Now,
	}
}

// HandlePlanner обрабатывает GET /planner?start=&weeks=&section=.
func (h *PlannerHandler) HandlePlanner(w http.ResponseWriter, r *http.Request) {
	session := uimiddleware.SessionFromContext(r.Context())
	if session == nil {
		http.Redirect(w, r, uimiddleware.LoginPath, http.StatusFound)
		return
	}

	today := calendar.Normalize(h.now())
	start, weeks, err := h.parseQuery(r, today)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sectionID := r.URL.Query().Get("section")

	days := calendar.GenerateDays(start, weeks)
	from, to := days[0], days[len(days)-1]

	ctx := r.Context()
	sections, err := h.sections.List(ctx)
	if err != nil {
		h.serverError(w, "Ошибка загрузки отделов", err)
		return
	}
	persons, err := h.persons.List(ctx, repository.PersonFilter{ActiveOnly: true, SectionID: sectionID})
	if err != nil {
		h.serverError(w, "Ошибка загрузки сотрудников", err)
		return
	}
	assignments, err := h.assignments.List(ctx, from, to, nil)
	if err != nil {
		h.serverError(w, "Ошибка загрузки назначений", err)
		return
	}

	data := buildPlannerData(plannerInput{
		today:       today,
		days:        days,
		weeks:       weeks,
		sectionID:   sectionID,
		sections:    sections,
		persons:     persons,
		assignments: assignments,
		holidays:    h.holidays.Range(from, to),
	})
	data.Header = pages.Header{UserName: session.Name, Role: session.Role}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Planner(data).Render(ctx, w); err != nil {
		h.logger.Error("Ошибка рендеринга сетки",
			slog.String("error", err.Error()),
			slog.String("user_id", session.UserID),
		)
		http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
	}
}

// parseQuery разбирает start и weeks. Без start показывается текущая неделя.
func (h *PlannerHandler) parseQuery(r *http.Request, today time.Time) (time.Time, int, error) {
	q := r.URL.Query()

	start := today
	if s := q.Get("start"); s != "" {
		d, err := calendar.ParseDateKey(s)
		if err != nil {
			return time.Time{}, 0, errBadStart
		}
		start = d
	}

	weeks := h.weeks
	if s := q.Get("weeks"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxPlannerWeeks {
			return time.Time{}, 0, errBadWeeks
		}
		weeks = n
	}
	return calendar.WeekStart(start), weeks, nil
}

func (h *PlannerHandler) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.String("error", err.Error()))
	http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
}

// plannerInput — всё, что нужно для построения сетки.
type plannerInput struct {
	today       time.Time
	days        []time.Time
	weeks       int
	sectionID   string
	sections    []*model.Section
	persons     []*model.Person
	assignments []*model.Assignment
	holidays    calendar.HolidaySet
}

// buildPlannerData раскладывает назначения по ячейкам (сотрудник, день).
// Сотрудники группируются по отделам в порядке списка отделов.
func buildPlannerData(in plannerInput) pages.PlannerData {
	start := in.days[0]
	data := pages.PlannerData{
		Start:     calendar.DateKey(start),
		Prev:      calendar.DateKey(calendar.NavigateWeeks(start, calendar.Prev, calendar.DefaultNavigationWeeks)),
		Next:      calendar.DateKey(calendar.NavigateWeeks(start, calendar.Next, calendar.DefaultNavigationWeeks)),
		Today:     calendar.DateKey(calendar.WeekStart(in.today)),
		Weeks:     in.weeks,
		SectionID: in.sectionID,
	}

	todayKey := calendar.DateKey(in.today)
	nonWorking := make([]bool, len(in.days))
	for i, d := range in.days {
		nonWorking[i] = calendar.IsNonWorkingDay(d, in.holidays)
		data.Days = append(data.Days, pages.DayColumn{
			Key:        calendar.DateKey(d),
			Day:        d.Day(),
			Weekday:    d.Weekday(),
			NonWorking: nonWorking[i],
			Today:      calendar.DateKey(d) == todayKey,
		})

		last := len(data.Months) - 1
		if last >= 0 && data.Months[last].Month == d.Month() && data.Months[last].Year == d.Year() {
			data.Months[last].Days++
		} else {
			data.Months = append(data.Months, pages.MonthSpan{Month: d.Month(), Year: d.Year(), Days: 1})
		}
	}

	byCell := make(map[string][]*model.Assignment)
	for _, a := range in.assignments {
		key := a.PersonID + "|" + calendar.DateKey(a.Date)
		byCell[key] = append(byCell[key], a)
	}

	known := make(map[string]bool, len(in.sections))
	for _, s := range in.sections {
		data.Sections = append(data.Sections, pages.SectionOption{ID: s.ID, Name: s.Name})
		known[s.ID] = true
	}

	var order []string
	groups := make(map[string]*pages.SectionGroup)
	for _, p := range in.persons {
		g, ok := groups[p.SectionID]
		if !ok {
			g = &pages.SectionGroup{Name: sectionName(p, in.sections)}
			groups[p.SectionID] = g
			order = append(order, p.SectionID)
		}

		row := pages.PersonRow{ID: p.ID, Name: strings.TrimSpace(p.FirstName + " " + p.LastName)}
		for i, d := range in.days {
			cell := pages.Cell{NonWorking: nonWorking[i], Today: data.Days[i].Key == todayKey}
			if !cell.NonWorking {
				fillCell(&cell, byCell[p.ID+"|"+calendar.DateKey(d)])
			}
			row.Cells = append(row.Cells, cell)
		}
		g.Rows = append(g.Rows, row)
	}

	// Сначала отделы в порядке справочника, затем отделы, которых в нём нет
	for _, s := range in.sections {
		if g, ok := groups[s.ID]; ok {
			data.Groups = append(data.Groups, *g)
		}
	}
	for _, id := range order {
		if !known[id] {
			data.Groups = append(data.Groups, *groups[id])
		}
	}
	return data
}

// fillCell заполняет ячейку рабочего дня. Загрузка и метка берутся
// из основного назначения, при его отсутствии из первого.
func fillCell(cell *pages.Cell, list []*model.Assignment) {
	if len(list) == 0 {
		return
	}
	main := list[0]
	names := make([]string, 0, len(list))
	for _, a := range list {
		if a.IsPrimary {
			main = a
		}
		if a.Project != nil {
			names = append(names, a.Project.Name)
		}
	}
	cell.Workload = string(main.Workload)
	cell.Title = strings.Join(names, ", ")
	if main.Project != nil {
		cell.Text = main.Project.Name
		if main.Project.Label != nil && *main.Project.Label != "" {
			cell.Text = *main.Project.Label
		}
	}
}

func sectionName(p *model.Person, sections []*model.Section) string {
	for _, s := range sections {
		if s.ID == p.SectionID {
			return s.Name
		}
	}
	if p.Section != nil {
		return p.Section.Name
	}
	return p.SectionID
}
