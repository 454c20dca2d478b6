package pages

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/bigkaa/goartstore/planner-module/internal/ui/i18n"
)

// PlannerData — данные сетки планировщика.
type PlannerData struct {
	Header Header

	// Start, Prev, Next, Today — ключи YYYY-MM-DD для навигации.
	Start string
	Prev  string
	Next  string
	Today string
	Weeks int

	// SectionID — выбранный отдел (пустая строка — все).
	SectionID string
	Sections  []SectionOption

	Months []MonthSpan
	Days   []DayColumn
	Groups []SectionGroup
}

// SectionOption — отдел в фильтре.
type SectionOption struct {
	ID   string
	Name string
}

// MonthSpan — месяц в первой строке заголовка и число его дней в сетке.
type MonthSpan struct {
	Month time.Month
	Year  int
	Days  int
}

// DayColumn — столбец дня.
type DayColumn struct {
	Key        string
	Day        int
	Weekday    time.Weekday
	NonWorking bool
	Today      bool
}

// SectionGroup — отдел и его сотрудники.
type SectionGroup struct {
	Name string
	Rows []PersonRow
}

// PersonRow — строка сотрудника.
type PersonRow struct {
	ID    string
	Name  string
	Cells []Cell
}

// Cell — ячейка (сотрудник, день).
type Cell struct {
	// Text — метка основного проекта (в нерабочие дни пусто).
	Text string
	// Title — названия всех проектов дня через запятую.
	Title string
	// Workload — RED, YELLOW, GREEN или пусто.
	Workload   string
	NonWorking bool
	Today      bool
}

// Planner — страница сетки назначений.
func Planner(data PlannerData) templ.Component {
	grid := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<h1>`)
		p.text(i18n.T(ctx, "planner.title"))
		p.raw(`</h1>`)
		renderNavigation(ctx, p, data)
		renderLegend(ctx, p)

		p.raw(`<table class="planner"><thead><tr><th rowspan="2"></th>`)
		for _, m := range data.Months {
			p.raw(`<th colspan="`)
			p.raw(strconv.Itoa(m.Days))
			p.raw(`">`)
			p.text(i18n.MonthName(ctx, m.Month))
			p.raw(" ")
			p.raw(strconv.Itoa(m.Year))
			p.raw(`</th>`)
		}
		p.raw(`</tr><tr>`)
		for _, d := range data.Days {
			p.raw(`<th`)
			classAttr(p, dayClasses(d.NonWorking, d.Today, ""))
			p.raw(` data-date="`)
			p.text(d.Key)
			p.raw(`"><span>`)
			p.text(i18n.DayLabel(ctx, d.Weekday))
			p.raw(`</span> <b>`)
			p.raw(strconv.Itoa(d.Day))
			p.raw(`</b></th>`)
		}
		p.raw(`</tr></thead><tbody>`)

		if len(data.Groups) == 0 {
			p.raw(`<tr><td colspan="`)
			p.raw(strconv.Itoa(len(data.Days) + 1))
			p.raw(`">`)
			p.text(i18n.T(ctx, "planner.empty"))
			p.raw(`</td></tr>`)
		}
		for _, g := range data.Groups {
			p.raw(`<tr class="section"><th colspan="`)
			p.raw(strconv.Itoa(len(data.Days) + 1))
			p.raw(`" scope="rowgroup">`)
			p.text(g.Name)
			p.raw(`</th></tr>`)
			for _, row := range g.Rows {
				p.raw(`<tr data-person="`)
				p.text(row.ID)
				p.raw(`"><th scope="row"><a href="/person/`)
				p.text(row.ID)
				p.raw(`">`)
				p.text(row.Name)
				p.raw(`</a></th>`)
				for _, c := range row.Cells {
					p.raw(`<td`)
					classAttr(p, dayClasses(c.NonWorking, c.Today, c.Workload))
					if c.Title != "" {
						p.raw(` title="`)
						p.text(c.Title)
						p.raw(`"`)
					}
					p.raw(`>`)
					p.text(c.Text)
					p.raw(`</td>`)
				}
				p.raw(`</tr>`)
			}
		}
		p.raw(`</tbody></table>`)
		return p.err
	})

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(i18n.T(ctx, "planner.title"), data.Header, grid).Render(ctx, w)
	})
}

func renderNavigation(ctx context.Context, p *printer, data PlannerData) {
	p.raw(`<nav class="planner-nav"><a href="`)
	p.text(plannerURL(data.Today, data.Weeks, data.SectionID))
	p.raw(`">`)
	p.text(i18n.T(ctx, "planner.today"))
	p.raw(`</a> <a href="`)
	p.text(plannerURL(data.Prev, data.Weeks, data.SectionID))
	p.raw(`" rel="prev">`)
	p.text(i18n.T(ctx, "planner.prev"))
	p.raw(`</a> <a href="`)
	p.text(plannerURL(data.Next, data.Weeks, data.SectionID))
	p.raw(`" rel="next">`)
	p.text(i18n.T(ctx, "planner.next"))
	p.raw(`</a>`)

	p.raw(`<form method="get" action="/planner"><input type="hidden" name="start" value="`)
	p.text(data.Start)
	p.raw(`"><label>`)
	p.text(i18n.T(ctx, "planner.section"))
	p.raw(` <select name="section"><option value="">`)
	p.text(i18n.T(ctx, "planner.all_sections"))
	p.raw(`</option>`)
	for _, s := range data.Sections {
		p.raw(`<option value="`)
		p.text(s.ID)
		p.raw(`"`)
		if s.ID == data.SectionID {
			p.raw(` selected`)
		}
		p.raw(`>`)
		p.text(s.Name)
		p.raw(`</option>`)
	}
	p.raw(`</select></label> <label>`)
	p.text(i18n.T(ctx, "planner.weeks"))
	p.raw(` <input type="number" name="weeks" min="1" max="12" value="`)
	p.raw(strconv.Itoa(data.Weeks))
	p.raw(`"></label> <button type="submit">`)
	p.text(i18n.T(ctx, "planner.show"))
	p.raw(`</button></form></nav>`)
}

func renderLegend(ctx context.Context, p *printer) {
	p.raw(`<p class="legend">`)
	p.text(i18n.T(ctx, "planner.legend"))
	p.raw(`:`)
	for _, wl := range []string{"RED", "YELLOW", "GREEN"} {
		p.raw(` <span class="workload-`)
		p.raw(strings.ToLower(wl))
		p.raw(`">`)
		p.text(i18n.T(ctx, "workload."+wl))
		p.raw(`</span>`)
	}
	p.raw(`</p>`)
}

// plannerURL строит ссылку на сетку с сохранением фильтров.
func plannerURL(start string, weeks int, sectionID string) string {
	q := url.Values{}
	q.Set("start", start)
	q.Set("weeks", strconv.Itoa(weeks))
	if sectionID != "" {
		q.Set("section", sectionID)
	}
	return "/planner?" + q.Encode()
}

func dayClasses(nonWorking, today bool, workload string) []string {
	var classes []string
	if nonWorking {
		classes = append(classes, "non-working")
	} else if workload != "" {
		classes = append(classes, "workload-"+strings.ToLower(workload))
	}
	if today {
		classes = append(classes, "today")
	}
	return classes
}

func classAttr(p *printer, classes []string) {
	if len(classes) == 0 {
		return
	}
	p.raw(` class="`)
	p.text(strings.Join(classes, " "))
	p.raw(`"`)
}
