package pages

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/bigkaa/goartstore/planner-module/internal/ui/i18n"
)

// PersonData — данные календаря сотрудника.
type PersonData struct {
	Header Header

	PersonID    string
	Name        string
	SectionName string

	// Month — первый из двух показываемых месяцев (YYYY-MM).
	Month    string
	PrevURL  string
	NextURL  string
	ClearURL string
	BackURL  string

	Months []MonthGrid

	// Selected — выделенные даты по возрастанию.
	Selected []string
	// Dragging — выбран начальный день, ожидается конечный.
	Dragging bool
	Anchor   string

	// Status — результат последней записи: saved, deleted, invalid.
	Status  string
	CanEdit bool

	Projects  []ProjectOption
	Primary   string
	Workload  string
	Workloads []string
}

// MonthGrid — месяц, разбитый на недели с понедельника.
type MonthGrid struct {
	Month time.Month
	Year  int
	Weeks [][]EditorDay
}

// EditorDay — день календаря сотрудника.
type EditorDay struct {
	Key        string
	Day        int
	InMonth    bool
	NonWorking bool
	Today      bool
	Selectable bool
	Selected   bool
	Anchor     bool

	Workload string
	Text     string
	Title    string

	// Href — следующий шаг выделения; ExtendHref — добавить диапазон
	// до этого дня к текущему выделению.
	Href       string
	ExtendHref string
}

// ProjectOption — проект в форме назначения.
type ProjectOption struct {
	ID      string
	Name    string
	Label   string
	Checked bool
}

// weekOrder — столбцы календаря с понедельника.
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// PersonEditor — календарь сотрудника с формой назначения.
func PersonEditor(data PersonData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<p><a href="`)
		p.text(data.BackURL)
		p.raw(`">`)
		p.text(i18n.T(ctx, "person.back"))
		p.raw(`</a></p><h1>`)
		p.text(data.Name)
		p.raw(`</h1>`)
		if data.SectionName != "" {
			p.raw(`<p class="section">`)
			p.text(data.SectionName)
			p.raw(`</p>`)
		}
		if data.Status != "" {
			p.raw(`<p class="status status-`)
			p.text(data.Status)
			p.raw(`" role="status">`)
			p.text(i18n.T(ctx, "person.status."+data.Status))
			p.raw(`</p>`)
		}

		p.raw(`<nav class="person-nav"><a href="`)
		p.text(data.PrevURL)
		p.raw(`" rel="prev">`)
		p.text(i18n.T(ctx, "planner.prev"))
		p.raw(`</a> <a href="`)
		p.text(data.NextURL)
		p.raw(`" rel="next">`)
		p.text(i18n.T(ctx, "planner.next"))
		p.raw(`</a></nav>`)

		if data.Dragging {
			p.raw(`<p class="hint">`)
			p.text(i18n.T(ctx, "person.pick_end"))
			p.raw(`</p>`)
		}

		p.raw(`<div class="months">`)
		for _, m := range data.Months {
			renderMonth(ctx, p, m)
		}
		p.raw(`</div>`)

		renderAssignmentForm(ctx, p, data)
		return p.err
	})

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(data.Name, data.Header, body).Render(ctx, w)
	})
}

func renderMonth(ctx context.Context, p *printer, m MonthGrid) {
	p.raw(`<table class="month"><caption>`)
	p.text(i18n.MonthName(ctx, m.Month))
	p.raw(" ")
	p.raw(strconv.Itoa(m.Year))
	p.raw(`</caption><thead><tr>`)
	for _, wd := range weekOrder {
		p.raw(`<th>`)
		p.text(i18n.DayLabel(ctx, wd))
		p.raw(`</th>`)
	}
	p.raw(`</tr></thead><tbody>`)
	for _, week := range m.Weeks {
		p.raw(`<tr>`)
		for _, d := range week {
			renderEditorDay(p, d)
		}
		p.raw(`</tr>`)
	}
	p.raw(`</tbody></table>`)
}

func renderEditorDay(p *printer, d EditorDay) {
	if !d.InMonth {
		p.raw(`<td class="outside"></td>`)
		return
	}
	classes := dayClasses(d.NonWorking, d.Today, d.Workload)
	if d.Selected {
		classes = append(classes, "selected")
	}
	if d.Anchor {
		classes = append(classes, "anchor")
	}
	p.raw(`<td`)
	classAttr(p, classes)
	p.raw(` data-date="`)
	p.text(d.Key)
	p.raw(`"`)
	if d.Title != "" {
		p.raw(` title="`)
		p.text(d.Title)
		p.raw(`"`)
	}
	p.raw(`>`)
	if d.Href != "" {
		p.raw(`<a href="`)
		p.text(d.Href)
		p.raw(`">`)
		p.raw(strconv.Itoa(d.Day))
		p.raw(`</a>`)
	} else {
		p.raw(strconv.Itoa(d.Day))
	}
	if d.ExtendHref != "" {
		p.raw(` <a class="extend" href="`)
		p.text(d.ExtendHref)
		p.raw(`">+</a>`)
	}
	if d.Text != "" {
		p.raw(`<small>`)
		p.text(d.Text)
		p.raw(`</small>`)
	}
	p.raw(`</td>`)
}

func renderAssignmentForm(ctx context.Context, p *printer, data PersonData) {
	p.raw(`<section class="selection"><p>`)
	p.text(i18n.Tf(ctx, "person.selected", len(data.Selected)))
	p.raw(`</p>`)
	if len(data.Selected) > 0 {
		p.raw(`<p><a href="`)
		p.text(data.ClearURL)
		p.raw(`">`)
		p.text(i18n.T(ctx, "person.clear"))
		p.raw(`</a></p>`)
	}
	if !data.CanEdit || len(data.Selected) == 0 {
		p.raw(`</section>`)
		return
	}

	p.raw(`<form method="post" action="/person/`)
	p.text(data.PersonID)
	p.raw(`"><input type="hidden" name="month" value="`)
	p.text(data.Month)
	p.raw(`">`)
	for _, key := range data.Selected {
		p.raw(`<input type="hidden" name="dates" value="`)
		p.text(key)
		p.raw(`">`)
	}

	p.raw(`<fieldset><legend>`)
	p.text(i18n.T(ctx, "person.projects"))
	p.raw(`</legend>`)
	for _, pr := range data.Projects {
		p.raw(`<label><input type="checkbox" name="projects" value="`)
		p.text(pr.ID)
		p.raw(`"`)
		if pr.Checked {
			p.raw(` checked`)
		}
		p.raw(`> `)
		p.text(pr.Name)
		if pr.Label != "" {
			p.raw(` (`)
			p.text(pr.Label)
			p.raw(`)`)
		}
		p.raw(`</label> <label><input type="radio" name="primary" value="`)
		p.text(pr.ID)
		p.raw(`"`)
		if pr.ID == data.Primary {
			p.raw(` checked`)
		}
		p.raw(`> `)
		p.text(i18n.T(ctx, "person.primary"))
		p.raw(`</label><br>`)
	}
	p.raw(`</fieldset><fieldset><legend>`)
	p.text(i18n.T(ctx, "planner.legend"))
	p.raw(`</legend>`)
	for _, wl := range data.Workloads {
		p.raw(`<label class="workload-`)
		p.raw(strings.ToLower(wl))
		p.raw(`"><input type="radio" name="workload" value="`)
		p.text(wl)
		p.raw(`"`)
		if wl == data.Workload {
			p.raw(` checked`)
		}
		p.raw(`> `)
		p.text(i18n.T(ctx, "workload."+wl))
		p.raw(`</label> `)
	}
	p.raw(`</fieldset><button type="submit" name="action" value="save">`)
	p.text(i18n.T(ctx, "person.save"))
	p.raw(`</button> <button type="submit" name="action" value="delete">`)
	p.text(i18n.T(ctx, "person.delete"))
	p.raw(`</button></form></section>`)
}
