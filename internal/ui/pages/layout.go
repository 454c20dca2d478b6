// Пакет pages — HTML-страницы UI планировщика (templ-компоненты).
// Разметка без стилей: классы ячеек (workload-red, non-working, today)
// оставлены для внешней таблицы стилей.
package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/goartstore/planner-module/internal/ui/i18n"
)

// Header — данные шапки страницы. Пустой UserName — пользователь не вошёл.
type Header struct {
	UserName string
	Role     string
}

// Layout оборачивает содержимое страницы в общий HTML-каркас.
func Layout(title string, header Header, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := i18n.LangFromContext(ctx)
		p := &printer{w: w}
		p.raw(`<!DOCTYPE html><html lang="`)
		p.text(lang)
		p.raw(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		p.text(title)
		p.raw(" | ")
		p.text(i18n.T(ctx, "app.title"))
		p.raw(`</title></head><body><header><strong>`)
		p.text(i18n.T(ctx, "app.title"))
		p.raw(`</strong>`)
		if header.UserName != "" {
			p.raw(` <span class="user">`)
			p.text(i18n.Tf(ctx, "user.signed_in_as", header.UserName))
			p.raw(` (`)
			p.text(header.Role)
			p.raw(`)</span> <form method="post" action="/logout" class="inline"><button type="submit">`)
			p.text(i18n.T(ctx, "logout"))
			p.raw(`</button></form>`)
		}
		other := "en"
		if lang == "en" {
			other = "pl"
		}
		p.raw(` <form method="post" action="/set-language" class="inline"><input type="hidden" name="lang" value="`)
		p.text(other)
		p.raw(`"><button type="submit">`)
		p.text(i18n.T(ctx, "lang.switch"))
		p.raw(`</button></form></header><main>`)
		if p.err != nil {
			return p.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		p.raw(`</main></body></html>`)
		return p.err
	})
}

// printer пишет HTML, запоминая первую ошибку записи.
type printer struct {
	w   io.Writer
	err error
}

// raw пишет разметку без экранирования.
func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

// text пишет экранированный текст или значение атрибута.
func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}
