package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/goartstore/planner-module/internal/ui/i18n"
)

// LoginData — данные страницы входа.
type LoginData struct {
	Email string
	// Failed — предыдущая попытка входа не удалась.
	Failed bool
	// Next — куда вернуться после входа.
	Next string
}

// Login — страница входа.
func Login(data LoginData) templ.Component {
	form := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<h1>`)
		p.text(i18n.T(ctx, "login.title"))
		p.raw(`</h1>`)
		if data.Failed {
			p.raw(`<p class="error" role="alert">`)
			p.text(i18n.T(ctx, "login.error"))
			p.raw(`</p>`)
		}
		p.raw(`<form method="post" action="/login">`)
		if data.Next != "" {
			p.raw(`<input type="hidden" name="next" value="`)
			p.text(data.Next)
			p.raw(`">`)
		}
		p.raw(`<label>`)
		p.text(i18n.T(ctx, "login.email"))
		p.raw(` <input type="email" name="email" required autocomplete="username" value="`)
		p.text(data.Email)
		p.raw(`"></label><label>`)
		p.text(i18n.T(ctx, "login.password"))
		p.raw(` <input type="password" name="password" required autocomplete="current-password"></label><button type="submit">`)
		p.text(i18n.T(ctx, "login.submit"))
		p.raw(`</button></form>`)
		return p.err
	})

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(i18n.T(ctx, "login.title"), Header{}, form).Render(ctx, w)
	})
}
