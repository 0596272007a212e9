package view

import (
	"net/http"

	"github.com/labstack/echo/v4"
	cmp "maragu.dev/gomponents"
	g "maragu.dev/gomponents/html"
)

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

// Base wraps content in the site layout.
func Base(title string, flashes FlashData, content ...cmp.Node) cmp.Node {
	return g.Doctype(
		g.HTML(g.Lang("en"),
			g.Head(
				g.Meta(g.Charset("utf-8")),
				g.Meta(g.Name("viewport"), g.Content("width=device-width, initial-scale=1")),
				g.TitleEl(cmp.Text(title+" | Eventhub")),
				g.Script(g.Src(htmxSrc)),
			),
			g.Body(
				g.Header(g.A(g.Href("/"), cmp.Text("Eventhub"))),
				Flashes(flashes),
				g.Main(cmp.Group(content)),
				g.Div(g.ID("toasts"), g.Aria("live", "polite")),
			),
		),
	)
}

// Flashes renders queued flash messages.
func Flashes(f FlashData) cmp.Node {
	return cmp.Group{
		cmp.Map(f.Success, func(m string) cmp.Node {
			return g.Div(g.Class("flash flash-success"), g.Role("status"), cmp.Text(m))
		}),
		cmp.Map(f.Error, func(m string) cmp.Node {
			return g.Div(g.Class("flash flash-error"), g.Role("alert"), cmp.Text(m))
		}),
	}
}

// Render writes node as an HTML response with the given status.
func Render(c echo.Context, status int, node cmp.Node) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return node.Render(c.Response().Writer)
}

// Page renders a full page with the layout.
func Page(c echo.Context, title string, content ...cmp.Node) error {
	return Render(c, http.StatusOK, Base(title, GetFlashData(c), content...))
}
