package layouts

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"github.com/vaxxnz/vaxx-web/internal/i18n"
	"github.com/vaxxnz/vaxx-web/internal/templates/markup"
)

// DefaultHtmxSrc is the pinned htmx release pages load unless a deployment
// serves its own copy.
const DefaultHtmxSrc = "https://unpkg.com/htmx.org@1.9.12/dist/htmx.min.js"

var htmxSrc = DefaultHtmxSrc

// SetHtmxSrc points pages at a different htmx script, for example
// "/static/js/htmx.min.js" when the static directory ships it. An empty src
// restores the default.
func SetHtmxSrc(src string) {
	if src == "" {
		src = DefaultHtmxSrc
	}
	htmxSrc = src
}

// Palette is the site colour scheme exposed as CSS custom properties.
type Palette struct {
	Primary   string
	Secondary string
	Accent    string
}

func DefaultPalette() Palette {
	return Palette{
		Primary:   "#1d3557",
		Secondary: "#f1faee",
		Accent:    "#2a9d8f",
	}
}

func paletteCSSVars(p Palette) string {
	return fmt.Sprintf(
		":root{--site-primary:%s;--site-secondary:%s;--site-accent:%s;}",
		p.Primary,
		p.Secondary,
		p.Accent,
	)
}

// Page carries what the base layout needs around a page body.
type Page struct {
	Title     string
	Localizer i18n.Localizer
	NavQuery  string
}

// Base wraps content in the site chrome: header navigation, footer links,
// htmx and the stylesheet.
func Base(page Page, content templ.Component) templ.Component {
	l := page.Localizer
	return markup.Func(func(ctx context.Context, w *markup.Writer) {
		w.Raw("<!DOCTYPE html><html")
		w.Attr("lang", l.Locale)
		w.Raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.Raw("<title>")
		title := l.T("navigation.siteTitle", nil)
		if page.Title != "" {
			title = page.Title + " | " + title
		}
		w.Text(title)
		w.Raw("</title>")
		w.Raw("<style>" + paletteCSSVars(DefaultPalette()) + "</style>")
		w.Raw(`<link rel="stylesheet" href="/static/css/main.css">`)
		w.Raw("<script")
		w.URLAttr("src", htmxSrc)
		w.Raw(" defer></script>")
		w.Raw("</head><body>")

		w.Raw(`<header class="site-header"><nav>`)
		navLink(w, "/"+withQuery(page.NavQuery), l.T("navigation.bookings", nil))
		w.Raw("</nav></header>")

		w.Raw(`<main id="main">`)
		w.Component(ctx, content)
		w.Raw("</main>")

		w.Raw(`<footer class="site-footer">`)
		navLink(w, "/cookie-policy"+withQuery(page.NavQuery), l.T("navigation.cookiePolicy", nil))
		navLink(w, "/privacy-policy"+withQuery(page.NavQuery), l.T("navigation.privacyPolicy", nil))
		w.Raw("</footer></body></html>")
	})
}

func navLink(w *markup.Writer, href, label string) {
	w.Raw("<a")
	w.URLAttr("href", href)
	w.Raw(">")
	w.Text(label)
	w.Raw("</a>")
}

func withQuery(q string) string {
	if q == "" {
		return ""
	}
	return "?" + q
}
