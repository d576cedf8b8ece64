package legal

import (
	"context"

	"github.com/a-h/templ"

	"github.com/vaxxnz/vaxx-web/internal/i18n"
	"github.com/vaxxnz/vaxx-web/internal/templates/markup"
)

// Document is a legal page built from translation keys.
type Document struct {
	TitleKey      string
	ParagraphKeys []string
}

var (
	CookiePolicy = Document{
		TitleKey:      "legal.cookie.title",
		ParagraphKeys: []string{"legal.cookie.intro", "legal.cookie.analytics", "legal.cookie.contact"},
	}
	PrivacyPolicy = Document{
		TitleKey:      "legal.privacy.title",
		ParagraphKeys: []string{"legal.privacy.intro", "legal.privacy.booking"},
	}
)

func Page(l i18n.Localizer, doc Document) templ.Component {
	return markup.Func(func(ctx context.Context, w *markup.Writer) {
		w.Raw(`<article class="legal"><h1>`)
		w.Text(l.T(doc.TitleKey, nil))
		w.Raw("</h1>")
		for _, key := range doc.ParagraphKeys {
			w.Raw("<p>")
			w.Text(l.T(key, nil))
			w.Raw("</p>")
		}
		w.Raw("</article>")
	})
}
