package booking

import (
	"context"

	"github.com/a-h/templ"

	"github.com/vaxxnz/vaxx-web/internal/analytics"
	"github.com/vaxxnz/vaxx-web/internal/i18n"
	"github.com/vaxxnz/vaxx-web/internal/models"
	"github.com/vaxxnz/vaxx-web/internal/templates/markup"
)

// Card is a location card ready to render. Slots is the display set the
// loader selected.
type Card struct {
	Location   models.Location
	DistanceKm float64
	Date       models.CalendarDate
	Slots      []models.Slot
	LiveCount  int
	RadiusKm   int
}

func (c Card) click() analytics.Click {
	return analytics.Click{
		ExtID:          c.Location.ExtID,
		Date:           c.Date.DateStr,
		RadiusKm:       c.RadiusKm,
		SpotsAvailable: c.LiveCount,
	}
}

func CardID(extID string) string {
	return "card-" + extID
}

// LocationCard renders nothing when there are no slots to show.
func LocationCard(l i18n.Localizer, card Card) templ.Component {
	if len(card.Slots) == 0 {
		return templ.NopComponent
	}
	click := card.click()
	return markup.Func(func(ctx context.Context, w *markup.Writer) {
		w.Raw(`<section class="location-card"`)
		w.Attr("id", CardID(card.Location.ExtID))
		w.Raw("><h3>")
		w.Text(card.Location.Name)
		w.Raw(`</h3><p class="address">`)
		w.Text(card.Location.DisplayAddress)
		w.Raw(`</p><p class="distance">`)
		w.Text(l.T("core.distanceAway", map[string]any{
			"distance": i18n.FormatDistanceKm(card.DistanceKm, l.Locale),
		}))
		w.Raw(`</p><div class="actions">`)
		outboundLink(w, click.Path(analytics.KindDirections), l.T("core.getDirections", nil))
		outboundLink(w, click.Path(analytics.KindBooking), l.T("core.makeABooking", nil))
		outboundLink(w, click.Path(analytics.KindManage), l.T("core.changeOrCancelABooking", nil))
		w.Raw("</div><h4>")
		w.Text(l.T("calendar.modal.availableSlots", nil))
		w.Raw(`</h4><ul class="slots">`)
		for _, slot := range card.Slots {
			w.Raw("<li")
			w.Attr("data-start", slot.LocalStartTime)
			w.Raw(">")
			w.Text(i18n.FormatSlotTime(slot.LocalStartTime, l.Locale))
			w.Raw("</li>")
		}
		w.Raw("</ul></section>")
	})
}

// CardPlaceholder loads the card from src once it scrolls into view.
func CardPlaceholder(extID, label, src string) templ.Component {
	return markup.Func(func(ctx context.Context, w *markup.Writer) {
		w.Raw(`<div class="location-card-placeholder"`)
		w.Attr("id", CardID(extID))
		w.Attr("aria-label", label)
		w.URLAttr("hx-get", src)
		w.Attr("hx-trigger", "revealed")
		w.Attr("hx-swap", "outerHTML")
		w.Raw("></div>")
	})
}

func outboundLink(w *markup.Writer, href, label string) {
	w.Raw("<a")
	w.URLAttr("href", href)
	w.Attr("target", "_blank")
	w.Attr("rel", "noopener noreferrer")
	w.Raw(">")
	w.Text(label)
	w.Raw("</a>")
}
