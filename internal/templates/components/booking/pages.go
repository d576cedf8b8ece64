package booking

import (
	"context"

	"github.com/a-h/templ"

	"github.com/vaxxnz/vaxx-web/internal/i18n"
	"github.com/vaxxnz/vaxx-web/internal/models"
	"github.com/vaxxnz/vaxx-web/internal/templates/markup"
)

type DayLink struct {
	Label   string
	Href    string
	Current bool
}

// NearbyLocation is one lazily loaded card in a list.
type NearbyLocation struct {
	ExtID   string
	Name    string
	CardURL string
}

type BookingsPage struct {
	Days      []DayLink
	RadiusKm  int
	Locations []NearbyLocation
}

func Bookings(l i18n.Localizer, page BookingsPage) templ.Component {
	return markup.Func(func(ctx context.Context, w *markup.Writer) {
		w.Raw("<h1>")
		w.Text(l.T("calendar.title", nil))
		w.Raw("</h1>")
		dateNav(w, page.Days)
		w.Raw(`<p class="radius">`)
		w.Text(l.T("core.kmRadius", map[string]any{"radius": page.RadiusKm}))
		w.Raw("</p>")
		nearbyList(ctx, w, l, page.Locations)
	})
}

type LocationPage struct {
	Location    models.Location
	CardURL     string
	NearbyToday []NearbyLocation
}

func LocationDetails(l i18n.Localizer, page LocationPage) templ.Component {
	return markup.Func(func(ctx context.Context, w *markup.Writer) {
		w.Raw("<h1>")
		w.Text(page.Location.Name)
		w.Raw(`</h1><p class="address">`)
		w.Text(page.Location.DisplayAddress)
		w.Raw("</p>")
		w.Component(ctx, CardPlaceholder(page.Location.ExtID, page.Location.Name, page.CardURL))

		w.Raw(`<section class="nearby-today"><h2>`)
		w.Text(l.T("locations.todayNearby", nil))
		w.Raw("</h2>")
		nearbyList(ctx, w, l, page.NearbyToday)
		w.Raw("</section>")
	})
}

func LocationNotFound(l i18n.Localizer) templ.Component {
	return markup.Func(func(ctx context.Context, w *markup.Writer) {
		w.Raw(`<p class="not-found">`)
		w.Text(l.T("locations.notFound", nil))
		w.Raw("</p>")
	})
}

func dateNav(w *markup.Writer, days []DayLink) {
	w.Raw(`<nav class="date-nav"><ul>`)
	for _, day := range days {
		w.Raw("<li><a")
		w.URLAttr("href", day.Href)
		if day.Current {
			w.Attr("aria-current", "page")
		}
		w.Raw(">")
		w.Text(day.Label)
		w.Raw("</a></li>")
	}
	w.Raw("</ul></nav>")
}

func nearbyList(ctx context.Context, w *markup.Writer, l i18n.Localizer, locations []NearbyLocation) {
	if len(locations) == 0 {
		w.Raw(`<p class="empty">`)
		w.Text(l.T("core.noLocations", nil))
		w.Raw("</p>")
		return
	}
	w.Raw(`<div class="location-list">`)
	for _, loc := range locations {
		w.Component(ctx, CardPlaceholder(loc.ExtID, loc.Name, loc.CardURL))
	}
	w.Raw("</div>")
}
