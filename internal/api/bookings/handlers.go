// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/vaxxnz/vaxx-web/internal/api/apiutil"
	"github.com/vaxxnz/vaxx-web/internal/api/htmx"
	"github.com/vaxxnz/vaxx-web/internal/geo"
	"github.com/vaxxnz/vaxx-web/internal/i18n"
	"github.com/vaxxnz/vaxx-web/internal/models"
	"github.com/vaxxnz/vaxx-web/internal/request"
	"github.com/vaxxnz/vaxx-web/internal/slots"
	"github.com/vaxxnz/vaxx-web/internal/templates/components/booking"
	"github.com/vaxxnz/vaxx-web/internal/templates/components/legal"
	"github.com/vaxxnz/vaxx-web/internal/templates/layouts"
)

const (
	queryTimeout = 5 * time.Second
	daysShown    = 7
	dateParam    = "date"
	extIDParam   = "extId"
	slugParam    = "slug"
)

type locationQueries interface {
	GetLocation(ctx context.Context, extID string) (models.Location, error)
	GetLocationBySlug(ctx context.Context, slug string) (models.Location, error)
	GetSlotSnapshot(ctx context.Context, extID, date string) ([]models.Slot, error)
	ListLocationSlotsPairs(ctx context.Context, date string) ([]models.LocationSlotsPair, error)
}

// FetcherResolver picks the live slot source for a request host.
type FetcherResolver interface {
	FetcherFor(host string) slots.Fetcher
}

type CardObserver interface {
	ObserveCard(state string, shown bool)
}

// Deps are the collaborators the page handlers need.
type Deps struct {
	Queries  locationQueries
	Bundle   *i18n.Bundle
	Fetchers FetcherResolver
	Observer CardObserver
	Location *time.Location
	Now      func() time.Time
}

var deps Deps

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(d Deps) {
	if d.Location == nil {
		d.Location = models.SiteLocation()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	deps = d
}

func now() time.Time {
	return deps.Now().In(deps.Location)
}

func today() models.CalendarDate {
	return models.CalendarDateOf(now())
}

// /
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	target := bookingsPath(today())
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// /bookings/{date}
func HandleBookingsPage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	date, ok := request.ParseCalendarDate(r.PathValue(dateParam))
	if !ok {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}
	prefs := request.Preferences(r, deps.Bundle)
	l := deps.Bundle.For(prefs.Locale)

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	pairs, err := deps.Queries.ListLocationSlotsPairs(ctx, date.DateStr)
	if err != nil {
		logger.Error().Err(err).Str("date", date.DateStr).Msg("Failed to list locations")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	prefQuery := request.PreferenceQuery(prefs)
	page := booking.BookingsPage{
		Days:      dayLinks(l, date, prefQuery),
		RadiusKm:  prefs.RadiusKm,
		Locations: nearbyLocations(geo.Nearby(pairs, prefs.Coordinate, prefs.RadiusKm), date, prefQuery, ""),
	}
	renderPage(w, r, l, l.T("calendar.title", nil), prefQuery, booking.Bookings(l, page), http.StatusOK)
}

// /api/v1/bookings/{date}/locations/{extId}/card
func HandleCard(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	date, ok := request.ParseCalendarDate(r.PathValue(dateParam))
	if !ok {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}
	extID := r.PathValue(extIDParam)
	prefs := request.Preferences(r, deps.Bundle)

	pair, err := loadPair(r.Context(), extID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		logger.Error().Err(err).Str("ext_id", extID).Msg("Failed to load location")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	loader := slots.NewLoader(pair, date, deps.Location)
	loader.Run(r.Context(), deps.Fetchers.FetcherFor(r.Host))
	display := loader.Display(now())
	if deps.Observer != nil {
		deps.Observer.ObserveCard(loader.State().String(), len(display) > 0)
	}

	card := booking.Card{
		Location:   pair.Location,
		DistanceKm: geo.DistanceKm(prefs.Coordinate, pair.Location.Location),
		Date:       date,
		Slots:      display,
		LiveCount:  loader.LiveCount(),
		RadiusKm:   prefs.RadiusKm,
	}
	l := deps.Bundle.For(prefs.Locale)
	component := booking.LocationCard(l, card)
	if !htmx.IsRequest(r) {
		renderPage(w, r, l, pair.Location.Name, request.PreferenceQuery(prefs), component, http.StatusOK)
		return
	}
	apiutil.RenderHTMLComponent(r.Context(), w, http.StatusOK, component, "Failed to render card")
}

// /locations/{slug}
func HandleLocationPage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	prefs := request.Preferences(r, deps.Bundle)
	l := deps.Bundle.For(prefs.Locale)
	prefQuery := request.PreferenceQuery(prefs)

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	location, err := deps.Queries.GetLocationBySlug(ctx, r.PathValue(slugParam))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			renderPage(w, r, l, "", prefQuery, booking.LocationNotFound(l), http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Msg("Failed to load location")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	date := today()
	pairs, err := deps.Queries.ListLocationSlotsPairs(ctx, date.DateStr)
	if err != nil {
		logger.Error().Err(err).Str("date", date.DateStr).Msg("Failed to list locations")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page := booking.LocationPage{
		Location:    location,
		CardURL:     cardPath(location.ExtID, date, prefQuery),
		NearbyToday: nearbyLocations(geo.Nearby(pairs, prefs.Coordinate, prefs.RadiusKm), date, prefQuery, location.ExtID),
	}
	renderPage(w, r, l, location.Name, prefQuery, booking.LocationDetails(l, page), http.StatusOK)
}

// /cookie-policy
func HandleCookiePolicy(w http.ResponseWriter, r *http.Request) {
	handleLegal(w, r, legal.CookiePolicy)
}

// /privacy-policy
func HandlePrivacyPolicy(w http.ResponseWriter, r *http.Request) {
	handleLegal(w, r, legal.PrivacyPolicy)
}

func handleLegal(w http.ResponseWriter, r *http.Request, doc legal.Document) {
	prefs := request.Preferences(r, deps.Bundle)
	l := deps.Bundle.For(prefs.Locale)
	renderPage(w, r, l, l.T(doc.TitleKey, nil), request.PreferenceQuery(prefs), legal.Page(l, doc), http.StatusOK)
}

// loadPair joins a location with its stored fallback slots for date.
func loadPair(ctx context.Context, extID string, date models.CalendarDate) (models.LocationSlotsPair, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	location, err := deps.Queries.GetLocation(ctx, extID)
	if err != nil {
		return models.LocationSlotsPair{}, err
	}
	fallback, err := deps.Queries.GetSlotSnapshot(ctx, extID, date.DateStr)
	if err != nil {
		return models.LocationSlotsPair{}, err
	}
	return models.LocationSlotsPair{Location: location, Slots: fallback}, nil
}

func renderPage(w http.ResponseWriter, r *http.Request, l i18n.Localizer, title string, navQuery url.Values, content templ.Component, status int) {
	page := layouts.Base(layouts.Page{Title: title, Localizer: l, NavQuery: navQuery.Encode()}, content)
	apiutil.RenderHTMLComponent(r.Context(), w, status, page, "Failed to render page")
}

func dayLinks(l i18n.Localizer, selected models.CalendarDate, q url.Values) []booking.DayLink {
	first := today()
	links := make([]booking.DayLink, 0, daysShown)
	for i := 0; i < daysShown; i++ {
		day := first.AddDays(i)
		label := dayLabel(l, day, i)
		links = append(links, booking.DayLink{
			Label:   label,
			Href:    bookingsPath(day) + "?" + q.Encode(),
			Current: day == selected,
		})
	}
	return links
}

func dayLabel(l i18n.Localizer, day models.CalendarDate, offset int) string {
	switch offset {
	case 0:
		return l.T("calendar.today", nil)
	case 1:
		return l.T("calendar.tomorrow", nil)
	}
	t, err := day.Day(deps.Location)
	if err != nil {
		return day.DateStr
	}
	return t.Format("Mon 2 Jan")
}

func nearbyLocations(pairs []models.LocationSlotsPair, date models.CalendarDate, q url.Values, exclude string) []booking.NearbyLocation {
	out := make([]booking.NearbyLocation, 0, len(pairs))
	for _, pair := range pairs {
		if pair.Location.ExtID == exclude {
			continue
		}
		out = append(out, booking.NearbyLocation{
			ExtID:   pair.Location.ExtID,
			Name:    pair.Location.Name,
			CardURL: cardPath(pair.Location.ExtID, date, q),
		})
	}
	return out
}

func bookingsPath(date models.CalendarDate) string {
	return "/bookings/" + date.DateStr
}

func cardPath(extID string, date models.CalendarDate, q url.Values) string {
	return "/api/v1/bookings/" + date.DateStr + "/locations/" + url.PathEscape(extID) + "/card?" + q.Encode()
}
