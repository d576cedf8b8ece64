package request

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vaxxnz/vaxx-web/internal/models"
)

const (
	LocaleCookie = "NEXT_LOCALE"
	LatCookie    = "vaxx_lat"
	LngCookie    = "vaxx_lng"
	RadiusCookie = "vaxx_radius"

	maxRadiusKm = 500
)

// LocaleMatcher picks a supported locale from request candidates.
type LocaleMatcher interface {
	Match(candidates ...string) string
}

// ParseCalendarDate parses a yyyy-MM-dd path value.
func ParseCalendarDate(value string) (models.CalendarDate, bool) {
	date, err := models.ParseCalendarDate(strings.TrimSpace(value))
	if err != nil {
		return models.CalendarDate{}, false
	}
	return date, true
}

// ParseRadiusKm parses a positive radius in kilometres.
func ParseRadiusKm(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	radius, err := strconv.Atoi(value)
	if err != nil || radius <= 0 || radius > maxRadiusKm {
		return 0, false
	}
	return radius, true
}

// ParseCoordinate parses a lat/lng pair, rejecting NaN and out-of-range values.
func ParseCoordinate(lat, lng string) (models.Coordinate, bool) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil || math.IsNaN(la) || la < -90 || la > 90 {
		return models.Coordinate{}, false
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil || math.IsNaN(ln) || ln < -180 || ln > 180 {
		return models.Coordinate{}, false
	}
	return models.Coordinate{Lat: la, Lng: ln}, true
}

// Preferences resolves the visitor context for r. Query values win, then the
// page URL htmx reports for fragment requests, then cookies, then defaults.
func Preferences(r *http.Request, locales LocaleMatcher) models.Preferences {
	prefs := models.DefaultPreferences()
	sources := []url.Values{r.URL.Query()}
	if current := currentURLQuery(r); current != nil {
		sources = append(sources, current)
	}
	sources = append(sources, cookieValues(r))

	for _, src := range sources {
		if coord, ok := ParseCoordinate(src.Get("lat"), src.Get("lng")); ok {
			prefs.Coordinate = coord
			break
		}
	}
	for _, src := range sources {
		if radius, ok := ParseRadiusKm(src.Get("radius")); ok {
			prefs.RadiusKm = radius
			break
		}
	}

	if locales != nil {
		candidates := make([]string, 0, len(sources)+1)
		for _, src := range sources {
			candidates = append(candidates, src.Get("lang"))
		}
		candidates = append(candidates, r.Header.Get("Accept-Language"))
		if locale := locales.Match(candidates...); locale != "" {
			prefs.Locale = locale
		}
	}
	return prefs
}

// PreferenceQuery encodes prefs so fragment and navigation links carry them.
func PreferenceQuery(prefs models.Preferences) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(prefs.Coordinate.Lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(prefs.Coordinate.Lng, 'f', -1, 64))
	q.Set("radius", strconv.Itoa(prefs.RadiusKm))
	q.Set("lang", prefs.Locale)
	return q
}

func cookieValues(r *http.Request) url.Values {
	values := url.Values{}
	for name, key := range map[string]string{
		LatCookie:    "lat",
		LngCookie:    "lng",
		RadiusCookie: "radius",
		LocaleCookie: "lang",
	} {
		if c, err := r.Cookie(name); err == nil {
			values.Set(key, c.Value)
		}
	}
	return values
}

// currentURLQuery parses the query of the HX-Current-URL header, if any.
func currentURLQuery(r *http.Request) url.Values {
	currentURL := strings.TrimSpace(r.Header.Get("HX-Current-URL"))
	if currentURL == "" {
		return nil
	}

	parsed, err := url.Parse(currentURL)
	if err != nil {
		log.Ctx(r.Context()).
			Debug().
			Err(err).
			Str("hx_current_url", currentURL).
			Msg("Failed to parse HX-Current-URL")
		return nil
	}
	return parsed.Query()
}
