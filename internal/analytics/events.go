// Package analytics records outbound link clicks from location cards.
package analytics

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vaxxnz/vaxx-web/internal/models"
)

type Kind string

const (
	KindDirections Kind = "directions"
	KindBooking    Kind = "booking"
	KindManage     Kind = "manage"
)

const (
	bookingDeepLinkURL = "https://app.bookmyvaccine.covid19.health.nz/deep-linking"
	bookingManageURL   = "https://app.bookmyvaccine.covid19.health.nz/manage"
	mapsDirectionsURL  = "https://www.google.com/maps/dir/"
)

func ParseKind(value string) (Kind, error) {
	switch k := Kind(strings.TrimSpace(value)); k {
	case KindDirections, KindBooking, KindManage:
		return k, nil
	default:
		return "", fmt.Errorf("unknown outbound link %q", value)
	}
}

// EventName is the analytics event name emitted for a click.
func (k Kind) EventName() string {
	switch k {
	case KindDirections:
		return "Get Directions clicked"
	case KindBooking:
		return "Make a Booking clicked"
	case KindManage:
		return "Edit Booking clicked"
	default:
		return ""
	}
}

// NamesLocation reports whether events for k carry the location name.
func (k Kind) NamesLocation() bool {
	return k == KindBooking || k == KindManage
}

// Target is the external URL a click on k leads to.
func (k Kind) Target(location models.Location, date models.CalendarDate) string {
	switch k {
	case KindDirections:
		q := url.Values{}
		q.Set("api", "1")
		q.Set("destination", fmt.Sprintf("%v,%v", location.Location.Lat, location.Location.Lng))
		return mapsDirectionsURL + "?" + q.Encode()
	case KindBooking:
		q := url.Values{}
		q.Set("location", location.ExtID)
		q.Set("date", date.DateStr)
		return bookingDeepLinkURL + "?" + q.Encode()
	case KindManage:
		return bookingManageURL
	default:
		return ""
	}
}

// Click is the context a card attaches to its outbound links.
type Click struct {
	ExtID          string
	Date           string
	RadiusKm       int
	SpotsAvailable int
}

// Path is the local tracking URL for a click on k.
func (c Click) Path(k Kind) string {
	q := url.Values{}
	q.Set("location", c.ExtID)
	q.Set("date", c.Date)
	q.Set("radius", strconv.Itoa(c.RadiusKm))
	q.Set("spots", strconv.Itoa(c.SpotsAvailable))
	return "/out/" + string(k) + "?" + q.Encode()
}

// ParseClick reads a Click back from a tracking URL query along with its
// parsed date. Numeric fields that are missing or malformed count as zero.
func ParseClick(q url.Values) (Click, models.CalendarDate, error) {
	c := Click{
		ExtID: strings.TrimSpace(q.Get("location")),
		Date:  strings.TrimSpace(q.Get("date")),
	}
	if c.ExtID == "" {
		return Click{}, models.CalendarDate{}, fmt.Errorf("location is required")
	}
	date, err := models.ParseCalendarDate(c.Date)
	if err != nil {
		return Click{}, models.CalendarDate{}, err
	}
	c.RadiusKm, _ = strconv.Atoi(q.Get("radius"))
	c.SpotsAvailable, _ = strconv.Atoi(q.Get("spots"))
	return c, date, nil
}

type Event struct {
	Name              string
	LocationName      string
	RadiusKm          int
	SpotsAvailable    int
	BookingDateInDays int
}

type ClickObserver interface {
	ObserveClick(event string)
}

// Recorder writes click events to the structured log and counts them.
type Recorder struct {
	observer ClickObserver
}

func NewRecorder(observer ClickObserver) *Recorder {
	return &Recorder{observer: observer}
}

func (r *Recorder) Record(ctx context.Context, event Event) {
	logEvent := log.Ctx(ctx).Info().
		Str("component", "analytics").
		Str("event", event.Name).
		Int("radius_km", event.RadiusKm).
		Int("spots_available", event.SpotsAvailable).
		Int("booking_date_in_days", event.BookingDateInDays)
	if event.LocationName != "" {
		logEvent = logEvent.Str("location_name", event.LocationName)
	}
	logEvent.Msg("Analytics event")

	if r != nil && r.observer != nil {
		r.observer.ObserveClick(event.Name)
	}
}
