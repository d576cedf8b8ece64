package booking

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/vaxxnz/vaxx-web/internal/i18n"
	"github.com/vaxxnz/vaxx-web/internal/models"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func testLocalizer(t *testing.T) i18n.Localizer {
	t.Helper()
	bundle, err := i18n.Load()
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}
	return bundle.For("en-NZ")
}

func testCard() Card {
	date, _ := models.ParseCalendarDate("2026-10-20")
	return Card{
		Location: models.Location{
			ExtID:          "loc-akl",
			Name:           "Queen St <Pharmacy>",
			DisplayAddress: "10 Queen Street, Auckland",
			Location:       models.Coordinate{Lat: -36.8485, Lng: 174.7633},
		},
		DistanceKm: 2.345,
		Date:       date,
		Slots:      []models.Slot{{LocalStartTime: "09:30:00"}, {LocalStartTime: "14:00:00"}},
		LiveCount:  3,
		RadiusKm:   10,
	}
}

func TestLocationCardRendersNothingWithoutSlots(t *testing.T) {
	card := testCard()
	card.Slots = nil
	if got := render(t, LocationCard(testLocalizer(t), card)); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestLocationCardContents(t *testing.T) {
	got := render(t, LocationCard(testLocalizer(t), testCard()))

	for _, want := range []string{
		`id="card-loc-akl"`,
		"Queen St &lt;Pharmacy&gt;",
		"10 Queen Street, Auckland",
		"2.3 km away",
		"Get directions",
		"Make a booking",
		"Change or cancel a booking",
		"Available slots",
		"9:30 am",
		"2:00 pm",
		"/out/booking?date=2026-10-20&amp;location=loc-akl&amp;radius=10&amp;spots=3",
		"/out/directions?",
		"/out/manage?",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("card missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "<Pharmacy>") {
		t.Fatal("location name was not escaped")
	}
}

func TestCardPlaceholderWaitsForReveal(t *testing.T) {
	got := render(t, CardPlaceholder("loc-akl", "Queen St", "/api/v1/bookings/2026-10-20/locations/loc-akl/card?radius=10"))
	for _, want := range []string{
		`hx-get="/api/v1/bookings/2026-10-20/locations/loc-akl/card?radius=10"`,
		`hx-trigger="revealed"`,
		`hx-swap="outerHTML"`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("placeholder missing %q: %s", want, got)
		}
	}
}

func TestBookingsPageListsPlaceholders(t *testing.T) {
	l := testLocalizer(t)
	got := render(t, Bookings(l, BookingsPage{
		Days:     []DayLink{{Label: "Today", Href: "/bookings/2026-10-19", Current: true}, {Label: "Tomorrow", Href: "/bookings/2026-10-20"}},
		RadiusKm: 10,
		Locations: []NearbyLocation{
			{ExtID: "a", Name: "A", CardURL: "/api/v1/bookings/2026-10-19/locations/a/card"},
			{ExtID: "b", Name: "B", CardURL: "/api/v1/bookings/2026-10-19/locations/b/card"},
		},
	}))
	if strings.Count(got, `hx-trigger="revealed"`) != 2 {
		t.Fatalf("expected two placeholders:\n%s", got)
	}
	if !strings.Contains(got, `aria-current="page"`) || !strings.Contains(got, "Within 10 km") {
		t.Fatalf("unexpected page:\n%s", got)
	}

	empty := render(t, Bookings(l, BookingsPage{RadiusKm: 5}))
	if !strings.Contains(empty, "No locations with available slots") {
		t.Fatalf("expected empty message:\n%s", empty)
	}
}
