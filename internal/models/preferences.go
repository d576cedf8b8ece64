package models

const (
	DefaultRadiusKm = 10
	DefaultLocale   = "en-NZ"
)

// DefaultCoordinate is central Auckland, used until the visitor shares a location.
var DefaultCoordinate = Coordinate{Lat: -36.853610199274385, Lng: 174.76054541484535}

// Preferences is the visitor context every page and card render receives
// explicitly: where they are, how far they will travel, and their locale.
type Preferences struct {
	Coordinate Coordinate
	RadiusKm   int
	Locale     string
}

func DefaultPreferences() Preferences {
	return Preferences{
		Coordinate: DefaultCoordinate,
		RadiusKm:   DefaultRadiusKm,
		Locale:     DefaultLocale,
	}
}
