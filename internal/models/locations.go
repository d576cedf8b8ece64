// internal/models/locations.go
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	SlotTimeLayout = "15:04:05"
	SiteTimezone   = "Pacific/Auckland"
)

type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

func (c Coordinate) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

type Location struct {
	ExtID          string     `json:"extId" yaml:"ext_id"`
	Slug           string     `json:"slug" yaml:"slug"`
	Name           string     `json:"name" yaml:"name"`
	DisplayAddress string     `json:"displayAddress" yaml:"display_address"`
	Location       Coordinate `json:"location" yaml:"location"`
}

// Slot is one bookable start time. Availability fields the site does not
// read are kept in Extra so they survive a cache round trip.
type Slot struct {
	LocalStartTime string          `json:"localStartTime"`
	Available      int             `json:"available,omitempty"`
	Extra          json.RawMessage `json:"-"`
}

func (s *Slot) UnmarshalJSON(data []byte) error {
	var raw struct {
		LocalStartTime string `json:"localStartTime"`
		Available      int    `json:"available"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.LocalStartTime = raw.LocalStartTime
	s.Available = raw.Available
	s.Extra = append(s.Extra[:0], data...)
	return nil
}

func (s Slot) MarshalJSON() ([]byte, error) {
	if len(s.Extra) > 0 {
		return s.Extra, nil
	}
	type plain Slot
	return json.Marshal(plain(s))
}

// StartOn returns the slot start as an instant on the given day.
func (s Slot) StartOn(day time.Time) (time.Time, error) {
	clock, err := time.Parse(SlotTimeLayout, strings.TrimSpace(s.LocalStartTime))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse slot start %q: %w", s.LocalStartTime, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, day.Location()), nil
}

type LocationSlotsPair struct {
	Location Location `json:"location"`
	Slots    []Slot   `json:"slots"`
}

// CalendarDate is a "yyyy-MM-dd" day as selected in the UI.
type CalendarDate struct {
	DateStr string
}

func ParseCalendarDate(value string) (CalendarDate, error) {
	value = strings.TrimSpace(value)
	if _, err := time.Parse(DateLayout, value); err != nil {
		return CalendarDate{}, fmt.Errorf("invalid calendar date %q: %w", value, err)
	}
	return CalendarDate{DateStr: value}, nil
}

func CalendarDateOf(t time.Time) CalendarDate {
	return CalendarDate{DateStr: t.Format(DateLayout)}
}

// Day returns midnight of the date in loc.
func (d CalendarDate) Day(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, d.DateStr, loc)
}

func (d CalendarDate) AddDays(n int) CalendarDate {
	day, err := time.Parse(DateLayout, d.DateStr)
	if err != nil {
		return d
	}
	return CalendarDate{DateStr: day.AddDate(0, 0, n).Format(DateLayout)}
}

func (d CalendarDate) String() string {
	return d.DateStr
}

// SiteLocation loads the site timezone, falling back to UTC when the
// zoneinfo database is unavailable.
func SiteLocation() *time.Location {
	loc, err := time.LoadLocation(SiteTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
