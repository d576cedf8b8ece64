// Package slots decides which appointment slots a location card shows.
package slots

import (
	"math"
	"time"

	"github.com/vaxxnz/vaxx-web/internal/models"
)

// FilterPast drops slots that have already started when the list belongs to
// today. The start time is read on now's calendar day in now's location, and
// a slot survives only if it starts strictly after now. Slots with an
// unreadable start time cannot be placed on today's clock and are dropped.
// For any other day the input is returned unchanged.
func FilterPast(slots []models.Slot, isToday bool, now time.Time) []models.Slot {
	if !isToday {
		return slots
	}

	filtered := make([]models.Slot, 0, len(slots))
	for _, slot := range slots {
		start, err := slot.StartOn(now)
		if err != nil {
			continue
		}
		if start.After(now) {
			filtered = append(filtered, slot)
		}
	}
	return filtered
}

// IsToday reports whether date is now's calendar day in loc.
func IsToday(date models.CalendarDate, now time.Time, loc *time.Location) bool {
	if date.DateStr == "" {
		return false
	}
	return now.In(loc).Format(models.DateLayout) == date.DateStr
}

// DayOffset counts calendar days from now's day to date, negative for past dates.
func DayOffset(date models.CalendarDate, now time.Time, loc *time.Location) int {
	day, err := date.Day(loc)
	if err != nil {
		return 0
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	// Round to absorb daylight-saving transitions between the two midnights.
	return int(math.Round(day.Sub(today).Hours() / 24))
}

// Select applies the display rule: non-empty live data wins over fallback.
// Both sources go through FilterPast.
func Select(live, fallback []models.Slot, isToday bool, now time.Time) []models.Slot {
	if len(live) > 0 {
		return FilterPast(live, isToday, now)
	}
	return FilterPast(fallback, isToday, now)
}
