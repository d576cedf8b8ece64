package i18n

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const slotTimeLayout = "15:04:05"

// twelveHourLanguages render clock times as "9:30 am".
var twelveHourLanguages = map[string]bool{
	"en": true,
	"mi": true,
}

// FormatDistanceKm renders a distance with the locale's number formatting:
// one decimal below 10 km, whole kilometres above.
func FormatDistanceKm(km float64, locale string) string {
	p := message.NewPrinter(language.Make(locale))
	digits := 0
	if km < 10 {
		digits = 1
	}
	return p.Sprintf("%v km", number.Decimal(km, number.MaxFractionDigits(digits)))
}

// FormatSlotTime renders an "HH:mm:ss" start time for locale. Values that
// do not parse are returned as given.
func FormatSlotTime(localStartTime, locale string) string {
	clock, err := time.Parse(slotTimeLayout, strings.TrimSpace(localStartTime))
	if err != nil {
		return localStartTime
	}
	base, _ := language.Make(locale).Base()
	if twelveHourLanguages[base.String()] {
		return clock.Format("3:04 pm")
	}
	return clock.Format("15:04")
}
