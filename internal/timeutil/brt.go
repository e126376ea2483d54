package timeutil

import (
	"time"
)

// BRT is the Brasilia time location (UTC-3). Distribution days roll over at
// midnight Brasilia time, so every date-keyed counter uses this zone.
var BRT *time.Location

func init() {
	var err error
	BRT, err = time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		// Fallback: create fixed zone if America/Sao_Paulo not available
		BRT = time.FixedZone("BRT", -3*60*60) // UTC-3
	}
}

// Now returns the current time in BRT
func Now() time.Time {
	return time.Now().In(BRT)
}

// ToBRT converts any time to BRT
func ToBRT(t time.Time) time.Time {
	return t.In(BRT)
}

// Today returns the current distribution date (midnight BRT)
func Today() time.Time {
	return StartOfDay(time.Now())
}

// DateString formats a time as the distribution date key (YYYY-MM-DD in BRT)
func DateString(t time.Time) string {
	return t.In(BRT).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into a midnight-BRT time
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, BRT)
}

// StartOfDay returns the start of day (00:00:00) in BRT for the given time
func StartOfDay(t time.Time) time.Time {
	brt := t.In(BRT)
	return time.Date(brt.Year(), brt.Month(), brt.Day(), 0, 0, 0, 0, BRT)
}

// EndOfDay returns the end of day (23:59:59) in BRT for the given time
func EndOfDay(t time.Time) time.Time {
	brt := t.In(BRT)
	return time.Date(brt.Year(), brt.Month(), brt.Day(), 23, 59, 59, 999999999, BRT)
}

// Common layouts for BRT formatting
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)
