package normalize

import (
	"strings"
	"time"
)

// timeOfDayLayouts all need a colon, so a four-digit year is never read as
// a time of day
var timeOfDayLayouts = []string{"15:04:05", "15:04"}

// Rollover builds an absolute end timestamp from start and a bare time of day.
// The end takes start's calendar date, advanced by exactly one day when the
// time of day is earlier than start's: events cross midnight at most once.
func Rollover(start time.Time, endTimeOfDay string) (time.Time, error) {
	tod, ok := parseTimeOfDay(strings.TrimSpace(endTimeOfDay))
	if !ok {
		return time.Time{}, unparseable(endTimeOfDay, "not a time of day")
	}

	y, m, d := start.Date()
	end := time.Date(y, m, d, tod.Hour(), tod.Minute(), tod.Second(), 0, start.Location())

	if sinceMidnight(end) < sinceMidnight(start) {
		end = end.AddDate(0, 0, 1)
	}

	return end, nil
}

// IsTimeOfDay reports whether a cleaned token is a bare time of day
func IsTimeOfDay(token string) bool {
	_, ok := parseTimeOfDay(strings.TrimSpace(token))
	return ok
}

func parseTimeOfDay(s string) (time.Time, bool) {
	return parseAny(s, timeOfDayLayouts...)
}

func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
