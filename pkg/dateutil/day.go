package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the calendar-date format accepted on the command line
const DayLayout = "2006-01-02"

// StartOfDay returns midnight of t's calendar date in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayBefore reports whether a's calendar date is strictly before b's.
// a is converted to b's location first.
func DayBefore(a, b time.Time) bool {
	return StartOfDay(a.In(b.Location())).Before(StartOfDay(b))
}

// SameDay reports whether a and b fall on the same calendar date in b's location
func SameDay(a, b time.Time) bool {
	return StartOfDay(a.In(b.Location())).Equal(StartOfDay(b))
}

// ParseDay parses a YYYY-MM-DD date (or the words today/tomorrow) in loc
func ParseDay(s string, now time.Time, loc *time.Location) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return StartOfDay(now.In(loc)), nil
	case "tomorrow":
		return StartOfDay(now.In(loc)).AddDate(0, 0, 1), nil
	}
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// FromMillis converts epoch milliseconds to local time
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
