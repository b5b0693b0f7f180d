// Package dates converts between calendar-day strings and day-boundary timestamps.
//
// Every function takes the location that defines where a calendar day begins and ends.
// Callers pass the configured booking time zone; a nil location means UTC.
package dates

import (
	"fmt"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

// ParseDay parses a calendar-day string (YYYY-MM-DD) or an RFC3339 timestamp and
// returns the start of that day in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	loc = orUTC(loc)
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if t, err := time.ParseInLocation(DayLayout, value, loc); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return StartOfDay(t, loc), nil
}

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(orUTC(loc))
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Today returns the start of the calendar day that contains now in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	return StartOfDay(now, loc)
}

func EndOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(orUTC(loc))
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// DaysBetween returns the number of calendar days from the day of from to the day of
// to. It is negative when to falls on an earlier day.
func DaysBetween(from, to time.Time, loc *time.Location) int {
	a := civil(from, loc)
	b := civil(to, loc)
	return int(b.Sub(a).Hours() / 24)
}

func Format(t time.Time, loc *time.Location) string {
	return t.In(orUTC(loc)).Format(DayLayout)
}

// civil projects the calendar day of t in loc onto UTC midnight so day arithmetic is
// not affected by daylight saving shifts.
func civil(t time.Time, loc *time.Location) time.Time {
	t = t.In(orUTC(loc))
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
