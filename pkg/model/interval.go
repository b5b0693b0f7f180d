package model

import (
	"time"

	"hallbook/pkg/dates"
)

// Interval is an inclusive range of whole calendar days. Start sits on the first
// millisecond of its day and End on the last millisecond of its day.
type Interval struct {
	Start time.Time `json:"start" bson:"start"`
	End   time.Time `json:"end" bson:"end"`
}

func NewDayInterval(startDay, endDay time.Time, loc *time.Location) Interval {
	return Interval{
		Start: dates.StartOfDay(startDay, loc),
		End:   dates.EndOfDay(endDay, loc),
	}
}

// Overlaps reports whether two intervals share at least one instant. Boundaries are
// inclusive, so a booking ending on a day conflicts with one starting that same day.
func (i Interval) Overlaps(other Interval) bool {
	return !i.Start.After(other.End) && !i.End.Before(other.Start)
}

// SpanDays is the number of calendar days between the start day and the end day.
func (i Interval) SpanDays(loc *time.Location) int {
	return dates.DaysBetween(i.Start, i.End, loc)
}

// DaysInclusive counts every calendar day the interval touches.
func (i Interval) DaysInclusive(loc *time.Location) int {
	return i.SpanDays(loc) + 1
}
