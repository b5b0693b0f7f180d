package model

import (
	"testing"
	"time"
)

func TestBookingStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{StatusPending, StatusActive, true},
		{StatusPending, StatusCancelled, true},
		{StatusActive, StatusCompleted, true},
		{StatusActive, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusActive, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusActive, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestBookingStatus_Predicates(t *testing.T) {
	for _, s := range AllStatuses() {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
		if s.IsLive() == s.IsTerminal() {
			t.Errorf("%s: live and terminal must be exclusive", s)
		}
		if s.CanBeCancelled() != s.IsLive() {
			t.Errorf("%s: only live bookings can be cancelled", s)
		}
	}
	if BookingStatus("CONFIRMED").IsValid() {
		t.Error("unknown status reported valid")
	}
}

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestInterval_Overlaps(t *testing.T) {
	base := NewDayInterval(day("2025-06-01"), day("2025-06-05"), time.UTC)

	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{name: "shares last day", start: "2025-06-05", end: "2025-06-10", want: true},
		{name: "shares first day", start: "2025-05-28", end: "2025-06-01", want: true},
		{name: "contains", start: "2025-05-01", end: "2025-07-01", want: true},
		{name: "next day", start: "2025-06-06", end: "2025-06-10", want: false},
		{name: "day before", start: "2025-05-25", end: "2025-05-31", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := NewDayInterval(day(tt.start), day(tt.end), time.UTC)
			if got := base.Overlaps(other); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := other.Overlaps(base); got != tt.want {
				t.Errorf("Overlaps is not symmetric")
			}
		})
	}
}

func TestInterval_Days(t *testing.T) {
	i := NewDayInterval(day("2025-06-01"), day("2025-07-01"), time.UTC)
	if i.SpanDays(time.UTC) != 30 {
		t.Errorf("SpanDays = %d, want 30", i.SpanDays(time.UTC))
	}
	if i.DaysInclusive(time.UTC) != 31 {
		t.Errorf("DaysInclusive = %d, want 31", i.DaysInclusive(time.UTC))
	}
	if i.Start.Hour() != 0 || i.End.Hour() != 23 || i.End.Nanosecond() != 999000000 {
		t.Errorf("interval not normalized to day boundaries: %v", i)
	}
}

func TestResource_Exists(t *testing.T) {
	var missing *Resource
	if missing.Exists() {
		t.Error("nil resource should not exist")
	}
	if (&Resource{Status: ResourceDeleted}).Exists() {
		t.Error("deleted resource should not exist")
	}
	if !(&Resource{Status: ResourceAvailable}).Exists() {
		t.Error("available resource should exist")
	}
}

func TestUser_DisplayName(t *testing.T) {
	var nobody *User
	tests := []struct {
		user *User
		want string
	}{
		{nobody, UnknownDisplayName},
		{&User{Name: "Alice", Username: "alice"}, "Alice"},
		{&User{Username: "alice"}, "alice"},
		{&User{}, UnknownDisplayName},
	}
	for _, tt := range tests {
		if got := tt.user.DisplayName(); got != tt.want {
			t.Errorf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}
