package dates

import (
	"testing"
	"time"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("time zone %s unavailable: %v", name, err)
	}
	return loc
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "calendar day", value: "2025-06-01", want: "2025-06-01T00:00:00Z"},
		{name: "padded", value: "  2025-06-01 ", want: "2025-06-01T00:00:00Z"},
		{name: "rfc3339 truncated", value: "2025-06-01T18:45:00Z", want: "2025-06-01T00:00:00Z"},
		{name: "empty", value: "", wantErr: true},
		{name: "wrong layout", value: "01/06/2025", wantErr: true},
		{name: "impossible date", value: "2025-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDay(tt.value, time.UTC)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDay(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if !tt.wantErr && got.Format(time.RFC3339) != tt.want {
				t.Errorf("ParseDay(%q) = %s, want %s", tt.value, got.Format(time.RFC3339), tt.want)
			}
		})
	}
}

func TestDayBoundaries(t *testing.T) {
	ts := time.Date(2025, 6, 1, 13, 14, 15, 0, time.UTC)

	if got := StartOfDay(ts, nil); !got.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartOfDay = %v", got)
	}
	if got := EndOfDay(ts, nil); !got.Equal(time.Date(2025, 6, 1, 23, 59, 59, 999000000, time.UTC)) {
		t.Errorf("EndOfDay = %v", got)
	}
	if got := Today(ts, time.UTC); !got.Equal(StartOfDay(ts, time.UTC)) {
		t.Errorf("Today = %v", got)
	}
}

func TestToday_UsesLocation(t *testing.T) {
	loc := mustLoad(t, "Asia/Jerusalem")
	// 22:30 UTC on May 31 is already June 1 in Jerusalem.
	now := time.Date(2025, 5, 31, 22, 30, 0, 0, time.UTC)

	if got := Format(Today(now, loc), loc); got != "2025-06-01" {
		t.Errorf("Today in Jerusalem = %s, want 2025-06-01", got)
	}
	if got := Format(Today(now, time.UTC), time.UTC); got != "2025-05-31" {
		t.Errorf("Today in UTC = %s, want 2025-05-31", got)
	}
}

func TestDaysBetween(t *testing.T) {
	day := func(s string) time.Time {
		d, _ := ParseDay(s, time.UTC)
		return d
	}

	tests := []struct {
		from, to string
		want     int
	}{
		{"2025-06-01", "2025-06-01", 0},
		{"2025-06-01", "2025-07-01", 30},
		{"2025-06-05", "2025-06-01", -4},
		{"2024-02-28", "2024-03-01", 2},
	}
	for _, tt := range tests {
		if got := DaysBetween(day(tt.from), day(tt.to), time.UTC); got != tt.want {
			t.Errorf("DaysBetween(%s, %s) = %d, want %d", tt.from, tt.to, got, tt.want)
		}
	}

	end := EndOfDay(day("2025-06-05"), time.UTC)
	if got := DaysBetween(day("2025-06-01"), end, time.UTC); got != 4 {
		t.Errorf("DaysBetween with end-of-day = %d, want 4", got)
	}
}

func TestDaysBetween_AcrossDaylightSaving(t *testing.T) {
	loc := mustLoad(t, "Europe/London")
	from, _ := ParseDay("2025-03-29", loc)
	to, _ := ParseDay("2025-03-31", loc)

	if got := DaysBetween(from, to, loc); got != 2 {
		t.Errorf("DaysBetween across DST = %d, want 2", got)
	}
}
