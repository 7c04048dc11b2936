package planner

import (
	"testing"
	"time"
)

func TestWeekRange(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		from, to string
	}{
		{"monday", time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), "2026-03-02", "2026-03-08"},
		{"wednesday", time.Date(2026, 3, 4, 23, 59, 0, 0, time.UTC), "2026-03-02", "2026-03-08"},
		{"sunday belongs to previous monday", time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC), "2026-03-02", "2026-03-08"},
		{"crosses month", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), "2026-03-30", "2026-04-05"},
		{"crosses year", time.Date(2027, 1, 2, 10, 0, 0, 0, time.UTC), "2026-12-28", "2027-01-03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := WeekRange(tt.now)
			if from != tt.from || to != tt.to {
				t.Errorf("WeekRange(%v) = %s..%s, want %s..%s", tt.now, from, to, tt.from, tt.to)
			}
		})
	}
}

func TestWeekStartStableAcrossWeek(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i).Add(13 * time.Hour)
		if got := DateKey(WeekStart(day)); got != "2026-03-02" {
			t.Errorf("WeekStart(%s) = %s, want 2026-03-02", day.Weekday(), got)
		}
	}
}

func TestDateKeyUsesClockLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	utc := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	if got := DateKey(utc.In(tokyo)); got != "2026-03-02" {
		t.Errorf("DateKey in JST = %s, want 2026-03-02", got)
	}
	if got := DateKey(utc); got != "2026-03-01" {
		t.Errorf("DateKey in UTC = %s, want 2026-03-01", got)
	}
}

func TestSystemClockLocation(t *testing.T) {
	loc := time.FixedZone("X", 3600)
	if got := SystemClock(loc).Now().Location(); got != loc {
		t.Errorf("location = %v, want %v", got, loc)
	}
	if got := SystemClock(nil).Now().Location(); got != time.Local {
		t.Errorf("nil location = %v, want Local", got)
	}
}
