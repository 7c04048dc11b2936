package planner

import "time"

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type zonedClock struct {
	loc *time.Location
}

func (c zonedClock) Now() time.Time { return time.Now().In(c.loc) }

// SystemClock returns a Clock that reads the wall clock in loc.
// A nil loc means time.Local.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return zonedClock{loc: loc}
}

const dateLayout = "2006-01-02"

// Weekdays lists day names in display order, Monday first.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DateKey formats t as a calendar date (YYYY-MM-DD) in t's own location.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// WeekStart returns midnight of the Monday of the ISO week containing t.
// Sunday belongs to the week that started six days earlier.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// WeekRange returns the inclusive date keys [Monday, Sunday] for the week containing t.
func WeekRange(t time.Time) (from, to string) {
	start := WeekStart(t)
	return DateKey(start), DateKey(start.AddDate(0, 0, 6))
}

func isWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
