package dates

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of t's ISO week at midnight UTC.
// AddDate keeps month and year boundaries correct.
func WeekStart(t time.Time) time.Time {
	day := Day(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return day.AddDate(0, 0, -offset)
}

// WeekEnd returns the Sunday closing the ISO week that starts at WeekStart(t).
func WeekEnd(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 6)
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse parses a YYYY-MM-DD date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseOr parses s, or returns Day(fallback) when s is empty.
func ParseOr(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return Day(fallback), nil
	}
	return Parse(s)
}

// DaysBetween returns the whole number of days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
