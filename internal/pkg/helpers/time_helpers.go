package helpers

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// DefaultReportMonths is the span covered by a report without explicit bounds
const DefaultReportMonths = 6

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's day
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// ParseDate parses a YYYY-MM-DD date; an empty string yields nil
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}

// DateRange resolves optional from/to strings into an inclusive day range.
// Missing bounds default to the last DefaultReportMonths months ending now.
func DateRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	f, err := ParseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	t, err := ParseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	end := EndOfDay(now)
	if t != nil {
		end = EndOfDay(*t)
	}
	start := StartOfDay(end.AddDate(0, -DefaultReportMonths, 0))
	if f != nil {
		start = StartOfDay(*f)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("from %s is after to %s", start.Format(DateLayout), end.Format(DateLayout))
	}
	return start, end, nil
}

// WeekdayName returns the English day name used by the timetable
func WeekdayName(t time.Time) string {
	return t.Weekday().String()
}
