package agrolib

import "time"

// DayLayout is the calendar-day format used throughout agromanagement
// documents and log messages.
const DayLayout = "2006-01-02"

// Day returns the given calendar day normalized to midnight UTC. All day
// values handled by the engine are normalized this way so they compare
// with Equal and serve as map keys.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ToDay truncates t to its calendar day in UTC.
func ToDay(t time.Time) time.Time {
	return Day(t.Year(), t.Month(), t.Day())
}

// AddDays returns day shifted by n calendar days.
func AddDays(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, n)
}

// DaysBetween returns the number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(ToDay(b).Sub(ToDay(a)) / (24 * time.Hour))
}

// inWindow reports whether start <= day < end. A zero end leaves the
// window open-ended.
func inWindow(day, start, end time.Time) bool {
	if day.Before(start) {
		return false
	}
	if end.IsZero() {
		return true
	}
	return day.Before(end)
}

// formatWindow renders a campaign window for error messages.
func formatWindow(start, end time.Time) string {
	if end.IsZero() {
		return start.Format(DayLayout) + " - open"
	}
	return start.Format(DayLayout) + " - " + end.Format(DayLayout)
}
