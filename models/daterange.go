package models

import "time"

// DateRange is a half-open [From, To) window
type DateRange struct {
	From time.Time
	To   time.Time
}

// DayRange returns the 24 hour window starting at d
func DayRange(d time.Time) *DateRange {
	return &DateRange{From: d, To: d.Add(24 * time.Hour)}
}

// Contains reports whether t falls inside the window
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// TruncateDay clears the time of day, keeping the calendar date in UTC
func TruncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in the given month
func DaysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
