package domain

import "time"

// Persisted formats: dates as ISO-8601 days, clock times without seconds.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ParseDate parses a persisted yyyy-MM-dd string / Analyse une date persistée au format yyyy-MM-dd
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a date for persistence / Formate une date pour la persistance
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseClock parses a persisted HH:mm string / Analyse une heure persistée au format HH:mm
func ParseClock(s string) (time.Time, error) {
	return time.Parse(ClockLayout, s)
}

// FormatClock renders a clock time for persistence / Formate une heure pour la persistance
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// Today truncates the given instant to its calendar day in UTC.
// The retention sweep compares days, never instants.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
