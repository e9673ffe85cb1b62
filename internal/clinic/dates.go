package clinic

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for date-only fields.
const DateLayout = "2006-01-02"

// TimeLayout is the wire format for time-of-day fields.
const TimeLayout = "15:04:05"

// dateInputLayouts are the formats the forms and the API are known to emit
// for date-only values, tried in order.
var dateInputLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NormalizeDate reformats a date string to YYYY-MM-DD. A malformed value is
// an error, not a panic: it surfaces on the mutation's error path.
func NormalizeDate(s string) (string, error) {
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
}

// NormalizeTime reformats a time-of-day string to HH:MM:SS, accepting both
// HH:MM and HH:MM:SS input.
func NormalizeTime(s string) (string, error) {
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format(TimeLayout), nil
	}
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t.Format(TimeLayout), nil
	}
	return "", fmt.Errorf("invalid time %q, want HH:MM or HH:MM:SS", s)
}

// YearMonth parses a YYYY-MM month selector.
func YearMonth(s string) (year int, month time.Month, err error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, want YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

// InMonth reports whether a YYYY-MM-DD date falls inside the given calendar
// year and month. Unparseable dates are outside every month.
func InMonth(date string, year int, month time.Month) bool {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	return t.Year() == year && t.Month() == month
}

// Age returns whole years elapsed since a YYYY-MM-DD date of birth, or -1
// when the date cannot be parsed.
func Age(dateOfBirth string, now time.Time) int {
	t, err := time.Parse(DateLayout, dateOfBirth)
	if err != nil {
		return -1
	}
	years := now.Year() - t.Year()
	if now.Month() < t.Month() || (now.Month() == t.Month() && now.Day() < t.Day()) {
		years--
	}
	if years < 0 {
		return -1
	}
	return years
}
