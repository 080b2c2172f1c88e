package database

import (
	"time"
)

// DateLayout is the format of every date key.
const DateLayout = "2006-01-02"

// GetToday returns today's date in loc as YYYY-MM-DD.
func GetToday(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Now().In(loc).Format(DateLayout)
}

// ValidDate reports whether s is a YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// FormatDateDisplay formats a date key for display, e.g. "Feb 06, 2026".
// Anything that is not a date key is returned unchanged.
func FormatDateDisplay(date string) string {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return d.Format("Jan 02, 2006")
}

// PreviousDay returns the date key before date.
func PreviousDay(date string) string {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, -1).Format(DateLayout)
}
