// Package period converts calendar dates to the YYYY-MM month keys the stores and reports are bucketed by.
package period

import (
	"errors"
	"strings"
	"time"
)

const (
	MonthLayout = "2006-01"
	DateLayout  = "2006-01-02"
	LabelLayout = "Jan 06"
)

var ErrInvalidDate = errors.New("invalid date")

// MonthKey returns the YYYY-MM bucket of t in its own location.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// ParseMonth validates a YYYY-MM key and returns the first day of that month in UTC.
func ParseMonth(key string) (time.Time, error) {
	return time.ParseInLocation(MonthLayout, strings.TrimSpace(key), time.UTC)
}

// Label renders a month key as a short chart label ("Jan 24"); unparsable keys are returned as-is.
func Label(key string) string {
	t, err := ParseMonth(key)
	if err != nil {
		return key
	}
	return t.Format(LabelLayout)
}

// ParseDate accepts a calendar date (2024-01-05) or an RFC 3339 timestamp and truncates it to
// midnight UTC of the calendar day it names.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return Day(t), nil
}

// Day strips the clock part of t, keeping the calendar day as written.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return MonthKey(a) == MonthKey(b)
}

// Trailing returns the n month keys ending with the month of now, oldest first.
func Trailing(now time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = first.AddDate(0, i-(n-1), 0).Format(MonthLayout)
	}
	return keys
}
