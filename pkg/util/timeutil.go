package util

import (
	"fmt"
	"time"
)

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// DateOnly strips the clock portion, keeping the calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekdayIndex maps time.Weekday onto the Monday=0..Sunday=6 convention
// used by the classifier's training data.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Clock12 renders an hour in 12-hour form, e.g. 22 -> "10:00 PM".
func Clock12(hour int) string {
	h := hour % 12
	if h == 0 {
		h = 12
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	return fmt.Sprintf("%d:00 %s", h, suffix)
}
