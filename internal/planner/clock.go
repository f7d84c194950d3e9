package planner

import (
	"strconv"
	"strings"
	"time"
)

// ParseClock resolves an "HH:mm" 24-hour string against the calendar day of
// ref, in ref's location. Seconds are always zero. Any other shape, or an
// hour outside [0,24) or minute outside [0,60), fails with
// ErrInvalidTimeFormat.
func ParseClock(text string, ref time.Time) (time.Time, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return time.Time{}, planErrorf(KindInvalidTimeFormat, nil, "%q", text)
	}

	hour, ok := parseDigits(parts[0])
	if !ok || hour >= 24 {
		return time.Time{}, planErrorf(KindInvalidTimeFormat, nil, "%q: hour out of range", text)
	}
	minute, ok := parseDigits(parts[1])
	if !ok || minute >= 60 {
		return time.Time{}, planErrorf(KindInvalidTimeFormat, nil, "%q: minute out of range", text)
	}

	y, m, d := ref.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, ref.Location()), nil
}

// FormatClock renders t as "HH:mm".
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}

// parseDigits accepts one or two ASCII digits, so signs, spaces, padding
// and empty fields are rejected before strconv sees them.
func parseDigits(s string) (int, bool) {
	if s == "" || len(s) > 2 {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
