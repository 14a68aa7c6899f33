package bookings

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Callers rely on ResolveSchedule never failing: a caller said *something*
// about timing, and a booking on the wrong default day beats no booking.
// Unrecognized dates silently become tomorrow; unrecognized times 10:00.

const (
	defaultHour   = 10
	defaultMinute = 0
)

var (
	// time.Parse alone accepts unpadded dates; the pattern keeps "YYYY-MM-DD" strict.
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(?i:(am|pm))?$`)
)

// ResolveSchedule turns the extracted preferred date/time strings into a
// concrete timestamp, relative to now. Either input may be empty.
//
// Date: strict YYYY-MM-DD, or "today"/"tomorrow" (case-insensitive);
// anything else falls back to tomorrow.
// Time: H(:MM)? with optional am/pm; anything else falls back to 10:00.
func ResolveSchedule(dateStr, timeStr string, now time.Time) time.Time {
	day := resolveDate(strings.TrimSpace(dateStr), now)
	hour, minute := resolveTime(strings.TrimSpace(timeStr))
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
}

func resolveDate(s string, now time.Time) time.Time {
	tomorrow := now.AddDate(0, 0, 1)
	if s == "" {
		return tomorrow
	}
	switch strings.ToLower(s) {
	case "today":
		return now
	case "tomorrow":
		return tomorrow
	}
	if datePattern.MatchString(s) {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t
		}
	}
	return tomorrow
}

func resolveTime(s string) (hour, minute int) {
	if s == "" {
		return defaultHour, defaultMinute
	}

	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return defaultHour, defaultMinute
	}

	h, err := strconv.Atoi(m[1])
	if err != nil {
		return defaultHour, defaultMinute
	}
	min := 0
	if m[2] != "" {
		min, err = strconv.Atoi(m[2])
		if err != nil {
			return defaultHour, defaultMinute
		}
	}

	switch strings.ToLower(m[3]) {
	case "pm":
		if h < 12 {
			h += 12
		}
	case "am":
		if h == 12 {
			h = 0
		}
	}

	if h < 0 || h > 23 || min < 0 || min > 59 {
		return defaultHour, defaultMinute
	}
	return h, min
}
