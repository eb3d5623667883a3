package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/slotbook/internal/constants"
)

// ParseDayKey parses a DD-MM-YYYY date into midnight UTC of that day.
func ParseDayKey(day string) (time.Time, error) {
	t, err := time.Parse(constants.DayKeyFormat, strings.TrimSpace(day))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected DD-MM-YYYY: %w", day, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// DayKey formats t as a DD-MM-YYYY schedule key.
func DayKey(t time.Time) string {
	return t.Format(constants.DayKeyFormat)
}

// ResolveDay accepts "today", "tomorrow", an ISO date, or a DD-MM-YYYY key and
// returns the DD-MM-YYYY key. Relative names are resolved in timezone.
func ResolveDay(input, timezone string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "today", "":
		now, err := NowInTimezone(timezone)
		if err != nil {
			return "", err
		}
		return DayKey(now), nil
	case "tomorrow":
		now, err := NowInTimezone(timezone)
		if err != nil {
			return "", err
		}
		return DayKey(now.AddDate(0, 0, 1)), nil
	}
	if t, err := time.Parse(constants.DateFormat, input); err == nil {
		return DayKey(t), nil
	}
	if _, err := ParseDayKey(input); err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// ShiftDay moves a DD-MM-YYYY key by n days.
func ShiftDay(day string, n int) (string, error) {
	t, err := ParseDayKey(day)
	if err != nil {
		return "", err
	}
	return DayKey(t.AddDate(0, 0, n)), nil
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// FormatInTimezone renders an instant as HH:MM in timezone, falling back to UTC.
func FormatInTimezone(t time.Time, timezone string) string {
	loc, err := LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return t.In(loc).Format(constants.TimeFormat)
}
