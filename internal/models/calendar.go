package models

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrInvalidWindow  = errors.New("window start must be before its end")
	ErrNegativeBuffer = errors.New("buffer durations must not be negative")
)

// TimeWindow is a start/end pair on an implicit date.
type TimeWindow struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

func (w TimeWindow) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// Minutes returns the length of the window.
func (w TimeWindow) Minutes() int {
	return int(w.End - w.Start)
}

// DaySchedule maps a day key (DD-MM-YYYY) to that day's windows.
type DaySchedule map[string][]TimeWindow

// Days returns the schedule's day keys in chronological order. Keys that do
// not parse sort last, lexically.
func (d DaySchedule) Days() []string {
	days := make([]string, 0, len(d))
	for day := range d {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		ti, errI := time.Parse("02-01-2006", days[i])
		tj, errJ := time.Parse("02-01-2006", days[j])
		switch {
		case errI == nil && errJ == nil:
			return ti.Before(tj)
		case errI == nil:
			return true
		case errJ == nil:
			return false
		default:
			return days[i] < days[j]
		}
	})
	return days
}

// Count returns the total number of windows across all days.
func (d DaySchedule) Count() int {
	n := 0
	for _, windows := range d {
		n += len(windows)
	}
	return n
}

// CalendarConfig is a calendar's availability template and bookings.
type CalendarConfig struct {
	ID             string      `json:"id,omitempty"`
	Name           string      `json:"name,omitempty"`
	Slots          DaySchedule `json:"slots"`
	Sessions       DaySchedule `json:"sessions"`
	DurationBefore int         `json:"durationBefore"` // minutes
	DurationAfter  int         `json:"durationAfter"`  // minutes
}

// SlotsOn returns the offered windows for a day key.
func (c CalendarConfig) SlotsOn(day string) []TimeWindow {
	return c.Slots[day]
}

// SessionsOn returns the booked windows for a day key.
func (c CalendarConfig) SessionsOn(day string) []TimeWindow {
	return c.Sessions[day]
}

// Normalize makes nil schedules empty so stores and encoders agree.
func (c *CalendarConfig) Normalize() {
	if c.Slots == nil {
		c.Slots = DaySchedule{}
	}
	if c.Sessions == nil {
		c.Sessions = DaySchedule{}
	}
}

// Validate checks the invariants every stored calendar must hold.
func (c CalendarConfig) Validate() error {
	if c.DurationBefore < 0 || c.DurationAfter < 0 {
		return fmt.Errorf("%w: before=%d after=%d", ErrNegativeBuffer, c.DurationBefore, c.DurationAfter)
	}
	for _, sched := range []struct {
		kind string
		days DaySchedule
	}{{"slot", c.Slots}, {"session", c.Sessions}} {
		for day, windows := range sched.days {
			if _, err := time.Parse("02-01-2006", day); err != nil {
				return fmt.Errorf("invalid day key %q: %w", day, err)
			}
			for _, w := range windows {
				if !w.Start.Valid() || !w.End.Valid() || w.Start >= w.End {
					return fmt.Errorf("%s %s on %s: %w", sched.kind, w, day, ErrInvalidWindow)
				}
			}
		}
	}
	return nil
}

// CalendarSummary is the listing view of a stored calendar.
type CalendarSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name,omitempty"`
	Days           int    `json:"days"`
	Sessions       int    `json:"sessions"`
	DurationBefore int    `json:"durationBefore"`
	DurationAfter  int    `json:"durationAfter"`
}

// Summary builds the listing view of c.
func (c CalendarConfig) Summary() CalendarSummary {
	return CalendarSummary{
		ID:             c.ID,
		Name:           c.Name,
		Days:           len(c.Slots),
		Sessions:       c.Sessions.Count(),
		DurationBefore: c.DurationBefore,
		DurationAfter:  c.DurationAfter,
	}
}

// BookableSlot is a fully resolved bookable interval. StartHour/EndHour
// include the lead and trail buffers; ClientStartHour/ClientEndHour bound the
// service itself.
type BookableSlot struct {
	StartHour       time.Time `json:"startHour"`
	EndHour         time.Time `json:"endHour"`
	ClientStartHour time.Time `json:"clientStartHour"`
	ClientEndHour   time.Time `json:"clientEndHour"`
}
