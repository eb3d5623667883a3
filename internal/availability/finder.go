package availability

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/julianstephens/slotbook/internal/logger"
	"github.com/julianstephens/slotbook/internal/models"
	"github.com/julianstephens/slotbook/internal/utils"
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidDuration = errors.New("duration must be a non-negative number of minutes")
)

// CalendarSource looks up a calendar by identifier. Implementations return an
// error wrapping storage.ErrCalendarNotFound for unknown identifiers.
type CalendarSource interface {
	GetCalendar(ctx context.Context, id string) (models.CalendarConfig, error)
}

// Finder computes bookable spots from a calendar source. It holds no mutable
// state and is safe for concurrent use.
type Finder struct {
	source CalendarSource
}

func NewFinder(source CalendarSource) *Finder {
	return &Finder{source: source}
}

// GetAvailableSpots returns the bookable slots of duration minutes for the
// calendar on day (DD-MM-YYYY). A zero duration cuts blocks of the calendar's
// buffers alone. A day without offered windows yields an empty slice and no
// error.
func (f *Finder) GetAvailableSpots(ctx context.Context, calendarID, day string, duration int) ([]models.BookableSlot, error) {
	if duration < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, duration)
	}
	date, err := utils.ParseDayKey(day)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	day = utils.DayKey(date)

	cal, err := f.source.GetCalendar(ctx, calendarID)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar %s: %w", calendarID, err)
	}

	daySlots := cal.SlotsOn(day)
	if len(daySlots) == 0 {
		logger.Debug("No offered windows", "calendar", calendarID, "date", day)
		return []models.BookableSlot{}, nil
	}

	free := FilterFree(daySlots, cal.SessionsOn(day))
	spots := slices.Collect(SliceSlots(free, date, cal.DurationBefore, duration, cal.DurationAfter))
	if spots == nil {
		spots = []models.BookableSlot{}
	}

	logger.Debug("Computed spots",
		"calendar", calendarID,
		"date", day,
		"offered", len(daySlots),
		"free", len(free),
		"spots", len(spots),
	)
	return spots, nil
}

// FreeWindows returns the offered windows on day that no session conflicts with.
func (f *Finder) FreeWindows(ctx context.Context, calendarID, day string) ([]models.TimeWindow, error) {
	date, err := utils.ParseDayKey(day)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	day = utils.DayKey(date)
	cal, err := f.source.GetCalendar(ctx, calendarID)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar %s: %w", calendarID, err)
	}
	return FilterFree(cal.SlotsOn(day), cal.SessionsOn(day)), nil
}
