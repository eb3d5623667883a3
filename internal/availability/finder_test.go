package availability

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/slotbook/internal/models"
)

var errUnknownCalendar = errors.New("calendar not found")

type mapSource struct {
	calendars map[string]models.CalendarConfig
	calls     int
}

func (m *mapSource) GetCalendar(_ context.Context, id string) (models.CalendarConfig, error) {
	m.calls++
	cal, ok := m.calendars[id]
	if !ok {
		return models.CalendarConfig{}, errUnknownCalendar
	}
	return cal, nil
}

func newSource() *mapSource {
	return &mapSource{calendars: map[string]models.CalendarConfig{
		"1": {
			ID: "1",
			Slots: models.DaySchedule{
				"10-04-2023": {window("09:00", "10:00"), window("11:00", "12:00")},
				"11-04-2023": {window("09:00", "09:50")},
			},
			Sessions: models.DaySchedule{
				"10-04-2023": {window("09:15", "09:45")},
			},
		},
		"2": {
			ID: "2",
			Slots: models.DaySchedule{
				"11-04-2023": {window("09:00", "09:50")},
			},
			DurationBefore: 5,
			DurationAfter:  5,
		},
	}}
}

func TestGetAvailableSpots_ExcludesBookedWindow(t *testing.T) {
	f := NewFinder(newSource())

	spots, err := f.GetAvailableSpots(context.Background(), "1", "10-04-2023", 30)
	if err != nil {
		t.Fatalf("GetAvailableSpots failed: %v", err)
	}
	if len(spots) != 2 {
		t.Fatalf("expected 2 spots from the 11:00 window, got %d", len(spots))
	}
	if !spots[0].StartHour.Equal(at(11, 0)) || !spots[1].EndHour.Equal(at(12, 0)) {
		t.Errorf("unexpected spots: %+v", spots)
	}
}

func TestGetAvailableSpots_UsesCalendarBuffers(t *testing.T) {
	f := NewFinder(newSource())

	spots, err := f.GetAvailableSpots(context.Background(), "2", "11-04-2023", 30)
	if err != nil {
		t.Fatalf("GetAvailableSpots failed: %v", err)
	}
	if len(spots) != 1 {
		t.Fatalf("expected 1 spot, got %d", len(spots))
	}
	day := time.Date(2023, 4, 11, 9, 0, 0, 0, time.UTC)
	s := spots[0]
	if !s.StartHour.Equal(day) ||
		!s.ClientStartHour.Equal(day.Add(5*time.Minute)) ||
		!s.ClientEndHour.Equal(day.Add(35*time.Minute)) ||
		!s.EndHour.Equal(day.Add(40*time.Minute)) {
		t.Errorf("unexpected spot: %+v", s)
	}
}

func TestGetAvailableSpots_ZeroDurationUsesBuffers(t *testing.T) {
	f := NewFinder(newSource())

	spots, err := f.GetAvailableSpots(context.Background(), "2", "11-04-2023", 0)
	if err != nil {
		t.Fatalf("GetAvailableSpots failed: %v", err)
	}
	if len(spots) != 5 {
		t.Fatalf("expected 5 ten-minute blocks, got %d", len(spots))
	}
	day := time.Date(2023, 4, 11, 9, 0, 0, 0, time.UTC)
	for i, s := range spots {
		start := day.Add(time.Duration(i*10) * time.Minute)
		if !s.StartHour.Equal(start) ||
			!s.ClientStartHour.Equal(start.Add(5*time.Minute)) ||
			!s.ClientEndHour.Equal(s.ClientStartHour) ||
			!s.EndHour.Equal(start.Add(10*time.Minute)) {
			t.Errorf("spot %d = %+v", i, s)
		}
	}
}

func TestGetAvailableSpots_ZeroBlockIsEmpty(t *testing.T) {
	f := NewFinder(newSource())

	spots, err := f.GetAvailableSpots(context.Background(), "1", "11-04-2023", 0)
	if err != nil {
		t.Fatalf("GetAvailableSpots failed: %v", err)
	}
	if spots == nil || len(spots) != 0 {
		t.Errorf("expected an empty non-nil slice, got %#v", spots)
	}
}

func TestGetAvailableSpots_TrimsDay(t *testing.T) {
	f := NewFinder(newSource())

	spots, err := f.GetAvailableSpots(context.Background(), "1", " 10-04-2023 ", 30)
	if err != nil {
		t.Fatalf("GetAvailableSpots failed: %v", err)
	}
	if len(spots) != 2 {
		t.Errorf("expected 2 spots for a padded day key, got %d", len(spots))
	}

	free, err := f.FreeWindows(context.Background(), "1", "10-04-2023\n")
	if err != nil {
		t.Fatalf("FreeWindows failed: %v", err)
	}
	if len(free) != 1 {
		t.Errorf("expected 1 free window for a padded day key, got %d", len(free))
	}
}

func TestGetAvailableSpots_NoWindowsForDay(t *testing.T) {
	src := newSource()
	f := NewFinder(src)

	spots, err := f.GetAvailableSpots(context.Background(), "1", "01-01-2030", 30)
	if err != nil {
		t.Fatalf("GetAvailableSpots failed: %v", err)
	}
	if spots == nil || len(spots) != 0 {
		t.Errorf("expected an empty non-nil slice, got %#v", spots)
	}
	if src.calls != 1 {
		t.Errorf("expected one calendar load, got %d", src.calls)
	}
}

func TestGetAvailableSpots_Errors(t *testing.T) {
	f := NewFinder(newSource())

	tests := []struct {
		name     string
		id       string
		date     string
		duration int
		wantErr  error
	}{
		{"unknown calendar", "404", "10-04-2023", 30, errUnknownCalendar},
		{"negative duration", "1", "10-04-2023", -15, ErrInvalidDuration},
		{"iso date", "1", "2023-04-10", 30, ErrInvalidDate},
		{"garbage date", "1", "tomorrow", 30, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.GetAvailableSpots(context.Background(), tt.id, tt.date, tt.duration)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GetAvailableSpots() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetAvailableSpots_Idempotent(t *testing.T) {
	f := NewFinder(newSource())

	first, err := f.GetAvailableSpots(context.Background(), "1", "10-04-2023", 20)
	if err != nil {
		t.Fatalf("GetAvailableSpots failed: %v", err)
	}
	second, err := f.GetAvailableSpots(context.Background(), "1", "10-04-2023", 20)
	if err != nil {
		t.Fatalf("GetAvailableSpots failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated calls differ:\n%v\n%v", first, second)
	}
}

func TestFreeWindows(t *testing.T) {
	f := NewFinder(newSource())

	free, err := f.FreeWindows(context.Background(), "1", "10-04-2023")
	if err != nil {
		t.Fatalf("FreeWindows failed: %v", err)
	}
	want := []models.TimeWindow{window("11:00", "12:00")}
	if !reflect.DeepEqual(free, want) {
		t.Errorf("FreeWindows() = %v, want %v", free, want)
	}
}
