package storage

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/julianstephens/slotbook/internal/models"
)

func window(start, end string) models.TimeWindow {
	return models.TimeWindow{Start: models.MustClock(start), End: models.MustClock(end)}
}

func sampleCalendar(id string) models.CalendarConfig {
	return models.CalendarConfig{
		ID:   id,
		Name: "Front desk",
		Slots: models.DaySchedule{
			"10-04-2023": {window("13:00", "14:00"), window("09:00", "10:00"), window("11:00", "12:00")},
			"11-04-2023": {window("09:00", "09:30")},
		},
		Sessions: models.DaySchedule{
			"10-04-2023": {window("11:15", "11:45")},
		},
		DurationBefore: 5,
		DurationAfter:  10,
	}
}

// runProviderContract exercises the behaviour every Provider must share.
func runProviderContract(t *testing.T, newStore func(t *testing.T) Provider) {
	ctx := context.Background()

	t.Run("RoundTripPreservesOrder", func(t *testing.T) {
		store := newStore(t)
		want := sampleCalendar("front-desk")
		if err := store.SaveCalendar(ctx, want); err != nil {
			t.Fatalf("SaveCalendar() error = %v", err)
		}

		got, err := store.GetCalendar(ctx, "front-desk")
		if err != nil {
			t.Fatalf("GetCalendar() error = %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("GetCalendar() = %+v, want %+v", got, want)
		}
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		store := newStore(t)
		cal := sampleCalendar("desk")
		if err := store.SaveCalendar(ctx, cal); err != nil {
			t.Fatalf("SaveCalendar() error = %v", err)
		}

		cal.DurationBefore = 0
		cal.Slots = models.DaySchedule{"12-04-2023": {window("08:00", "09:00")}}
		cal.Sessions = models.DaySchedule{}
		if err := store.SaveCalendar(ctx, cal); err != nil {
			t.Fatalf("second SaveCalendar() error = %v", err)
		}

		got, err := store.GetCalendar(ctx, "desk")
		if err != nil {
			t.Fatalf("GetCalendar() error = %v", err)
		}
		if !reflect.DeepEqual(got, cal) {
			t.Errorf("GetCalendar() = %+v, want %+v", got, cal)
		}
	})

	t.Run("UnknownCalendar", func(t *testing.T) {
		store := newStore(t)
		if _, err := store.GetCalendar(ctx, "missing"); !errors.Is(err, ErrCalendarNotFound) {
			t.Errorf("GetCalendar() error = %v, want ErrCalendarNotFound", err)
		}
		if err := store.DeleteCalendar(ctx, "missing"); !errors.Is(err, ErrCalendarNotFound) {
			t.Errorf("DeleteCalendar() error = %v, want ErrCalendarNotFound", err)
		}
		if err := store.AddSession(ctx, "missing", "10-04-2023", window("09:00", "09:30"), false); !errors.Is(err, ErrCalendarNotFound) {
			t.Errorf("AddSession() error = %v, want ErrCalendarNotFound", err)
		}
	})

	t.Run("RejectsInvalidCalendar", func(t *testing.T) {
		store := newStore(t)
		cal := sampleCalendar("bad")
		cal.DurationAfter = -1
		if err := store.SaveCalendar(ctx, cal); !errors.Is(err, ErrMalformedCalendar) {
			t.Errorf("SaveCalendar() error = %v, want ErrMalformedCalendar", err)
		}

		cal = sampleCalendar("bad")
		cal.Slots["10-04-2023"] = append(cal.Slots["10-04-2023"], window("10:00", "10:00"))
		if err := store.SaveCalendar(ctx, cal); !errors.Is(err, ErrMalformedCalendar) {
			t.Errorf("SaveCalendar() error = %v, want ErrMalformedCalendar", err)
		}

		if _, err := store.GetCalendar(ctx, "bad"); !errors.Is(err, ErrCalendarNotFound) {
			t.Errorf("rejected calendar was stored: GetCalendar() error = %v", err)
		}
	})

	t.Run("AddSessionAppends", func(t *testing.T) {
		store := newStore(t)
		if err := store.SaveCalendar(ctx, sampleCalendar("desk")); err != nil {
			t.Fatalf("SaveCalendar() error = %v", err)
		}

		if err := store.AddSession(ctx, "desk", "10-04-2023", window("09:00", "09:20"), false); err != nil {
			t.Fatalf("AddSession() error = %v", err)
		}
		if err := store.AddSession(ctx, "desk", "11-04-2023", window("09:00", "09:10"), false); err != nil {
			t.Fatalf("AddSession() error = %v", err)
		}

		got, err := store.GetCalendar(ctx, "desk")
		if err != nil {
			t.Fatalf("GetCalendar() error = %v", err)
		}
		want := []models.TimeWindow{window("11:15", "11:45"), window("09:00", "09:20")}
		if !reflect.DeepEqual(got.Sessions["10-04-2023"], want) {
			t.Errorf("sessions on 10-04-2023 = %v, want %v", got.Sessions["10-04-2023"], want)
		}
		if len(got.Sessions["11-04-2023"]) != 1 {
			t.Errorf("sessions on 11-04-2023 = %v, want one", got.Sessions["11-04-2023"])
		}

		if err := store.AddSession(ctx, "desk", "10-04-2023", window("10:00", "09:00"), false); err == nil {
			t.Error("AddSession() with inverted window expected error, got nil")
		}
	})

	t.Run("AddSessionRejectsOverlap", func(t *testing.T) {
		store := newStore(t)
		if err := store.SaveCalendar(ctx, sampleCalendar("desk")); err != nil {
			t.Fatalf("SaveCalendar() error = %v", err)
		}

		err := store.AddSession(ctx, "desk", "10-04-2023", window("11:30", "12:00"), false)
		if !errors.Is(err, ErrSessionConflict) {
			t.Fatalf("AddSession() overlapping error = %v, want ErrSessionConflict", err)
		}
		if err := store.AddSession(ctx, "desk", "10-04-2023", window("11:45", "12:15"), false); err != nil {
			t.Errorf("AddSession() touching the booked end error = %v, want nil", err)
		}
		if err := store.AddSession(ctx, "desk", "10-04-2023", window("11:30", "12:00"), true); err != nil {
			t.Errorf("AddSession() with force error = %v, want nil", err)
		}

		got, err := store.GetCalendar(ctx, "desk")
		if err != nil {
			t.Fatalf("GetCalendar() error = %v", err)
		}
		if n := len(got.SessionsOn("10-04-2023")); n != 3 {
			t.Errorf("sessions on 10-04-2023 = %d, want 3", n)
		}
	})

	t.Run("ConcurrentAddSessionBooksOnce", func(t *testing.T) {
		store := newStore(t)
		if err := store.SaveCalendar(ctx, sampleCalendar("desk")); err != nil {
			t.Fatalf("SaveCalendar() error = %v", err)
		}

		const workers = 20
		errs := make(chan error, workers)
		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- store.AddSession(ctx, "desk", "11-04-2023", window("09:00", "09:30"), false)
			}()
		}
		wg.Wait()
		close(errs)

		booked := 0
		for err := range errs {
			switch {
			case err == nil:
				booked++
			case !errors.Is(err, ErrSessionConflict):
				t.Errorf("AddSession() error = %v, want nil or ErrSessionConflict", err)
			}
		}
		if booked != 1 {
			t.Errorf("%d concurrent bookings succeeded, want 1", booked)
		}

		got, err := store.GetCalendar(ctx, "desk")
		if err != nil {
			t.Fatalf("GetCalendar() error = %v", err)
		}
		if n := len(got.SessionsOn("11-04-2023")); n != 1 {
			t.Errorf("sessions on 11-04-2023 = %d, want 1", n)
		}
	})

	t.Run("ListAndDelete", func(t *testing.T) {
		store := newStore(t)
		for _, id := range []string{"zeta", "alpha"} {
			if err := store.SaveCalendar(ctx, sampleCalendar(id)); err != nil {
				t.Fatalf("SaveCalendar(%s) error = %v", id, err)
			}
		}

		list, err := store.ListCalendars(ctx)
		if err != nil {
			t.Fatalf("ListCalendars() error = %v", err)
		}
		if len(list) != 2 || list[0].ID != "alpha" || list[1].ID != "zeta" {
			t.Fatalf("ListCalendars() = %+v, want alpha then zeta", list)
		}
		want := models.CalendarSummary{ID: "alpha", Name: "Front desk", Days: 2, Sessions: 1, DurationBefore: 5, DurationAfter: 10}
		if list[0] != want {
			t.Errorf("ListCalendars()[0] = %+v, want %+v", list[0], want)
		}

		if err := store.DeleteCalendar(ctx, "alpha"); err != nil {
			t.Fatalf("DeleteCalendar() error = %v", err)
		}
		if _, err := store.GetCalendar(ctx, "alpha"); !errors.Is(err, ErrCalendarNotFound) {
			t.Errorf("GetCalendar() after delete error = %v, want ErrCalendarNotFound", err)
		}
		list, err = store.ListCalendars(ctx)
		if err != nil {
			t.Fatalf("ListCalendars() error = %v", err)
		}
		if len(list) != 1 {
			t.Errorf("ListCalendars() after delete = %+v, want one entry", list)
		}
	})
}
