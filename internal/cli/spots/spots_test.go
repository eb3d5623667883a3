package spots

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/julianstephens/slotbook/internal/availability"
	"github.com/julianstephens/slotbook/internal/cli"
	"github.com/julianstephens/slotbook/internal/models"
	"github.com/julianstephens/slotbook/internal/storage"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "calendars"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	cal := models.CalendarConfig{
		ID: "desk",
		Slots: models.DaySchedule{
			"10-04-2023": {
				{Start: models.MustClock("09:00"), End: models.MustClock("10:00")},
				{Start: models.MustClock("11:00"), End: models.MustClock("12:00")},
			},
		},
		Sessions: models.DaySchedule{
			"10-04-2023": {{Start: models.MustClock("11:30"), End: models.MustClock("12:00")}},
		},
		DurationBefore: 5,
		DurationAfter:  5,
	}
	if err := store.SaveCalendar(context.Background(), cal); err != nil {
		t.Fatalf("failed to save calendar: %v", err)
	}

	ctx := cli.NewContext(store)
	var out bytes.Buffer
	ctx.Out = &out
	return ctx, &out
}

func TestSpotsCmd_JSON(t *testing.T) {
	ctx, out := setupTestContext(t)

	cmd := &SpotsCmd{Calendar: "desk", Date: "10-04-2023", Duration: 20, JSON: true, Timezone: "UTC"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var slots []models.BookableSlot
	if err := json.Unmarshal(out.Bytes(), &slots); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2: %+v", len(slots), slots)
	}
	wantStart := time.Date(2023, 4, 10, 9, 5, 0, 0, time.UTC)
	if !slots[0].ClientStartHour.Equal(wantStart) {
		t.Errorf("first clientStartHour = %v, want %v", slots[0].ClientStartHour, wantStart)
	}
}

func TestSpotsCmd_ISODateAndTable(t *testing.T) {
	ctx, out := setupTestContext(t)

	cmd := &SpotsCmd{Calendar: "desk", Date: "2023-04-10", Duration: 20, Windows: true, Timezone: "UTC"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"Free windows on 10-04-2023", "09:00-10:00 (60m)", "09:05", "09:25", "09:00-09:30"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "11:00-12:00") {
		t.Errorf("booked window listed as free:\n%s", got)
	}
}

func TestSpotsCmd_NoSpots(t *testing.T) {
	ctx, out := setupTestContext(t)

	cmd := &SpotsCmd{Calendar: "desk", Date: "11-04-2023", Duration: 30, Timezone: "UTC"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "No 30-minute spots available on 11-04-2023") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestSpotsCmd_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cmd     SpotsCmd
		wantErr error
	}{
		{"unknown calendar", SpotsCmd{Calendar: "nope", Date: "10-04-2023", Duration: 20}, storage.ErrCalendarNotFound},
		{"bad date", SpotsCmd{Calendar: "desk", Date: "31-02-2023", Duration: 20}, availability.ErrInvalidDate},
		{"negative duration", SpotsCmd{Calendar: "desk", Date: "10-04-2023", Duration: -5}, availability.ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := setupTestContext(t)
			tt.cmd.Timezone = "UTC"
			if err := tt.cmd.Run(ctx); !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRenderTable_Timezone(t *testing.T) {
	slot := models.BookableSlot{
		StartHour:       time.Date(2023, 4, 10, 9, 0, 0, 0, time.UTC),
		EndHour:         time.Date(2023, 4, 10, 9, 30, 0, 0, time.UTC),
		ClientStartHour: time.Date(2023, 4, 10, 9, 5, 0, 0, time.UTC),
		ClientEndHour:   time.Date(2023, 4, 10, 9, 25, 0, 0, time.UTC),
	}

	got := RenderTable([]models.BookableSlot{slot}, "Europe/Berlin")
	if !strings.Contains(got, "11:05") || !strings.Contains(got, "11:25") {
		t.Errorf("RenderTable() did not convert to Europe/Berlin:\n%s", got)
	}
}

func TestValidateDuration(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"30", false},
		{" 45 ", false},
		{"0", false},
		{"-5", true},
		{"half an hour", true},
	}
	for _, tt := range tests {
		if err := validateDuration(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("validateDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestNewPickForm_Options(t *testing.T) {
	fm := &pickForm{Date: "today", Duration: "30"}
	cals := []models.CalendarSummary{{ID: "desk", Name: "Front desk"}, {ID: "lab"}}
	if form := newPickForm(fm, cals, "UTC"); form == nil {
		t.Fatal("expected a form")
	}
}

func TestPickCmd_NoCalendars(t *testing.T) {
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "empty"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	ctx := cli.NewContext(store)
	ctx.Out = &bytes.Buffer{}

	err := (&PickCmd{Timezone: "UTC"}).Run(ctx)
	if !errors.Is(err, ErrNoCalendars) {
		t.Errorf("expected ErrNoCalendars, got %v", err)
	}
}
