package calendars

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/slotbook/internal/availability"
	"github.com/julianstephens/slotbook/internal/cli"
	"github.com/julianstephens/slotbook/internal/constants"
	"github.com/julianstephens/slotbook/internal/models"
	"github.com/julianstephens/slotbook/internal/storage"
	"github.com/julianstephens/slotbook/internal/utils"
)

type CalendarImportCmd struct {
	File    string `arg:"" type:"existingfile" help:"Calendar JSON file (calendar.<id>.json)."`
	ID      string `help:"Calendar ID. Defaults to the file's calendar.<id>.json suffix, the id in the file, or a new UUID."`
	Name    string `help:"Display name."`
	Replace bool   `help:"Overwrite an existing calendar with the same ID."`
}

func (c *CalendarImportCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}
	cal, err := storage.DecodeCalendar(data)
	if err != nil {
		return fmt.Errorf("%s: %w", c.File, err)
	}

	cal.ID = c.resolveID(cal.ID)
	if c.Name != "" {
		cal.Name = c.Name
	}

	bg := context.Background()
	_, err = ctx.Store.GetCalendar(bg, cal.ID)
	switch {
	case err == nil || errors.Is(err, storage.ErrMalformedCalendar):
		if !c.Replace {
			return fmt.Errorf("calendar %s already exists (use --replace to overwrite)", cal.ID)
		}
		ctx.PerformAutomaticBackup()
	case !errors.Is(err, storage.ErrCalendarNotFound):
		return err
	}

	if err := ctx.Store.SaveCalendar(bg, cal); err != nil {
		return fmt.Errorf("failed to save calendar: %w", err)
	}

	result := ctx.Validator.ValidateCalendar(cal)
	ctx.Printf("Imported calendar %s (%d days, %d sessions)\n", cal.ID, len(cal.Slots), cal.Sessions.Count())
	if result.HasConflicts() {
		ctx.Print(result.FormatReport())
	}
	return nil
}

func (c *CalendarImportCmd) resolveID(fromFile string) string {
	if c.ID != "" {
		return c.ID
	}
	base := filepath.Base(c.File)
	if strings.HasPrefix(base, constants.CalendarFilePrefix) && strings.HasSuffix(base, constants.CalendarFileSuffix) {
		id := strings.TrimSuffix(strings.TrimPrefix(base, constants.CalendarFilePrefix), constants.CalendarFileSuffix)
		if storage.ValidateID(id) == nil {
			return id
		}
	}
	if fromFile != "" {
		return fromFile
	}
	return uuid.New().String()
}

type CalendarListCmd struct {
	JSON bool `name:"json" help:"Print summaries as JSON."`
}

func (c *CalendarListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	summaries, err := ctx.Store.ListCalendars(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list calendars: %w", err)
	}
	if c.JSON {
		return writeJSON(ctx, summaries)
	}
	if len(summaries) == 0 {
		ctx.Println("No calendars found")
		return nil
	}

	ctx.Println("Calendars:")
	for _, s := range summaries {
		name := ""
		if s.Name != "" {
			name = fmt.Sprintf(" %q", s.Name)
		}
		ctx.Printf("  %s%s - %d days, %d sessions (buffers %dm/%dm)\n",
			s.ID, name, s.Days, s.Sessions, s.DurationBefore, s.DurationAfter)
	}
	return nil
}

type CalendarShowCmd struct {
	ID   string `arg:"" help:"Calendar ID."`
	JSON bool   `name:"json" help:"Print the calendar document as JSON."`
}

func (c *CalendarShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	cal, err := ctx.Store.GetCalendar(context.Background(), c.ID)
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(ctx, cal)
	}

	title := cal.ID
	if cal.Name != "" {
		title = fmt.Sprintf("%s (%s)", cal.Name, cal.ID)
	}
	ctx.Printf("Calendar %s\n", title)
	ctx.Printf("  Buffers: %dm before, %dm after\n", cal.DurationBefore, cal.DurationAfter)
	for _, day := range cal.Slots.Days() {
		ctx.Printf("  %s\n", day)
		for _, w := range cal.SlotsOn(day) {
			ctx.Printf("    offered %s\n", w)
		}
		for _, w := range cal.SessionsOn(day) {
			ctx.Printf("    booked  %s\n", w)
		}
	}
	for _, day := range cal.Sessions.Days() {
		if _, ok := cal.Slots[day]; ok {
			continue
		}
		ctx.Printf("  %s\n", day)
		for _, w := range cal.SessionsOn(day) {
			ctx.Printf("    booked  %s\n", w)
		}
	}
	return nil
}

type CalendarDeleteCmd struct {
	ID string `arg:"" help:"Calendar ID."`
}

func (c *CalendarDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Store.DeleteCalendar(context.Background(), c.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted calendar %s\n", c.ID)
	return nil
}

type CalendarValidateCmd struct {
	ID   string `arg:"" optional:"" help:"Calendar ID."`
	File string `type:"existingfile" help:"Validate a calendar JSON file instead of a stored calendar."`
}

func (c *CalendarValidateCmd) Run(ctx *cli.Context) error {
	cal, err := c.load(ctx)
	if err != nil {
		return err
	}

	result := ctx.Validator.ValidateCalendar(cal)
	report := result.FormatReport()
	ctx.Print(report)
	if !strings.HasSuffix(report, "\n") {
		ctx.Println()
	}
	if result.HasErrors() {
		return fmt.Errorf("%w: %s failed validation", storage.ErrMalformedCalendar, c.target())
	}
	return nil
}

func (c *CalendarValidateCmd) load(ctx *cli.Context) (models.CalendarConfig, error) {
	if c.File != "" {
		data, err := os.ReadFile(c.File)
		if err != nil {
			return models.CalendarConfig{}, fmt.Errorf("failed to read %s: %w", c.File, err)
		}
		var cal models.CalendarConfig
		if err := json.Unmarshal(data, &cal); err != nil {
			return models.CalendarConfig{}, fmt.Errorf("%w: %s: %v", storage.ErrMalformedCalendar, c.File, err)
		}
		return cal, nil
	}
	if c.ID == "" {
		return models.CalendarConfig{}, errors.New("a calendar ID or --file is required")
	}
	if err := ctx.Store.Load(); err != nil {
		return models.CalendarConfig{}, err
	}
	return ctx.Store.GetCalendar(context.Background(), c.ID)
}

func (c *CalendarValidateCmd) target() string {
	if c.File != "" {
		return c.File
	}
	return "calendar " + c.ID
}

type CalendarBookCmd struct {
	ID    string `arg:"" help:"Calendar ID."`
	Date  string `arg:"" help:"Day as DD-MM-YYYY, YYYY-MM-DD, today or tomorrow."`
	Start string `arg:"" help:"Session start (HH:MM)."`
	End   string `arg:"" help:"Session end (HH:MM)."`
	Force bool   `help:"Book even if the session overlaps an existing one."`
}

func (c *CalendarBookCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	day, err := utils.ResolveDay(c.Date, "UTC")
	if err != nil {
		return fmt.Errorf("%w: %v", availability.ErrInvalidDate, err)
	}
	session, err := cli.ParseWindow(c.Start, c.End)
	if err != nil {
		return err
	}

	err = ctx.Store.AddSession(context.Background(), c.ID, day, session, c.Force)
	if errors.Is(err, storage.ErrSessionConflict) {
		return fmt.Errorf("%w (use --force to book anyway)", err)
	}
	if err != nil {
		return fmt.Errorf("failed to book session: %w", err)
	}
	ctx.Printf("Booked %s on %s for calendar %s\n", session, day, c.ID)
	return nil
}

func writeJSON(ctx *cli.Context, v any) error {
	enc := json.NewEncoder(ctx.Stdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
