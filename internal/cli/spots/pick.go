package spots

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/slotbook/internal/cli"
	"github.com/julianstephens/slotbook/internal/models"
	"github.com/julianstephens/slotbook/internal/utils"
)

var ErrNoCalendars = errors.New("no calendars stored; import one with 'slotbook calendar import'")

// PickCmd asks for the calendar, day and duration interactively and prints the
// resulting spots.
type PickCmd struct {
	Timezone string `name:"tz" default:"UTC" help:"IANA timezone used to resolve today/tomorrow and to display times."`
}

type pickForm struct {
	Calendar string
	Date     string
	Duration string
}

func (c *PickCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	cals, err := ctx.Store.ListCalendars(context.Background())
	if err != nil {
		return err
	}
	if len(cals) == 0 {
		return ErrNoCalendars
	}

	fm := &pickForm{Calendar: cals[0].ID, Date: "today", Duration: "30"}
	if err := newPickForm(fm, cals, c.Timezone).Run(); err != nil {
		return err
	}

	day, err := utils.ResolveDay(fm.Date, c.Timezone)
	if err != nil {
		return err
	}
	duration, _ := strconv.Atoi(strings.TrimSpace(fm.Duration))

	slots, err := ctx.Finder.GetAvailableSpots(context.Background(), fm.Calendar, day, duration)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		ctx.Printf("No %d-minute spots available on %s\n", duration, day)
		return nil
	}
	ctx.Printf("%d-minute spots for %s on %s:\n", duration, fm.Calendar, day)
	ctx.Println(RenderTable(slots, c.Timezone))
	return nil
}

func newPickForm(fm *pickForm, cals []models.CalendarSummary, timezone string) *huh.Form {
	options := make([]huh.Option[string], 0, len(cals))
	for _, cal := range cals {
		label := cal.ID
		if cal.Name != "" {
			label = fmt.Sprintf("%s (%s)", cal.Name, cal.ID)
		}
		options = append(options, huh.NewOption(label, cal.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Calendar").
				Options(options...).
				Value(&fm.Calendar),
			huh.NewInput().
				Title("Day").
				Description("DD-MM-YYYY, YYYY-MM-DD, today or tomorrow").
				Value(&fm.Date).
				Validate(func(s string) error {
					_, err := utils.ResolveDay(s, timezone)
					return err
				}),
			huh.NewInput().
				Title("Duration (min)").
				Value(&fm.Duration).
				Validate(validateDuration),
		),
	).WithTheme(huh.ThemeDracula())
}

func validateDuration(s string) error {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if i < 0 {
		return fmt.Errorf("duration must be a non-negative number of minutes")
	}
	return nil
}
