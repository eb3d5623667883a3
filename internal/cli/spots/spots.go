package spots

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/slotbook/internal/availability"
	"github.com/julianstephens/slotbook/internal/cli"
	"github.com/julianstephens/slotbook/internal/models"
	"github.com/julianstephens/slotbook/internal/utils"
)

type SpotsCmd struct {
	Calendar string `arg:"" help:"Calendar ID."`
	Date     string `arg:"" optional:"" default:"today" help:"Day as DD-MM-YYYY, YYYY-MM-DD, today or tomorrow."`
	Duration int    `short:"d" required:"" help:"Service length in minutes."`
	JSON     bool   `name:"json" help:"Print slots as JSON."`
	Windows  bool   `help:"Also list the free windows the slots were cut from."`
	Timezone string `name:"tz" help:"IANA timezone used to resolve today/tomorrow and to display times." default:"UTC"`
}

func (c *SpotsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	day, err := utils.ResolveDay(c.Date, c.Timezone)
	if err != nil {
		return fmt.Errorf("%w: %v", availability.ErrInvalidDate, err)
	}

	slots, err := ctx.Finder.GetAvailableSpots(context.Background(), c.Calendar, day, c.Duration)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(ctx.Stdout())
		enc.SetIndent("", "  ")
		return enc.Encode(slots)
	}

	if c.Windows {
		free, err := ctx.Finder.FreeWindows(context.Background(), c.Calendar, day)
		if err != nil {
			return err
		}
		ctx.Printf("Free windows on %s:\n", day)
		if len(free) == 0 {
			ctx.Println("  none")
		}
		for _, w := range free {
			ctx.Printf("  %s (%dm)\n", w, w.Minutes())
		}
		ctx.Println()
	}

	if len(slots) == 0 {
		ctx.Printf("No %d-minute spots available on %s\n", c.Duration, day)
		return nil
	}
	ctx.Printf("%d-minute spots for %s on %s:\n", c.Duration, c.Calendar, day)
	ctx.Println(RenderTable(slots, c.Timezone))
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	bufferStyle = cellStyle.Foreground(lipgloss.Color("240"))
)

// RenderTable lays out slots with the client window first and the buffered
// window beside it, in timezone.
func RenderTable(slots []models.BookableSlot, timezone string) string {
	rows := make([][]string, 0, len(slots))
	for i, s := range slots {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			utils.FormatInTimezone(s.ClientStartHour, timezone),
			utils.FormatInTimezone(s.ClientEndHour, timezone),
			utils.FormatInTimezone(s.StartHour, timezone) + "-" + utils.FormatInTimezone(s.EndHour, timezone),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("#", "Start", "End", "Held").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 3:
				return bufferStyle
			default:
				return cellStyle
			}
		}).
		String()
}
