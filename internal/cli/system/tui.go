package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/slotbook/internal/availability"
	"github.com/julianstephens/slotbook/internal/cli"
	"github.com/julianstephens/slotbook/internal/tui"
	"github.com/julianstephens/slotbook/internal/utils"
)

type TuiCmd struct {
	Calendar string `arg:"" help:"Calendar ID."`
	Date     string `short:"D" default:"today" help:"Starting day as DD-MM-YYYY, YYYY-MM-DD, today or tomorrow."`
	Duration int    `short:"d" default:"30" help:"Initial service length in minutes."`
	Timezone string `name:"tz" default:"UTC" help:"IANA timezone used to resolve today/tomorrow."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	day, err := utils.ResolveDay(c.Date, c.Timezone)
	if err != nil {
		return fmt.Errorf("%w: %v", availability.ErrInvalidDate, err)
	}

	p := tea.NewProgram(tui.NewModel(ctx.Finder, c.Calendar, day, c.Duration), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited: %w", err)
	}
	return nil
}
