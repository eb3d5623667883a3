package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/slotbook/internal/cli"
	"github.com/julianstephens/slotbook/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing SQLite database before initialization."`
	Source string `help:"Store (path, directory or connection string) to copy calendars from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized slotbook storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying calendars from: %s\n", storage.MaskPassword(c.Source))
		n, err := c.copyCalendars(ctx)
		if err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		ctx.Printf("Copied %d calendars\n", n)
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	sqlite, ok := storage.Base(ctx.Store).(*storage.SQLiteStore)
	if !ok {
		return errors.New("--force is only supported for SQLite storage")
	}
	dbPath := sqlite.GetConfigPath()

	if c.Source != "" {
		absDB, _ := filepath.Abs(dbPath)
		absSource, err := filepath.Abs(c.Source)
		if err == nil && absSource == absDB {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		ctx.PerformAutomaticBackup()
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func (c *InitCmd) copyCalendars(ctx *cli.Context) (int, error) {
	source, err := storage.Open(c.Source)
	if err != nil {
		return 0, err
	}
	if err := source.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source: %w", err)
	}
	defer source.Close()

	bg := context.Background()
	summaries, err := source.ListCalendars(bg)
	if err != nil {
		return 0, fmt.Errorf("failed to list source calendars: %w", err)
	}
	for _, s := range summaries {
		cal, err := source.GetCalendar(bg, s.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to read calendar %s: %w", s.ID, err)
		}
		if err := ctx.Store.SaveCalendar(bg, cal); err != nil {
			return 0, fmt.Errorf("failed to save calendar %s: %w", s.ID, err)
		}
		ctx.Printf("  %s\n", s.ID)
	}
	return len(summaries), nil
}
