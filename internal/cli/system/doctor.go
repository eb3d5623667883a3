package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/slotbook/internal/cli"
	"github.com/julianstephens/slotbook/internal/storage"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(ctx *cli.Context) error
	// warnOnly checks never fail the command
	warnOnly bool
	// needsStore checks are skipped when storage is unreachable
	needsStore bool
	// gatesStore marks the check that decides reachability
	gatesStore bool
}

var errSkip = errors.New("not applicable")

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{name: "Storage reachable", run: checkStoreReachable, gatesStore: true},
		{name: "Schema version", run: checkSchemaVersion, needsStore: true},
		{name: "Backups present", run: checkBackupsPresent, warnOnly: true, needsStore: true},
		{name: "Calendar validation", run: checkCalendars, needsStore: true},
		{name: "Clock/timezone", run: func(*cli.Context) error { return checkClockTimezone() }},
	}

	failed := false
	reachable := true
	for _, c := range checks {
		if c.needsStore && !reachable {
			ctx.Printf("⊘ %s: SKIPPED (storage not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errSkip):
			ctx.Printf("⊘ %s: SKIPPED (%v)\n", c.name, err)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			failed = true
			if c.gatesStore {
				reachable = false
			}
		}
	}

	ctx.Println()
	if failed {
		return errors.New("diagnostics failed")
	}
	ctx.Println("All checks passed")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	if _, err := ctx.Store.ListCalendars(context.Background()); err != nil {
		return fmt.Errorf("failed to query storage: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	v, ok := storage.Base(ctx.Store).(storage.Versioned)
	if !ok {
		return fmt.Errorf("%w: store has no schema", errSkip)
	}
	current, err := v.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	latest, err := v.LatestSchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}
	switch {
	case current > latest:
		return fmt.Errorf("database schema version (%d) is newer than supported (%d)", current, latest)
	case current < latest:
		return fmt.Errorf("database schema version (%d) is behind (%d), run 'slotbook init' to migrate", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return fmt.Errorf("%w: %v", errSkip, err)
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return errors.New("no backups found, consider creating one with 'slotbook backup create'")
	}
	return nil
}

func checkCalendars(ctx *cli.Context) error {
	bg := context.Background()
	summaries, err := ctx.Store.ListCalendars(bg)
	if err != nil {
		return fmt.Errorf("failed to list calendars: %w", err)
	}

	var broken []string
	warnings := 0
	for _, s := range summaries {
		cal, err := ctx.Store.GetCalendar(bg, s.ID)
		if err != nil {
			broken = append(broken, fmt.Sprintf("%s (%v)", s.ID, err))
			continue
		}
		result := ctx.Validator.ValidateCalendar(cal)
		if result.HasErrors() {
			broken = append(broken, s.ID)
		}
		warnings += len(result.Conflicts)
	}
	if len(broken) > 0 {
		return fmt.Errorf("%d calendars failed validation: %v", len(broken), broken)
	}
	if warnings > 0 {
		ctx.Printf("   %d warnings across %d calendars (see 'slotbook calendar validate')\n", warnings, len(summaries))
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, err := time.LoadLocation("UTC"); err != nil {
		return fmt.Errorf("timezone database unavailable: %w", err)
	}
	return nil
}
