package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/slotbook/internal/cli"
	"github.com/julianstephens/slotbook/internal/cli/calendars"
	"github.com/julianstephens/slotbook/internal/cli/spots"
	"github.com/julianstephens/slotbook/internal/cli/system"
	"github.com/julianstephens/slotbook/internal/constants"
	"github.com/julianstephens/slotbook/internal/errors"
	"github.com/julianstephens/slotbook/internal/logger"
	"github.com/julianstephens/slotbook/internal/storage"
)

var CLI struct {
	Version   kong.VersionFlag
	Config    string `help:"SQLite file, JSON calendar directory, PostgreSQL connection string, or 'keyring[:profile]'. PostgreSQL credentials must NOT be embedded in the connection string." type:"string" default:"${config_path}" env:"SLOTBOOK_CONFIG"`
	Debug     bool   `help:"Enable debug logging to stderr." env:"SLOTBOOK_DEBUG"`
	RedisAddr string `help:"Redis address used to cache calendars (disabled when empty)." env:"SLOTBOOK_REDIS_ADDR"`

	Init     system.InitCmd   `cmd:"" help:"Initialize slotbook storage."`
	Spots    spots.SpotsCmd   `cmd:"" help:"List bookable spots for a calendar and day."`
	Pick     spots.PickCmd    `cmd:"" help:"Choose calendar, day and duration interactively."`
	Tui      system.TuiCmd    `cmd:"" help:"Browse spots in the interactive TUI."`
	Serve    system.ServeCmd  `cmd:"" help:"Serve the availability HTTP API."`
	Doctor   system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Calendar struct {
		Import   calendars.CalendarImportCmd   `cmd:"" help:"Import a calendar from a JSON file."`
		List     calendars.CalendarListCmd     `cmd:"" help:"List stored calendars."`
		Show     calendars.CalendarShowCmd     `cmd:"" help:"Show a calendar's windows and sessions."`
		Delete   calendars.CalendarDeleteCmd   `cmd:"" help:"Delete a calendar."`
		Validate calendars.CalendarValidateCmd `cmd:"" help:"Validate a stored calendar or a calendar file."`
		Book     calendars.CalendarBookCmd     `cmd:"" help:"Record a booked session."`
	} `cmd:"" help:"Manage calendars."`
	Backup struct {
		Create  system.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    system.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore system.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
	} `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Bookable appointment slots from calendar availability"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
			"listen_addr": constants.DefaultListenAddr,
		},
	)

	configDir, err := storage.ConfigDir(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: configDir,
		Stderr:    ctx.Command() == "serve",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}
	defer logger.Close()

	store, err := openStore()
	if err != nil {
		errors.Fatal(err)
	}

	// Commands load the store themselves; init creates it and validate --file never needs it.
	runErr := ctx.Run(cli.NewContext(store))
	if err := store.Close(); err != nil {
		logger.Warn("Failed to close store", "error", err)
	}
	errors.Fatal(runErr)
}

func openStore() (storage.Provider, error) {
	store, err := storage.Open(CLI.Config)
	if err != nil {
		return nil, err
	}
	if CLI.RedisAddr == "" {
		return store, nil
	}

	cache, err := storage.DialRedisCache(context.Background(), CLI.RedisAddr, constants.DefaultCacheTTL)
	if err != nil {
		logger.Warn("Redis cache unavailable, continuing without it", "addr", CLI.RedisAddr, "error", err)
		return store, nil
	}
	logger.Debug("Caching calendars in Redis", "addr", CLI.RedisAddr)
	return storage.NewCachedStore(store, cache), nil
}
