package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/slotbook/internal/availability"
	"github.com/julianstephens/slotbook/internal/backup"
	"github.com/julianstephens/slotbook/internal/logger"
	"github.com/julianstephens/slotbook/internal/models"
	"github.com/julianstephens/slotbook/internal/storage"
	"github.com/julianstephens/slotbook/internal/validation"
)

// ErrBackupUnsupported is returned for backup commands on stores other than SQLite.
var ErrBackupUnsupported = errors.New("backups are only supported for SQLite storage")

type Context struct {
	Store     storage.Provider
	Finder    *availability.Finder
	Validator *validation.Validator
	// Out receives command output; nil means stdout.
	Out io.Writer
}

func NewContext(store storage.Provider) *Context {
	return &Context{
		Store:     store,
		Finder:    availability.NewFinder(store),
		Validator: validation.New(),
	}
}

func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Stdout(), args...)
}

// BackupManager returns the backup manager for SQLite stores.
func (c *Context) BackupManager() (*backup.Manager, error) {
	sqlite, ok := storage.Base(c.Store).(*storage.SQLiteStore)
	if !ok {
		return nil, ErrBackupUnsupported
	}
	return backup.NewManager(sqlite.GetConfigPath()), nil
}

// PerformAutomaticBackup snapshots a SQLite store before a destructive
// command. Failures are logged and never interrupt the command.
func (c *Context) PerformAutomaticBackup() {
	mgr, err := c.BackupManager()
	if err != nil {
		return
	}
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ParseWindow parses a pair of HH:MM clock times into a window.
func ParseWindow(start, end string) (models.TimeWindow, error) {
	s, err := models.ParseClock(start)
	if err != nil {
		return models.TimeWindow{}, fmt.Errorf("invalid start time: %w", err)
	}
	e, err := models.ParseClock(end)
	if err != nil {
		return models.TimeWindow{}, fmt.Errorf("invalid end time: %w", err)
	}
	if s >= e {
		return models.TimeWindow{}, fmt.Errorf("%w: %s must end after it starts", models.ErrInvalidWindow, models.TimeWindow{Start: s, End: e})
	}
	return models.TimeWindow{Start: s, End: e}, nil
}

func (c *Context) Print(args ...any) {
	fmt.Fprint(c.Stdout(), args...)
}
