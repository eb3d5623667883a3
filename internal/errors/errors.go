package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/slotbook/internal/availability"
	"github.com/julianstephens/slotbook/internal/logger"
	"github.com/julianstephens/slotbook/internal/models"
	"github.com/julianstephens/slotbook/internal/storage"
)

// Exit codes returned by the CLI.
const (
	ExitFailure   = 1
	ExitUsage     = 2
	ExitNotFound  = 3
	ExitMalformed = 4
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\n       " + hint
	}
	return msg
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, availability.ErrInvalidDate),
		stderrors.Is(err, availability.ErrInvalidDuration),
		stderrors.Is(err, storage.ErrInvalidID),
		stderrors.Is(err, models.ErrInvalidWindow):
		return ExitUsage
	case stderrors.Is(err, storage.ErrCalendarNotFound):
		return ExitNotFound
	case stderrors.Is(err, storage.ErrMalformedCalendar):
		return ExitMalformed
	default:
		return ExitFailure
	}
}

// Hint returns a follow-up suggestion for well-known failures.
func Hint(err error) string {
	switch {
	case stderrors.Is(err, storage.ErrNotInitialized):
		return "Run 'slotbook init' first."
	case stderrors.Is(err, storage.ErrCalendarNotFound):
		return "Run 'slotbook calendar list' to see known calendars."
	case stderrors.Is(err, storage.ErrMalformedCalendar):
		return "Run 'slotbook calendar validate <id>' for details."
	case stderrors.Is(err, availability.ErrInvalidDate):
		return "Dates use DD-MM-YYYY, e.g. 10-04-2023."
	}
	return ""
}

// Fatal logs err, prints it to stderr and exits with ExitCode(err). A nil err is ignored.
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, Format(err))
		os.Exit(ExitCode(err))
	}
}
