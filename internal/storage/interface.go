package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/slotbook/internal/availability"
	"github.com/julianstephens/slotbook/internal/models"
)

var (
	// ErrCalendarNotFound is returned when no calendar has the requested id.
	ErrCalendarNotFound = errors.New("calendar not found")
	// ErrMalformedCalendar is returned when stored calendar content cannot be parsed
	// or breaks a calendar invariant.
	ErrMalformedCalendar = errors.New("malformed calendar")
	// ErrNotInitialized is returned by Load when the storage does not exist yet.
	ErrNotInitialized = errors.New("storage not initialized")
	// ErrInvalidID is returned for calendar ids that are not safe file names.
	ErrInvalidID = errors.New("invalid calendar id")
	// ErrSessionConflict is returned by AddSession when the new session
	// overlaps one already booked on that day.
	ErrSessionConflict = errors.New("session overlaps an existing booking")
	// ErrNotLoaded is returned when a store is used before Init or Load.
	ErrNotLoaded = errors.New("storage not loaded")
)

// Provider is a calendar store.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Calendars
	GetCalendar(ctx context.Context, id string) (models.CalendarConfig, error)
	SaveCalendar(ctx context.Context, cal models.CalendarConfig) error
	ListCalendars(ctx context.Context) ([]models.CalendarSummary, error)
	DeleteCalendar(ctx context.Context, id string) error

	// Bookings. The overlap check and the write are atomic; force skips the
	// check.
	AddSession(ctx context.Context, id, day string, session models.TimeWindow, force bool) error

	// Utils
	GetConfigPath() string
}

// Versioned is implemented by stores whose schema comes from migrations.
type Versioned interface {
	SchemaVersion() (int, error)
	LatestSchemaVersion() (int, error)
}

// checkSessionConflict returns ErrSessionConflict if session overlaps any of booked.
func checkSessionConflict(booked []models.TimeWindow, day string, session models.TimeWindow) error {
	for _, existing := range booked {
		if availability.Conflicts(session, existing) {
			return fmt.Errorf("%w: %s on %s overlaps %s", ErrSessionConflict, session, day, existing)
		}
	}
	return nil
}
