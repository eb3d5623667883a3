package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/slotbook/internal/constants"
	"github.com/julianstephens/slotbook/internal/migration"
	"github.com/julianstephens/slotbook/internal/models"
)

// sqlStore holds the calendar queries shared by the SQLite and PostgreSQL stores.
// Queries are written with ? placeholders and rebound for the driver.
type sqlStore struct {
	db     *sql.DB
	driver migration.Driver
	// bookMu serialises AddSession within the process; PostgreSQL also
	// locks the calendar row for other processes.
	bookMu sync.Mutex
}

func (s *sqlStore) rebind(query string) string {
	if s.driver != migration.DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *sqlStore) GetCalendar(ctx context.Context, id string) (models.CalendarConfig, error) {
	if s.db == nil {
		return models.CalendarConfig{}, ErrNotLoaded
	}

	cal := models.CalendarConfig{ID: id}
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT name, duration_before, duration_after FROM calendars WHERE id = ?"), id,
	).Scan(&cal.Name, &cal.DurationBefore, &cal.DurationAfter)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CalendarConfig{}, fmt.Errorf("%w: %s", ErrCalendarNotFound, id)
		}
		return models.CalendarConfig{}, fmt.Errorf("failed to get calendar %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT kind, day, start_time, end_time
		FROM calendar_windows
		WHERE calendar_id = ?
		ORDER BY kind, day, position`), id)
	if err != nil {
		return models.CalendarConfig{}, fmt.Errorf("failed to get windows for calendar %s: %w", id, err)
	}
	defer rows.Close()

	cal.Normalize()
	for rows.Next() {
		var kind, day, start, end string
		if err := rows.Scan(&kind, &day, &start, &end); err != nil {
			return models.CalendarConfig{}, fmt.Errorf("failed to scan window: %w", err)
		}
		w, err := parseWindow(start, end)
		if err != nil {
			return models.CalendarConfig{}, fmt.Errorf("%w: calendar %s on %s: %v", ErrMalformedCalendar, id, day, err)
		}
		switch kind {
		case constants.WindowKindSlot:
			cal.Slots[day] = append(cal.Slots[day], w)
		case constants.WindowKindSession:
			cal.Sessions[day] = append(cal.Sessions[day], w)
		default:
			return models.CalendarConfig{}, fmt.Errorf("%w: calendar %s has window kind %q", ErrMalformedCalendar, id, kind)
		}
	}
	if err := rows.Err(); err != nil {
		return models.CalendarConfig{}, fmt.Errorf("failed to read windows: %w", err)
	}

	if err := cal.Validate(); err != nil {
		return models.CalendarConfig{}, fmt.Errorf("%w: calendar %s: %v", ErrMalformedCalendar, id, err)
	}
	return cal, nil
}

func parseWindow(start, end string) (models.TimeWindow, error) {
	s, err := models.ParseClock(start)
	if err != nil {
		return models.TimeWindow{}, err
	}
	e, err := models.ParseClock(end)
	if err != nil {
		return models.TimeWindow{}, err
	}
	return models.TimeWindow{Start: s, End: e}, nil
}

func (s *sqlStore) SaveCalendar(ctx context.Context, cal models.CalendarConfig) error {
	if s.db == nil {
		return ErrNotLoaded
	}
	if err := ValidateID(cal.ID); err != nil {
		return err
	}
	if err := cal.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCalendar, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO calendars (id, name, duration_before, duration_after, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			duration_before = excluded.duration_before,
			duration_after = excluded.duration_after,
			updated_at = excluded.updated_at`),
		cal.ID, cal.Name, cal.DurationBefore, cal.DurationAfter, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save calendar %s: %w", cal.ID, err)
	}

	if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM calendar_windows WHERE calendar_id = ?"), cal.ID); err != nil {
		return fmt.Errorf("failed to clear windows for calendar %s: %w", cal.ID, err)
	}

	insert, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO calendar_windows (calendar_id, kind, day, position, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("failed to prepare window insert: %w", err)
	}
	defer insert.Close()

	for _, sched := range []struct {
		kind string
		days models.DaySchedule
	}{{constants.WindowKindSlot, cal.Slots}, {constants.WindowKindSession, cal.Sessions}} {
		for _, day := range sched.days.Days() {
			for pos, w := range sched.days[day] {
				if _, err := insert.ExecContext(ctx, cal.ID, sched.kind, day, pos, w.Start.String(), w.End.String()); err != nil {
					return fmt.Errorf("failed to save %s %s on %s: %w", sched.kind, w, day, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit calendar %s: %w", cal.ID, err)
	}
	return nil
}

func (s *sqlStore) ListCalendars(ctx context.Context) ([]models.CalendarSummary, error) {
	if s.db == nil {
		return nil, ErrNotLoaded
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT c.id, c.name, c.duration_before, c.duration_after,
			(SELECT COUNT(DISTINCT w.day) FROM calendar_windows w WHERE w.calendar_id = c.id AND w.kind = ?),
			(SELECT COUNT(*) FROM calendar_windows w WHERE w.calendar_id = c.id AND w.kind = ?)
		FROM calendars c
		ORDER BY c.id`), constants.WindowKindSlot, constants.WindowKindSession)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	defer rows.Close()

	summaries := []models.CalendarSummary{}
	for rows.Next() {
		var sum models.CalendarSummary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.DurationBefore, &sum.DurationAfter, &sum.Days, &sum.Sessions); err != nil {
			return nil, fmt.Errorf("failed to scan calendar: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

func (s *sqlStore) DeleteCalendar(ctx context.Context, id string) error {
	if s.db == nil {
		return ErrNotLoaded
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM calendar_windows WHERE calendar_id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete windows for calendar %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, s.rebind("DELETE FROM calendars WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete calendar %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrCalendarNotFound, id)
	}
	return tx.Commit()
}

func (s *sqlStore) AddSession(ctx context.Context, id, day string, session models.TimeWindow, force bool) error {
	if s.db == nil {
		return ErrNotLoaded
	}
	check := models.CalendarConfig{Sessions: models.DaySchedule{day: {session}}}
	if err := check.Validate(); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}

	s.bookMu.Lock()
	defer s.bookMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	lookup := "SELECT 1 FROM calendars WHERE id = ?"
	if s.driver == migration.DriverPostgres {
		lookup += " FOR UPDATE"
	}
	var one int
	err = tx.QueryRowContext(ctx, s.rebind(lookup), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrCalendarNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to look up calendar %s: %w", id, err)
	}

	if !force {
		booked, err := s.sessionsOn(ctx, tx, id, day)
		if err != nil {
			return err
		}
		if err := checkSessionConflict(booked, day, session); err != nil {
			return err
		}
	}

	var next int
	err = tx.QueryRowContext(ctx, s.rebind(`
		SELECT COALESCE(MAX(position) + 1, 0) FROM calendar_windows
		WHERE calendar_id = ? AND kind = ? AND day = ?`),
		id, constants.WindowKindSession, day,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to position session: %w", err)
	}

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO calendar_windows (calendar_id, kind, day, position, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?)`),
		id, constants.WindowKindSession, day, next, session.Start.String(), session.End.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to add session: %w", err)
	}
	return tx.Commit()
}

func (s *sqlStore) sessionsOn(ctx context.Context, tx *sql.Tx, id, day string) ([]models.TimeWindow, error) {
	rows, err := tx.QueryContext(ctx, s.rebind(`
		SELECT start_time, end_time FROM calendar_windows
		WHERE calendar_id = ? AND kind = ? AND day = ?
		ORDER BY position`),
		id, constants.WindowKindSession, day,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	defer rows.Close()

	var booked []models.TimeWindow
	for rows.Next() {
		var start, end string
		if err := rows.Scan(&start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		w, err := parseWindow(start, end)
		if err != nil {
			return nil, fmt.Errorf("%w: calendar %s: %v", ErrMalformedCalendar, id, err)
		}
		booked = append(booked, w)
	}
	return booked, rows.Err()
}
