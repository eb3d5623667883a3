package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/julianstephens/slotbook/internal/constants"
	"github.com/julianstephens/slotbook/internal/logger"
	"github.com/julianstephens/slotbook/internal/models"
)

// JSONStore keeps one calendar.<id>.json file per calendar in a directory.
type JSONStore struct {
	dir    string
	loaded bool
	mu     sync.Mutex
}

func NewJSONStore(dir string) *JSONStore {
	return &JSONStore{dir: dir}
}

func (s *JSONStore) Init() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create calendar directory: %w", err)
	}
	s.loaded = true
	return nil
}

func (s *JSONStore) Load() error {
	info, err := os.Stat(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s does not exist", ErrNotInitialized, s.dir)
		}
		return fmt.Errorf("failed to access calendar directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	s.loaded = true
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.dir
}

func (s *JSONStore) path(id string) string {
	return filepath.Join(s.dir, constants.CalendarFilePrefix+id+constants.CalendarFileSuffix)
}

func (s *JSONStore) GetCalendar(_ context.Context, id string) (models.CalendarConfig, error) {
	if !s.loaded {
		return models.CalendarConfig{}, ErrNotLoaded
	}
	if err := ValidateID(id); err != nil {
		return models.CalendarConfig{}, err
	}
	return s.read(id)
}

func (s *JSONStore) read(id string) (models.CalendarConfig, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return models.CalendarConfig{}, fmt.Errorf("%w: %s", ErrCalendarNotFound, id)
		}
		return models.CalendarConfig{}, fmt.Errorf("failed to read calendar %s: %w", id, err)
	}

	cal, err := DecodeCalendar(data)
	if err != nil {
		return models.CalendarConfig{}, fmt.Errorf("calendar %s: %w", id, err)
	}
	cal.ID = id
	return cal, nil
}

func (s *JSONStore) SaveCalendar(_ context.Context, cal models.CalendarConfig) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	if err := ValidateID(cal.ID); err != nil {
		return err
	}
	if err := cal.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCalendar, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(cal)
}

func (s *JSONStore) write(cal models.CalendarConfig) error {
	cal.Normalize()
	data, err := json.MarshalIndent(cal, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize calendar: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".calendar-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(cal.ID)); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

func (s *JSONStore) ListCalendars(_ context.Context) ([]models.CalendarSummary, error) {
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar directory: %w", err)
	}

	summaries := []models.CalendarSummary{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, constants.CalendarFilePrefix) || !strings.HasSuffix(name, constants.CalendarFileSuffix) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, constants.CalendarFilePrefix), constants.CalendarFileSuffix)
		cal, err := s.read(id)
		if err != nil {
			logger.Warn("Skipping unreadable calendar file", "file", name, "error", err)
			continue
		}
		summaries = append(summaries, cal.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}

func (s *JSONStore) DeleteCalendar(_ context.Context, id string) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	if err := ValidateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrCalendarNotFound, id)
		}
		return fmt.Errorf("failed to delete calendar %s: %w", id, err)
	}
	return nil
}

func (s *JSONStore) AddSession(_ context.Context, id, day string, session models.TimeWindow, force bool) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	if err := ValidateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cal, err := s.read(id)
	if err != nil {
		return err
	}
	cal.Normalize()
	if !force {
		if err := checkSessionConflict(cal.SessionsOn(day), day, session); err != nil {
			return err
		}
	}
	cal.Sessions[day] = append(cal.Sessions[day], session)
	if err := cal.Validate(); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}
	return s.write(cal)
}
