package storage

import (
	"context"

	"github.com/julianstephens/slotbook/internal/logger"
	"github.com/julianstephens/slotbook/internal/models"
)

// Cache holds decoded calendars keyed by id.
type Cache interface {
	Get(ctx context.Context, id string) (models.CalendarConfig, bool, error)
	Set(ctx context.Context, cal models.CalendarConfig) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// CachedStore is a read-through cache in front of a Provider. Writes go to
// the backing store first and then invalidate the cached entry. Cache errors
// are logged and never fail a call.
type CachedStore struct {
	Provider
	cache Cache
}

func NewCachedStore(backing Provider, cache Cache) *CachedStore {
	return &CachedStore{Provider: backing, cache: cache}
}

func (s *CachedStore) Close() error {
	if err := s.cache.Close(); err != nil {
		logger.Warn("Failed to close calendar cache", "error", err)
	}
	return s.Provider.Close()
}

func (s *CachedStore) GetCalendar(ctx context.Context, id string) (models.CalendarConfig, error) {
	cal, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		logger.Warn("Calendar cache read failed", "id", id, "error", err)
	} else if ok {
		logger.Debug("Calendar cache hit", "id", id)
		return cal, nil
	}

	cal, err = s.Provider.GetCalendar(ctx, id)
	if err != nil {
		return models.CalendarConfig{}, err
	}
	if err := s.cache.Set(ctx, cal); err != nil {
		logger.Warn("Calendar cache write failed", "id", id, "error", err)
	}
	return cal, nil
}

func (s *CachedStore) SaveCalendar(ctx context.Context, cal models.CalendarConfig) error {
	if err := s.Provider.SaveCalendar(ctx, cal); err != nil {
		return err
	}
	s.invalidate(ctx, cal.ID)
	return nil
}

func (s *CachedStore) DeleteCalendar(ctx context.Context, id string) error {
	if err := s.Provider.DeleteCalendar(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CachedStore) AddSession(ctx context.Context, id, day string, session models.TimeWindow, force bool) error {
	if err := s.Provider.AddSession(ctx, id, day, session, force); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CachedStore) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, id); err != nil {
		logger.Warn("Calendar cache invalidation failed", "id", id, "error", err)
	}
}

// Unwrap returns the backing store.
func (s *CachedStore) Unwrap() Provider {
	return s.Provider
}

// Base strips any decorators from p.
func Base(p Provider) Provider {
	for {
		u, ok := p.(interface{ Unwrap() Provider })
		if !ok {
			return p
		}
		p = u.Unwrap()
	}
}
