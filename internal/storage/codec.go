package storage

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/julianstephens/slotbook/internal/models"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidateID checks that a calendar id is safe to use as a file name and key.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w %q: use letters, digits, '-' or '_'", ErrInvalidID, id)
	}
	return nil
}

// DecodeCalendar parses a calendar document and checks its invariants. All
// failures wrap ErrMalformedCalendar.
func DecodeCalendar(data []byte) (models.CalendarConfig, error) {
	var cal models.CalendarConfig
	if err := json.Unmarshal(data, &cal); err != nil {
		return models.CalendarConfig{}, fmt.Errorf("%w: %v", ErrMalformedCalendar, err)
	}
	if err := cal.Validate(); err != nil {
		return models.CalendarConfig{}, fmt.Errorf("%w: %v", ErrMalformedCalendar, err)
	}
	cal.Normalize()
	return cal, nil
}
