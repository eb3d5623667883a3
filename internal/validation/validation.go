package validation

import (
	"fmt"
	"strings"

	"github.com/julianstephens/slotbook/internal/availability"
	"github.com/julianstephens/slotbook/internal/models"
	"github.com/julianstephens/slotbook/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidWindow       ConflictType = "invalid_window"
	ConflictNegativeBuffer      ConflictType = "negative_buffer"
	ConflictInvalidDay          ConflictType = "invalid_day"
	ConflictOverlappingSlots    ConflictType = "overlapping_slots"
	ConflictOverlappingSessions ConflictType = "overlapping_sessions"
	ConflictOrphanSession       ConflictType = "orphan_session"
)

// Blocking reports whether a conflict of this type makes the calendar unusable.
// The rest are warnings: overlapping or orphaned windows are legal input.
func (t ConflictType) Blocking() bool {
	switch t {
	case ConflictInvalidWindow, ConflictNegativeBuffer, ConflictInvalidDay:
		return true
	default:
		return false
	}
}

// Conflict represents a detected problem in a calendar
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string // DD-MM-YYYY (if applicable)
	Windows     []models.TimeWindow
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// HasErrors reports whether any conflict is blocking.
func (vr *ValidationResult) HasErrors() bool {
	for _, c := range vr.Conflicts {
		if c.Type.Blocking() {
			return true
		}
	}
	return false
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		level := "warning"
		if c.Type.Blocking() {
			level = "error"
		}
		fmt.Fprintf(&b, "- [%s] %s\n", level, c.Description)
	}
	return b.String()
}

// Validator checks calendars for conflicts
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateCalendar reports every conflict in cal, day by day in chronological order.
func (v *Validator) ValidateCalendar(cal models.CalendarConfig) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	if cal.DurationBefore < 0 {
		result.add(Conflict{
			Type:        ConflictNegativeBuffer,
			Description: fmt.Sprintf("durationBefore is negative: %d", cal.DurationBefore),
		})
	}
	if cal.DurationAfter < 0 {
		result.add(Conflict{
			Type:        ConflictNegativeBuffer,
			Description: fmt.Sprintf("durationAfter is negative: %d", cal.DurationAfter),
		})
	}

	v.checkSchedule(&result, "slot", cal.Slots)
	v.checkSchedule(&result, "session", cal.Sessions)

	for _, day := range cal.Slots.Days() {
		v.checkOverlaps(&result, ConflictOverlappingSlots, "Slots", day, cal.SlotsOn(day))
	}
	for _, day := range cal.Sessions.Days() {
		sessions := cal.SessionsOn(day)
		v.checkOverlaps(&result, ConflictOverlappingSessions, "Sessions", day, sessions)
		v.checkOrphans(&result, day, cal.SlotsOn(day), sessions)
	}

	return result
}

func (v *Validator) checkSchedule(result *ValidationResult, kind string, sched models.DaySchedule) {
	for _, day := range sched.Days() {
		if _, err := utils.ParseDayKey(day); err != nil {
			result.add(Conflict{
				Type:        ConflictInvalidDay,
				Description: fmt.Sprintf("Day key %q is not a DD-MM-YYYY date", day),
				Date:        day,
			})
			continue
		}
		for _, w := range sched[day] {
			if !w.Start.Valid() || !w.End.Valid() || w.Start >= w.End {
				result.add(Conflict{
					Type:        ConflictInvalidWindow,
					Description: fmt.Sprintf("%s %s on %s does not end after it starts", kind, w, day),
					Date:        day,
					Windows:     []models.TimeWindow{w},
				})
			}
		}
	}
}

func (v *Validator) checkOverlaps(result *ValidationResult, typ ConflictType, label, day string, windows []models.TimeWindow) {
	for i := 0; i < len(windows); i++ {
		for j := i + 1; j < len(windows); j++ {
			if availability.Conflicts(windows[i], windows[j]) {
				result.add(Conflict{
					Type:        typ,
					Description: fmt.Sprintf("%s %s and %s overlap on %s", label, windows[i], windows[j], day),
					Date:        day,
					Windows:     []models.TimeWindow{windows[i], windows[j]},
				})
			}
		}
	}
}

func (v *Validator) checkOrphans(result *ValidationResult, day string, slots, sessions []models.TimeWindow) {
	for _, session := range sessions {
		orphan := true
		for _, slot := range slots {
			if availability.Conflicts(slot, session) {
				orphan = false
				break
			}
		}
		if orphan {
			result.add(Conflict{
				Type:        ConflictOrphanSession,
				Description: fmt.Sprintf("Session %s on %s is outside every offered slot", session, day),
				Date:        day,
				Windows:     []models.TimeWindow{session},
			})
		}
	}
}

func (vr *ValidationResult) add(c Conflict) {
	vr.Conflicts = append(vr.Conflicts, c)
}
