package availability

import "github.com/julianstephens/slotbook/internal/models"

// FilterFree returns the slots that conflict with none of the sessions, in
// input order. All windows are assumed to lie on the same day.
func FilterFree(slots, sessions []models.TimeWindow) []models.TimeWindow {
	free := make([]models.TimeWindow, 0, len(slots))
	for _, slot := range slots {
		if !conflictsWithAny(slot, sessions) {
			free = append(free, slot)
		}
	}
	return free
}

func conflictsWithAny(slot models.TimeWindow, sessions []models.TimeWindow) bool {
	for _, session := range sessions {
		if Conflicts(slot, session) {
			return true
		}
	}
	return false
}

// Conflicts reports whether a slot overlaps a session. Each boundary test is
// half-open on one side so that windows meeting at a single instant
// (slot.End == session.Start or session.End == slot.Start) never conflict.
func Conflicts(slot, session models.TimeWindow) bool {
	return inClosedOpen(slot.Start, session.Start, session.End) ||
		inOpenClosed(slot.End, session.Start, session.End) ||
		inClosedOpen(session.Start, slot.Start, slot.End) ||
		inOpenClosed(session.End, slot.Start, slot.End)
}

// [lo, hi)
func inClosedOpen(c, lo, hi models.Clock) bool {
	return c >= lo && c < hi
}

// (lo, hi]
func inOpenClosed(c, lo, hi models.Clock) bool {
	return c > lo && c <= hi
}
