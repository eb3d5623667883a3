package availability

import (
	"iter"
	"time"

	"github.com/julianstephens/slotbook/internal/models"
)

// SliceSlots packs each free window with back-to-back bookable slots of
// before+duration+after minutes, anchored to date in UTC. A window's trailing
// remainder shorter than one block is dropped. The sequence is empty when the
// block length is not positive.
func SliceSlots(free []models.TimeWindow, date time.Time, before, duration, after int) iter.Seq[models.BookableSlot] {
	return func(yield func(models.BookableSlot) bool) {
		if before+duration+after <= 0 {
			return
		}
		lead := time.Duration(before) * time.Minute
		service := time.Duration(duration) * time.Minute
		trail := time.Duration(after) * time.Minute

		for _, w := range free {
			cursor := w.Start.On(date)
			end := w.End.On(date)
			for cursor.Before(end) {
				clientStart := cursor.Add(lead)
				clientEnd := clientStart.Add(service)
				slotEnd := clientEnd.Add(trail)
				if slotEnd.After(end) {
					break
				}
				if !yield(models.BookableSlot{
					StartHour:       cursor,
					EndHour:         slotEnd,
					ClientStartHour: clientStart,
					ClientEndHour:   clientEnd,
				}) {
					return
				}
				cursor = slotEnd
			}
		}
	}
}
