package availability

import (
	"time"

	"github.com/nikifmak/hospital/internal/model"
)

// SlotDuration is the fixed length of every bookable slot. The last slot of a
// window may still be shorter when the window does not divide evenly; the
// booking path clips its end time to the window.
const SlotDuration = 60 * time.Minute

// Slots returns the bookable start times of a working-hours window in
// ascending order. A start time is valid while it is strictly before the
// window end, so a trailing partial slot still gets a start. The result is
// derived from the window alone; calling it again with the same window yields
// the identical sequence.
func Slots(window model.Schedule) []model.TimeOfDay {
	var slots []model.TimeOfDay
	for t := window.StartTime; t < window.EndTime; t = t.Add(SlotDuration) {
		slots = append(slots, t)
	}
	return slots
}
