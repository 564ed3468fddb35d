package appointment

import (
	"fmt"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// LastSlotStart is the start of the final granularity slot laid over
// window by BuildSlots.
func LastSlotStart(window Interval, granularity int) ClockTime {
	if granularity <= 0 || window.Minutes() <= 0 {
		return window.Start
	}
	steps := (window.Minutes() - 1) / granularity
	return window.Start.Add(steps * granularity)
}

// CheckBookingWindow validates that [start, start+duration) fits the
// working window. A booking on the final slot of the day may run past
// closing time.
func CheckBookingWindow(window Interval, start ClockTime, durationMin, granularity int) (Interval, error) {
	if !window.Contains(start) {
		return Interval{}, httperr.OutOfHours(
			"outside_working_hours",
			fmt.Sprintf("start %s is outside %s", start, window),
		)
	}

	requested := Interval{Start: start, End: start.Add(durationMin)}
	if requested.End <= window.End {
		return requested, nil
	}
	if start == LastSlotStart(window, granularity) {
		return requested, nil
	}

	return Interval{}, httperr.OutOfHours(
		"outside_working_hours",
		fmt.Sprintf("appointment would end at %s, after closing time %s", requested.End, window.End),
	)
}

// FindConflict returns the business error for the first appointment or
// block overlapping requested, or nil.
func FindConflict(
	requested Interval,
	window Interval,
	appointments []models.Appointment,
	blocks []models.ScheduleBlock,
) error {
	for _, ap := range appointments {
		if !Status(ap.Status).Active() {
			continue
		}
		if requested.Overlaps(IntervalOf(ap)) {
			return httperr.Conflict(
				"time_conflict",
				fmt.Sprintf("overlaps appointment %d %s", ap.ID, IntervalOf(ap)),
			)
		}
	}
	for _, b := range blocks {
		if requested.Overlaps(BlockInterval(b, window)) {
			return httperr.Conflict("time_conflict", fmt.Sprintf("overlaps schedule block %d", b.ID))
		}
	}
	return nil
}
