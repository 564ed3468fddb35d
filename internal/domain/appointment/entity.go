package appointment

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Transition authorizes and applies a status change on ap. The counter
// flag is never touched here: counting belongs to reconciliation.
func Transition(ap *models.Appointment, target Status, actor Actor, now time.Time) error {
	if err := Authorize(actor, ap, target); err != nil {
		return err
	}
	if err := CanTransition(Status(ap.Status), target, actor.Role); err != nil {
		return err
	}

	ap.Status = string(target)
	switch target {
	case StatusConfirmed:
		ap.ConfirmedAt = &now
	case StatusCancelled:
		ap.CancelledAt = &now
	case StatusCompleted:
		ap.CompletedAt = &now
	}
	return nil
}

func Cancel(ap *models.Appointment, actor Actor, now time.Time) error {
	return Transition(ap, StatusCancelled, actor, now)
}

func Complete(ap *models.Appointment, actor Actor, now time.Time) error {
	return Transition(ap, StatusCompleted, actor, now)
}

// IntervalOf returns the occupied range of ap.
func IntervalOf(ap models.Appointment) Interval {
	return Interval{Start: ClockTime(ap.StartMinute), End: ClockTime(ap.EndMinute)}
}

// Elapsed reports whether ap ended at or before the wall-clock instant
// (today, nowMinute).
func Elapsed(ap models.Appointment, today string, nowMinute ClockTime) bool {
	if ap.Date < today {
		return true
	}
	return ap.Date == today && ClockTime(ap.EndMinute) <= nowMinute
}
