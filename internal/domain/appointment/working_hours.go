package appointment

import (
	"fmt"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// WorkingWindow converts a working-hours row into the open interval of
// the day. ok is false when the barber does not work that weekday.
func WorkingWindow(wh *models.WorkingHours) (Interval, bool, error) {
	if wh == nil || !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
		return Interval{}, false, nil
	}

	open, err := ParseClock(wh.StartTime)
	if err != nil {
		return Interval{}, false, err
	}
	closeAt, err := ParseClock(wh.EndTime)
	if err != nil {
		return Interval{}, false, err
	}
	if closeAt <= open {
		return Interval{}, false, fmt.Errorf("working hours %s-%s: close must be after open", wh.StartTime, wh.EndTime)
	}

	return Interval{Start: open, End: closeAt}, true, nil
}

// BlockInterval resolves a block against the working window of its day.
// Missing bounds extend to opening or closing time.
func BlockInterval(b models.ScheduleBlock, window Interval) Interval {
	iv := window
	if b.StartMinute != nil {
		iv.Start = ClockTime(*b.StartMinute)
	}
	if b.EndMinute != nil {
		iv.End = ClockTime(*b.EndMinute)
	}
	return iv
}
