package timezone

import (
	"time"
	_ "time/tzdata"
)

const DefaultTimezone = "America/Mexico_City"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location falls back to DefaultTimezone for empty or unknown names.
func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, _ := time.LoadLocation(DefaultTimezone)
	return loc
}

// Clock returns the current time in the shop timezone. Use cases take a
// Clock so tests can pin "now".
type Clock func() time.Time

func NewClock(tz string) Clock {
	loc := Location(tz)
	return func() time.Time {
		return time.Now().In(loc)
	}
}

// Fixed returns a Clock stuck at t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

// Today formats the civil date of t.
func Today(t time.Time) string {
	return t.Format("2006-01-02")
}
