package timezone

import (
	"testing"
	"time"
)

func TestLocationFallback(t *testing.T) {
	if got := Location("").String(); got != DefaultTimezone {
		t.Fatalf("Location(\"\") = %s", got)
	}
	if got := Location("Not/AZone").String(); got != DefaultTimezone {
		t.Fatalf("Location(bad) = %s", got)
	}
	if got := Location("Europe/Lisbon").String(); got != "Europe/Lisbon" {
		t.Fatalf("Location(Europe/Lisbon) = %s", got)
	}
}

func TestNewClockUsesLocation(t *testing.T) {
	now := NewClock("Asia/Tokyo")()
	if now.Location().String() != "Asia/Tokyo" {
		t.Fatalf("location = %s", now.Location())
	}
}

func TestFixedAndToday(t *testing.T) {
	at := time.Date(2026, 3, 9, 23, 30, 0, 0, Location(DefaultTimezone))
	clock := Fixed(at)
	if !clock().Equal(at) {
		t.Fatalf("fixed clock drifted")
	}
	if got := Today(clock()); got != "2026-03-09" {
		t.Fatalf("Today = %s", got)
	}
}
