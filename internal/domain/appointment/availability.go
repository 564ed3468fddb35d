package appointment

import "github.com/BruksfildServices01/barber-booking/internal/models"

const (
	DayStatusAvailable = "available"
	DayStatusDayOff    = "day_off"

	// DefaultGranularityMin is used when the catalog is empty and no
	// override is configured.
	DefaultGranularityMin = 60
)

type AvailabilityInput struct {
	BarberID uint
	Date     string

	// IncludeOccupant adds the client name to slots taken by an
	// appointment. Only provider and admin views set it.
	IncludeOccupant bool
}

type TimeSlot struct {
	Start         string `json:"start"`
	End           string `json:"end"`
	Available     bool   `json:"available"`
	AppointmentID *uint  `json:"appointment_id,omitempty"`
	ClientName    string `json:"client_name,omitempty"`
	Blocked       bool   `json:"blocked,omitempty"`
}

type DayAvailability struct {
	BarberID       uint       `json:"barber_id"`
	Date           string     `json:"date"`
	Weekday        Weekday    `json:"weekday"`
	Working        bool       `json:"working"`
	Status         string     `json:"status"`
	GranularityMin int        `json:"granularity_min,omitempty"`
	Slots          []TimeSlot `json:"slots"`
}

// BuildSlots lays slots of granularity minutes over window and marks the
// ones overlapped by an active appointment or a block. Slots start at
// window.Start and keep going while their start is before window.End.
func BuildSlots(
	window Interval,
	granularity int,
	appointments []models.Appointment,
	blocks []models.ScheduleBlock,
	includeOccupant bool,
) []TimeSlot {
	if granularity <= 0 {
		return []TimeSlot{}
	}

	blocked := make([]Interval, 0, len(blocks))
	for _, b := range blocks {
		blocked = append(blocked, BlockInterval(b, window))
	}

	slots := make([]TimeSlot, 0, window.Minutes()/granularity+1)
	for cur := window.Start; cur < window.End; cur = cur.Add(granularity) {
		slot := Interval{Start: cur, End: cur.Add(granularity)}
		ts := TimeSlot{
			Start:     slot.Start.String(),
			End:       slot.End.String(),
			Available: true,
		}

		for _, ap := range appointments {
			if !Status(ap.Status).Active() {
				continue
			}
			if slot.Overlaps(IntervalOf(ap)) {
				id := ap.ID
				ts.Available = false
				ts.AppointmentID = &id
				if includeOccupant {
					ts.ClientName = ap.Client.Name
				}
				break
			}
		}

		if ts.Available {
			for _, b := range blocked {
				if slot.Overlaps(b) {
					ts.Available = false
					ts.Blocked = true
					break
				}
			}
		}

		slots = append(slots, ts)
	}

	return slots
}

// SlotGranularity picks the slot size: an explicit override wins, then
// the shortest catalog duration, then DefaultGranularityMin.
func SlotGranularity(override, catalogMin int) int {
	if override > 0 {
		return override
	}
	if catalogMin > 0 {
		return catalogMin
	}
	return DefaultGranularityMin
}
