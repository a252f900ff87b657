package domain

import "time"

type SlotSource string

const (
	SlotSourceRental      SlotSource = "rental"
	SlotSourceMaintenance SlotSource = "maintenance"
)

// UnavailabilitySlot is a transient value describing one blocking interval on
// a bike's calendar. It is never persisted; the availability resolver builds
// it from rentals and maintenance records.
type UnavailabilitySlot struct {
	Source   SlotSource `json:"source"`
	SourceID int64      `json:"source_id"`
	BikeID   int64      `json:"bike_id"`
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end,omitempty"`
	Reason   string     `json:"reason"`
}

// Overlaps applies the half-open interval test against [start, end). A slot
// with a nil End is treated as unbounded into the future. Touching boundaries
// (slot ending exactly when the window starts, or vice versa) do not overlap.
func (s UnavailabilitySlot) Overlaps(start, end time.Time) bool {
	if !s.Start.Before(end) {
		return false
	}
	if s.End == nil {
		return true
	}
	return s.End.After(start)
}
