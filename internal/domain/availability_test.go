package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUnavailabilitySlot_Overlaps(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC) }
	slot := func(start, end int) UnavailabilitySlot {
		e := day(end)
		return UnavailabilitySlot{Start: day(start), End: &e}
	}

	// Existing rental Jan 10 to Jan 15.
	existing := slot(10, 15)

	assert.True(t, existing.Overlaps(day(14), day(16)), "Jan 14-16 overlaps Jan 10-15")
	assert.False(t, existing.Overlaps(day(15), day(16)), "a rental ending Jan 15 leaves Jan 15 free")
	assert.False(t, existing.Overlaps(day(8), day(10)), "a window ending at the slot start does not overlap")
	assert.True(t, existing.Overlaps(day(9), day(11)))
	assert.True(t, existing.Overlaps(day(11), day(12)), "fully contained window")
	assert.True(t, existing.Overlaps(day(8), day(20)), "window containing the slot")
	assert.False(t, existing.Overlaps(day(1), day(2)))
	assert.False(t, existing.Overlaps(day(20), day(25)))
}

func TestUnavailabilitySlot_OverlapsOpenEnded(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC) }

	// Maintenance with no completion date blocks everything from its start.
	open := UnavailabilitySlot{Source: SlotSourceMaintenance, Start: day(10)}

	assert.True(t, open.Overlaps(day(11), day(12)))
	assert.True(t, open.Overlaps(day(100), day(200)))
	assert.True(t, open.Overlaps(day(9), day(11)))
	assert.False(t, open.Overlaps(day(8), day(10)), "window ending at the open slot's start")
	assert.False(t, open.Overlaps(day(1), day(5)))
}
