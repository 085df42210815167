package schedule

import (
	"fmt"
	"time"

	models "github.com/haventherapy/booking/internal/models"
)

// NextOccurrences expands a weekly slot into its next count concrete
// instants at or after from.
//
// Each result lands on slot.DayOfWeek at slot's time-of-day in the slot's
// timezone; consecutive results are exactly seven days apart on the local
// calendar, so the absolute gap stretches or shrinks across DST boundaries
// while the wall clock stays fixed.
//
// An instant exactly equal to from is deferred to the following week: a
// client confirming "today at this time" is never booked retroactively into
// the already-elapsing session. This deferral applies at every call site.
//
// The expansion is deterministic: same inputs, same output, no hidden state.
func NextOccurrences(slot *models.WeeklyScheduleSlot, from time.Time, count int) ([]time.Time, error) {
	if slot == nil {
		return nil, fmt.Errorf("nil slot")
	}
	if slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
		return nil, fmt.Errorf("day_of_week out of range: %d", slot.DayOfWeek)
	}
	if count <= 0 {
		return nil, nil
	}
	loc, err := time.LoadLocation(slot.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", slot.Timezone, err)
	}

	local := from.In(loc)
	var first time.Time
	// Day 0 and day 7 are the same weekday; scanning both lets an
	// already-passed (or exactly-now) match today roll to next week.
	for offset := 0; offset <= 7; offset++ {
		day := local.AddDate(0, 0, offset)
		candidate := time.Date(day.Year(), day.Month(), day.Day(), slot.Hour, slot.Minute, 0, 0, loc)
		if candidate.Weekday() == time.Weekday(slot.DayOfWeek) && candidate.After(from) {
			first = candidate
			break
		}
	}

	out := make([]time.Time, 0, count)
	cur := first
	for i := 0; i < count; i++ {
		out = append(out, cur)
		// AddDate advances the local calendar; re-pinning through time.Date
		// keeps the wall clock authoritative across DST transitions.
		next := cur.AddDate(0, 0, 7)
		cur = time.Date(next.Year(), next.Month(), next.Day(), slot.Hour, slot.Minute, 0, 0, loc)
	}
	return out, nil
}
