package schedule

import (
	models "github.com/haventherapy/booking/internal/models"
)

// ConflictPair names two slots that occupy the same weekly position.
// SlotA always carries the lexicographically smaller id, so a pair has a
// single canonical representation regardless of input order.
type ConflictPair struct {
	SlotA string `json:"slot_a"`
	SlotB string `json:"slot_b"`
	// Message is the user-facing description from DescribeConflict.
	Message string `json:"message"`
}

// FindConflicts reports every unordered pair of enabled slots sharing the
// same day-of-week and time-of-day. Disabled slots are ignored; a slot
// never conflicts with itself.
func FindConflicts(slots []*models.WeeklyScheduleSlot) []ConflictPair {
	var enabled []*models.WeeklyScheduleSlot
	for _, s := range slots {
		if s != nil && s.Enabled {
			enabled = append(enabled, s)
		}
	}

	var pairs []ConflictPair
	for i := 0; i < len(enabled); i++ {
		for j := i + 1; j < len(enabled); j++ {
			a, b := enabled[i], enabled[j]
			if a.ID == b.ID || !a.SameWallClock(b) {
				continue
			}
			if b.ID < a.ID {
				a, b = b, a
			}
			pairs = append(pairs, ConflictPair{
				SlotA:   a.ID,
				SlotB:   b.ID,
				Message: DescribeConflict(a, b),
			})
		}
	}
	return pairs
}
