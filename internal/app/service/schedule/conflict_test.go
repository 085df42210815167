package schedule

import (
	"testing"

	"github.com/stretchr/testify/require"

	models "github.com/haventherapy/booking/internal/models"
)

func namedSlot(id string, day, hour, minute int, enabled bool) *models.WeeklyScheduleSlot {
	return &models.WeeklyScheduleSlot{
		ID:        id,
		DayOfWeek: day,
		Hour:      hour,
		Minute:    minute,
		Timezone:  "America/Chicago",
		Enabled:   enabled,
	}
}

func TestFindConflicts_SameWeeklyPosition(t *testing.T) {
	pairs := FindConflicts([]*models.WeeklyScheduleSlot{
		namedSlot("b", 2, 15, 0, true),
		namedSlot("a", 2, 15, 0, true),
	})
	require.Len(t, pairs, 1)
	// Canonical ordering: smaller id first regardless of input order.
	require.Equal(t, "a", pairs[0].SlotA)
	require.Equal(t, "b", pairs[0].SlotB)
	require.Contains(t, pairs[0].Message, "Tuesday")
}

func TestFindConflicts_DifferentTimesDoNotCollide(t *testing.T) {
	pairs := FindConflicts([]*models.WeeklyScheduleSlot{
		namedSlot("a", 2, 15, 0, true),
		namedSlot("b", 2, 16, 0, true),
		namedSlot("c", 3, 15, 0, true),
	})
	require.Empty(t, pairs)
}

func TestFindConflicts_DisabledSlotsIgnored(t *testing.T) {
	pairs := FindConflicts([]*models.WeeklyScheduleSlot{
		namedSlot("a", 2, 15, 0, true),
		namedSlot("b", 2, 15, 0, false),
	})
	require.Empty(t, pairs)
}

func TestFindConflicts_AllCollidingPairsReported(t *testing.T) {
	pairs := FindConflicts([]*models.WeeklyScheduleSlot{
		namedSlot("a", 4, 11, 0, true),
		namedSlot("b", 4, 11, 0, true),
		namedSlot("c", 4, 11, 0, true),
	})
	require.Len(t, pairs, 3)
}

func TestDescribeConflict(t *testing.T) {
	a := namedSlot("a", 1, 14, 0, true)
	b := namedSlot("b", 1, 14, 0, true)

	msg := DescribeConflict(a, b)
	require.Contains(t, msg, "Monday")
	require.Contains(t, msg, "2:00 PM")

	require.Empty(t, DescribeConflict(a, namedSlot("c", 1, 14, 30, true)))
	require.Empty(t, DescribeConflict(a, a))
}
