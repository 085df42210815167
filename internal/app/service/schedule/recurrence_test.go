package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	models "github.com/haventherapy/booking/internal/models"
)

func slot(day, hour, minute int, tz string) *models.WeeklyScheduleSlot {
	return &models.WeeklyScheduleSlot{
		ID:        "slot-1",
		DayOfWeek: day,
		Hour:      hour,
		Minute:    minute,
		Timezone:  tz,
		Enabled:   true,
	}
}

func TestNextOccurrences_CountAndWeekday(t *testing.T) {
	// Wednesday 10:00 UTC, expanding from a Monday.
	s := slot(3, 10, 0, "UTC")
	from := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC) // Monday

	got, err := NextOccurrences(s, from, 4)
	require.NoError(t, err)
	require.Len(t, got, 4)

	require.Equal(t, time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC), got[0])
	for _, at := range got {
		require.Equal(t, time.Wednesday, at.Weekday())
		require.Equal(t, 10, at.Hour())
		require.True(t, at.After(from))
	}
	for i := 1; i < len(got); i++ {
		require.Equal(t, 168*time.Hour, got[i].Sub(got[i-1]))
	}
}

func TestNextOccurrences_SameInstantDefersOneWeek(t *testing.T) {
	s := slot(3, 10, 0, "UTC")
	// from is exactly the slot's instant this Wednesday.
	from := time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)

	got, err := NextOccurrences(s, from, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC), got[0])
}

func TestNextOccurrences_LaterTodayStillCountsToday(t *testing.T) {
	s := slot(3, 10, 0, "UTC")
	from := time.Date(2025, 6, 4, 9, 59, 0, 0, time.UTC)

	got, err := NextOccurrences(s, from, 1)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC), got[0])
}

func TestNextOccurrences_SpringForwardKeepsWallClock(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Sunday 9:00 AM Eastern. US DST starts Sunday March 9, 2025.
	s := slot(0, 9, 0, "America/New_York")
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, loc) // Saturday before the change

	got, err := NextOccurrences(s, from, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// March 2 (EST, UTC-5), March 9 and 16 (EDT, UTC-4): wall clock fixed.
	for _, at := range got {
		local := at.In(loc)
		require.Equal(t, time.Sunday, local.Weekday())
		require.Equal(t, 9, local.Hour())
		require.Equal(t, 0, local.Minute())
	}

	// The absolute gap across the transition is one hour short of a week.
	require.Equal(t, 167*time.Hour, got[1].Sub(got[0]))
	require.Equal(t, 168*time.Hour, got[2].Sub(got[1]))
}

func TestNextOccurrences_FallBackKeepsWallClock(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// US DST ends Sunday November 2, 2025.
	s := slot(0, 9, 0, "America/New_York")
	from := time.Date(2025, 10, 25, 0, 0, 0, 0, loc)

	got, err := NextOccurrences(s, from, 2)
	require.NoError(t, err)
	for _, at := range got {
		require.Equal(t, 9, at.In(loc).Hour())
	}
	require.Equal(t, 169*time.Hour, got[1].Sub(got[0]))
}

func TestNextOccurrences_Deterministic(t *testing.T) {
	s := slot(5, 14, 30, "Europe/Berlin")
	from := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)

	a, err := NextOccurrences(s, from, 6)
	require.NoError(t, err)
	b, err := NextOccurrences(s, from, 6)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestNextOccurrences_InvalidInputs(t *testing.T) {
	from := time.Now()

	_, err := NextOccurrences(nil, from, 1)
	require.Error(t, err)

	_, err = NextOccurrences(slot(7, 10, 0, "UTC"), from, 1)
	require.Error(t, err)

	_, err = NextOccurrences(slot(1, 10, 0, "Mars/Olympus"), from, 1)
	require.Error(t, err)

	got, err := NextOccurrences(slot(1, 10, 0, "UTC"), from, 0)
	require.NoError(t, err)
	require.Nil(t, got)
}
