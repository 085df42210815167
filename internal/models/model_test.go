package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/haventherapy/booking/pkg/types"
)

func TestSessionOccurrence_Upcoming(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	occ := &SessionOccurrence{Status: types.OccurrenceStatusScheduled, ScheduledAt: now.Add(time.Hour)}
	require.True(t, occ.Upcoming(now))

	occ.ScheduledAt = now.Add(-time.Hour)
	require.False(t, occ.Upcoming(now))

	occ.ScheduledAt = now.Add(time.Hour)
	occ.Status = types.OccurrenceStatusCancelled
	require.False(t, occ.Upcoming(now))
}

func TestSessionOccurrence_Recurring(t *testing.T) {
	require.True(t, (&SessionOccurrence{SubscriptionID: "sub-1"}).Recurring())
	require.False(t, (&SessionOccurrence{}).Recurring())
}

func TestRecurringSubscription_EnabledSlots(t *testing.T) {
	sub := &RecurringSubscription{Slots: []*WeeklyScheduleSlot{
		{ID: "a", Enabled: true},
		{ID: "b", Enabled: false},
		{ID: "c", Enabled: true},
	}}
	enabled := sub.EnabledSlots()
	require.Len(t, enabled, 2)
	require.Equal(t, "a", enabled[0].ID)
	require.Equal(t, "c", enabled[1].ID)
}

func TestRecurringSubscription_Billable(t *testing.T) {
	require.True(t, (&RecurringSubscription{State: types.SubscriptionStateActive}).Billable())
	require.False(t, (&RecurringSubscription{State: types.SubscriptionStatePaused}).Billable())
	require.False(t, (&RecurringSubscription{State: types.SubscriptionStateCancelled}).Billable())
}

func TestWeeklyScheduleSlot_SameWallClock(t *testing.T) {
	a := &WeeklyScheduleSlot{DayOfWeek: 2, Hour: 15, Minute: 0}
	require.True(t, a.SameWallClock(&WeeklyScheduleSlot{DayOfWeek: 2, Hour: 15, Minute: 0}))
	require.False(t, a.SameWallClock(&WeeklyScheduleSlot{DayOfWeek: 2, Hour: 15, Minute: 30}))
	require.False(t, a.SameWallClock(&WeeklyScheduleSlot{DayOfWeek: 3, Hour: 15, Minute: 0}))
}
