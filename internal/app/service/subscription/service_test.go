package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/haventherapy/booking/internal/app/service/schedule"
	models "github.com/haventherapy/booking/internal/models"
	"github.com/haventherapy/booking/pkg/config"
	"github.com/haventherapy/booking/pkg/types"
)

func testService() *Service {
	return &Service{
		cfg: &config.Config{
			Pricing: config.PricingConfig{Currency: "USD", RecurringRateCents: 8000, StandaloneRateCents: 9500, LateFeeCents: 5000},
			Billing: config.BillingConfig{LeadTimeHours: 48, FeeThresholdHours: 24, LookaheadOccurrences: 4},
			Booking: config.BookingConfig{BookableTimes: config.DefaultBookableTimes()},
		},
		now: time.Now,
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Precondition: "terms", Detail: "fee policy not acknowledged"}
	require.Equal(t, "precondition failed: terms: fee policy not acknowledged", err.Error())

	err = &ValidationError{Precondition: "slots"}
	require.Equal(t, "precondition failed: slots", err.Error())
}

func TestConflictError_JoinsPairMessages(t *testing.T) {
	err := &ConflictError{Pairs: []schedule.ConflictPair{
		{SlotA: "a", SlotB: "b", Message: "both slots fall on Monday at 2:00 PM CST"},
		{SlotA: "a", SlotB: "c", Message: "both slots fall on Monday at 2:00 PM CST"},
	}}
	require.Contains(t, err.Error(), "schedule conflict")
	require.Contains(t, err.Error(), "; ")
}

func TestValidateSlotInput(t *testing.T) {
	s := testService()

	cases := []struct {
		name    string
		in      SlotInput
		wantErr string
	}{
		{"valid", SlotInput{DayOfWeek: 2, Hour: 10, Timezone: "America/New_York"}, ""},
		{"day too high", SlotInput{DayOfWeek: 7, Hour: 10, Timezone: "UTC"}, "day_of_week"},
		{"day negative", SlotInput{DayOfWeek: -1, Hour: 10, Timezone: "UTC"}, "day_of_week"},
		{"off the hour", SlotInput{DayOfWeek: 2, Hour: 10, Minute: 30, Timezone: "UTC"}, "time"},
		{"before opening", SlotInput{DayOfWeek: 2, Hour: 7, Timezone: "UTC"}, "time"},
		{"after closing", SlotInput{DayOfWeek: 2, Hour: 20, Timezone: "UTC"}, "time"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tz, fallback, err := s.validateSlotInput(tc.in)
			if tc.wantErr == "" {
				require.NoError(t, err)
				require.Equal(t, tc.in.Timezone, tz)
				require.False(t, fallback)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tc.wantErr, ve.Precondition)
		})
	}
}

func TestValidateSlotInput_UnknownTimezoneFallsBack(t *testing.T) {
	s := testService()
	tz, fallback, err := s.validateSlotInput(SlotInput{DayOfWeek: 2, Hour: 10, Timezone: "Not/AZone"})
	require.NoError(t, err)
	require.Equal(t, schedule.DefaultTimezone, tz)
	require.True(t, fallback)
}

func TestValidateBookable(t *testing.T) {
	s := testService()

	// 14:00 UTC is 10:00 in New York during June (EDT); both land on the grid.
	at := time.Date(2025, 6, 4, 14, 0, 0, 0, time.UTC)
	require.NoError(t, s.validateBookable(at, ""))
	require.NoError(t, s.validateBookable(at, "America/New_York"))

	// 3:00 UTC is off the grid in UTC but 23:00 the previous day in New York,
	// also off the grid.
	early := time.Date(2025, 6, 4, 3, 0, 0, 0, time.UTC)
	require.Error(t, s.validateBookable(early, ""))

	require.Error(t, s.validateBookable(at, "Not/AZone"))
}

func TestSnapshot_DropsSlots(t *testing.T) {
	sub := &models.RecurringSubscription{
		ID:    "sub-1",
		State: types.SubscriptionStateActive,
		Slots: []*models.WeeklyScheduleSlot{{ID: "slot-1"}},
	}
	cp := snapshot(sub)
	require.Equal(t, sub.ID, cp.ID)
	require.Equal(t, sub.State, cp.State)
	require.Nil(t, cp.Slots)
	// The original is untouched.
	require.Len(t, sub.Slots, 1)
}
