package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/haventherapy/booking/pkg/types"
)

func TestDefaultBookableTimes(t *testing.T) {
	times := DefaultBookableTimes()
	require.Len(t, times, 12)
	require.Equal(t, types.TimeOfDay{Hour: 8}, times[0])
	require.Equal(t, types.TimeOfDay{Hour: 19}, times[len(times)-1])
	for _, tod := range times {
		require.Zero(t, tod.Minute)
	}
}

func TestBookingConfig_Bookable(t *testing.T) {
	b := BookingConfig{BookableTimes: DefaultBookableTimes()}
	require.True(t, b.Bookable(types.TimeOfDay{Hour: 8}))
	require.True(t, b.Bookable(types.TimeOfDay{Hour: 19}))
	require.False(t, b.Bookable(types.TimeOfDay{Hour: 7}))
	require.False(t, b.Bookable(types.TimeOfDay{Hour: 20}))
	require.False(t, b.Bookable(types.TimeOfDay{Hour: 10, Minute: 30}))
}

func TestBillingConfig_Durations(t *testing.T) {
	b := BillingConfig{LeadTimeHours: 48, FeeThresholdHours: 24, ChargeIntervalSeconds: 300}
	require.Equal(t, 48*time.Hour, b.LeadTime())
	require.Equal(t, 24*time.Hour, b.FeeThreshold())
	require.Equal(t, 5*time.Minute, b.ChargeInterval())
}

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	require.Equal(t, EnvDev, cfg.Env)
	require.Equal(t, "USD", cfg.Pricing.Currency)
	require.Equal(t, int64(8000), cfg.Pricing.RecurringRateCents)
	require.Equal(t, int64(9500), cfg.Pricing.StandaloneRateCents)
	require.Equal(t, int64(5000), cfg.Pricing.LateFeeCents)
	require.Equal(t, 48, cfg.Billing.LeadTimeHours)
	require.Equal(t, 24, cfg.Billing.FeeThresholdHours)
	require.Equal(t, 4, cfg.Billing.LookaheadOccurrences)
	require.NotEmpty(t, cfg.Booking.BookableTimes)
}
