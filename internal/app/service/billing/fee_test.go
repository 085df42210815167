package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	models "github.com/haventherapy/booking/internal/models"
	"github.com/haventherapy/booking/pkg/config"
	"github.com/haventherapy/booking/pkg/types"
)

func testEngine() *Engine {
	return NewEngine(&config.Config{
		Pricing: config.PricingConfig{
			Currency:            "USD",
			RecurringRateCents:  8000,
			StandaloneRateCents: 9500,
			LateFeeCents:        5000,
		},
		Billing: config.BillingConfig{
			LeadTimeHours:        48,
			FeeThresholdHours:    24,
			LookaheadOccurrences: 4,
		},
	})
}

func occurrenceAt(at time.Time) *models.SessionOccurrence {
	return &models.SessionOccurrence{
		ID:          "occ-1",
		ScheduledAt: at,
		Status:      types.OccurrenceStatusScheduled,
		Currency:    "USD",
	}
}

func TestDecide_FeeThreshold(t *testing.T) {
	e := testEngine()
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		until      time.Duration
		feeApplies bool
	}{
		{"well outside threshold", 72 * time.Hour, false},
		{"exactly at threshold is free", 24 * time.Hour, false},
		{"one minute inside", 24*time.Hour - time.Minute, true},
		{"one hour before session", time.Hour, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			occ := occurrenceAt(now.Add(tc.until))
			d, err := e.Decide(types.FeeActionCancel, occ, now, types.SessionKindStandard)
			require.NoError(t, err)
			require.Equal(t, tc.feeApplies, d.FeeApplies)
			if tc.feeApplies {
				require.Equal(t, int64(5000), d.FeeCents)
			} else {
				require.Zero(t, d.FeeCents)
			}
			require.Equal(t, "USD", d.Currency)
			require.InDelta(t, tc.until.Hours(), d.HoursUntilSession, 1e-9)
		})
	}
}

func TestDecide_RescheduleUsesSamePolicy(t *testing.T) {
	e := testEngine()
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	occ := occurrenceAt(now.Add(2 * time.Hour))

	d, err := e.Decide(types.FeeActionReschedule, occ, now, types.SessionKindStandard)
	require.NoError(t, err)
	require.Equal(t, types.FeeActionReschedule, d.Action)
	require.True(t, d.FeeApplies)
	require.Equal(t, int64(5000), d.FeeCents)
}

func TestDecide_TrialExempt(t *testing.T) {
	e := testEngine()
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	occ := occurrenceAt(now.Add(time.Hour))

	d, err := e.Decide(types.FeeActionCancel, occ, now, types.SessionKindTrial)
	require.NoError(t, err)
	require.False(t, d.FeeApplies)
	require.Zero(t, d.FeeCents)
}

func TestDecide_PastSession(t *testing.T) {
	e := testEngine()
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	_, err := e.Decide(types.FeeActionCancel, occurrenceAt(now.Add(-time.Minute)), now, types.SessionKindStandard)
	require.ErrorIs(t, err, ErrPastSession)

	// Exactly now counts as started.
	_, err = e.Decide(types.FeeActionCancel, occurrenceAt(now), now, types.SessionKindStandard)
	require.ErrorIs(t, err, ErrPastSession)
}

func TestDecide_Idempotent(t *testing.T) {
	e := testEngine()
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	occ := occurrenceAt(now.Add(3 * time.Hour))

	a, err := e.Decide(types.FeeActionCancel, occ, now, types.SessionKindStandard)
	require.NoError(t, err)
	b, err := e.Decide(types.FeeActionCancel, occ, now, types.SessionKindStandard)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
