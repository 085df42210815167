package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubscriptionState_Terminal(t *testing.T) {
	require.True(t, SubscriptionStateCancelled.Terminal())
	require.False(t, SubscriptionStateDraft.Terminal())
	require.False(t, SubscriptionStateActive.Terminal())
	require.False(t, SubscriptionStatePaused.Terminal())
}

func TestSessionKind_DurationMinutes(t *testing.T) {
	require.Equal(t, 60, SessionKindStandard.DurationMinutes())
	require.Equal(t, 15, SessionKindTrial.DurationMinutes())
}

func TestTimeOfDay(t *testing.T) {
	require.Equal(t, "09:05", TimeOfDay{Hour: 9, Minute: 5}.String())
	require.Equal(t, "14:30", TimeOfDay{Hour: 14, Minute: 30}.String())

	require.True(t, TimeOfDay{Hour: 9}.Before(TimeOfDay{Hour: 10}))
	require.True(t, TimeOfDay{Hour: 9, Minute: 15}.Before(TimeOfDay{Hour: 9, Minute: 30}))
	require.False(t, TimeOfDay{Hour: 9}.Before(TimeOfDay{Hour: 9}))
	require.False(t, TimeOfDay{Hour: 10}.Before(TimeOfDay{Hour: 9, Minute: 59}))
}
