package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/haventherapy/booking/pkg/types"
)

func TestResolveLocalTimezone_FromEnv(t *testing.T) {
	t.Setenv("TZ", "Asia/Tokyo")
	tz, fallback := ResolveLocalTimezone()
	require.Equal(t, "Asia/Tokyo", tz)
	require.False(t, fallback)
}

func TestResolveLocalTimezone_BadEnvNeverFails(t *testing.T) {
	t.Setenv("TZ", "Not/AZone")
	tz, _ := ResolveLocalTimezone()
	_, err := time.LoadLocation(tz)
	require.NoError(t, err)
}

func TestFormatSlot(t *testing.T) {
	require.Equal(t, "2:30 PM", FormatSlot(types.TimeOfDay{Hour: 14, Minute: 30}, "UTC", false))
	require.Equal(t, "2:30 PM UTC", FormatSlot(types.TimeOfDay{Hour: 14, Minute: 30}, "UTC", true))
	require.Equal(t, "9:00 AM", FormatSlot(types.TimeOfDay{Hour: 9}, "America/New_York", false))
	// Unknown zone falls back to UTC rather than erroring.
	require.Equal(t, "9:00 AM UTC", FormatSlot(types.TimeOfDay{Hour: 9}, "Not/AZone", true))
}
