// Package schedule implements the recurring-session scheduling core:
// timezone resolution and display, weekly recurrence expansion, and
// conflict detection among a client's chosen slots. Everything here is
// pure computation; persistence and transport live elsewhere.
package schedule

import (
	"fmt"
	"os"
	"time"

	models "github.com/haventherapy/booking/internal/models"
	"github.com/haventherapy/booking/pkg/types"
)

// DefaultTimezone is the fallback when the runtime gives us nothing usable.
const DefaultTimezone = "UTC"

// ResolveLocalTimezone returns the caller's IANA timezone identifier.
// It never fails: when the environment does not name a loadable zone the
// result is DefaultTimezone and usedFallback is true, so callers can flag
// the slot for user confirmation.
func ResolveLocalTimezone() (tz string, usedFallback bool) {
	if env := os.Getenv("TZ"); env != "" {
		if _, err := time.LoadLocation(env); err == nil {
			return env, false
		}
	}
	if name := time.Now().Location().String(); name != "" && name != "Local" {
		return name, false
	}
	return DefaultTimezone, true
}

// FormatSlot renders a wall-clock time as a 12-hour string, optionally
// suffixed with the zone's short label for today's date, e.g. "2:00 PM EST".
// An unloadable timezone falls back to UTC.
func FormatSlot(t types.TimeOfDay, timezone string, withZoneLabel bool) string {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	ref := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, loc)
	if withZoneLabel {
		return ref.Format("3:04 PM MST")
	}
	return ref.Format("3:04 PM")
}

// DescribeConflict returns a human-readable message when two slots occupy
// the same weekly position, or "" when they do not collide. Slots are
// compared on their stored day/time directly: a client picks all slots in
// their own timezone, so no cross-zone normalization is needed.
func DescribeConflict(a, b *models.WeeklyScheduleSlot) string {
	if a == nil || b == nil || a.ID == b.ID {
		return ""
	}
	if !a.SameWallClock(b) {
		return ""
	}
	return fmt.Sprintf("both slots fall on %s at %s",
		time.Weekday(a.DayOfWeek).String(),
		FormatSlot(a.TimeOfDay(), a.Timezone, true))
}
