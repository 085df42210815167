package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/haventherapy/booking/internal/app/service/billing"
	models "github.com/haventherapy/booking/internal/models"
	"github.com/haventherapy/booking/internal/platform/notify"
	"github.com/haventherapy/booking/pkg/types"
)

// dbService wires a real Service against an in-memory database with a
// controllable clock, starting Monday 2025-06-02 12:00 UTC.
func dbService(t *testing.T) (*Service, *time.Time) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.RecurringSubscription{},
		&models.WeeklyScheduleSlot{},
		&models.SessionOccurrence{},
		&models.SubscriptionLog{},
	))

	s := testService()
	s.db = db
	s.log = zap.NewNop().Sugar()
	s.engine = billing.NewEngine(s.cfg)
	s.sink = notify.NewLogSink(zap.NewNop().Sugar())

	at := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	clock := &at
	s.now = func() time.Time { return *clock }
	return s, clock
}

// activeSubscription walks the wizard end to end: draft, slots, terms,
// payment method, activate.
func activeSubscription(t *testing.T, s *Service, slots ...SlotInput) *models.RecurringSubscription {
	t.Helper()
	ctx := context.Background()
	sub, err := s.CreateDraft(ctx, "client-1")
	require.NoError(t, err)
	for _, in := range slots {
		_, err := s.AddSlot(ctx, sub.ID, in)
		require.NoError(t, err)
	}
	require.NoError(t, s.AcknowledgeTerms(ctx, sub.ID))
	require.NoError(t, s.SetPaymentMethod(ctx, sub.ID, "tok_123"))
	sub, err = s.Activate(ctx, sub.ID)
	require.NoError(t, err)
	return sub
}

func upcomingIDs(t *testing.T, s *Service, subID string) (ids []string, instants []int64) {
	t.Helper()
	occs, err := s.UpcomingOccurrences(context.Background(), subID)
	require.NoError(t, err)
	for _, occ := range occs {
		ids = append(ids, occ.ID)
		instants = append(instants, occ.ScheduledAt.Unix())
	}
	return ids, instants
}

func TestActivate_MaterializesLookaheadPerSlot(t *testing.T) {
	s, _ := dbService(t)
	sub := activeSubscription(t, s, SlotInput{DayOfWeek: 3, Hour: 10, Timezone: "UTC"})

	occs, err := s.UpcomingOccurrences(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Len(t, occs, s.cfg.Billing.LookaheadOccurrences)

	// Wednesday 10:00 UTC, weekly, first strictly after activation.
	want := time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)
	for i, occ := range occs {
		require.True(t, occ.ScheduledAt.Equal(want), "occurrence %d: got %s want %s", i, occ.ScheduledAt, want)
		require.Equal(t, i, occ.Seq)
		require.Equal(t, int64(8000), occ.AmountDueCents)
		require.True(t, occ.ChargeTriggerAt.Equal(want.Add(-48*time.Hour)))
		require.False(t, occ.Suspended)
		want = want.AddDate(0, 0, 7)
	}
}

func TestPauseResume_RestoresIdenticalUpcoming(t *testing.T) {
	s, _ := dbService(t)
	sub := activeSubscription(t, s, SlotInput{DayOfWeek: 3, Hour: 10, Timezone: "UTC"})
	ctx := context.Background()

	beforeIDs, beforeAt := upcomingIDs(t, s, sub.ID)
	require.Len(t, beforeIDs, 4)

	require.NoError(t, s.Pause(ctx, sub.ID, "vacation", nil))
	var suspended int64
	require.NoError(t, s.db.Model(&models.SessionOccurrence{}).
		Where("subscription_id = ? AND suspended = ?", sub.ID, true).
		Count(&suspended).Error)
	require.EqualValues(t, 4, suspended)

	require.NoError(t, s.Resume(ctx, sub.ID))

	afterIDs, afterAt := upcomingIDs(t, s, sub.ID)
	require.Equal(t, beforeIDs, afterIDs)
	require.Equal(t, beforeAt, afterAt)

	require.NoError(t, s.db.Model(&models.SessionOccurrence{}).
		Where("subscription_id = ? AND suspended = ?", sub.ID, true).
		Count(&suspended).Error)
	require.Zero(t, suspended)
}

func TestResume_AfterLapsedOccurrences_RefillsLookahead(t *testing.T) {
	s, clock := dbService(t)
	sub := activeSubscription(t, s, SlotInput{DayOfWeek: 3, Hour: 10, Timezone: "UTC"})
	ctx := context.Background()

	require.NoError(t, s.Pause(ctx, sub.ID, "", nil))

	// Three of the four occurrences (Jun 4, 11, 18) lapse while paused;
	// only Jun 25 is still ahead of the clock.
	*clock = clock.AddDate(0, 0, 22)
	require.NoError(t, s.Resume(ctx, sub.ID))

	occs, err := s.UpcomingOccurrences(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, occs, 4)

	// The survivor keeps its identity; the refill continues the sequence
	// past the highest index ever minted instead of reusing dropped ones.
	require.Equal(t, 3, occs[0].Seq)
	require.True(t, occs[0].ScheduledAt.Equal(time.Date(2025, 6, 25, 10, 0, 0, 0, time.UTC)))
	seen := map[string]bool{}
	for i, occ := range occs {
		require.False(t, seen[occ.ID], "duplicate occurrence id %s", occ.ID)
		seen[occ.ID] = true
		require.False(t, occ.Suspended)
		if i > 0 {
			require.Equal(t, 3+i, occ.Seq)
			require.True(t, occ.ScheduledAt.Equal(occs[i-1].ScheduledAt.AddDate(0, 0, 7)))
		}
	}

	// Nothing lapsed is left behind.
	var stale int64
	require.NoError(t, s.db.Model(&models.SessionOccurrence{}).
		Where("subscription_id = ? AND scheduled_at <= ?", sub.ID, s.now()).
		Count(&stale).Error)
	require.Zero(t, stale)
}

func TestUpdateSlot_RebuildsOnlyEditedSlot(t *testing.T) {
	s, _ := dbService(t)
	sub := activeSubscription(t, s,
		SlotInput{DayOfWeek: 3, Hour: 10, Timezone: "UTC"},
		SlotInput{DayOfWeek: 5, Hour: 14, Timezone: "UTC"},
	)
	ctx := context.Background()

	var wednesday, friday *models.WeeklyScheduleSlot
	for _, slot := range sub.Slots {
		if slot.DayOfWeek == 3 {
			wednesday = slot
		} else {
			friday = slot
		}
	}
	require.NotNil(t, wednesday)
	require.NotNil(t, friday)

	var fridayBefore []*models.SessionOccurrence
	require.NoError(t, s.db.Where("slot_id = ?", friday.ID).Order("scheduled_at").Find(&fridayBefore).Error)
	require.Len(t, fridayBefore, 4)

	_, err := s.UpdateSlot(ctx, sub.ID, wednesday.ID, SlotInput{DayOfWeek: 3, Hour: 11, Timezone: "UTC"})
	require.NoError(t, err)

	// The other slot's occurrences are untouched, ids included.
	var fridayAfter []*models.SessionOccurrence
	require.NoError(t, s.db.Where("slot_id = ?", friday.ID).Order("scheduled_at").Find(&fridayAfter).Error)
	require.Len(t, fridayAfter, 4)
	for i := range fridayAfter {
		require.Equal(t, fridayBefore[i].ID, fridayAfter[i].ID)
		require.True(t, fridayAfter[i].ScheduledAt.Equal(fridayBefore[i].ScheduledAt))
	}

	// The edited slot is fully rebuilt on the new wall clock.
	var rebuilt []*models.SessionOccurrence
	require.NoError(t, s.db.Where("slot_id = ?", wednesday.ID).Order("scheduled_at").Find(&rebuilt).Error)
	require.Len(t, rebuilt, 4)
	for _, occ := range rebuilt {
		require.Equal(t, 11, occ.ScheduledAt.UTC().Hour())
	}
}

func TestUpdateSlot_AfterCancellation_MintsFreshIDs(t *testing.T) {
	s, _ := dbService(t)
	sub := activeSubscription(t, s, SlotInput{DayOfWeek: 3, Hour: 10, Timezone: "UTC"})
	ctx := context.Background()

	occs, err := s.UpcomingOccurrences(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, occs, 4)

	// Cancel the second session (more than a week out, so fee-free). The
	// cancelled row stays in the ledger with its id.
	decision, err := s.CancelOccurrence(ctx, occs[1].ID)
	require.NoError(t, err)
	require.False(t, decision.FeeApplies)

	slot := sub.Slots[0]
	_, err = s.UpdateSlot(ctx, sub.ID, slot.ID, SlotInput{DayOfWeek: 3, Hour: 11, Timezone: "UTC"})
	require.NoError(t, err)

	var all []*models.SessionOccurrence
	require.NoError(t, s.db.Where("slot_id = ?", slot.ID).Find(&all).Error)
	// 1 cancelled survivor + 4 rebuilt.
	require.Len(t, all, 5)
	seen := map[string]bool{}
	for _, occ := range all {
		require.False(t, seen[occ.ID], "duplicate occurrence id %s", occ.ID)
		seen[occ.ID] = true
	}

	var scheduled int64
	require.NoError(t, s.db.Model(&models.SessionOccurrence{}).
		Where("slot_id = ? AND status = ?", slot.ID, types.OccurrenceStatusScheduled).
		Count(&scheduled).Error)
	require.EqualValues(t, 4, scheduled)
}
