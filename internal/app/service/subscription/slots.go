package subscription

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/haventherapy/booking/internal/app/service/schedule"
	models "github.com/haventherapy/booking/internal/models"
	"github.com/haventherapy/booking/pkg/tool"
	"github.com/haventherapy/booking/pkg/types"
)

// SlotInput carries the client's choice for a new or edited weekly slot.
// An empty Timezone asks the server to resolve the caller's zone, falling
// back to UTC with the slot flagged for confirmation.
type SlotInput struct {
	DayOfWeek int    `json:"day_of_week"`
	Hour      int    `json:"hour"`
	Minute    int    `json:"minute"`
	Timezone  string `json:"timezone"`
	Enabled   *bool  `json:"enabled,omitempty"`
}

func (s *Service) validateSlotInput(in SlotInput) (timezone string, fallback bool, err error) {
	if in.DayOfWeek < 0 || in.DayOfWeek > 6 {
		return "", false, &ValidationError{Precondition: "day_of_week", Detail: fmt.Sprintf("%d is out of range", in.DayOfWeek)}
	}
	tod := types.TimeOfDay{Hour: in.Hour, Minute: in.Minute}
	if !s.cfg.Booking.Bookable(tod) {
		return "", false, &ValidationError{Precondition: "time", Detail: fmt.Sprintf("%s is not a bookable time", tod)}
	}

	timezone = in.Timezone
	if timezone == "" {
		timezone, fallback = schedule.ResolveLocalTimezone()
	} else if _, lerr := time.LoadLocation(timezone); lerr != nil {
		timezone, fallback = schedule.DefaultTimezone, true
	}
	return timezone, fallback, nil
}

// AddSlot appends a weekly slot to the subscription. On an active
// subscription the new slot's occurrences are materialized immediately;
// other slots' occurrences are untouched.
func (s *Service) AddSlot(ctx context.Context, subID string, in SlotInput) (*models.WeeklyScheduleSlot, error) {
	timezone, fallback, err := s.validateSlotInput(in)
	if err != nil {
		return nil, err
	}

	var slot *models.WeeklyScheduleSlot
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.getForUpdate(ctx, tx, subID)
		if err != nil {
			return err
		}
		if sub.State.Terminal() {
			return &ValidationError{Precondition: "state", Detail: "subscription is cancelled"}
		}
		before := snapshot(sub)

		enabled := true
		if in.Enabled != nil {
			enabled = *in.Enabled
		}
		slot = &models.WeeklyScheduleSlot{
			ID:               tool.GenerateUUIDV7(),
			SubscriptionID:   sub.ID,
			DayOfWeek:        in.DayOfWeek,
			Hour:             in.Hour,
			Minute:           in.Minute,
			Timezone:         timezone,
			TimezoneFallback: fallback,
			Enabled:          enabled,
		}

		if pairs := schedule.FindConflicts(append(sub.Slots, slot)); len(pairs) > 0 {
			return &ConflictError{Pairs: pairs}
		}

		if err := tx.Create(slot).Error; err != nil {
			return fmt.Errorf("failed to create slot: %w", err)
		}
		if sub.State == types.SubscriptionStateActive && slot.Enabled {
			if _, err := s.materializeSlot(ctx, tx, sub, slot, s.now(), s.cfg.Billing.LookaheadOccurrences); err != nil {
				return err
			}
		}
		return s.writeLog(ctx, tx, sub, before, models.SubscriptionChangeReasonSlotChange)
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

// UpdateSlot edits a slot's time, timezone, or enabled flag. On an active
// subscription the slot's future occurrences are rebuilt from now; sessions
// already held and every other slot's occurrences are left alone.
func (s *Service) UpdateSlot(ctx context.Context, subID, slotID string, in SlotInput) (*models.WeeklyScheduleSlot, error) {
	timezone, fallback, err := s.validateSlotInput(in)
	if err != nil {
		return nil, err
	}

	var slot *models.WeeklyScheduleSlot
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.getForUpdate(ctx, tx, subID)
		if err != nil {
			return err
		}
		if sub.State.Terminal() {
			return &ValidationError{Precondition: "state", Detail: "subscription is cancelled"}
		}
		before := snapshot(sub)

		for _, candidate := range sub.Slots {
			if candidate.ID == slotID {
				slot = candidate
				break
			}
		}
		if slot == nil {
			return gorm.ErrRecordNotFound
		}

		slot.DayOfWeek = in.DayOfWeek
		slot.Hour = in.Hour
		slot.Minute = in.Minute
		slot.Timezone = timezone
		slot.TimezoneFallback = fallback
		if in.Enabled != nil {
			slot.Enabled = *in.Enabled
		}

		if pairs := schedule.FindConflicts(sub.Slots); len(pairs) > 0 {
			return &ConflictError{Pairs: pairs}
		}

		if err := tx.Save(slot).Error; err != nil {
			return fmt.Errorf("failed to update slot: %w", err)
		}

		if sub.State == types.SubscriptionStateActive {
			now := s.now()
			if err := s.clearFutureOccurrences(ctx, tx, slot.ID, now); err != nil {
				return err
			}
			if slot.Enabled {
				if _, err := s.materializeSlot(ctx, tx, sub, slot, now, s.cfg.Billing.LookaheadOccurrences); err != nil {
					return err
				}
			}
		}
		return s.writeLog(ctx, tx, sub, before, models.SubscriptionChangeReasonSlotChange)
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

// RemoveSlot deletes a slot and its not-yet-held occurrences; the removal
// is administrative, so no fee applies.
func (s *Service) RemoveSlot(ctx context.Context, subID, slotID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.getForUpdate(ctx, tx, subID)
		if err != nil {
			return err
		}

		before := snapshot(sub)
		var found bool
		for _, candidate := range sub.Slots {
			if candidate.ID == slotID {
				found = true
				break
			}
		}
		if !found {
			return gorm.ErrRecordNotFound
		}

		if err := s.clearFutureOccurrences(ctx, tx, slotID, s.now()); err != nil {
			return err
		}
		if err := tx.Delete(&models.WeeklyScheduleSlot{}, "id = ?", slotID).Error; err != nil {
			return fmt.Errorf("failed to delete slot: %w", err)
		}
		return s.writeLog(ctx, tx, sub, before, models.SubscriptionChangeReasonSlotChange)
	})
}

// Conflicts reports current collisions among the subscription's slots.
func (s *Service) Conflicts(ctx context.Context, subID string) ([]schedule.ConflictPair, error) {
	sub, err := s.Get(ctx, subID)
	if err != nil {
		return nil, err
	}
	return schedule.FindConflicts(sub.Slots), nil
}
