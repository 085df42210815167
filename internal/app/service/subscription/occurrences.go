package subscription

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/haventherapy/booking/internal/app/service/schedule"
	models "github.com/haventherapy/booking/internal/models"
	"github.com/haventherapy/booking/internal/platform/notify"
	"github.com/haventherapy/booking/pkg/metrics"
	"github.com/haventherapy/booking/pkg/tool"
	"github.com/haventherapy/booking/pkg/types"
)

// materializeSlot expands one slot into count occurrences starting at from
// and persists them. Sequence indexes continue past the highest index the
// slot has ever minted (not the row count: rows are deleted when lapsed
// occurrences are dropped or a slot is edited), so derived ids never
// collide with surviving rows from earlier batches.
func (s *Service) materializeSlot(ctx context.Context, tx *gorm.DB, sub *models.RecurringSubscription, slot *models.WeeklyScheduleSlot, from time.Time, count int) ([]*models.SessionOccurrence, error) {
	if count <= 0 {
		return nil, nil
	}
	instants, err := schedule.NextOccurrences(slot, from, count)
	if err != nil {
		return nil, fmt.Errorf("failed to expand slot %s: %w", slot.ID, err)
	}

	var base int
	if err := tx.WithContext(ctx).Model(&models.SessionOccurrence{}).
		Where("slot_id = ?", slot.ID).
		Select("COALESCE(MAX(seq) + 1, 0)").
		Scan(&base).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve slot sequence: %w", err)
	}

	occs := lo.Map(instants, func(at time.Time, i int) *models.SessionOccurrence {
		occ := &models.SessionOccurrence{
			ID:              tool.OccurrenceID(slot.ID, base+i),
			Seq:             base + i,
			SubscriptionID:  sub.ID,
			SlotID:          slot.ID,
			ClientID:        sub.ClientID,
			Kind:            types.SessionKindStandard,
			ScheduledAt:     at.UTC(),
			DurationMinutes: types.SessionKindStandard.DurationMinutes(),
			Currency:        sub.Currency,
			Status:          types.OccurrenceStatusScheduled,
		}
		occ.AmountDueCents = s.engine.AmountFor(occ, sub)
		occ.ChargeTriggerAt = s.engine.ChargeTrigger(occ)
		return occ
	})

	if err := tx.WithContext(ctx).Create(occs).Error; err != nil {
		return nil, fmt.Errorf("failed to create occurrences: %w", err)
	}
	metrics.OccurrencesMaterialized.Add(float64(len(occs)))
	return occs, nil
}

// refillSlot tops a slot back up to the configured look-ahead, expanding
// from its latest still-scheduled instant so existing occurrences keep
// their dates.
func (s *Service) refillSlot(ctx context.Context, tx *gorm.DB, sub *models.RecurringSubscription, slot *models.WeeklyScheduleSlot, now time.Time) error {
	var existing []*models.SessionOccurrence
	if err := tx.WithContext(ctx).
		Where("slot_id = ? AND status = ? AND scheduled_at > ?", slot.ID, types.OccurrenceStatusScheduled, now).
		Order("scheduled_at").
		Find(&existing).Error; err != nil {
		return fmt.Errorf("failed to load slot occurrences: %w", err)
	}

	missing := s.cfg.Billing.LookaheadOccurrences - len(existing)
	if missing <= 0 {
		return nil
	}
	from := now
	if len(existing) > 0 {
		from = existing[len(existing)-1].ScheduledAt
	}
	_, err := s.materializeSlot(ctx, tx, sub, slot, from, missing)
	return err
}

// clearFutureOccurrences deletes a slot's not-yet-held scheduled
// occurrences; used when the slot itself is edited or removed.
func (s *Service) clearFutureOccurrences(ctx context.Context, tx *gorm.DB, slotID string, now time.Time) error {
	if err := tx.WithContext(ctx).
		Where("slot_id = ? AND status = ? AND scheduled_at > ?", slotID, types.OccurrenceStatusScheduled, now).
		Delete(&models.SessionOccurrence{}).Error; err != nil {
		return fmt.Errorf("failed to clear slot occurrences: %w", err)
	}
	return nil
}

// SlotPreview is what the wizard shows before confirmation.
type SlotPreview struct {
	SlotID   string      `json:"slot_id"`
	Display  string      `json:"display"`
	Upcoming []time.Time `json:"upcoming"`
}

// Preview expands every enabled slot without persisting anything, plus a
// merged timeline ordered by instant for the wizard's summary step.
func (s *Service) Preview(ctx context.Context, id string, count int) ([]SlotPreview, []time.Time, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if count <= 0 {
		count = s.cfg.Billing.LookaheadOccurrences
	}

	now := s.now()
	var previews []SlotPreview
	var merged []time.Time
	for _, slot := range sub.EnabledSlots() {
		instants, err := schedule.NextOccurrences(slot, now, count)
		if err != nil {
			return nil, nil, err
		}
		previews = append(previews, SlotPreview{
			SlotID:   slot.ID,
			Display:  schedule.FormatSlot(slot.TimeOfDay(), slot.Timezone, true),
			Upcoming: instants,
		})
		merged = append(merged, instants...)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Before(merged[j]) })
	return previews, merged, nil
}

// UpcomingOccurrences lists a subscription's future sessions totally
// ordered by scheduled instant, merged across slots.
func (s *Service) UpcomingOccurrences(ctx context.Context, id string) ([]*models.SessionOccurrence, error) {
	var occs []*models.SessionOccurrence
	err := s.db.WithContext(ctx).
		Where("subscription_id = ? AND status = ? AND scheduled_at > ?", id, types.OccurrenceStatusScheduled, s.now()).
		Order("scheduled_at").
		Find(&occs).Error
	return occs, err
}

// GetOccurrence loads one occurrence by id.
func (s *Service) GetOccurrence(ctx context.Context, id string) (*models.SessionOccurrence, error) {
	return getOccurrence(ctx, s.db, id)
}

// getOccurrence reads through the passed handle so callers inside a
// transaction see their own writes.
func getOccurrence(ctx context.Context, tx *gorm.DB, id string) (*models.SessionOccurrence, error) {
	var occ models.SessionOccurrence
	if err := tx.WithContext(ctx).First(&occ, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &occ, nil
}

// PreviewFee evaluates the late-action policy for an occurrence without
// mutating anything; the UI calls this before the confirm dialog.
func (s *Service) PreviewFee(ctx context.Context, occID string, action types.FeeAction) (*types.FeeDecision, error) {
	occ, err := s.GetOccurrence(ctx, occID)
	if err != nil {
		return nil, err
	}
	return s.engine.Decide(action, occ, s.now(), occ.Kind)
}

// CancelOccurrence is the client-initiated cancellation of one session.
// Fee liability follows the 24-hour policy; the decision is re-evaluated
// here rather than trusted from the UI.
func (s *Service) CancelOccurrence(ctx context.Context, occID string) (*types.FeeDecision, error) {
	var decision *types.FeeDecision
	var occ *models.SessionOccurrence

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		occ, err = getOccurrence(ctx, tx, occID)
		if err != nil {
			return err
		}
		if occ.Status != types.OccurrenceStatusScheduled {
			return &ValidationError{Precondition: "status", Detail: fmt.Sprintf("occurrence is %s", occ.Status)}
		}

		decision, err = s.engine.Decide(types.FeeActionCancel, occ, s.now(), occ.Kind)
		if err != nil {
			return err
		}

		occ.Status = types.OccurrenceStatusCancelled
		occ.Suspended = false
		occ.FeeCents = decision.FeeCents
		if err := tx.Save(occ).Error; err != nil {
			return fmt.Errorf("failed to cancel occurrence: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sink.Notify(ctx, notify.Event{
		Type:           notify.EventSessionCancelled,
		ClientID:       occ.ClientID,
		SubscriptionID: occ.SubscriptionID,
		OccurrenceID:   occ.ID,
		FeeCents:       decision.FeeCents,
	})
	return decision, nil
}

// RescheduleOccurrence moves one session to a new future instant. The
// original is retired (status rescheduled, fee per policy) and a
// replacement occurrence is created at the new time.
func (s *Service) RescheduleOccurrence(ctx context.Context, occID string, newAt time.Time, timezone string) (*models.SessionOccurrence, *types.FeeDecision, error) {
	var decision *types.FeeDecision
	var replacement *models.SessionOccurrence
	var occ *models.SessionOccurrence

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		occ, err = getOccurrence(ctx, tx, occID)
		if err != nil {
			return err
		}
		if occ.Status != types.OccurrenceStatusScheduled {
			return &ValidationError{Precondition: "status", Detail: fmt.Sprintf("occurrence is %s", occ.Status)}
		}

		now := s.now()
		if !newAt.After(now) {
			return &ValidationError{Precondition: "new_time", Detail: "new session time must be in the future"}
		}
		if err := s.validateBookable(newAt, timezone); err != nil {
			return err
		}

		decision, err = s.engine.Decide(types.FeeActionReschedule, occ, now, occ.Kind)
		if err != nil {
			return err
		}

		occ.Status = types.OccurrenceStatusRescheduled
		occ.Suspended = false
		occ.FeeCents = decision.FeeCents
		if err := tx.Save(occ).Error; err != nil {
			return fmt.Errorf("failed to retire occurrence: %w", err)
		}

		replacement = &models.SessionOccurrence{
			ID:                 tool.GenerateUUIDV7(),
			Seq:                occ.Seq,
			SubscriptionID:     occ.SubscriptionID,
			SlotID:             occ.SlotID,
			ClientID:           occ.ClientID,
			Kind:               occ.Kind,
			ScheduledAt:        newAt.UTC(),
			DurationMinutes:    occ.DurationMinutes,
			AmountDueCents:     occ.AmountDueCents,
			Currency:           occ.Currency,
			Status:             types.OccurrenceStatusScheduled,
			PaymentMethodToken: occ.PaymentMethodToken,
		}
		replacement.ChargeTriggerAt = s.engine.ChargeTrigger(replacement)
		if err := tx.Create(replacement).Error; err != nil {
			return fmt.Errorf("failed to create replacement occurrence: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.sink.Notify(ctx, notify.Event{
		Type:           notify.EventSessionRescheduled,
		ClientID:       occ.ClientID,
		SubscriptionID: occ.SubscriptionID,
		OccurrenceID:   occ.ID,
		FeeCents:       decision.FeeCents,
	})
	return replacement, decision, nil
}

// BookOneOff books a standalone (non-subscription) session at the
// standalone rate, or a free 15-minute trial.
func (s *Service) BookOneOff(ctx context.Context, clientID string, kind types.SessionKind, at time.Time, timezone, paymentToken string) (*models.SessionOccurrence, error) {
	if clientID == "" {
		return nil, &ValidationError{Precondition: "client_id", Detail: "required"}
	}
	if kind != types.SessionKindTrial && paymentToken == "" {
		return nil, &ValidationError{Precondition: "payment_method", Detail: "empty token"}
	}
	if !at.After(s.now()) {
		return nil, &ValidationError{Precondition: "time", Detail: "session time must be in the future"}
	}
	if err := s.validateBookable(at, timezone); err != nil {
		return nil, err
	}

	occ := &models.SessionOccurrence{
		ID:                 tool.GenerateUUIDV7(),
		ClientID:           clientID,
		Kind:               kind,
		ScheduledAt:        at.UTC(),
		DurationMinutes:    kind.DurationMinutes(),
		Currency:           s.cfg.Pricing.Currency,
		Status:             types.OccurrenceStatusScheduled,
		PaymentMethodToken: paymentToken,
	}
	occ.AmountDueCents = s.engine.AmountFor(occ, nil)
	occ.ChargeTriggerAt = s.engine.ChargeTrigger(occ)

	if err := s.db.WithContext(ctx).Create(occ).Error; err != nil {
		return nil, fmt.Errorf("failed to book session: %w", err)
	}
	return occ, nil
}

// validateBookable checks that an instant lands on the practice's bookable
// grid in the given timezone (UTC when empty).
func (s *Service) validateBookable(at time.Time, timezone string) error {
	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return &ValidationError{Precondition: "timezone", Detail: fmt.Sprintf("unknown timezone %q", timezone)}
		}
		loc = l
	}
	local := at.In(loc)
	tod := types.TimeOfDay{Hour: local.Hour(), Minute: local.Minute()}
	if !s.cfg.Booking.Bookable(tod) {
		return &ValidationError{Precondition: "time", Detail: fmt.Sprintf("%s is not a bookable time", tod)}
	}
	return nil
}
