package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/haventherapy/booking/internal/app/service/schedule"
	models "github.com/haventherapy/booking/internal/models"
	"github.com/haventherapy/booking/internal/platform/notify"
	"github.com/haventherapy/booking/pkg/logctx"
	"github.com/haventherapy/booking/pkg/tool"
	"github.com/haventherapy/booking/pkg/types"
)

// CreateDraft starts a new subscription in the wizard.
func (s *Service) CreateDraft(ctx context.Context, clientID string) (*models.RecurringSubscription, error) {
	if clientID == "" {
		return nil, &ValidationError{Precondition: "client_id", Detail: "required"}
	}
	sub := &models.RecurringSubscription{
		ID:                   tool.GenerateUUIDV7(),
		ClientID:             clientID,
		State:                types.SubscriptionStateDraft,
		PricePerSessionCents: s.cfg.Pricing.RecurringRateCents,
		Currency:             s.cfg.Pricing.Currency,
	}
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, fmt.Errorf("failed to create draft subscription: %w", err)
	}
	return sub, nil
}

// Get loads a subscription with its slots.
func (s *Service) Get(ctx context.Context, id string) (*models.RecurringSubscription, error) {
	var sub models.RecurringSubscription
	if err := s.db.WithContext(ctx).Preload("Slots").First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// AcknowledgeTerms records the client's fee-policy acknowledgement, an
// activation precondition.
func (s *Service) AcknowledgeTerms(ctx context.Context, id string) error {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sub.State != types.SubscriptionStateDraft {
		return &ValidationError{Precondition: "state", Detail: "terms are acknowledged during setup"}
	}
	now := s.now()
	sub.TermsAckedAt = &now
	return s.db.WithContext(ctx).Save(sub).Error
}

// SetPaymentMethod stores the processor token for the card on file.
func (s *Service) SetPaymentMethod(ctx context.Context, id, token string) error {
	if token == "" {
		return &ValidationError{Precondition: "payment_method", Detail: "empty token"}
	}
	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sub.State.Terminal() {
		return &ValidationError{Precondition: "state", Detail: "subscription is cancelled"}
	}
	sub.PaymentMethodToken = token
	return s.db.WithContext(ctx).Save(sub).Error
}

// checkActivationPreconditions verifies everything the wizard must have
// completed before a draft may go active. It only inspects the loaded
// subscription, so a failure leaves nothing to roll back.
func checkActivationPreconditions(sub *models.RecurringSubscription) error {
	if sub.State != types.SubscriptionStateDraft {
		return &ValidationError{Precondition: "state", Detail: fmt.Sprintf("cannot activate from %s", sub.State)}
	}
	if len(sub.EnabledSlots()) == 0 {
		return &ValidationError{Precondition: "slots", Detail: "at least one enabled weekly slot is required"}
	}
	if pairs := schedule.FindConflicts(sub.Slots); len(pairs) > 0 {
		return &ConflictError{Pairs: pairs}
	}
	if sub.TermsAckedAt == nil {
		return &ValidationError{Precondition: "terms", Detail: "fee policy not acknowledged"}
	}
	if sub.PaymentMethodToken == "" {
		return &ValidationError{Precondition: "payment_method", Detail: "no payment method on file"}
	}
	return nil
}

// Activate transitions draft -> active after verifying every setup
// precondition, then materializes the first batch of occurrences for each
// enabled slot. A failed precondition leaves the draft untouched.
func (s *Service) Activate(ctx context.Context, id string) (*models.RecurringSubscription, error) {
	var sub *models.RecurringSubscription

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sub, err = s.getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := checkActivationPreconditions(sub); err != nil {
			return err
		}

		before := snapshot(sub)
		sub.State = types.SubscriptionStateActive
		if err := tx.Save(sub).Error; err != nil {
			return fmt.Errorf("failed to activate subscription: %w", err)
		}

		now := s.now()
		for _, slot := range sub.EnabledSlots() {
			if _, err := s.materializeSlot(ctx, tx, sub, slot, now, s.cfg.Billing.LookaheadOccurrences); err != nil {
				return err
			}
		}

		return s.writeLog(ctx, tx, sub, before, models.SubscriptionChangeReasonActivate)
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("subscription activated", "subscription_id", sub.ID, "client_id", sub.ClientID)
	s.sink.Notify(ctx, notify.Event{
		Type:           notify.EventSubscriptionActivated,
		ClientID:       sub.ClientID,
		SubscriptionID: sub.ID,
	})
	return sub, nil
}

// Pause suspends an active subscription. Future occurrences stay on the
// books but are excluded from charge-trigger evaluation until resumed.
func (s *Service) Pause(ctx context.Context, id, reason string, until *time.Time) error {
	var sub *models.RecurringSubscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sub, err = s.getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if sub.State != types.SubscriptionStateActive {
			return &ValidationError{Precondition: "state", Detail: fmt.Sprintf("cannot pause from %s", sub.State)}
		}

		before := snapshot(sub)
		sub.State = types.SubscriptionStatePaused
		if reason != "" {
			sub.PausedReason = &reason
		}
		sub.PausedUntil = until
		if err := tx.Save(sub).Error; err != nil {
			return fmt.Errorf("failed to pause subscription: %w", err)
		}

		now := s.now()
		if err := tx.Model(&models.SessionOccurrence{}).
			Where("subscription_id = ? AND status = ? AND scheduled_at > ?", sub.ID, types.OccurrenceStatusScheduled, now).
			Update("suspended", true).Error; err != nil {
			return fmt.Errorf("failed to suspend occurrences: %w", err)
		}

		return s.writeLog(ctx, tx, sub, before, models.SubscriptionChangeReasonPause)
	})
	if err != nil {
		return err
	}

	s.sink.Notify(ctx, notify.Event{Type: notify.EventSubscriptionPaused, ClientID: sub.ClientID, SubscriptionID: sub.ID})
	return nil
}

// Resume reactivates a paused subscription. Still-future occurrences are
// unsuspended unchanged; occurrences that lapsed into the past while paused
// are dropped and the slot's look-ahead window is refilled from now.
func (s *Service) Resume(ctx context.Context, id string) error {
	var sub *models.RecurringSubscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sub, err = s.getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if sub.State != types.SubscriptionStatePaused {
			return &ValidationError{Precondition: "state", Detail: fmt.Sprintf("cannot resume from %s", sub.State)}
		}

		before := snapshot(sub)
		sub.State = types.SubscriptionStateActive
		sub.PausedReason = nil
		sub.PausedUntil = nil
		if err := tx.Save(sub).Error; err != nil {
			return fmt.Errorf("failed to resume subscription: %w", err)
		}

		now := s.now()
		if err := tx.Model(&models.SessionOccurrence{}).
			Where("subscription_id = ? AND status = ? AND scheduled_at > ?", sub.ID, types.OccurrenceStatusScheduled, now).
			Update("suspended", false).Error; err != nil {
			return fmt.Errorf("failed to unsuspend occurrences: %w", err)
		}
		// Lapsed-while-paused occurrences were never held nor billed; they
		// are deleted, then each slot is topped back up to the look-ahead.
		if err := tx.Where("subscription_id = ? AND status = ? AND suspended = ? AND scheduled_at <= ?",
			sub.ID, types.OccurrenceStatusScheduled, true, now).
			Delete(&models.SessionOccurrence{}).Error; err != nil {
			return fmt.Errorf("failed to drop lapsed occurrences: %w", err)
		}
		for _, slot := range sub.EnabledSlots() {
			if err := s.refillSlot(ctx, tx, sub, slot, now); err != nil {
				return err
			}
		}

		return s.writeLog(ctx, tx, sub, before, models.SubscriptionChangeReasonResume)
	})
	if err != nil {
		return err
	}

	s.sink.Notify(ctx, notify.Event{Type: notify.EventSubscriptionResumed, ClientID: sub.ClientID, SubscriptionID: sub.ID})
	return nil
}

// Cancel terminally closes a subscription from any non-terminal state.
// Future occurrences are cancelled administratively, with no fee.
func (s *Service) Cancel(ctx context.Context, id string) error {
	var sub *models.RecurringSubscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sub, err = s.getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if sub.State.Terminal() {
			return &ValidationError{Precondition: "state", Detail: "subscription is already cancelled"}
		}

		before := snapshot(sub)
		sub.State = types.SubscriptionStateCancelled
		sub.PausedReason = nil
		sub.PausedUntil = nil
		if err := tx.Save(sub).Error; err != nil {
			return fmt.Errorf("failed to cancel subscription: %w", err)
		}

		if err := tx.Model(&models.SessionOccurrence{}).
			Where("subscription_id = ? AND status = ? AND scheduled_at > ?", sub.ID, types.OccurrenceStatusScheduled, s.now()).
			Updates(map[string]any{"status": types.OccurrenceStatusCancelled, "suspended": false}).Error; err != nil {
			return fmt.Errorf("failed to cancel occurrences: %w", err)
		}

		return s.writeLog(ctx, tx, sub, before, models.SubscriptionChangeReasonCancel)
	})
	if err != nil {
		return err
	}

	s.sink.Notify(ctx, notify.Event{Type: notify.EventSubscriptionCancelled, ClientID: sub.ClientID, SubscriptionID: sub.ID})
	return nil
}

func (s *Service) getForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.RecurringSubscription, error) {
	var sub models.RecurringSubscription
	if err := tx.WithContext(ctx).Preload("Slots").First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

func snapshot(sub *models.RecurringSubscription) *models.RecurringSubscription {
	cp := *sub
	cp.Slots = nil
	return &cp
}

func (s *Service) writeLog(ctx context.Context, tx *gorm.DB, after, before *models.RecurringSubscription, reason models.SubscriptionChangeReason) error {
	entry := &models.SubscriptionLog{
		ID:       tool.GenerateUUIDV7(),
		ClientID: after.ClientID,
		Reason:   reason,
		Before:   datatypes.NewJSONType(before),
		After:    datatypes.NewJSONType(snapshot(after)),
		Extra:    datatypes.JSONMap{},
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write subscription log: %w", err)
	}
	return nil
}
