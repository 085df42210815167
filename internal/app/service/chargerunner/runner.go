// Package chargerunner is the background billing job. It polls for
// occurrences whose charge trigger has passed and executes the charge
// against the payment gateway.
package chargerunner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	models "github.com/haventherapy/booking/internal/models"
	"github.com/haventherapy/booking/internal/platform/notify"
	"github.com/haventherapy/booking/internal/platform/payment"
	"github.com/haventherapy/booking/pkg/config"
	"github.com/haventherapy/booking/pkg/metrics"
	"github.com/haventherapy/booking/pkg/tool"
	"github.com/haventherapy/booking/pkg/types"
)

// batchSize bounds how many due occurrences one tick processes.
const batchSize = 100

type Runner struct {
	cfg     *config.Config
	db      *gorm.DB
	log     *zap.SugaredLogger
	gateway payment.Gateway
	sink    notify.Sink

	// now is swappable in tests; defaults to time.Now.
	now func() time.Time
}

func NewRunner(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, gateway payment.Gateway, sink notify.Sink) *Runner {
	return &Runner{cfg: cfg, db: db, log: log, gateway: gateway, sink: sink, now: time.Now}
}

// Run polls on the configured interval until the context is cancelled.
func (r *Runner) Run(ctx context.Context) {
	interval := r.cfg.Billing.ChargeInterval()
	r.log.Infow("charge runner started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("charge runner stopped")
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.log.Errorw("charge tick failed", "error", err)
			}
		}
	}
}

// RunOnce processes one batch of due charges and returns how many
// occurrences it attempted. Declined and errored charges stay unbilled, so
// a later tick picks them up again.
func (r *Runner) RunOnce(ctx context.Context) (int, error) {
	now := r.now()

	var due []*models.SessionOccurrence
	err := r.db.WithContext(ctx).
		Where("status = ? AND suspended = ? AND billed_at IS NULL AND charge_trigger_at <= ?",
			types.OccurrenceStatusScheduled, false, now).
		Order("charge_trigger_at").
		Limit(batchSize).
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load due occurrences: %w", err)
	}

	for _, occ := range due {
		if err := r.chargeOne(ctx, occ); err != nil {
			r.log.Errorw("charge attempt failed",
				"occurrence_id", occ.ID,
				"client_id", occ.ClientID,
				"error", err,
			)
		}
	}
	return len(due), nil
}

func (r *Runner) chargeOne(ctx context.Context, occ *models.SessionOccurrence) error {
	// Trials and other zero-amount sessions are settled without touching
	// the gateway.
	if occ.AmountDueCents == 0 {
		return r.markBilled(ctx, occ)
	}

	token, err := r.tokenFor(ctx, occ)
	if err != nil {
		return err
	}
	if token == "" {
		// Nothing to charge against. Left unbilled so it retries once a
		// payment method lands.
		return fmt.Errorf("occurrence %s has no payment method", occ.ID)
	}

	result, chargeErr := r.gateway.Charge(ctx, token, occ.AmountDueCents, occ.Currency, occ.ID)
	if chargeErr != nil {
		result = payment.ResultErrored
	}
	metrics.ChargeAttempts.WithLabelValues(string(result)).Inc()

	entry := &models.ChargeLog{
		ID:           tool.GenerateUUIDV7(),
		OccurrenceID: occ.ID,
		ClientID:     occ.ClientID,
		AmountCents:  occ.AmountDueCents,
		Currency:     occ.Currency,
		Result:       models.ChargeResult(result),
		Occurrence:   datatypes.NewJSONType(occ),
	}
	if chargeErr != nil {
		entry.Detail = chargeErr.Error()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write charge log: %w", err)
	}

	switch result {
	case payment.ResultSucceeded:
		if err := r.markBilled(ctx, occ); err != nil {
			return err
		}
		r.sink.Notify(ctx, notify.Event{
			Type:           notify.EventChargeSucceeded,
			ClientID:       occ.ClientID,
			SubscriptionID: occ.SubscriptionID,
			OccurrenceID:   occ.ID,
			AmountCents:    occ.AmountDueCents,
		})
		return nil
	case payment.ResultDeclined:
		r.sink.Notify(ctx, notify.Event{
			Type:           notify.EventChargeDeclined,
			ClientID:       occ.ClientID,
			SubscriptionID: occ.SubscriptionID,
			OccurrenceID:   occ.ID,
			AmountCents:    occ.AmountDueCents,
		})
		return nil
	default:
		return chargeErr
	}
}

// tokenFor resolves the payment method: the subscription's card on file for
// recurring occurrences, the token captured at booking for one-offs.
func (r *Runner) tokenFor(ctx context.Context, occ *models.SessionOccurrence) (string, error) {
	if !occ.Recurring() {
		return occ.PaymentMethodToken, nil
	}

	var sub models.RecurringSubscription
	if err := r.db.WithContext(ctx).First(&sub, "id = ?", occ.SubscriptionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("occurrence %s references missing subscription %s", occ.ID, occ.SubscriptionID)
		}
		return "", fmt.Errorf("failed to load subscription: %w", err)
	}
	if !sub.Billable() {
		return "", fmt.Errorf("subscription %s is %s, skipping charge", sub.ID, sub.State)
	}
	return sub.PaymentMethodToken, nil
}

func (r *Runner) markBilled(ctx context.Context, occ *models.SessionOccurrence) error {
	now := r.now()
	occ.BilledAt = &now
	if err := r.db.WithContext(ctx).Model(occ).Update("billed_at", now).Error; err != nil {
		return fmt.Errorf("failed to stamp billed_at: %w", err)
	}
	return nil
}
