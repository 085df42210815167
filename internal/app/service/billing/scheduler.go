package billing

import (
	"time"

	models "github.com/haventherapy/booking/internal/models"
	"github.com/haventherapy/booking/pkg/types"
)

// ChargeTrigger returns the instant at which the occurrence's charge fires:
// the scheduled instant minus the configured lead time.
func (e *Engine) ChargeTrigger(occ *models.SessionOccurrence) time.Time {
	return occ.ScheduledAt.Add(-e.billing.LeadTime())
}

// IsChargeDue reports whether the charge should fire now. Only occurrences
// still scheduled (not cancelled, rescheduled, or completed) are chargeable;
// suspension while paused is enforced by the caller's query, not here.
func (e *Engine) IsChargeDue(occ *models.SessionOccurrence, now time.Time) bool {
	if occ.Status != types.OccurrenceStatusScheduled {
		return false
	}
	return !now.Before(e.ChargeTrigger(occ))
}

// AmountFor returns the cents owed for an occurrence: the subscription's
// locked-in recurring rate when it belongs to one, otherwise the standalone
// rate. Trial sessions are free either way.
func (e *Engine) AmountFor(occ *models.SessionOccurrence, sub *models.RecurringSubscription) int64 {
	if occ.Kind == types.SessionKindTrial {
		return 0
	}
	if occ.Recurring() && sub != nil {
		return sub.PricePerSessionCents
	}
	return e.pricing.StandaloneRateCents
}

// LeadTime exposes the configured billing lead time.
func (e *Engine) LeadTime() time.Duration {
	return e.billing.LeadTime()
}
