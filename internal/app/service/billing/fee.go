// Package billing owns the money-side policy of the scheduling engine:
// when a session's charge fires, how much is owed, and whether a
// cancel/reschedule request is fee-bearing. All methods are pure
// computations over the values passed in; executing charges is the
// payment gateway's job.
package billing

import (
	"errors"
	"time"

	models "github.com/haventherapy/booking/internal/models"
	"github.com/haventherapy/booking/pkg/config"
	"github.com/haventherapy/booking/pkg/types"
)

// ErrPastSession is returned when a fee decision or mutation is requested
// for an occurrence whose scheduled instant has already passed. The UI
// should never route such requests here; this is the defensive backstop.
var ErrPastSession = errors.New("session has already started or passed")

// Engine evaluates the practice's billing and late-action policy.
type Engine struct {
	pricing config.PricingConfig
	billing config.BillingConfig
}

func NewEngine(cfg *config.Config) *Engine {
	return &Engine{pricing: cfg.Pricing, billing: cfg.Billing}
}

// Decide classifies a cancel/reschedule request against the fee threshold.
//
// The boundary is inclusive on the free side: exactly threshold hours out
// is fee-free, anything closer bears the fee. Trial sessions are always
// exempt. Decide never mutates anything and is safe to evaluate repeatedly.
func (e *Engine) Decide(action types.FeeAction, occ *models.SessionOccurrence, now time.Time, kind types.SessionKind) (*types.FeeDecision, error) {
	until := occ.ScheduledAt.Sub(now)
	if until <= 0 {
		return nil, ErrPastSession
	}

	d := &types.FeeDecision{
		Action:            action,
		HoursUntilSession: until.Hours(),
		FeeApplies:        until < e.billing.FeeThreshold() && kind != types.SessionKindTrial,
		Currency:          e.pricing.Currency,
	}
	if d.FeeApplies {
		d.FeeCents = e.pricing.LateFeeCents
	}
	return d, nil
}
