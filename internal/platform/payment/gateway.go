// Package payment defines the boundary to the card processor. The core
// only decides when and how much to charge; executing the charge and
// handling processor-side state belongs behind this interface.
package payment

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/haventherapy/booking/pkg/config"
)

type Result string

const (
	ResultSucceeded Result = "succeeded"
	ResultDeclined  Result = "declined"
	ResultErrored   Result = "errored"
)

// Gateway executes a charge against a stored payment method.
type Gateway interface {
	// Charge bills amountCents against the payment method token. A declined
	// card is a Result, not an error; errors mean the attempt itself failed
	// (network, processor outage) and may be retried.
	Charge(ctx context.Context, token string, amountCents int64, currency, occurrenceID string) (Result, error)
}

// DryRunGateway logs charges instead of executing them. It is the default
// wiring in dev; production swaps in a processor-backed implementation.
type DryRunGateway struct {
	log *zap.SugaredLogger
}

func NewDryRunGateway(log *zap.SugaredLogger) *DryRunGateway {
	return &DryRunGateway{log: log}
}

func (g *DryRunGateway) Charge(ctx context.Context, token string, amountCents int64, currency, occurrenceID string) (Result, error) {
	g.log.Infow("dry-run charge",
		"occurrence_id", occurrenceID,
		"amount_cents", amountCents,
		"currency", currency,
	)
	return ResultSucceeded, nil
}

func newGateway(cfg *config.Config, log *zap.SugaredLogger) Gateway {
	// Only the dry-run gateway ships in this repo; the processor integration
	// lives in its own service.
	return NewDryRunGateway(log)
}

var Module = fx.Options(
	fx.Provide(newGateway),
)
