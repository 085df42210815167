// Package notify carries structured scheduling events out of the core.
// Presentation (toasts, emails) is owned by consumers of the sink.
package notify

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type EventType string

const (
	EventSubscriptionActivated EventType = "subscription_activated"
	EventSubscriptionPaused    EventType = "subscription_paused"
	EventSubscriptionResumed   EventType = "subscription_resumed"
	EventSubscriptionCancelled EventType = "subscription_cancelled"
	EventSessionCancelled      EventType = "session_cancelled"
	EventSessionRescheduled    EventType = "session_rescheduled"
	EventChargeSucceeded       EventType = "charge_succeeded"
	EventChargeDeclined        EventType = "charge_declined"
)

// Event is a structured notification; FeeCents is set only for fee-bearing
// session events.
type Event struct {
	Type           EventType `json:"type"`
	ClientID       string    `json:"client_id"`
	SubscriptionID string    `json:"subscription_id,omitempty"`
	OccurrenceID   string    `json:"occurrence_id,omitempty"`
	FeeCents       int64     `json:"fee_cents,omitempty"`
	AmountCents    int64     `json:"amount_cents,omitempty"`
}

// Sink receives events for delivery. Implementations must not block the
// caller on downstream delivery.
type Sink interface {
	Notify(ctx context.Context, e Event)
}

// LogSink writes events to the structured log. It stands in for the real
// email/toast pipeline, which consumes the same event shape.
type LogSink struct {
	log *zap.SugaredLogger
}

func NewLogSink(log *zap.SugaredLogger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Notify(_ context.Context, e Event) {
	s.log.Infow("notification",
		"type", e.Type,
		"client_id", e.ClientID,
		"subscription_id", e.SubscriptionID,
		"occurrence_id", e.OccurrenceID,
		"fee_cents", e.FeeCents,
		"amount_cents", e.AmountCents,
	)
}

func newSink(log *zap.SugaredLogger) Sink {
	return NewLogSink(log)
}

var Module = fx.Options(
	fx.Provide(newSink),
)
