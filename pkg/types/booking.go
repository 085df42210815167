package types

import "fmt"

type SubscriptionState string

const (
	SubscriptionStateDraft     SubscriptionState = "draft"
	SubscriptionStateActive    SubscriptionState = "active"
	SubscriptionStatePaused    SubscriptionState = "paused"
	SubscriptionStateCancelled SubscriptionState = "cancelled"
)

// Terminal reports whether no further transitions are allowed from the state.
func (s SubscriptionState) Terminal() bool {
	return s == SubscriptionStateCancelled
}

type OccurrenceStatus string

const (
	OccurrenceStatusScheduled   OccurrenceStatus = "scheduled"
	OccurrenceStatusCompleted   OccurrenceStatus = "completed"
	OccurrenceStatusCancelled   OccurrenceStatus = "cancelled"
	OccurrenceStatusRescheduled OccurrenceStatus = "rescheduled"
)

type SessionKind string

const (
	SessionKindStandard SessionKind = "standard"
	SessionKindTrial    SessionKind = "trial"
)

// DurationMinutes returns the fixed session length for the kind.
func (k SessionKind) DurationMinutes() int {
	if k == SessionKindTrial {
		return 15
	}
	return 60
}

type FeeAction string

const (
	FeeActionCancel     FeeAction = "cancel"
	FeeActionReschedule FeeAction = "reschedule"
)

// FeeDecision is the outcome of evaluating a cancel/reschedule request
// against the late-action policy. It is computed, never persisted.
type FeeDecision struct {
	Action            FeeAction `json:"action"`
	HoursUntilSession float64   `json:"hours_until_session"`
	FeeApplies        bool      `json:"fee_applies"`
	FeeCents          int64     `json:"fee_cents"`
	Currency          string    `json:"currency"`
}

// TimeOfDay is a wall-clock time interpreted in a slot's own timezone.
type TimeOfDay struct {
	Hour   int `json:"hour" mapstructure:"hour"`
	Minute int `json:"minute" mapstructure:"minute"`
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Before reports whether t is earlier in the day than o.
func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Hour < o.Hour || (t.Hour == o.Hour && t.Minute < o.Minute)
}
