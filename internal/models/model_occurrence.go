package models

import (
	"time"

	"github.com/haventherapy/booking/pkg/types"
)

// SessionOccurrence is one concrete, dated instance of a weekly slot (or a
// one-off booking, in which case SubscriptionID and SlotID are empty).
type SessionOccurrence struct {
	// ID is derived from (slot id, sequence index) for recurring occurrences
	// so re-materialization is stable; one-off bookings get a fresh uuid.
	ID             string `gorm:"column:id;type:varchar(80);primary_key" json:"id"`
	SubscriptionID string `gorm:"column:subscription_id;type:uuid;index;default:null" json:"subscription_id,omitempty"`
	SlotID         string `gorm:"column:slot_id;type:uuid;index;default:null" json:"slot_id,omitempty"`
	// Seq is the slot-local sequence index the ID is derived from. It is
	// persisted so later batches continue past the highest index ever
	// minted, even after earlier rows are deleted.
	Seq      int               `gorm:"column:seq;not null;default:0" json:"seq"`
	ClientID string            `gorm:"column:client_id;type:varchar(64);not null;index" json:"client_id"`
	Kind     types.SessionKind `gorm:"column:kind;type:varchar(16);not null" json:"kind"`
	// ScheduledAt is the absolute session instant, stored in UTC.
	ScheduledAt     time.Time              `gorm:"column:scheduled_at;not null;index" json:"scheduled_at"`
	DurationMinutes int                    `gorm:"column:duration_minutes;type:smallint;not null" json:"duration_minutes"`
	AmountDueCents  int64                  `gorm:"column:amount_due_cents;type:bigint;not null" json:"amount_due_cents"`
	Currency        string                 `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Status          types.OccurrenceStatus `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	// Suspended is set while the owning subscription is paused; suspended
	// occurrences are skipped by the charge runner but keep their status.
	Suspended bool `gorm:"column:suspended;not null;default:false" json:"suspended"`
	// ChargeTriggerAt = ScheduledAt minus the billing lead time.
	ChargeTriggerAt time.Time `gorm:"column:charge_trigger_at;not null;index" json:"charge_trigger_at"`
	// BilledAt is stamped after a successful gateway charge.
	BilledAt *time.Time `gorm:"column:billed_at;default:null" json:"billed_at,omitempty"`
	// PaymentMethodToken is set on one-off bookings; recurring occurrences
	// charge against the subscription's card on file.
	PaymentMethodToken string `gorm:"column:payment_method_token;type:varchar(128)" json:"-"`
	// FeeCents records a late cancel/reschedule fee assessed on this occurrence.
	FeeCents  int64     `gorm:"column:fee_cents;type:bigint;not null;default:0" json:"fee_cents"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SessionOccurrence) TableName() string {
	return "session_occurrence"
}

// Upcoming reports whether the session is still scheduled and in the future.
func (o *SessionOccurrence) Upcoming(now time.Time) bool {
	return o != nil && o.Status == types.OccurrenceStatusScheduled && o.ScheduledAt.After(now)
}

// Recurring reports whether the occurrence came from a subscription slot.
func (o *SessionOccurrence) Recurring() bool {
	return o != nil && o.SubscriptionID != ""
}
