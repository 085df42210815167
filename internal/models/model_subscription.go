package models

import (
	"time"

	"github.com/haventherapy/booking/pkg/types"
)

// RecurringSubscription is a client's weekly-sessions plan. State moves
// draft -> active <-> paused, with cancelled terminal from any state.
type RecurringSubscription struct {
	ID       string                  `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ClientID string                  `gorm:"column:client_id;type:varchar(64);not null;index" json:"client_id"`
	State    types.SubscriptionState `gorm:"column:state;type:varchar(32);not null" json:"state"`
	// PricePerSessionCents is fixed at creation: the discounted recurring rate.
	PricePerSessionCents int64  `gorm:"column:price_per_session_cents;type:bigint;not null" json:"price_per_session_cents"`
	Currency             string `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	// PaymentMethodToken references a card on file with the payment processor.
	PaymentMethodToken string `gorm:"column:payment_method_token;type:varchar(128)" json:"-"`
	// TermsAckedAt is set when the client acknowledges the fee policy.
	TermsAckedAt *time.Time `gorm:"column:terms_acked_at;default:null" json:"terms_acked_at"`
	// PausedReason/PausedUntil are present only while State is paused.
	PausedReason *string    `gorm:"column:paused_reason;type:varchar(255);default:null" json:"paused_reason,omitempty"`
	PausedUntil  *time.Time `gorm:"column:paused_until;default:null" json:"paused_until,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Slots []*WeeklyScheduleSlot `gorm:"foreignKey:SubscriptionID" json:"slots,omitempty"`
}

func (RecurringSubscription) TableName() string {
	return "recurring_subscription"
}

// EnabledSlots returns the slots that participate in materialization.
func (s *RecurringSubscription) EnabledSlots() []*WeeklyScheduleSlot {
	var out []*WeeklyScheduleSlot
	for _, slot := range s.Slots {
		if slot.Enabled {
			out = append(out, slot)
		}
	}
	return out
}

// Billable reports whether occurrences of this subscription may be charged.
func (s *RecurringSubscription) Billable() bool {
	return s != nil && s.State == types.SubscriptionStateActive
}
