package models

import (
	"time"

	"gorm.io/datatypes"
)

type SubscriptionChangeReason string

const (
	SubscriptionChangeReasonActivate   SubscriptionChangeReason = "activate"
	SubscriptionChangeReasonPause      SubscriptionChangeReason = "pause"
	SubscriptionChangeReasonResume     SubscriptionChangeReason = "resume"
	SubscriptionChangeReasonCancel     SubscriptionChangeReason = "cancel"
	SubscriptionChangeReasonSlotChange SubscriptionChangeReason = "slot_change"
)

// SubscriptionLog snapshots a subscription before and after a state change.
type SubscriptionLog struct {
	ID        string                                     `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ClientID  string                                     `gorm:"column:client_id;type:varchar(64);not null;index" json:"client_id"`
	Reason    SubscriptionChangeReason                   `gorm:"column:reason;type:varchar(32);not null" json:"reason"`
	Before    datatypes.JSONType[*RecurringSubscription] `gorm:"column:before;type:jsonb" json:"before"`
	After     datatypes.JSONType[*RecurringSubscription] `gorm:"column:after;type:jsonb" json:"after"`
	Extra     datatypes.JSONMap                          `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time                                  `json:"created_at"`
}

func (SubscriptionLog) TableName() string {
	return "subscription_log"
}

// ChargeResult mirrors the payment gateway outcome taxonomy.
type ChargeResult string

const (
	ChargeResultSucceeded ChargeResult = "succeeded"
	ChargeResultDeclined  ChargeResult = "declined"
	ChargeResultErrored   ChargeResult = "errored"
)

// ChargeLog records one gateway charge attempt for an occurrence.
type ChargeLog struct {
	ID           string                                 `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OccurrenceID string                                 `gorm:"column:occurrence_id;type:varchar(80);not null;index" json:"occurrence_id"`
	ClientID     string                                 `gorm:"column:client_id;type:varchar(64);not null;index" json:"client_id"`
	AmountCents  int64                                  `gorm:"column:amount_cents;type:bigint;not null" json:"amount_cents"`
	Currency     string                                 `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Result       ChargeResult                           `gorm:"column:result;type:varchar(16);not null" json:"result"`
	Detail       string                                 `gorm:"column:detail;type:varchar(255)" json:"detail,omitempty"`
	Occurrence   datatypes.JSONType[*SessionOccurrence] `gorm:"column:occurrence;type:jsonb" json:"occurrence"`
	CreatedAt    time.Time                              `json:"created_at"`
}

func (ChargeLog) TableName() string {
	return "charge_log"
}
