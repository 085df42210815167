package models

import (
	"time"

	"github.com/haventherapy/booking/pkg/types"
)

// WeeklyScheduleSlot is a client-chosen recurring booking preference:
// a (day-of-week, time-of-day) pair interpreted in the client's timezone.
type WeeklyScheduleSlot struct {
	ID             string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SubscriptionID string `gorm:"column:subscription_id;type:uuid;not null;index" json:"subscription_id"`
	// DayOfWeek follows time.Weekday numbering: 0=Sunday .. 6=Saturday.
	DayOfWeek int `gorm:"column:day_of_week;type:smallint;not null" json:"day_of_week"`
	Hour      int `gorm:"column:hour;type:smallint;not null" json:"hour"`
	Minute    int `gorm:"column:minute;type:smallint;not null" json:"minute"`
	// Timezone is the IANA identifier captured from the client's environment
	// at creation time. TimezoneFallback marks slots whose zone could not be
	// resolved and defaulted to UTC, pending user confirmation.
	Timezone         string    `gorm:"column:timezone;type:varchar(64);not null" json:"timezone"`
	TimezoneFallback bool      `gorm:"column:timezone_fallback;not null;default:false" json:"timezone_fallback"`
	Enabled          bool      `gorm:"column:enabled;not null;default:true" json:"enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (WeeklyScheduleSlot) TableName() string {
	return "weekly_schedule_slot"
}

func (s *WeeklyScheduleSlot) TimeOfDay() types.TimeOfDay {
	return types.TimeOfDay{Hour: s.Hour, Minute: s.Minute}
}

// SameWallClock reports whether two slots occupy the same weekly position.
func (s *WeeklyScheduleSlot) SameWallClock(o *WeeklyScheduleSlot) bool {
	return s.DayOfWeek == o.DayOfWeek && s.Hour == o.Hour && s.Minute == o.Minute
}
