package handlers

import (
	"github.com/haventherapy/booking/internal/app/service/ledger"
	"github.com/haventherapy/booking/internal/app/service/schedule"
	"github.com/haventherapy/booking/internal/app/service/statistics"
	models "github.com/haventherapy/booking/internal/models"
	"github.com/haventherapy/booking/pkg/response"
	"github.com/haventherapy/booking/pkg/types"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespSubscription wraps a subscription in the standard envelope.
type RespSubscription struct {
	Code    response.APIResponseCode     `json:"code"`
	Message string                       `json:"message"`
	Data    models.RecurringSubscription `json:"data"`
}

// RespSlot wraps a weekly slot in the standard envelope.
type RespSlot struct {
	Code    response.APIResponseCode  `json:"code"`
	Message string                    `json:"message"`
	Data    models.WeeklyScheduleSlot `json:"data"`
}

// RespConflicts wraps conflict pairs in the standard envelope.
type RespConflicts struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []schedule.ConflictPair  `json:"data"`
}

// RespPreview wraps the wizard preview in the standard envelope.
type RespPreview struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    PreviewResponse          `json:"data"`
}

// RespOccurrence wraps a single occurrence in the standard envelope.
type RespOccurrence struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.SessionOccurrence `json:"data"`
}

// RespOccurrences wraps an occurrence list in the standard envelope.
type RespOccurrences struct {
	Code    response.APIResponseCode   `json:"code"`
	Message string                     `json:"message"`
	Data    []models.SessionOccurrence `json:"data"`
}

// RespFeeDecision wraps a fee-policy decision in the standard envelope.
type RespFeeDecision struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    types.FeeDecision        `json:"data"`
}

// RespReschedule wraps the reschedule result in the standard envelope.
type RespReschedule struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    RescheduleResponse       `json:"data"`
}

// RespListOccurrences wraps the admin listing in the standard envelope.
type RespListOccurrences struct {
	Code    response.APIResponseCode       `json:"code"`
	Message string                         `json:"message"`
	Data    ledger.ScanOccurrencesResponse `json:"data"`
}

// RespChargeLogs wraps a charge-log list in the standard envelope.
type RespChargeLogs struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.ChargeLog       `json:"data"`
}

// RespPracticeStatistic wraps PracticeStatisticResponse in the standard envelope.
type RespPracticeStatistic struct {
	Code    response.APIResponseCode             `json:"code"`
	Message string                               `json:"message"`
	Data    statistics.PracticeStatisticResponse `json:"data"`
}

// RespRunCharges reports how many charges one manual pass attempted.
type RespRunCharges struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    map[string]int           `json:"data"`
}
