package statistics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	models "github.com/haventherapy/booking/internal/models"
	"github.com/haventherapy/booking/pkg/types"
)

// Statistic types surfaced on the practice dashboard
type StatisticType string

const (
	// Daily session volume and revenue
	StatisticTypeDailySessionCount  StatisticType = "daily_session_count"
	StatisticTypeDailyBilledRevenue StatisticType = "daily_billed_revenue"
	StatisticTypeTotalBilledRevenue StatisticType = "total_billed_revenue"

	// Cancellation behaviour
	StatisticTypeDailyCancellationCount StatisticType = "daily_cancellation_count"
	StatisticTypeDailyFeeRevenue        StatisticType = "daily_fee_revenue"

	// Subscription base
	StatisticTypeActiveSubscriptionCount StatisticType = "active_subscription_count"
	StatisticTypeUpcomingSessionCount    StatisticType = "upcoming_session_count"
)

// Filter types supported by certain statistic types
type PracticeStatisticFilterType string

const (
	PracticeStatisticFilterTypeIsRecurring PracticeStatisticFilterType = "is_recurring"
	PracticeStatisticFilterTypeKind        PracticeStatisticFilterType = "kind"
	PracticeStatisticFilterTypeClientID    PracticeStatisticFilterType = "client_id"
)

var filterTypes = []PracticeStatisticFilterType{
	PracticeStatisticFilterTypeIsRecurring,
	PracticeStatisticFilterTypeKind,
	PracticeStatisticFilterTypeClientID,
}

var validFilters = map[PracticeStatisticFilterType][]StatisticType{
	PracticeStatisticFilterTypeIsRecurring: {StatisticTypeDailySessionCount, StatisticTypeDailyCancellationCount, StatisticTypeUpcomingSessionCount},
	PracticeStatisticFilterTypeKind:        {StatisticTypeDailySessionCount, StatisticTypeDailyCancellationCount, StatisticTypeUpcomingSessionCount},
	PracticeStatisticFilterTypeClientID:    {StatisticTypeDailySessionCount, StatisticTypeDailyCancellationCount, StatisticTypeDailyBilledRevenue, StatisticTypeUpcomingSessionCount},
}

type PracticeStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type PracticeStatisticRequest struct {
	Filters   []*types.CommonFilter        `json:"filters"`
	DataItems []*PracticeStatisticDataItem `json:"data_items"`
}

func (f *PracticeStatisticRequest) GetFilters(statisticType StatisticType) *PracticeStatisticRequest {
	if f == nil || len(f.Filters) == 0 {
		return f
	}
	var result PracticeStatisticRequest
	for _, filter := range f.Filters {
		if statisticTypes, ok := validFilters[PracticeStatisticFilterType(filter.Field)]; ok {
			if lo.Contains(statisticTypes, statisticType) {
				result.Filters = append(result.Filters, filter)
			}
		} else {
			result.Filters = append(result.Filters, filter)
		}
	}
	return &result
}

// Build composes a WHERE clause based on provided filters, with custom
// handling for is_recurring, which is derived from subscription_id rather
// than stored as a column.
func (f *PracticeStatisticRequest) Build(builder clause.Builder) {
	if len(f.Filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, filter := range f.Filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		switch filter.Field {
		case string(PracticeStatisticFilterTypeIsRecurring):
			if len(filter.Values) > 0 && fmt.Sprint(filter.Values[0]) == "true" {
				builder.WriteString("subscription_id IS NOT NULL AND subscription_id != ''")
			} else {
				builder.WriteString("(subscription_id IS NULL OR subscription_id = '')")
			}
		default:
			filter.Build(builder)
		}
	}
}

type PracticeStatisticResponseDataItem struct {
	Date   string `json:"date"`
	Label  string `json:"label,omitempty"`
	Value  int64  `json:"value"`
	Value2 int64  `json:"value2,omitempty"`
}

type PracticeStatisticResponse struct {
	DataItems map[StatisticType][]PracticeStatisticResponseDataItem `json:"data_items"`
}

// Service provides practice dashboard statistics
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

// Internal helpers for various stats
func (s *Service) getDailySessionCount(ctx context.Context, request *PracticeStatisticRequest) ([]PracticeStatisticResponseDataItem, error) {
	var results []PracticeStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.SessionOccurrence{}).TableName()).
		Select("TO_CHAR(scheduled_at, 'YYYY-MM-DD') as date, count(*) as value").
		Where("status != ?", types.OccurrenceStatusRescheduled).
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeDailySessionCount)}}).
		Group("TO_CHAR(scheduled_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyBilledRevenue(ctx context.Context, request *PracticeStatisticRequest) ([]PracticeStatisticResponseDataItem, error) {
	var results []PracticeStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.ChargeLog{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, currency AS label, sum(amount_cents) as value").
		Where("result = ?", models.ChargeResultSucceeded).
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeDailyBilledRevenue)}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("currency").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getTotalBilledRevenue(ctx context.Context, _ *PracticeStatisticRequest) ([]PracticeStatisticResponseDataItem, error) {
	var results []PracticeStatisticResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
WITH min_max_dates AS (
    SELECT MIN(DATE(created_at)) as min_date, MAX(DATE(created_at)) as max_date
    FROM charge_log WHERE result = 'succeeded'
),
distinct_dates AS (
    SELECT generate_series(min_date, max_date, '1 day'::interval) as date FROM min_max_dates
),
dates AS (
    SELECT TO_CHAR(date, 'YYYY-MM-DD') as date FROM distinct_dates
),
currencies AS (
    SELECT DISTINCT currency as label FROM charge_log WHERE result = 'succeeded'
),
date_currency_combinations AS (
    SELECT d.date, c.label FROM dates d CROSS JOIN currencies c
),
revenue_date AS (
    SELECT dc.date, dc.label, COALESCE(SUM(cl.amount_cents), 0) as value
    FROM date_currency_combinations dc
    LEFT JOIN charge_log cl
      ON TO_CHAR(cl.created_at, 'YYYY-MM-DD') = dc.date
     AND cl.currency = dc.label
     AND cl.result = 'succeeded'
    GROUP BY dc.date, dc.label
)
SELECT d.date as date, d.label as label, SUM(s.value) as value
FROM revenue_date d
LEFT JOIN revenue_date s ON s.date <= d.date AND s.label = d.label
GROUP BY d.date, d.label
ORDER BY d.date DESC, d.label ASC
`).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyCancellationCount(ctx context.Context, request *PracticeStatisticRequest) ([]PracticeStatisticResponseDataItem, error) {
	var results []PracticeStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.SessionOccurrence{}).TableName()).
		Select("TO_CHAR(updated_at, 'YYYY-MM-DD') as date, count(*) as value, count(*) FILTER (WHERE fee_cents > 0) as value2").
		Where("status = ?", types.OccurrenceStatusCancelled).
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeDailyCancellationCount)}}).
		Group("TO_CHAR(updated_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyFeeRevenue(ctx context.Context, _ *PracticeStatisticRequest) ([]PracticeStatisticResponseDataItem, error) {
	var results []PracticeStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.SessionOccurrence{}).TableName()).
		Select("TO_CHAR(updated_at, 'YYYY-MM-DD') as date, currency AS label, sum(fee_cents) as value").
		Where("fee_cents > 0").
		Group("TO_CHAR(updated_at, 'YYYY-MM-DD')").
		Group("currency").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getActiveSubscriptionCount(ctx context.Context, _ *PracticeStatisticRequest) ([]PracticeStatisticResponseDataItem, error) {
	var results []PracticeStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.RecurringSubscription{}).TableName()).
		Select("count(*) as value").
		Where("state = ?", types.SubscriptionStateActive)
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getUpcomingSessionCount(ctx context.Context, request *PracticeStatisticRequest) ([]PracticeStatisticResponseDataItem, error) {
	var results []PracticeStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.SessionOccurrence{}).TableName()).
		Select("TO_CHAR(scheduled_at, 'YYYY-MM-DD') as date, count(*) as value").
		Where("status = ?", types.OccurrenceStatusScheduled).
		Where("scheduled_at > ?", time.Now()).
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeUpcomingSessionCount)}}).
		Group("TO_CHAR(scheduled_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getPracticeStatistic(ctx context.Context, request *PracticeStatisticRequest, dataItem *PracticeStatisticDataItem) ([]PracticeStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailySessionCount:
		return s.getDailySessionCount(ctx, request)
	case StatisticTypeDailyBilledRevenue:
		return s.getDailyBilledRevenue(ctx, request)
	case StatisticTypeTotalBilledRevenue:
		return s.getTotalBilledRevenue(ctx, request)
	case StatisticTypeDailyCancellationCount:
		return s.getDailyCancellationCount(ctx, request)
	case StatisticTypeDailyFeeRevenue:
		return s.getDailyFeeRevenue(ctx, request)
	case StatisticTypeActiveSubscriptionCount:
		return s.getActiveSubscriptionCount(ctx, request)
	case StatisticTypeUpcomingSessionCount:
		return s.getUpcomingSessionCount(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

func (s *Service) GetPracticeStatistic(ctx context.Context, request *PracticeStatisticRequest) (*PracticeStatisticResponse, error) {
	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []PracticeStatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *PracticeStatisticDataItem) {
			defer wg.Done()
			// check filter applicability
			for _, filter := range request.Filters {
				ft := PracticeStatisticFilterType(filter.Field)
				if lo.Contains(filterTypes, ft) && !lo.Contains(validFilters[ft], di.ID) {
					resChan <- &lo.Entry[StatisticType, []PracticeStatisticResponseDataItem]{Key: di.ID, Value: nil}
					return
				}
			}
			res, err := s.getPracticeStatistic(ctx, request, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []PracticeStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	go func() { wg.Wait(); close(errChan); close(resChan) }()

	results := make(map[StatisticType][]PracticeStatisticResponseDataItem)
	for i := 0; i < len(request.DataItems); i++ {
		select {
		case err := <-errChan:
			if err != nil {
				return nil, err
			}
		case entry := <-resChan:
			results[entry.Key] = entry.Value
		}
	}
	return &PracticeStatisticResponse{DataItems: results}, nil
}
