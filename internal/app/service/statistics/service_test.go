package statistics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haventherapy/booking/pkg/types"
)

func TestGetFilters_DropsInapplicableFilters(t *testing.T) {
	req := &PracticeStatisticRequest{
		Filters: []*types.CommonFilter{
			{Field: string(PracticeStatisticFilterTypeClientID), Operator: types.CommonFilterOperatorEq, Values: []any{"client-1"}},
			{Field: string(PracticeStatisticFilterTypeKind), Operator: types.CommonFilterOperatorEq, Values: []any{"standard"}},
		},
	}

	// Both filters apply to daily session counts.
	got := req.GetFilters(StatisticTypeDailySessionCount)
	require.Len(t, got.Filters, 2)

	// Revenue is grouped from charge logs, which carry no kind column.
	got = req.GetFilters(StatisticTypeDailyBilledRevenue)
	require.Len(t, got.Filters, 1)
	require.Equal(t, string(PracticeStatisticFilterTypeClientID), got.Filters[0].Field)
}

func TestGetFilters_UnknownFieldsPassThrough(t *testing.T) {
	req := &PracticeStatisticRequest{
		Filters: []*types.CommonFilter{
			{Field: "currency", Operator: types.CommonFilterOperatorEq, Values: []any{"USD"}},
		},
	}
	got := req.GetFilters(StatisticTypeDailyBilledRevenue)
	require.Len(t, got.Filters, 1)
}

func TestGetFilters_NilAndEmpty(t *testing.T) {
	var req *PracticeStatisticRequest
	require.Nil(t, req.GetFilters(StatisticTypeDailySessionCount))

	empty := &PracticeStatisticRequest{}
	require.Same(t, empty, empty.GetFilters(StatisticTypeDailySessionCount))
}
