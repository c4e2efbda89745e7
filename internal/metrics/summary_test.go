package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestSummarize(t *testing.T) {
	campaigns := []Campaign{
		{Name: "A", Spend: 100, Impressions: 1000, Clicks: 50, Conversions: 4},
		{Name: "B", Spend: 50, Impressions: 1000, Clicks: 30, Conversions: 1},
	}
	keywords := []Keyword{
		{QualityScore: intPtr(8)},
		{QualityScore: intPtr(4)},
		{QualityScore: intPtr(0)},
		{QualityScore: nil},
	}

	s := Summarize(campaigns, keywords)
	assert.Equal(t, 150.0, s.TotalSpend)
	assert.Equal(t, int64(2000), s.TotalImpressions)
	assert.Equal(t, int64(80), s.TotalClicks)
	assert.Equal(t, 5.0, s.TotalConversions)
	assert.Equal(t, 30.0, s.CostPerConversion)
	assert.InDelta(t, 4.0, s.AvgCTR, 1e-9)
	assert.Equal(t, 6.0, s.AvgQualityScore, "null and zero scores are excluded")
}

func TestSummarizeWithoutConversions(t *testing.T) {
	s := Summarize([]Campaign{{Spend: 42, Impressions: 0}}, []Keyword{{QualityScore: intPtr(0)}})
	assert.Zero(t, s.CostPerConversion)
	assert.Zero(t, s.AvgCTR)
	assert.Zero(t, s.AvgQualityScore)
	assert.Equal(t, 42.0, s.TotalSpend)
}

func TestSummarizeCostPerConversionIsExact(t *testing.T) {
	for _, tc := range []struct{ spend, conv float64 }{{10, 3}, {99.99, 7}, {0, 1}, {1234.56, 0.5}} {
		s := Summarize([]Campaign{{Spend: tc.spend, Conversions: tc.conv}}, nil)
		assert.Equal(t, tc.spend/tc.conv, s.CostPerConversion)
	}
}

func TestSummarizeTime(t *testing.T) {
	tp := SummarizeTime([]TimeRow{
		{Hour: 9, DayOfWeek: "MONDAY", Clicks: 10, Conversions: 1, Cost: 5},
		{Hour: 9, DayOfWeek: "TUESDAY", Clicks: 5, Cost: 2.5},
		{Hour: 14, DayOfWeek: "TUESDAY", Clicks: 15, Conversions: 2, Cost: 7},
		{Hour: -1, DayOfWeek: "SUNDAY", Clicks: 40},
		{Hour: 20, DayOfWeek: "UNSPECIFIED", Clicks: 3},
	})

	assert.Len(t, tp.Hourly, HoursPerDay)
	assert.Equal(t, HourStat{Hour: 9, TimeStat: TimeStat{Clicks: 15, Conversions: 1, Cost: 7.5}}, tp.Hourly[9])
	assert.Equal(t, int64(3), tp.Hourly[20].Clicks, "unknown weekday still counts by hour")
	assert.Equal(t, 9, *tp.BestHour, "ties go to the earlier hour")

	assert.Len(t, tp.Daily, 7)
	assert.Equal(t, "Monday", tp.Daily[0].Day)
	assert.Equal(t, "Sunday", tp.Daily[6].Day)
	assert.Equal(t, int64(20), tp.Daily[1].Clicks)
	assert.Equal(t, int64(40), tp.Daily[6].Clicks, "unknown hour still counts by day")
	assert.Equal(t, "Sunday", tp.BestDay)
}

func TestSummarizeTimeWithoutClicks(t *testing.T) {
	tp := SummarizeTime(nil)
	assert.Len(t, tp.Hourly, HoursPerDay)
	assert.Len(t, tp.Daily, 7)
	assert.Nil(t, tp.BestHour)
	assert.Empty(t, tp.BestDay)

	tp = SummarizeTime([]TimeRow{{Hour: 3, DayOfWeek: "FRIDAY", Cost: 1}})
	assert.Nil(t, tp.BestHour)
	assert.Empty(t, tp.BestDay)
	assert.Equal(t, 1.0, tp.Hourly[3].Cost)
}

func TestSummarizeTimeBreaksTiesEarly(t *testing.T) {
	tp := SummarizeTime([]TimeRow{
		{Hour: 18, DayOfWeek: "FRIDAY", Clicks: 7},
		{Hour: 8, DayOfWeek: "WEDNESDAY", Clicks: 7},
	})
	assert.Equal(t, 8, *tp.BestHour)
	assert.Equal(t, "Wednesday", tp.BestDay)
}
