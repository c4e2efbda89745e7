package metrics

import (
	"strings"
	"time"
)

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday}

// Summarize aggregates campaign totals and the keyword quality average.
// CostPerConversion is 0 without conversions, AvgCTR is 0 without
// impressions, and AvgQualityScore averages only keywords with a positive
// score.
func Summarize(campaigns []Campaign, keywords []Keyword) Summary {
	var s Summary
	for _, c := range campaigns {
		s.TotalSpend += c.Spend
		s.TotalImpressions += c.Impressions
		s.TotalClicks += c.Clicks
		s.TotalConversions += c.Conversions
	}
	if s.TotalConversions > 0 {
		s.CostPerConversion = s.TotalSpend / s.TotalConversions
	}
	if s.TotalImpressions > 0 {
		s.AvgCTR = float64(s.TotalClicks) / float64(s.TotalImpressions) * 100
	}

	var qsSum, qsCount int
	for _, k := range keywords {
		if k.HasQualityScore() {
			qsSum += *k.QualityScore
			qsCount++
		}
	}
	if qsCount > 0 {
		s.AvgQualityScore = float64(qsSum) / float64(qsCount)
	}
	return s
}

// SummarizeTime buckets rows into all 24 hours and all seven weekdays,
// Monday first. The best hour and day have the most clicks; ties go to the
// earlier bucket. Rows with an unknown hour or weekday only count toward
// the other breakdown.
func SummarizeTime(rows []TimeRow) TimePerformance {
	tp := TimePerformance{
		Hourly: make([]HourStat, HoursPerDay),
		Daily:  make([]DayStat, len(weekdays)),
	}
	for h := range tp.Hourly {
		tp.Hourly[h].Hour = h
	}
	dayIndex := make(map[string]int, len(weekdays))
	for i, d := range weekdays {
		tp.Daily[i].Day = d.String()
		dayIndex[strings.ToUpper(d.String())] = i
	}

	for _, r := range rows {
		if r.Hour >= 0 && r.Hour < HoursPerDay {
			tp.Hourly[r.Hour].add(r)
		}
		if i, ok := dayIndex[r.DayOfWeek]; ok {
			tp.Daily[i].add(r)
		}
	}

	bestHour := 0
	for h, s := range tp.Hourly {
		if s.Clicks > tp.Hourly[bestHour].Clicks {
			bestHour = h
		}
	}
	bestDay := 0
	for i, s := range tp.Daily {
		if s.Clicks > tp.Daily[bestDay].Clicks {
			bestDay = i
		}
	}
	if tp.Hourly[bestHour].Clicks > 0 {
		tp.BestHour = &bestHour
	}
	if tp.Daily[bestDay].Clicks > 0 {
		tp.BestDay = tp.Daily[bestDay].Day
	}
	return tp
}
