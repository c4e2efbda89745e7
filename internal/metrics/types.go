// Package metrics turns raw Google Ads report rows into flat, unit-normalized
// records: money in account currency, rates as 0-100 percentages, ids as
// strings. Records are built once per refresh and never mutated afterwards.
package metrics

// Unknown replaces a missing name on a malformed row.
const Unknown = "Unknown"

// UnknownStatus replaces a missing campaign status or geo location type.
const UnknownStatus = "UNKNOWN"

// Campaign is one campaign's performance over the report window.
type Campaign struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	CTR         float64 `json:"ctr"`
	Conversions float64 `json:"conversions"`
	CPA         float64 `json:"cpa"`
}

// Keyword is one ad group keyword criterion. QualityScore is nil when the
// platform has not scored the keyword.
type Keyword struct {
	Keyword      string  `json:"keyword"`
	Campaign     string  `json:"campaign"`
	Impressions  int64   `json:"impressions"`
	Clicks       int64   `json:"clicks"`
	CTR          float64 `json:"ctr"`
	AvgCPC       float64 `json:"avg_cpc"`
	QualityScore *int    `json:"quality_score"`

	// Engine inputs only; the published keyword list carries the fields above.
	CampaignID   string  `json:"-"`
	ResourceName string  `json:"-"`
	Cost         float64 `json:"-"`
	Conversions  float64 `json:"-"`
}

// HasQualityScore reports whether the keyword carries a positive score.
func (k Keyword) HasQualityScore() bool {
	return k.QualityScore != nil && *k.QualityScore > 0
}

// SearchQuery is a user search term that triggered an ad.
type SearchQuery struct {
	Query       string  `json:"query"`
	Campaign    string  `json:"campaign"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Cost        float64 `json:"cost"`
	Conversions float64 `json:"conversions"`
}

// Wasted reports whether the term cost more than threshold without converting.
func (q SearchQuery) Wasted(threshold float64) bool {
	return q.Conversions == 0 && q.Cost > threshold
}

// GeoRow is campaign performance for one location.
type GeoRow struct {
	LocationName       string  `json:"location_name"`
	CountryCriterionID *int64  `json:"country_criterion_id"`
	LocationType       string  `json:"location_type"`
	CampaignName       string  `json:"campaign_name"`
	Impressions        int64   `json:"impressions"`
	Clicks             int64   `json:"clicks"`
	CTR                float64 `json:"ctr"`
	Cost               float64 `json:"cost"`
	Conversions        float64 `json:"conversions"`
}

// HoursPerDay bounds segments.hour.
const HoursPerDay = 24

// TimeRow is account performance for one hour of one weekday. Hour is -1
// when the row carries no valid hour.
type TimeRow struct {
	Hour        int
	DayOfWeek   string
	Clicks      int64
	Conversions float64
	Cost        float64
}

// TimeStat is the performance accumulated in one time bucket.
type TimeStat struct {
	Clicks      int64   `json:"clicks"`
	Conversions float64 `json:"conversions"`
	Cost        float64 `json:"cost"`
}

func (s *TimeStat) add(r TimeRow) {
	s.Clicks += r.Clicks
	s.Conversions += r.Conversions
	s.Cost += r.Cost
}

// HourStat is one hour of the day, 0-23.
type HourStat struct {
	Hour int `json:"hour"`
	TimeStat
}

// DayStat is one weekday, named "Monday" through "Sunday".
type DayStat struct {
	Day string `json:"day"`
	TimeStat
}

// TimePerformance breaks the report window down by hour of day and by
// weekday. BestHour is nil and BestDay empty when nothing was clicked.
type TimePerformance struct {
	Hourly   []HourStat `json:"hourly"`
	Daily    []DayStat  `json:"daily"`
	BestHour *int       `json:"best_hour"`
	BestDay  string     `json:"best_day"`
}

// Summary aggregates one refresh cycle.
type Summary struct {
	TotalSpend        float64 `json:"total_spend"`
	TotalImpressions  int64   `json:"total_impressions"`
	TotalClicks       int64   `json:"total_clicks"`
	TotalConversions  float64 `json:"total_conversions"`
	CostPerConversion float64 `json:"cost_per_conversion"`
	AvgCTR            float64 `json:"avg_ctr"`
	AvgQualityScore   float64 `json:"avg_quality_score"`
}

// Report bundles the normalized records of one refresh.
type Report struct {
	Campaigns     []Campaign
	Keywords      []Keyword
	SearchQueries []SearchQuery
	Geo           []GeoRow
	Time          []TimeRow
}
