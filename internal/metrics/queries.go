package metrics

import (
	"fmt"
	"time"
)

// DateLayout is the GAQL date format.
const DateLayout = "2006-01-02"

// DateRange is an inclusive report window.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// LastDays returns the window of n days ending yesterday relative to now,
// matching how the platform reports complete days.
func LastDays(now time.Time, n int) DateRange {
	end := now.AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(n - 1))
	return DateRange{Start: start.Format(DateLayout), End: end.Format(DateLayout)}
}

func (d DateRange) where() string {
	return fmt.Sprintf("segments.date BETWEEN '%s' AND '%s'", d.Start, d.End)
}

// CampaignQuery selects every non-removed campaign.
func CampaignQuery(d DateRange) string {
	return `
		SELECT
			campaign.id,
			campaign.name,
			campaign.status,
			metrics.impressions,
			metrics.clicks,
			metrics.ctr,
			metrics.average_cpc,
			metrics.cost_micros,
			metrics.conversions
		FROM campaign
		WHERE ` + d.where() + `
			AND campaign.status != 'REMOVED'
		ORDER BY metrics.impressions DESC, campaign.id ASC`
}

// KeywordQuery selects keyword criteria with their quality score and
// resource name.
func KeywordQuery(d DateRange) string {
	return `
		SELECT
			campaign.id,
			campaign.name,
			ad_group.id,
			ad_group_criterion.criterion_id,
			ad_group_criterion.resource_name,
			ad_group_criterion.keyword.text,
			ad_group_criterion.keyword.match_type,
			ad_group_criterion.status,
			ad_group_criterion.quality_info.quality_score,
			metrics.impressions,
			metrics.clicks,
			metrics.ctr,
			metrics.average_cpc,
			metrics.cost_micros,
			metrics.conversions
		FROM keyword_view
		WHERE ` + d.where() + `
			AND ad_group_criterion.status != 'REMOVED'
		ORDER BY metrics.impressions DESC, ad_group_criterion.criterion_id ASC
		LIMIT 1000`
}

// SearchTermQuery selects the search terms that produced impressions.
func SearchTermQuery(d DateRange) string {
	return `
		SELECT
			campaign.id,
			campaign.name,
			search_term_view.search_term,
			metrics.impressions,
			metrics.clicks,
			metrics.cost_micros,
			metrics.conversions
		FROM search_term_view
		WHERE ` + d.where() + `
			AND metrics.impressions > 0
		ORDER BY metrics.impressions DESC, search_term_view.search_term ASC
		LIMIT 500`
}

// GeoQuery selects per-location performance from user_location_view.
func GeoQuery(d DateRange) string {
	return `
		SELECT
			campaign.id,
			campaign.name,
			user_location_view.country_criterion_id,
			user_location_view.targeting_location,
			metrics.impressions,
			metrics.clicks,
			metrics.ctr,
			metrics.cost_micros,
			metrics.conversions
		FROM user_location_view
		WHERE ` + d.where() + `
			AND metrics.impressions > 0
		ORDER BY metrics.clicks DESC
		LIMIT 100`
}

// GeoFallbackQuery is used when the account cannot read user_location_view.
func GeoFallbackQuery(d DateRange) string {
	return `
		SELECT
			campaign.id,
			campaign.name,
			geographic_view.country_criterion_id,
			geographic_view.location_type,
			metrics.impressions,
			metrics.clicks,
			metrics.ctr,
			metrics.cost_micros,
			metrics.conversions
		FROM geographic_view
		WHERE ` + d.where() + `
			AND metrics.impressions > 0
		ORDER BY metrics.cost_micros DESC
		LIMIT 100`
}

// TimeQuery selects account performance by weekday and hour of day.
func TimeQuery(d DateRange) string {
	return `
		SELECT
			segments.day_of_week,
			segments.hour,
			metrics.clicks,
			metrics.conversions,
			metrics.cost_micros
		FROM customer
		WHERE ` + d.where() + `
		ORDER BY segments.day_of_week, segments.hour`
}
