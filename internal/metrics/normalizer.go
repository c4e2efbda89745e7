package metrics

import (
	"strings"

	"github.com/ignite/ads-dashboard/internal/googleads"
)

// NormalizeCampaigns converts campaign report rows.
func NormalizeCampaigns(rows []googleads.Row) []Campaign {
	out := make([]Campaign, 0, len(rows))
	for _, r := range rows {
		c := Campaign{
			ID:          str(r, "campaign.id", ""),
			Name:        str(r, "campaign.name", Unknown),
			Status:      str(r, "campaign.status", UnknownStatus),
			Spend:       money(r, "metrics.cost_micros"),
			Impressions: count(r, "metrics.impressions"),
			Clicks:      count(r, "metrics.clicks"),
			CTR:         percent(r, "metrics.ctr"),
			Conversions: num(r, "metrics.conversions"),
		}
		if c.Conversions > 0 {
			c.CPA = c.Spend / c.Conversions
		}
		out = append(out, c)
	}
	return out
}

// NormalizeKeywords converts keyword_view rows.
func NormalizeKeywords(rows []googleads.Row) []Keyword {
	out := make([]Keyword, 0, len(rows))
	for _, r := range rows {
		k := Keyword{
			Keyword:      str(r, "ad_group_criterion.keyword.text", Unknown),
			Campaign:     str(r, "campaign.name", Unknown),
			CampaignID:   str(r, "campaign.id", ""),
			ResourceName: str(r, "ad_group_criterion.resource_name", ""),
			Impressions:  count(r, "metrics.impressions"),
			Clicks:       count(r, "metrics.clicks"),
			CTR:          percent(r, "metrics.ctr"),
			AvgCPC:       money(r, "metrics.average_cpc"),
			Cost:         money(r, "metrics.cost_micros"),
			Conversions:  num(r, "metrics.conversions"),
		}
		if qs, ok := r.Int("ad_group_criterion.quality_info.quality_score"); ok {
			v := int(qs)
			k.QualityScore = &v
		}
		out = append(out, k)
	}
	return out
}

// NormalizeSearchQueries converts search_term_view rows.
func NormalizeSearchQueries(rows []googleads.Row) []SearchQuery {
	out := make([]SearchQuery, 0, len(rows))
	for _, r := range rows {
		out = append(out, SearchQuery{
			Query:       str(r, "search_term_view.search_term", Unknown),
			Campaign:    str(r, "campaign.name", Unknown),
			Impressions: count(r, "metrics.impressions"),
			Clicks:      count(r, "metrics.clicks"),
			Cost:        money(r, "metrics.cost_micros"),
			Conversions: num(r, "metrics.conversions"),
		})
	}
	return out
}

// NormalizeGeo converts user_location_view rows, or geographic_view rows
// from the fallback query.
func NormalizeGeo(rows []googleads.Row) []GeoRow {
	out := make([]GeoRow, 0, len(rows))
	for _, r := range rows {
		g := GeoRow{
			LocationName: Unknown,
			LocationType: str(r, "geographic_view.location_type", UnknownStatus),
			CampaignName: str(r, "campaign.name", Unknown),
			Impressions:  count(r, "metrics.impressions"),
			Clicks:       count(r, "metrics.clicks"),
			CTR:          percent(r, "metrics.ctr"),
			Cost:         money(r, "metrics.cost_micros"),
			Conversions:  num(r, "metrics.conversions"),
		}

		if tl, ok := r.String("user_location_view.targeting_location"); ok && strings.Contains(tl, "/") {
			g.LocationName = "Location " + tl[strings.LastIndex(tl, "/")+1:]
		}

		for _, path := range []string{"user_location_view.country_criterion_id", "geographic_view.country_criterion_id"} {
			if id, ok := r.Int(path); ok {
				g.CountryCriterionID = &id
				break
			}
		}
		out = append(out, g)
	}
	return out
}

// NormalizeTime converts hour-of-week rows from the customer report.
func NormalizeTime(rows []googleads.Row) []TimeRow {
	out := make([]TimeRow, 0, len(rows))
	for _, r := range rows {
		t := TimeRow{
			Hour:        -1,
			DayOfWeek:   str(r, "segments.day_of_week", UnknownStatus),
			Clicks:      count(r, "metrics.clicks"),
			Conversions: num(r, "metrics.conversions"),
			Cost:        money(r, "metrics.cost_micros"),
		}
		if h, ok := r.Int("segments.hour"); ok && h >= 0 && h < HoursPerDay {
			t.Hour = int(h)
		}
		out = append(out, t)
	}
	return out
}

func str(r googleads.Row, path, fallback string) string {
	if s, ok := r.String(path); ok && s != "" {
		return s
	}
	return fallback
}

func num(r googleads.Row, path string) float64 {
	f, ok := r.Float(path)
	if !ok || f < 0 {
		return 0
	}
	return f
}

func count(r googleads.Row, path string) int64 {
	n, ok := r.Int(path)
	if !ok || n < 0 {
		return 0
	}
	return n
}

func money(r googleads.Row, path string) float64 {
	return float64(count(r, path)) / googleads.MicrosPerUnit
}

// percent scales the platform's 0-1 fraction to 0-100. This is the only
// place a rate is scaled.
func percent(r googleads.Row, path string) float64 {
	p := num(r, path) * 100
	if p > 100 {
		return 100
	}
	return p
}
