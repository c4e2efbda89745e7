// Package insights derives qualitative findings from one refresh cycle's
// normalized metrics. Generation is deterministic: rules run in a fixed
// order and each appends at most one finding.
package insights

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ignite/ads-dashboard/internal/metrics"
)

// Type tags an insight's severity for the renderer.
type Type string

const (
	TypePositive    Type = "positive"
	TypeOpportunity Type = "opportunity"
	TypeWarning     Type = "warning"
	TypeNegative    Type = "negative"
	TypeAlert       Type = "alert"
	TypeInfo        Type = "info"
	TypeNeutral     Type = "neutral"
)

// Insight is one finding. It has no identity beyond its position.
type Insight struct {
	Type        Type   `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Thresholds used by the rules.
const (
	DefaultLimit = 6

	LowQualityScore       = 5
	HighQualityScore      = 8
	GoodAvgQualityScore   = 7
	WastedSpendThreshold  = 10.0
	TopKeywordCTR         = 3.0
	HighCostPerConversion = 100.0
)

// Engine generates insights. The zero value uses the "RM" currency and a
// limit of DefaultLimit.
type Engine struct {
	Currency string
	Limit    int
}

// Generate evaluates every rule in order and truncates the result to the
// engine's limit.
func (e Engine) Generate(summary metrics.Summary, campaigns []metrics.Campaign, keywords []metrics.Keyword, queries []metrics.SearchQuery) []Insight {
	p := message.NewPrinter(language.English)
	money := func(v float64) string { return p.Sprintf("%s %.2f", e.currency(), v) }

	out := []Insight{}

	if n := countLowQuality(keywords); n > 0 {
		out = append(out, Insight{
			Type:        TypeWarning,
			Title:       "Low Quality Scores",
			Description: p.Sprintf("%d %s quality scores below %d. Improving ad relevance and landing pages could reduce CPC.", n, plural(n, "keyword has", "keywords have"), LowQualityScore),
		})
	}

	if wasted, n := wastedSpend(queries); n > 0 {
		out = append(out, Insight{
			Type:        TypeAlert,
			Title:       "Wasted Ad Spend",
			Description: p.Sprintf("%s spent on %d %s with zero conversions. Consider adding negative keywords.", money(wasted), n, plural(n, "search query", "search queries")),
		})
	}

	for _, k := range keywords {
		if k.QualityScore != nil && *k.QualityScore >= HighQualityScore && k.CTR >= TopKeywordCTR {
			out = append(out, Insight{
				Type:        TypeOpportunity,
				Title:       "Top Performing Keyword",
				Description: p.Sprintf("%q has a quality score of %d and a %.2f%% CTR. Consider raising its bid to win more impressions.", k.Keyword, *k.QualityScore, k.CTR),
			})
			break
		}
	}

	if avg := summary.AvgQualityScore; avg > 0 {
		in := Insight{
			Type:        TypeWarning,
			Title:       "Quality Score Needs Work",
			Description: p.Sprintf("Average quality score is %.1f/10. Tighten ad groups and align ad copy with keywords.", avg),
		}
		if avg >= GoodAvgQualityScore {
			in.Type = TypeOpportunity
			in.Title = "Healthy Quality Scores"
			in.Description = p.Sprintf("Average quality score is %.1f/10. Strong relevance keeps CPC low; protect it when adding keywords.", avg)
		}
		out = append(out, in)
	}

	if n, spend := pausedCampaigns(campaigns); n > 0 {
		out = append(out, Insight{
			Type:        TypeInfo,
			Title:       "Paused Campaigns",
			Description: p.Sprintf("%d %s currently PAUSED. Total historical spend: %s.", n, plural(n, "campaign is", "campaigns are"), money(spend)),
		})
	}

	switch {
	case summary.TotalConversions > 0 && summary.CostPerConversion > HighCostPerConversion:
		out = append(out, Insight{
			Type:        TypeAlert,
			Title:       "High CPA Alert",
			Description: p.Sprintf("Cost per conversion is %s. Review conversion tracking and keyword targeting.", money(summary.CostPerConversion)),
		})
	case summary.TotalConversions == 0 && summary.TotalSpend > 0:
		out = append(out, Insight{
			Type:        TypeAlert,
			Title:       "No Conversions",
			Description: p.Sprintf("%s spent with no conversions recorded. Verify conversion tracking is set up correctly in Google Ads.", money(summary.TotalSpend)),
		})
	}

	if limit := e.limit(); len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (e Engine) currency() string {
	if e.Currency == "" {
		return "RM"
	}
	return e.Currency
}

func (e Engine) limit() int {
	if e.Limit <= 0 {
		return DefaultLimit
	}
	return e.Limit
}

func countLowQuality(keywords []metrics.Keyword) int {
	n := 0
	for _, k := range keywords {
		if k.QualityScore != nil && *k.QualityScore < LowQualityScore {
			n++
		}
	}
	return n
}

func wastedSpend(queries []metrics.SearchQuery) (total float64, n int) {
	for _, q := range queries {
		if q.Wasted(WastedSpendThreshold) {
			total += q.Cost
			n++
		}
	}
	return total, n
}

func pausedCampaigns(campaigns []metrics.Campaign) (n int, spend float64) {
	for _, c := range campaigns {
		if c.Status == "PAUSED" {
			n++
			spend += c.Spend
		}
	}
	return n, spend
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
