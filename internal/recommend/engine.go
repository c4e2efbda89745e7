package recommend

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ignite/ads-dashboard/internal/metrics"
)

// Thresholds used by the rules.
const (
	DefaultLimit = 8

	MaxNegativeKeywords  = 3
	MaxKeywordPauses     = 2
	MinRecommendations   = 3
	WastedSpendThreshold = 10.0
	PauseQualityScore    = 4
	PauseMinClicks       = 10
	ReactivateCTR        = 2.0
	LandingPageCTR       = 3.0
	LandingPageMaxConv   = 5.0
	LandingPageMinClicks = 100
)

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://ads-dashboard/recommendations"))

// Engine generates recommendations. The zero value uses "RM" and DefaultLimit.
type Engine struct {
	Currency string
	Limit    int
}

// CampaignIDsByName maps campaign names to ids. The first campaign with a
// given name wins.
func CampaignIDsByName(campaigns []metrics.Campaign) map[string]string {
	out := make(map[string]string, len(campaigns))
	for _, c := range campaigns {
		if c.ID == "" {
			continue
		}
		if _, ok := out[c.Name]; !ok {
			out[c.Name] = c.ID
		}
	}
	return out
}

// Generate runs the rules in order and truncates to the engine's limit.
// Identical input yields identical output, ids included.
func (e Engine) Generate(summary metrics.Summary, campaigns []metrics.Campaign, keywords []metrics.Keyword, queries []metrics.SearchQuery, campaignIDByName map[string]string) []Recommendation {
	p := message.NewPrinter(language.English)
	money := func(v float64) string { return p.Sprintf("%s %.2f", e.currency(), v) }

	out := []Recommendation{}

	negatives := 0
	for _, q := range queries {
		if negatives == MaxNegativeKeywords {
			break
		}
		if !q.Wasted(WastedSpendThreshold) {
			continue
		}
		negatives++
		out = append(out, Recommendation{
			Title:       "Add Negative Keyword: " + q.Query,
			Description: p.Sprintf("%q cost %s over %d %s with zero conversions. Block it as a phrase-match negative.", q.Query, money(q.Cost), q.Clicks, plural(q.Clicks, "click", "clicks")),
			Impact:      ImpactHigh,
			ActionType:  ActionNegativeKeyword,
			Keyword:     q.Query,
			CampaignID:  campaignIDByName[q.Campaign],
			MatchType:   MatchPhrase,
		})
	}

	if best, ok := bestCPACampaign(campaigns); ok {
		out = append(out, Recommendation{
			Title:       "Increase Budget for " + best.Name,
			Description: p.Sprintf("%s converts at %s per conversion, the lowest CPA among enabled campaigns. Shift budget toward it.", best.Name, money(best.CPA)),
			Impact:      ImpactHigh,
			ActionType:  ActionBidAdjustment,
			CampaignID:  best.ID,
		})
	}

	pauses := 0
	for _, k := range keywords {
		if pauses == MaxKeywordPauses {
			break
		}
		if k.QualityScore == nil || *k.QualityScore >= PauseQualityScore || k.Clicks <= PauseMinClicks {
			continue
		}
		pauses++
		out = append(out, Recommendation{
			Title:           "Pause Keyword: " + k.Keyword,
			Description:     p.Sprintf("Quality score %d/10 after %d clicks (%s spent). Low relevance keeps CPC high.", *k.QualityScore, k.Clicks, money(k.Cost)),
			Impact:          ImpactMedium,
			ActionType:      ActionKeyword,
			TargetID:        k.ResourceName,
			Keyword:         k.Keyword,
			SuggestedAction: StatusPaused,
		})
	}

	if n := countCampaigns(campaigns, func(c metrics.Campaign) bool { return c.Status == StatusPaused && c.CTR > ReactivateCTR }); n > 0 {
		out = append(out, Recommendation{
			Title:       "Reactivate Paused Campaigns",
			Description: p.Sprintf("%d paused %s a CTR above %.0f%%. Review %s for reactivation.", n, plural(n, "campaign had", "campaigns had"), ReactivateCTR, plural(n, "it", "them")),
			Impact:      ImpactMedium,
			ActionType:  ActionReview,
		})
	}

	if countCampaigns(campaigns, func(c metrics.Campaign) bool {
		return c.CTR > LandingPageCTR && c.Conversions < LandingPageMaxConv && c.Clicks > LandingPageMinClicks
	}) > 0 {
		out = append(out, Recommendation{
			Title:       "Improve Landing Page",
			Description: "Ads earn clicks but visitors do not convert. Test landing page speed, headline and call to action.",
			Impact:      ImpactHigh,
			ActionType:  ActionReview,
		})
	}

	if len(out) < MinRecommendations {
		out = append(out, Recommendation{
			Title:       "Review Search Terms",
			Description: "Check the search terms report weekly for irrelevant queries and add them as negatives.",
			Impact:      ImpactMedium,
			ActionType:  ActionReview,
		})
	}

	if limit := e.limit(); len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].ID = recommendationID(i, out[i])
	}
	return out
}

// bestCPACampaign returns the enabled, converting campaign with the lowest
// CPA. Ties go to the first one encountered.
func bestCPACampaign(campaigns []metrics.Campaign) (metrics.Campaign, bool) {
	var best metrics.Campaign
	found := false
	for _, c := range campaigns {
		if c.Status != StatusEnabled || c.Conversions <= 0 {
			continue
		}
		if !found || c.CPA < best.CPA {
			best, found = c, true
		}
	}
	return best, found
}

func countCampaigns(campaigns []metrics.Campaign, match func(metrics.Campaign) bool) int {
	n := 0
	for _, c := range campaigns {
		if match(c) {
			n++
		}
	}
	return n
}

func recommendationID(pos int, r Recommendation) string {
	key := fmt.Sprintf("%d|%s|%s|%s|%s|%s|%s", pos, r.ActionType, r.TargetID, r.Keyword, r.CampaignID, r.SuggestedAction, r.Title)
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
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

func plural[N int | int64](n N, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
