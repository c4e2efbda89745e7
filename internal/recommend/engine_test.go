package recommend

import (
	"testing"

	"github.com/ignite/ads-dashboard/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qs(v int) *int { return &v }

func actionTypes(list []Recommendation) []ActionType {
	out := make([]ActionType, len(list))
	for i, r := range list {
		out[i] = r.ActionType
	}
	return out
}

func TestGenerateSingleEfficientCampaign(t *testing.T) {
	campaigns := []metrics.Campaign{{ID: "101", Name: "A", Status: "ENABLED", Spend: 100, Conversions: 10, CPA: 10, Clicks: 50, CTR: 1.5}}
	keywords := []metrics.Keyword{{Keyword: "fine", QualityScore: qs(7), Clicks: 40}}

	got := Engine{}.Generate(metrics.Summarize(campaigns, keywords), campaigns, keywords, nil, CampaignIDsByName(campaigns))

	for _, r := range got {
		assert.NotEqual(t, ActionNegativeKeyword, r.ActionType)
	}
	var bids []Recommendation
	for _, r := range got {
		if r.ActionType == ActionBidAdjustment {
			bids = append(bids, r)
		}
	}
	require.Len(t, bids, 1)
	assert.Equal(t, "Increase Budget for A", bids[0].Title)
	assert.Contains(t, bids[0].Description, "RM 10.00")
	assert.Equal(t, "101", bids[0].CampaignID)
	assert.Empty(t, bids[0].TargetID)
	assert.Equal(t, ImpactHigh, bids[0].Impact)

	require.Len(t, got, 2, "fewer than three triggers the search terms reminder")
	assert.Equal(t, "Review Search Terms", got[1].Title)
}

func fullFixture() ([]metrics.Campaign, []metrics.Keyword, []metrics.SearchQuery) {
	campaigns := []metrics.Campaign{
		{ID: "1", Name: "Brand", Status: "ENABLED", Spend: 300, Conversions: 10, CPA: 30, Clicks: 400, CTR: 4},
		{ID: "2", Name: "Generic", Status: "ENABLED", Spend: 200, Conversions: 10, CPA: 20, Clicks: 90, CTR: 1},
		{ID: "3", Name: "Twin", Status: "ENABLED", Spend: 40, Conversions: 2, CPA: 20, Clicks: 20, CTR: 1},
		{ID: "4", Name: "Old", Status: "PAUSED", Spend: 80, CTR: 2.5},
		{ID: "5", Name: "Promo", Status: "ENABLED", Spend: 60, Conversions: 2, CPA: 30, Clicks: 150, CTR: 3.5},
		{ID: "9", Name: "Brand", Status: "ENABLED"},
	}
	keywords := []metrics.Keyword{
		{Keyword: "bad one", QualityScore: qs(2), Clicks: 11, ResourceName: "customers/1/adGroupCriteria/10~11"},
		{Keyword: "few clicks", QualityScore: qs(1), Clicks: 10, ResourceName: "customers/1/adGroupCriteria/10~12"},
		{Keyword: "unscored", Clicks: 500},
		{Keyword: "bad two", QualityScore: qs(3), Clicks: 30, ResourceName: "customers/1/adGroupCriteria/10~13"},
		{Keyword: "bad three", QualityScore: qs(3), Clicks: 30, ResourceName: "customers/1/adGroupCriteria/10~14"},
	}
	queries := []metrics.SearchQuery{
		{Query: "q1", Campaign: "Brand", Cost: 11},
		{Query: "converted", Campaign: "Brand", Cost: 99, Conversions: 1},
		{Query: "q2", Campaign: "Nowhere", Cost: 25},
		{Query: "q3", Campaign: "Generic", Cost: 12},
		{Query: "q4", Campaign: "Generic", Cost: 50},
	}
	return campaigns, keywords, queries
}

func TestGenerateRuleOrder(t *testing.T) {
	campaigns, keywords, queries := fullFixture()
	idx := CampaignIDsByName(campaigns)
	assert.Equal(t, "1", idx["Brand"], "first occurrence wins")

	got := Engine{}.Generate(metrics.Summarize(campaigns, keywords), campaigns, keywords, queries, idx)
	require.Len(t, got, 8)
	assert.Equal(t, []ActionType{
		ActionNegativeKeyword, ActionNegativeKeyword, ActionNegativeKeyword,
		ActionBidAdjustment,
		ActionKeyword, ActionKeyword,
		ActionReview, ActionReview,
	}, actionTypes(got))

	assert.Equal(t, "q1", got[0].Keyword)
	assert.Equal(t, "1", got[0].CampaignID)
	assert.Equal(t, MatchPhrase, got[0].MatchType)
	assert.Empty(t, got[1].CampaignID, "unresolved campaign stays empty")
	assert.Equal(t, "q3", got[2].Keyword)

	assert.Equal(t, "2", got[3].CampaignID, "lowest CPA, ties go to the first")

	assert.Equal(t, "bad one", got[4].Keyword)
	assert.Equal(t, "customers/1/adGroupCriteria/10~11", got[4].TargetID)
	assert.Equal(t, StatusPaused, got[4].SuggestedAction)
	assert.Equal(t, "bad two", got[5].Keyword)

	assert.Equal(t, "Reactivate Paused Campaigns", got[6].Title)
	assert.Equal(t, "Improve Landing Page", got[7].Title)
	assert.Equal(t, ImpactHigh, got[7].Impact)
}

func TestGenerateCountNounAgreement(t *testing.T) {
	campaigns := []metrics.Campaign{{ID: "9", Name: "Old", Status: StatusPaused, CTR: 5}}
	queries := []metrics.SearchQuery{{Query: "free", Campaign: "Old", Cost: 15, Clicks: 1}}

	got := Engine{}.Generate(metrics.Summarize(campaigns, nil), campaigns, nil, queries, CampaignIDsByName(campaigns))
	byAction := map[ActionType]string{}
	for _, r := range got {
		if _, seen := byAction[r.ActionType]; !seen {
			byAction[r.ActionType] = r.Description
		}
	}

	assert.Equal(t, `"free" cost RM 15.00 over 1 click with zero conversions. Block it as a phrase-match negative.`, byAction[ActionNegativeKeyword])
	assert.Equal(t, "1 paused campaign had a CTR above 2%. Review it for reactivation.", byAction[ActionReview])
}

func TestGenerateIsDeterministic(t *testing.T) {
	campaigns, keywords, queries := fullFixture()
	e := Engine{Limit: 5}
	summary := metrics.Summarize(campaigns, keywords)

	first := e.Generate(summary, campaigns, keywords, queries, CampaignIDsByName(campaigns))
	second := e.Generate(summary, campaigns, keywords, queries, CampaignIDsByName(campaigns))
	assert.Equal(t, first, second)
	assert.Len(t, first, 5)

	seen := map[string]bool{}
	for _, r := range first {
		assert.NotEmpty(t, r.ID)
		assert.False(t, seen[r.ID], "ids are unique within a list")
		seen[r.ID] = true
	}
}

func TestGeneratedActionsParse(t *testing.T) {
	campaigns, keywords, queries := fullFixture()
	got := Engine{}.Generate(metrics.Summary{}, campaigns, keywords, queries, CampaignIDsByName(campaigns))

	for _, r := range got {
		if r.ActionType == ActionNegativeKeyword && r.CampaignID == "" {
			continue
		}
		_, err := ParseAction(r.Fields())
		assert.NoError(t, err, r.Title)
	}
}
