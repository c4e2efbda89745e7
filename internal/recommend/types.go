// Package recommend proposes typed, executable actions from normalized
// metrics and validates the flat action descriptors sent back by callers.
package recommend

// Impact ranks a recommendation for display. The list is never sorted by it.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// ActionType is the wire name of an action.
type ActionType string

const (
	ActionKeyword         ActionType = "keyword_action"
	ActionNegativeKeyword ActionType = "add_negative_keyword"
	ActionBidAdjustment   ActionType = "bid_adjustment"
	ActionReview          ActionType = "review"
)

// Keyword statuses accepted by keyword_action.
const (
	StatusPaused  = "PAUSED"
	StatusEnabled = "ENABLED"
)

// Keyword match types accepted for negatives.
const (
	MatchExact  = "EXACT"
	MatchPhrase = "PHRASE"
	MatchBroad  = "BROAD"
)

// Recommendation is an intent, not yet a mutation. It carries everything the
// executor needs so nothing has to be re-derived at apply time.
type Recommendation struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Impact          Impact     `json:"impact"`
	ActionType      ActionType `json:"action_type"`
	TargetID        string     `json:"target_id,omitempty"`
	Keyword         string     `json:"keyword,omitempty"`
	SuggestedAction string     `json:"suggested_action,omitempty"`
	CampaignID      string     `json:"campaign_id,omitempty"`
	MatchType       string     `json:"match_type,omitempty"`
}

// Fields returns the recommendation's action descriptor.
func (r Recommendation) Fields() Fields {
	return Fields{
		ActionType:      r.ActionType,
		TargetID:        r.TargetID,
		Keyword:         r.Keyword,
		SuggestedAction: r.SuggestedAction,
		CampaignID:      r.CampaignID,
		MatchType:       r.MatchType,
	}
}

// Fields is the flat action descriptor accepted by the apply endpoint.
type Fields struct {
	ActionType      ActionType `json:"action_type"`
	TargetID        string     `json:"target_id,omitempty"`
	Keyword         string     `json:"keyword,omitempty"`
	SuggestedAction string     `json:"suggested_action,omitempty"`
	CampaignID      string     `json:"campaign_id,omitempty"`
	MatchType       string     `json:"match_type,omitempty"`
}
