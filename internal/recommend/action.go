package recommend

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ignite/ads-dashboard/internal/googleads"
)

// ValidationKind classifies a rejected action descriptor.
type ValidationKind string

const (
	InvalidTarget ValidationKind = "invalid_target"
	MissingField  ValidationKind = "missing_field"
	MissingInput  ValidationKind = "missing_input"
	InvalidAmount ValidationKind = "invalid_amount"
)

// ValidationError rejects a descriptor before any platform call is made.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// RequiresInput reports whether the caller should prompt the user and retry.
func (e *ValidationError) RequiresInput() bool { return e.Kind == MissingInput }

func invalid(kind ValidationKind, field, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Action is a validated descriptor. Each variant carries exactly the fields
// its mutation needs.
type Action interface {
	Type() ActionType
}

// KeywordStatusChange pauses or enables one keyword criterion.
type KeywordStatusChange struct {
	Criterion googleads.CriterionID
	Keyword   string
	Status    string
}

// AddNegativeKeyword creates a campaign-level negative keyword.
type AddNegativeKeyword struct {
	CampaignID string
	Keyword    string
	MatchType  string
}

// KeywordBid sets a keyword's max CPC. The amount is user input supplied at
// apply time.
type KeywordBid struct {
	Criterion googleads.CriterionID
	Keyword   string
}

// CampaignBudgetIncrease is the engine's campaign-level budget suggestion.
// Budgets are changed by hand in the Ads UI.
type CampaignBudgetIncrease struct {
	CampaignID string
}

// Review is advice with no mutation behind it. ActionType keeps the
// original name, which may be unrecognized.
type Review struct {
	ActionType ActionType
}

func (KeywordStatusChange) Type() ActionType    { return ActionKeyword }
func (AddNegativeKeyword) Type() ActionType     { return ActionNegativeKeyword }
func (KeywordBid) Type() ActionType             { return ActionBidAdjustment }
func (CampaignBudgetIncrease) Type() ActionType { return ActionBidAdjustment }
func (r Review) Type() ActionType               { return r.ActionType }

// ParseAction validates f and builds its Action. Review and unrecognized
// action types never fail.
func ParseAction(f Fields) (Action, error) {
	switch ActionType(strings.TrimSpace(string(f.ActionType))) {
	case ActionKeyword:
		crit, err := parseTarget(f.TargetID)
		if err != nil {
			return nil, err
		}
		return KeywordStatusChange{Criterion: crit, Keyword: f.Keyword, Status: NormalizeStatus(f.SuggestedAction)}, nil

	case ActionNegativeKeyword:
		campaignID := strings.TrimSpace(f.CampaignID)
		keyword := strings.TrimSpace(f.Keyword)
		if campaignID == "" {
			return nil, invalid(MissingField, "campaign_id", "campaign_id is required to add a negative keyword")
		}
		if keyword == "" {
			return nil, invalid(MissingField, "keyword", "keyword is required to add a negative keyword")
		}
		if !isPositiveID(campaignID) {
			return nil, invalid(InvalidTarget, "campaign_id", "campaign_id %q is not a campaign id", campaignID)
		}
		return AddNegativeKeyword{CampaignID: campaignID, Keyword: keyword, MatchType: NormalizeMatchType(f.MatchType)}, nil

	case ActionBidAdjustment:
		switch {
		case strings.TrimSpace(f.TargetID) != "":
			crit, err := parseTarget(f.TargetID)
			if err != nil {
				return nil, err
			}
			return KeywordBid{Criterion: crit, Keyword: f.Keyword}, nil
		case strings.TrimSpace(f.CampaignID) != "":
			campaignID := strings.TrimSpace(f.CampaignID)
			if !isPositiveID(campaignID) {
				return nil, invalid(InvalidTarget, "campaign_id", "campaign_id %q is not a campaign id", campaignID)
			}
			return CampaignBudgetIncrease{CampaignID: campaignID}, nil
		default:
			return nil, invalid(InvalidTarget, "target_id", "bid_adjustment needs a keyword target_id")
		}

	default:
		return Review{ActionType: f.ActionType}, nil
	}
}

func parseTarget(targetID string) (googleads.CriterionID, error) {
	crit, err := googleads.ParseCriterionID(strings.TrimSpace(targetID))
	if err != nil {
		return googleads.CriterionID{}, invalid(InvalidTarget, "target_id",
			"target_id %q must look like customers/{id}/adGroupCriteria/{adGroupId}~{criterionId}", targetID)
	}
	return crit, nil
}

// NormalizeStatus maps a suggested action to ENABLED or PAUSED. Anything
// unrecognized pauses.
func NormalizeStatus(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), StatusEnabled) {
		return StatusEnabled
	}
	return StatusPaused
}

// NormalizeMatchType returns EXACT, PHRASE or BROAD, defaulting to PHRASE.
func NormalizeMatchType(s string) string {
	switch m := strings.ToUpper(strings.TrimSpace(s)); m {
	case MatchExact, MatchPhrase, MatchBroad:
		return m
	default:
		return MatchPhrase
	}
}

func isPositiveID(s string) bool {
	n, err := strconv.ParseInt(s, 10, 64)
	return err == nil && n > 0
}

// ParseBid reads a user-supplied bid in account currency. JSON numbers and
// numeric strings are accepted.
func ParseBid(v any) (float64, error) {
	var bid float64
	switch t := v.(type) {
	case nil:
		return 0, invalid(MissingInput, "new_bid", "new_bid is required for a bid adjustment")
	case float64:
		bid = t
	case int:
		bid = float64(t)
	case int64:
		bid = float64(t)
	case interface{ Float64() (float64, error) }:
		f, err := t.Float64()
		if err != nil {
			return 0, invalid(MissingInput, "new_bid", "new_bid must be a number")
		}
		bid = f
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, invalid(MissingInput, "new_bid", "new_bid is required for a bid adjustment")
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, invalid(MissingInput, "new_bid", "new_bid %q is not a number", s)
		}
		bid = f
	default:
		return 0, invalid(MissingInput, "new_bid", "new_bid must be a number")
	}

	if math.IsNaN(bid) || math.IsInf(bid, 0) || bid <= 0 {
		return 0, invalid(InvalidAmount, "new_bid", "new_bid must be greater than 0")
	}
	if bid > googleads.MaxAmount {
		return 0, invalid(InvalidAmount, "new_bid", "new_bid exceeds the maximum of %.2f", googleads.MaxAmount)
	}
	if googleads.ToMicros(bid) == 0 {
		return 0, invalid(InvalidAmount, "new_bid", "new_bid rounds to zero at the platform's 0.01 billing unit")
	}
	return bid, nil
}
