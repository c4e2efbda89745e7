package googleads

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
)

const (
	// MicrosPerUnit is the fixed-point scale of every money field in the API.
	MicrosPerUnit = 1_000_000
	// BillableMicros is the granularity the platform accepts for bids (0.01 units).
	BillableMicros = 10_000
	// MaxAmount is the largest amount whose micros still fit in an int64.
	MaxAmount = float64(math.MaxInt64 / MicrosPerUnit)
)

// ResourceAdGroupCriteria and ResourceCampaignCriteria name the mutate
// services the executor calls.
const (
	ResourceAdGroupCriteria  = "adGroupCriteria"
	ResourceCampaignCriteria = "campaignCriteria"
)

var criterionPattern = regexp.MustCompile(`(?:^|/)adGroupCriteria/([0-9]+)~([0-9]+)$`)

// CriterionID addresses a keyword inside an ad group.
type CriterionID struct {
	AdGroupID   int64
	CriterionID int64
}

// ParseCriterionID extracts the ad group and criterion ids from a resource
// name such as "customers/1/adGroupCriteria/2~3". Both ids must be positive.
func ParseCriterionID(resourceName string) (CriterionID, error) {
	m := criterionPattern.FindStringSubmatch(resourceName)
	if m == nil {
		return CriterionID{}, fmt.Errorf("%q is not an ad group criterion resource name", resourceName)
	}
	adGroup, err1 := strconv.ParseInt(m[1], 10, 64)
	criterion, err2 := strconv.ParseInt(m[2], 10, 64)
	if err1 != nil || err2 != nil || adGroup <= 0 || criterion <= 0 {
		return CriterionID{}, fmt.Errorf("%q does not carry two positive ids", resourceName)
	}
	return CriterionID{AdGroupID: adGroup, CriterionID: criterion}, nil
}

// ResourceName composes the ad group criterion resource name for customerID.
func (c CriterionID) ResourceName(customerID string) string {
	return fmt.Sprintf("customers/%s/adGroupCriteria/%d~%d", customerID, c.AdGroupID, c.CriterionID)
}

// CampaignResourceName composes "customers/{customer}/campaigns/{campaign}".
func CampaignResourceName(customerID, campaignID string) string {
	return fmt.Sprintf("customers/%s/campaigns/%s", customerID, campaignID)
}

// ToMicros converts an amount in account currency to micros, rounded to the
// nearest billable unit (a multiple of 10,000). Halves round away from zero.
// Amounts beyond MaxAmount saturate at MaxAmount and NaN converts to 0.
func ToMicros(amount float64) int64 {
	switch {
	case math.IsNaN(amount):
		return 0
	case amount > MaxAmount:
		amount = MaxAmount
	case amount < -MaxAmount:
		amount = -MaxAmount
	}
	return int64(math.Round(amount*MicrosPerUnit/BillableMicros)) * BillableMicros
}

// FromMicros converts micros to account currency.
func FromMicros(micros int64) float64 {
	return float64(micros) / MicrosPerUnit
}

// UIURL builds a deep link into the Google Ads web UI for customerID.
func UIURL(base, page, customerID string) string {
	q := url.Values{}
	q.Set("__e", customerID)
	return fmt.Sprintf("%s/%s?%s", base, page, q.Encode())
}
