package dashboard

import (
	"time"

	"github.com/ignite/ads-dashboard/internal/insights"
	"github.com/ignite/ads-dashboard/internal/metrics"
	"github.com/ignite/ads-dashboard/internal/recommend"
)

// Payload is the document published by a refresh and read by the renderer.
// It is replaced whole on every refresh.
type Payload struct {
	CustomerID      string                     `json:"customer_id"`
	AccountName     string                     `json:"account_name"`
	GeneratedAt     time.Time                  `json:"generated_at"`
	DateRange       metrics.DateRange          `json:"date_range"`
	Summary         metrics.Summary            `json:"summary"`
	Trends          Trends                     `json:"trends"`
	Campaigns       []metrics.Campaign         `json:"campaigns"`
	Keywords        []metrics.Keyword          `json:"keywords"`
	SearchQueries   []metrics.SearchQuery      `json:"search_queries"`
	GeoPerformance  []metrics.GeoRow           `json:"geo_performance"`
	TimePerformance metrics.TimePerformance    `json:"time_performance"`
	Insights        []insights.Insight         `json:"insights"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// Trends are period-over-period changes. No prior snapshot is kept, so they
// are always zero.
type Trends struct {
	SpendChange        float64 `json:"spend_change"`
	ConversionsChange  float64 `json:"conversions_change"`
	CPAChange          float64 `json:"cpa_change"`
	QualityScoreChange float64 `json:"quality_score_change"`
}

// Recommendation returns the recommendation with the given id.
func (p *Payload) Recommendation(id string) (recommend.Recommendation, bool) {
	for _, r := range p.Recommendations {
		if r.ID == id {
			return r, true
		}
	}
	return recommend.Recommendation{}, false
}
