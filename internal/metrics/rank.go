package metrics

import (
	"cmp"
	"slices"
)

// Display lists are ordered copies; the engines always see the full input.

// ActiveCampaigns returns campaigns with spend, most expensive first.
func ActiveCampaigns(campaigns []Campaign) []Campaign {
	out := make([]Campaign, 0, len(campaigns))
	for _, c := range campaigns {
		if c.Spend > 0 {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b Campaign) int { return cmp.Compare(b.Spend, a.Spend) })
	return out
}

// TopKeywords returns the n keywords with the most impressions.
func TopKeywords(keywords []Keyword, n int) []Keyword {
	return top(keywords, n, func(a, b Keyword) int { return cmp.Compare(b.Impressions, a.Impressions) })
}

// TopSearchQueries returns the n search terms with the most clicks.
func TopSearchQueries(queries []SearchQuery, n int) []SearchQuery {
	return top(queries, n, func(a, b SearchQuery) int { return cmp.Compare(b.Clicks, a.Clicks) })
}

// TopGeo returns the n locations with the most clicks.
func TopGeo(rows []GeoRow, n int) []GeoRow {
	return top(rows, n, func(a, b GeoRow) int { return cmp.Compare(b.Clicks, a.Clicks) })
}

func top[T any](in []T, n int, less func(a, b T) int) []T {
	out := slices.Clone(in)
	if out == nil {
		out = []T{}
	}
	slices.SortStableFunc(out, less)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
