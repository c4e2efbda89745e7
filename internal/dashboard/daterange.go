package dashboard

import (
	"fmt"
	"time"

	"github.com/ignite/ads-dashboard/internal/metrics"
)

// RangeRequest is the optional date-range override accepted by a refresh.
type RangeRequest struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Days      int    `json:"days,omitempty"`
}

// RangeError rejects a malformed override.
type RangeError struct {
	Message string
}

func (e *RangeError) Error() string { return e.Message }

// ResolveRange picks the report window: explicit start/end dates win, then
// a day count, then defaultDays. Windows longer than maxDays are rejected.
func ResolveRange(now time.Time, req RangeRequest, defaultDays, maxDays int) (metrics.DateRange, error) {
	if req.StartDate != "" || req.EndDate != "" {
		if req.StartDate == "" || req.EndDate == "" {
			return metrics.DateRange{}, &RangeError{"start_date and end_date must be given together"}
		}
		start, err := time.Parse(metrics.DateLayout, req.StartDate)
		if err != nil {
			return metrics.DateRange{}, &RangeError{fmt.Sprintf("start_date %q is not YYYY-MM-DD", req.StartDate)}
		}
		end, err := time.Parse(metrics.DateLayout, req.EndDate)
		if err != nil {
			return metrics.DateRange{}, &RangeError{fmt.Sprintf("end_date %q is not YYYY-MM-DD", req.EndDate)}
		}
		if end.Before(start) {
			return metrics.DateRange{}, &RangeError{"end_date is before start_date"}
		}
		if span := int(end.Sub(start).Hours()/24) + 1; maxDays > 0 && span > maxDays {
			return metrics.DateRange{}, &RangeError{fmt.Sprintf("date range spans %d days, the maximum is %d", span, maxDays)}
		}
		return metrics.DateRange{Start: req.StartDate, End: req.EndDate}, nil
	}

	days := defaultDays
	if req.Days != 0 {
		days = req.Days
	}
	if days <= 0 {
		return metrics.DateRange{}, &RangeError{"days must be positive"}
	}
	if maxDays > 0 && days > maxDays {
		return metrics.DateRange{}, &RangeError{fmt.Sprintf("days must be at most %d", maxDays)}
	}
	return metrics.LastDays(now, days), nil
}
