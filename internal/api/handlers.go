package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/ads-dashboard/internal/config"
	"github.com/ignite/ads-dashboard/internal/dashboard"
	"github.com/ignite/ads-dashboard/internal/executor"
	"github.com/ignite/ads-dashboard/internal/pkg/httputil"
	"github.com/ignite/ads-dashboard/internal/pkg/logger"
	"github.com/ignite/ads-dashboard/internal/recommend"
)

// DashboardService is the refresh pipeline and payload reader.
type DashboardService interface {
	Refresh(ctx context.Context, req dashboard.RangeRequest) (*dashboard.Payload, error)
	LatestRaw(ctx context.Context) ([]byte, error)
	FindRecommendation(ctx context.Context, id string) (recommend.Recommendation, error)
}

// Applier executes one recommendation.
type Applier interface {
	Apply(ctx context.Context, req executor.Request) (executor.Result, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	dashboard DashboardService
	executor  Applier
	adsConfig config.GoogleAdsConfig
	now       func() time.Time
}

// NewHandlers creates a new Handlers instance
func NewHandlers(svc DashboardService, exec Applier, adsConfig config.GoogleAdsConfig) *Handlers {
	return &Handlers{
		dashboard: svc,
		executor:  exec,
		adsConfig: adsConfig,
		now:       time.Now,
	}
}

// requireConfig rejects calls that would reach Google Ads while credentials
// are missing.
func (h *Handlers) requireConfig(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.adsConfig.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleRefresh rebuilds the dashboard payload.
//
//	POST /api/refresh {"start_date":"2025-01-01","end_date":"2025-01-31"} | {"days":14} | {}
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req dashboard.RangeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	payload, err := h.dashboard.Refresh(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.OK(w, payload)
}

// applyRequest addresses a recommendation either by id or by its full
// action descriptor. With an id, the stored descriptor wins.
type applyRequest struct {
	RecommendationID string `json:"recommendation_id,omitempty"`
	executor.Request
}

type applyResponse struct {
	Success              bool               `json:"success"`
	Message              string             `json:"message"`
	Timestamp            time.Time          `json:"timestamp"`
	ManualActionRequired bool               `json:"manual_action_required,omitempty"`
	GoogleAdsURL         string             `json:"google_ads_url,omitempty"`
	DryRun               bool               `json:"dry_run,omitempty"`
	WouldExecute         *executor.Mutation `json:"would_execute,omitempty"`
}

// HandleApply executes one recommendation.
//
//	POST /api/apply {"recommendation_id":"...","new_bid":1.5}
//	POST /api/apply {"action_type":"keyword_action","target_id":"customers/1/adGroupCriteria/2~3","suggested_action":"PAUSED"}
//	POST /api/apply {"recommendation_id":"...","dry_run":true}
func (h *Handlers) HandleApply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	if req.RecommendationID != "" {
		rec, err := h.dashboard.FindRecommendation(r.Context(), req.RecommendationID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		req.Fields = rec.Fields()
	}

	result, err := h.executor.Apply(r.Context(), req.Request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info("apply completed",
		"action_type", string(req.ActionType),
		"manual", result.ManualActionRequired,
		"dry_run", result.DryRun,
		"request_id", requestID(r))

	httputil.OK(w, applyResponse{
		Success:              result.Success,
		Message:              result.Message,
		Timestamp:            h.now().UTC(),
		ManualActionRequired: result.ManualActionRequired,
		GoogleAdsURL:         result.GoogleAdsURL,
		DryRun:               result.DryRun,
		WouldExecute:         result.WouldExecute,
	})
}

// HandleData serves the latest published payload as stored.
//
//	GET /api/dashboard
//	GET /data.json
func (h *Handlers) HandleData(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.LatestRaw(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Warn("writing payload failed", "error", err.Error())
	}
}
