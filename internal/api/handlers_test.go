package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/ads-dashboard/internal/config"
	"github.com/ignite/ads-dashboard/internal/dashboard"
	"github.com/ignite/ads-dashboard/internal/executor"
	"github.com/ignite/ads-dashboard/internal/googleads"
	"github.com/ignite/ads-dashboard/internal/metrics"
	"github.com/ignite/ads-dashboard/internal/recommend"
	"github.com/ignite/ads-dashboard/internal/storage"
)

type fakeDashboard struct {
	refreshReq dashboard.RangeRequest
	refreshErr error
	raw        []byte
	rawErr     error
	recs       map[string]recommend.Recommendation
}

func (f *fakeDashboard) Refresh(_ context.Context, req dashboard.RangeRequest) (*dashboard.Payload, error) {
	f.refreshReq = req
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &dashboard.Payload{
		CustomerID: "7867388610",
		DateRange:  metrics.DateRange{Start: "2025-01-22", End: "2025-01-28"},
	}, nil
}

func (f *fakeDashboard) LatestRaw(context.Context) ([]byte, error) {
	return f.raw, f.rawErr
}

func (f *fakeDashboard) FindRecommendation(_ context.Context, id string) (recommend.Recommendation, error) {
	r, ok := f.recs[id]
	if !ok {
		return recommend.Recommendation{}, dashboard.ErrRecommendationNotFound
	}
	return r, nil
}

type fakeApplier struct {
	got    executor.Request
	result executor.Result
	err    error
}

func (f *fakeApplier) Apply(_ context.Context, req executor.Request) (executor.Result, error) {
	f.got = req
	return f.result, f.err
}

func adsConfig() config.GoogleAdsConfig {
	return config.GoogleAdsConfig{
		DeveloperToken:  "dev",
		ClientID:        "id",
		ClientSecret:    "secret",
		RefreshToken:    "refresh",
		LoginCustomerID: "1112223333",
		CustomerID:      "7867388610",
	}
}

func newTestRouter(svc DashboardService, exec Applier, ads config.GoogleAdsConfig) http.Handler {
	h := NewHandlers(svc, exec, ads)
	h.now = func() time.Time { return time.Date(2025, 1, 29, 9, 30, 0, 0, time.UTC) }
	return SetupRoutes(config.ServerConfig{}, h, nil)
}

func do(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestRefresh(t *testing.T) {
	svc := &fakeDashboard{}
	router := newTestRouter(svc, &fakeApplier{}, adsConfig())

	rec, body := do(t, router, http.MethodPost, "/api/refresh", `{"days": 7}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, svc.refreshReq.Days)
	assert.Equal(t, "7867388610", body["customer_id"])
}

func TestRefreshEmptyBodyUsesDefaults(t *testing.T) {
	svc := &fakeDashboard{}
	router := newTestRouter(svc, &fakeApplier{}, adsConfig())

	rec, _ := do(t, router, http.MethodPost, "/api/refresh", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dashboard.RangeRequest{}, svc.refreshReq)
}

func TestRefreshRejectsInvalidJSON(t *testing.T) {
	router := newTestRouter(&fakeDashboard{}, &fakeApplier{}, adsConfig())

	rec, body := do(t, router, http.MethodPost, "/api/refresh", `{"days":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", body["error"])
}

func TestPostRoutesRejectOtherMethods(t *testing.T) {
	router := newTestRouter(&fakeDashboard{}, &fakeApplier{}, adsConfig())

	for _, path := range []string{"/api/refresh", "/api/apply"} {
		rec, body := do(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
		assert.Equal(t, "method_not_allowed", body["error"], path)
		assert.NotEmpty(t, body["message"], path)
	}
}

func TestMissingConfigBlocksRefreshAndApply(t *testing.T) {
	ads := adsConfig()
	ads.RefreshToken = ""
	ads.LoginCustomerID = ""
	svc := &fakeDashboard{}
	router := newTestRouter(svc, &fakeApplier{}, ads)

	for _, path := range []string{"/api/refresh", "/api/apply"} {
		rec, body := do(t, router, http.MethodPost, path, `{}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.Equal(t, "config_error", body["error"])
		assert.Equal(t, []interface{}{"GOOGLE_ADS_REFRESH_TOKEN", "GOOGLE_ADS_LOGIN_CUSTOMER_ID"}, body["missing"])
	}
	assert.Equal(t, dashboard.RangeRequest{}, svc.refreshReq, "service never called")
}

func TestRefreshErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"bad range", &dashboard.RangeError{Message: "end_date is before start_date"}, 400, "invalid_range", "end_date is before start_date"},
		{"in progress", dashboard.ErrRefreshInProgress, 409, "refresh_in_progress", "a refresh is already running"},
		{"auth", &googleads.AuthError{Status: 400, Body: `{"error":"invalid_grant"}`}, 500, "upstream_auth_error", "invalid_grant"},
		{"upstream", fmt.Errorf("campaign report: %w", &googleads.APIError{Status: 403, Body: "PERMISSION_DENIED"}), 500, "upstream_error", "PERMISSION_DENIED"},
		{"storage", fmt.Errorf("publishing payload: %w", errors.New("dial tcp 10.0.0.1:6379: connection refused")), 500, "internal_error", "Service temporarily unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeDashboard{refreshErr: tt.err}, &fakeApplier{}, adsConfig())

			rec, body := do(t, router, http.MethodPost, "/api/refresh", `{}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, body["error"])
			assert.Contains(t, body["message"], tt.message)
		})
	}
}

func TestApplyByRecommendationID(t *testing.T) {
	svc := &fakeDashboard{recs: map[string]recommend.Recommendation{
		"rec-1": {
			ID:         "rec-1",
			ActionType: recommend.ActionBidAdjustment,
			TargetID:   "customers/7867388610/adGroupCriteria/111~222",
			Keyword:    "chiropractor near me",
		},
	}}
	applier := &fakeApplier{result: executor.Result{Success: true, Message: "Max CPC updated"}}
	router := newTestRouter(svc, applier, adsConfig())

	rec, body := do(t, router, http.MethodPost, "/api/apply",
		`{"recommendation_id":"rec-1","action_type":"review","new_bid":2.5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, recommend.ActionBidAdjustment, applier.got.ActionType, "stored descriptor wins")
	assert.Equal(t, "customers/7867388610/adGroupCriteria/111~222", applier.got.TargetID)
	assert.Equal(t, 2.5, applier.got.NewBid)

	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Max CPC updated", body["message"])
	assert.Equal(t, "2025-01-29T09:30:00Z", body["timestamp"])
	assert.NotContains(t, body, "manual_action_required")
}

func TestApplyUnknownRecommendation(t *testing.T) {
	router := newTestRouter(&fakeDashboard{}, &fakeApplier{}, adsConfig())

	rec, body := do(t, router, http.MethodPost, "/api/apply", `{"recommendation_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["error"])
}

func TestApplyValidationErrors(t *testing.T) {
	// Validation fails before any connection is attempted.
	exec := executor.New(nil, executor.Options{CustomerID: "7867388610"})
	router := newTestRouter(&fakeDashboard{}, exec, adsConfig())

	rec, body := do(t, router, http.MethodPost, "/api/apply",
		`{"action_type":"bid_adjustment","target_id":"customers/7867388610/adGroupCriteria/111~222"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_input", body["error"])
	assert.Equal(t, true, body["requires_input"])

	rec, body = do(t, router, http.MethodPost, "/api/apply",
		`{"action_type":"bid_adjustment","target_id":"customers/7867388610/adGroupCriteria/111~222","new_bid":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_amount", body["error"])
	assert.NotContains(t, body, "requires_input")

	rec, body = do(t, router, http.MethodPost, "/api/apply",
		`{"action_type":"bid_adjustment","target_id":"customers/7867388610/adGroupCriteria/111~222","new_bid":1e300}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_amount", body["error"])
	assert.Contains(t, body["message"], "maximum")

	rec, body = do(t, router, http.MethodPost, "/api/apply",
		`{"action_type":"keyword_action","target_id":"kw-123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_target", body["error"])
}

func TestApplyDryRun(t *testing.T) {
	// A dry run never connects, so a nil connector is safe.
	exec := executor.New(nil, executor.Options{CustomerID: "7867388610"})
	router := newTestRouter(&fakeDashboard{}, exec, adsConfig())

	rec, body := do(t, router, http.MethodPost, "/api/apply",
		`{"action_type":"keyword_action","target_id":"customers/7867388610/adGroupCriteria/111~222","keyword":"free chiro","suggested_action":"PAUSED","dry_run":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["dry_run"])
	assert.Contains(t, body["message"], "no changes made")

	would, ok := body["would_execute"].(map[string]interface{})
	require.True(t, ok, "would_execute describes the planned mutation")
	assert.Equal(t, googleads.ResourceAdGroupCriteria, would["resource"])
	op := would["operation"].(map[string]interface{})
	assert.Equal(t, "status", op["updateMask"])
	assert.Equal(t, "customers/7867388610/adGroupCriteria/111~222", op["update"].(map[string]interface{})["resourceName"])
}

func TestApplyManualAction(t *testing.T) {
	exec := executor.New(nil, executor.Options{CustomerID: "7867388610"})
	router := newTestRouter(&fakeDashboard{}, exec, adsConfig())

	rec, body := do(t, router, http.MethodPost, "/api/apply", `{"action_type":"bid_adjustment","campaign_id":"101"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["manual_action_required"])
	assert.Contains(t, body["google_ads_url"], "campaignId=101")
}

func TestApplyExecutionFailure(t *testing.T) {
	applier := &fakeApplier{err: &executor.ExecutionError{
		ActionType: recommend.ActionKeyword,
		Err:        &googleads.APIError{Status: 400, Body: "RESOURCE_NOT_FOUND"},
	}}
	router := newTestRouter(&fakeDashboard{}, applier, adsConfig())

	rec, body := do(t, router, http.MethodPost, "/api/apply",
		`{"action_type":"keyword_action","target_id":"customers/7867388610/adGroupCriteria/111~222","suggested_action":"PAUSED"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "execution_failed", body["error"])
	assert.Contains(t, body["message"], "RESOURCE_NOT_FOUND")
}

func TestData(t *testing.T) {
	doc := []byte(`{"customer_id":"7867388610","campaigns":[]}`)
	router := newTestRouter(&fakeDashboard{raw: doc}, &fakeApplier{}, adsConfig())

	for _, path := range []string{"/data.json", "/api/dashboard"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, string(doc), rec.Body.String(), path)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	}
}

func TestDataBeforeFirstRefresh(t *testing.T) {
	router := newTestRouter(&fakeDashboard{rawErr: dashboard.ErrNoPayload}, &fakeApplier{}, adsConfig())

	rec, body := do(t, router, http.MethodGet, "/data.json", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["error"])
}

func TestHealthCheck(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	hc := NewHealthChecker(store, rdb, nil, adsConfig())
	router := SetupRoutes(config.ServerConfig{}, NewHandlers(&fakeDashboard{}, &fakeApplier{}, adsConfig()), hc)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "up", status.Checks["storage"].Status)
	assert.Equal(t, "up", status.Checks["redis"].Status)
	assert.Equal(t, "up", status.Checks["config"].Status)
	assert.Equal(t, notConfigured, status.Checks["database"].Message)

	req = httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthReadinessWithoutStore(t *testing.T) {
	ads := adsConfig()
	ads.DeveloperToken = ""
	hc := NewHealthChecker(nil, nil, nil, ads)
	router := SetupRoutes(config.ServerConfig{}, NewHandlers(&fakeDashboard{}, &fakeApplier{}, ads), hc)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDetermineOverallStatus(t *testing.T) {
	assert.Equal(t, "healthy", determineOverallStatus(map[string]ComponentCheck{
		"storage": {Status: "up"},
		"redis":   {Status: "down", Message: notConfigured},
	}))
	assert.Equal(t, "degraded", determineOverallStatus(map[string]ComponentCheck{
		"storage": {Status: "up"},
		"config":  {Status: "degraded"},
	}))
	assert.Equal(t, "degraded", determineOverallStatus(map[string]ComponentCheck{
		"storage": {Status: "up"},
		"redis":   {Status: "down", Message: "redis ping failed: EOF"},
	}))
	assert.Equal(t, "unhealthy", determineOverallStatus(map[string]ComponentCheck{
		"storage": {Status: "down", Message: notConfigured},
	}))
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "42s", formatUptime(42*time.Second))
	assert.Equal(t, "1h 2m 3s", formatUptime(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "2d 0h 0m 0s", formatUptime(48*time.Hour))
}
