package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ignite/ads-dashboard/internal/config"
	"github.com/ignite/ads-dashboard/internal/dashboard"
	"github.com/ignite/ads-dashboard/internal/executor"
	"github.com/ignite/ads-dashboard/internal/googleads"
	"github.com/ignite/ads-dashboard/internal/pkg/httputil"
	"github.com/ignite/ads-dashboard/internal/pkg/logger"
	"github.com/ignite/ads-dashboard/internal/recommend"
	"github.com/ignite/ads-dashboard/internal/storage"
)

// writeError maps a domain error onto the JSON error envelope and logs it.
// Upstream Google Ads text is passed through so the operator can act on it;
// anything else that is not classified gets a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := classify(err)

	fields := []interface{}{
		"status", status,
		"code", resp.Error,
		"path", r.URL.Path,
		"request_id", requestID(r),
		"error", err.Error(),
	}
	if status >= 500 {
		logger.Error("request failed", fields...)
	} else {
		logger.Warn("request rejected", fields...)
	}

	httputil.JSON(w, status, resp)
}

func classify(err error) (int, httputil.ErrorResponse) {
	var (
		missing  *config.MissingSettingsError
		invalid  *recommend.ValidationError
		badRange *dashboard.RangeError
		authErr  *googleads.AuthError
		execErr  *executor.ExecutionError
		upstream *googleads.APIError
	)

	switch {
	case errors.As(err, &missing):
		return http.StatusInternalServerError, httputil.ErrorResponse{
			Error: "config_error", Message: missing.Error(), Missing: missing.Missing,
		}
	case errors.As(err, &invalid):
		return http.StatusBadRequest, httputil.ErrorResponse{
			Error: string(invalid.Kind), Message: invalid.Message, RequiresInput: invalid.RequiresInput(),
		}
	case errors.As(err, &badRange):
		return http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid_range", Message: badRange.Message}
	case errors.Is(err, dashboard.ErrRefreshInProgress):
		return http.StatusConflict, httputil.ErrorResponse{Error: "refresh_in_progress", Message: err.Error()}
	case errors.Is(err, dashboard.ErrRecommendationNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, httputil.ErrorResponse{Error: "not_found", Message: err.Error()}
	case errors.As(err, &authErr):
		return http.StatusInternalServerError, httputil.ErrorResponse{Error: "upstream_auth_error", Message: authErr.Error()}
	case errors.As(err, &execErr):
		return http.StatusInternalServerError, httputil.ErrorResponse{Error: "execution_failed", Message: execErr.Error()}
	case errors.As(err, &upstream):
		return http.StatusInternalServerError, httputil.ErrorResponse{Error: "upstream_error", Message: err.Error()}
	default:
		return http.StatusInternalServerError, httputil.ErrorResponse{Error: "internal_error", Message: safeErrorMessage(err)}
	}
}

// safeErrorMessage maps unclassified internal failures to public-safe text.
func safeErrorMessage(err error) string {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp"):
		return "Service temporarily unavailable"
	case strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "context canceled"):
		return "Request timed out"
	case strings.Contains(errStr, "pq:") ||
		strings.Contains(errStr, "sql") ||
		strings.Contains(errStr, "redis"):
		return "A storage error occurred"
	default:
		return "An internal error occurred"
	}
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
