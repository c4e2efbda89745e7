// Package dashboard runs the refresh pipeline: fetch reports, normalize,
// derive insights and recommendations, and publish one payload.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ignite/ads-dashboard/internal/config"
	"github.com/ignite/ads-dashboard/internal/googleads"
	"github.com/ignite/ads-dashboard/internal/insights"
	"github.com/ignite/ads-dashboard/internal/metrics"
	"github.com/ignite/ads-dashboard/internal/pkg/distlock"
	"github.com/ignite/ads-dashboard/internal/pkg/logger"
	"github.com/ignite/ads-dashboard/internal/recommend"
	"github.com/ignite/ads-dashboard/internal/storage"
)

// LatestKey is the storage key of the current payload.
const LatestKey = "latest"

var (
	// ErrRefreshInProgress is returned when another refresh holds the lock.
	ErrRefreshInProgress = errors.New("a refresh is already running")
	// ErrRecommendationNotFound is returned for an unknown recommendation id.
	ErrRecommendationNotFound = errors.New("recommendation not found")
	// ErrNoPayload is returned before the first successful refresh.
	ErrNoPayload = fmt.Errorf("no dashboard data yet: %w", storage.ErrNotFound)
)

// Notifier reports refresh outcomes. Failures to notify are logged only.
type Notifier interface {
	RefreshSucceeded(ctx context.Context, p *Payload) error
	RefreshFailed(ctx context.Context, r metrics.DateRange, cause error) error
}

// LockFactory returns a fresh lock for one refresh attempt.
type LockFactory func() distlock.Lock

// Service owns the refresh cycle for one customer.
type Service struct {
	connector  googleads.Connector
	store      storage.Store
	newLock    LockFactory
	notifier   Notifier
	cfg        config.DashboardConfig
	customerID string
	now        func() time.Time
}

// NewService wires the pipeline. notifier may be nil.
func NewService(connector googleads.Connector, store storage.Store, newLock LockFactory, notifier Notifier, cfg config.DashboardConfig, customerID string) *Service {
	return &Service{
		connector:  connector,
		store:      store,
		newLock:    newLock,
		notifier:   notifier,
		cfg:        cfg,
		customerID: customerID,
		now:        time.Now,
	}
}

// LockKey names the refresh lock for a customer.
func LockKey(customerID string) string { return "dashboard:refresh:" + customerID }

// Refresh rebuilds and publishes the payload. Only one refresh per customer
// runs at a time; a concurrent call gets ErrRefreshInProgress.
func (s *Service) Refresh(ctx context.Context, req RangeRequest) (*Payload, error) {
	dr, err := ResolveRange(s.now(), req, s.cfg.DefaultDays, s.cfg.MaxDays)
	if err != nil {
		return nil, err
	}

	lock := s.newLock()
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring refresh lock: %w", err)
	}
	if !acquired {
		return nil, ErrRefreshInProgress
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			logger.Warn("failed to release refresh lock", "error", err.Error())
		}
	}()

	start := s.now()
	logger.Info("dashboard refresh started", "customer_id", s.customerID, "start", dr.Start, "end", dr.End)

	payload, err := s.build(ctx, dr)
	if err == nil {
		err = s.publish(ctx, payload)
	}
	if err != nil {
		logger.Error("dashboard refresh failed", "customer_id", s.customerID, "error", err.Error())
		if s.notifier != nil {
			if nerr := s.notifier.RefreshFailed(ctx, dr, err); nerr != nil {
				logger.Warn("failed to send refresh failure email", "error", nerr.Error())
			}
		}
		return nil, err
	}

	logger.Info("dashboard refresh completed",
		"customer_id", s.customerID,
		"campaigns", len(payload.Campaigns),
		"insights", len(payload.Insights),
		"recommendations", len(payload.Recommendations),
		"duration", s.now().Sub(start).String())

	if s.notifier != nil {
		if nerr := s.notifier.RefreshSucceeded(ctx, payload); nerr != nil {
			logger.Warn("failed to send refresh report", "error", nerr.Error())
		}
	}
	return payload, nil
}

func (s *Service) build(ctx context.Context, dr metrics.DateRange) (*Payload, error) {
	platform, err := s.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}

	report, err := FetchReport(ctx, platform, dr)
	if err != nil {
		return nil, err
	}

	summary := metrics.Summarize(report.Campaigns, report.Keywords)
	ins := insights.Engine{Currency: s.cfg.Currency, Limit: s.cfg.InsightLimit}.
		Generate(summary, report.Campaigns, report.Keywords, report.SearchQueries)
	recs := recommend.Engine{Currency: s.cfg.Currency, Limit: s.cfg.RecommendationLimit}.
		Generate(summary, report.Campaigns, report.Keywords, report.SearchQueries, recommend.CampaignIDsByName(report.Campaigns))

	return &Payload{
		CustomerID:      platform.CustomerID(),
		AccountName:     s.cfg.AccountName,
		GeneratedAt:     s.now().UTC(),
		DateRange:       dr,
		Summary:         summary,
		Campaigns:       metrics.ActiveCampaigns(report.Campaigns),
		Keywords:        metrics.TopKeywords(report.Keywords, s.cfg.TopKeywords),
		SearchQueries:   metrics.TopSearchQueries(report.SearchQueries, s.cfg.TopSearchQueries),
		GeoPerformance:  metrics.TopGeo(report.Geo, s.cfg.TopGeoRows),
		TimePerformance: metrics.SummarizeTime(report.Time),
		Insights:        ins,
		Recommendations: recs,
	}, nil
}

// FetchReport runs the report queries concurrently. Campaign and keyword
// reports are required; search terms, geo and the hour-of-week breakdown
// degrade to empty because not every account can read them.
func FetchReport(ctx context.Context, platform googleads.Platform, dr metrics.DateRange) (metrics.Report, error) {
	var report metrics.Report
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := platform.Search(gctx, metrics.CampaignQuery(dr))
		if err != nil {
			return fmt.Errorf("campaign report: %w", err)
		}
		report.Campaigns = metrics.NormalizeCampaigns(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := platform.Search(gctx, metrics.KeywordQuery(dr))
		if err != nil {
			return fmt.Errorf("keyword report: %w", err)
		}
		report.Keywords = metrics.NormalizeKeywords(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := platform.Search(gctx, metrics.SearchTermQuery(dr))
		if err != nil {
			logger.Warn("search term report unavailable", "error", err.Error())
			rows = nil
		}
		report.SearchQueries = metrics.NormalizeSearchQueries(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := platform.Search(gctx, metrics.GeoQuery(dr))
		if err != nil {
			logger.Warn("user location report unavailable, falling back to geographic view", "error", err.Error())
			rows, err = platform.Search(gctx, metrics.GeoFallbackQuery(dr))
			if err != nil {
				logger.Warn("geographic report unavailable", "error", err.Error())
				rows = nil
			}
		}
		report.Geo = metrics.NormalizeGeo(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := platform.Search(gctx, metrics.TimeQuery(dr))
		if err != nil {
			logger.Warn("time performance report unavailable", "error", err.Error())
			rows = nil
		}
		report.Time = metrics.NormalizeTime(rows)
		return nil
	})

	if err := g.Wait(); err != nil {
		return metrics.Report{}, err
	}
	return report, nil
}

func (s *Service) publish(ctx context.Context, p *Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}
	if err := s.store.Put(ctx, LatestKey, data); err != nil {
		return fmt.Errorf("publishing payload: %w", err)
	}
	return nil
}

// LatestRaw returns the stored payload document as-is.
func (s *Service) LatestRaw(ctx context.Context) ([]byte, error) {
	data, err := s.store.Get(ctx, LatestKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoPayload
	}
	return data, err
}

// Latest returns the stored payload.
func (s *Service) Latest(ctx context.Context) (*Payload, error) {
	data, err := s.LatestRaw(ctx)
	if err != nil {
		return nil, err
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding stored payload: %w", err)
	}
	return &p, nil
}

// FindRecommendation resolves a recommendation id against the published
// payload.
func (s *Service) FindRecommendation(ctx context.Context, id string) (recommend.Recommendation, error) {
	p, err := s.Latest(ctx)
	if err != nil {
		return recommend.Recommendation{}, err
	}
	r, ok := p.Recommendation(id)
	if !ok {
		return recommend.Recommendation{}, fmt.Errorf("%w: %s", ErrRecommendationNotFound, id)
	}
	return r, nil
}
