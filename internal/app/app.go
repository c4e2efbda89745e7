// Package app wires configuration into the long-lived clients shared by the
// server and the one-shot refresh command.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/ads-dashboard/internal/config"
	"github.com/ignite/ads-dashboard/internal/dashboard"
	"github.com/ignite/ads-dashboard/internal/executor"
	"github.com/ignite/ads-dashboard/internal/googleads"
	"github.com/ignite/ads-dashboard/internal/notify"
	"github.com/ignite/ads-dashboard/internal/pkg/distlock"
	"github.com/ignite/ads-dashboard/internal/pkg/logger"
	"github.com/ignite/ads-dashboard/internal/storage"
)

// App holds the wired dependencies. Redis and DB are nil when not configured.
type App struct {
	Config    *config.Config
	Redis     *redis.Client
	DB        *sql.DB
	Store     storage.Store
	Ads       *googleads.Client
	Dashboard *dashboard.Service
	Executor  *executor.Executor
}

// New connects the optional Redis and Postgres clients, builds the payload
// store and the refresh pipeline. Unreachable Redis is dropped with a
// warning; an unreachable database is fatal only when storage needs it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))

	a := &App{Config: cfg}

	if cfg.Redis.URL != "" {
		a.Redis = connectRedis(ctx, cfg.Redis.URL)
	}

	if cfg.Database.URL != "" {
		db, err := openDatabase(ctx, cfg.Database.URL)
		if err != nil {
			if strings.EqualFold(cfg.Storage.Type, storage.TypePostgres) {
				return nil, err
			}
			logger.Warn("database unavailable, continuing without it", "error", err.Error())
		} else {
			a.DB = db
		}
	}

	store, err := storage.New(ctx, cfg.Storage, a.Redis, a.DB)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store

	var notifier dashboard.Notifier
	if cfg.Notify.Enabled {
		mailer, err := notify.NewMailer(ctx, cfg.Notify, cfg.Dashboard)
		if err != nil {
			logger.Warn("refresh notifications disabled", "error", err.Error())
		} else {
			notifier = mailer
		}
	}

	a.Ads = googleads.NewClient(cfg.GoogleAds)

	customerID := cfg.GoogleAds.CustomerID
	ttl := cfg.Dashboard.RefreshLockTTL()
	newLock := func() distlock.Lock {
		return distlock.NewLock(a.Redis, a.DB, dashboard.LockKey(customerID), ttl)
	}
	a.Dashboard = dashboard.NewService(a.Ads, store, newLock, notifier, cfg.Dashboard, customerID)

	a.Executor = executor.New(a.Ads, executor.Options{
		CustomerID: customerID,
		UIBaseURL:  cfg.GoogleAds.UIBaseURL,
		Currency:   cfg.Dashboard.Currency,
	})

	logger.Info("dashboard wired",
		"customer_id", customerID,
		"storage", store.Name(),
		"lock_backend", lockBackend(a.Redis, a.DB),
		"notify", notifier != nil)
	return a, nil
}

// Close releases the Redis and database connections.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Warn("closing redis", "error", err.Error())
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			logger.Warn("closing database", "error", err.Error())
		}
	}
}

func connectRedis(ctx context.Context, redisURL string) *redis.Client {
	var client *redis.Client
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	} else {
		client = redis.NewClient(opts)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis connection failed, continuing without it", "error", err.Error())
		client.Close()
		return nil
	}
	logger.Info("redis connected")
	return client
}

// openDatabase opens Postgres with connect and statement timeouts so a stuck
// database cannot hold a refresh lock indefinitely.
func openDatabase(ctx context.Context, dbURL string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(dbURL, "?") {
		sep = "&"
	}
	if !strings.Contains(dbURL, "connect_timeout") {
		dbURL += sep + "connect_timeout=5"
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("database connected")
	return db, nil
}

func lockBackend(rdb *redis.Client, db *sql.DB) string {
	switch {
	case rdb != nil:
		return "redis"
	case db != nil:
		return "postgres"
	default:
		return "local"
	}
}
