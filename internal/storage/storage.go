// Package storage persists the dashboard payload. Every backend replaces a
// key's value in a single write so readers never observe a partial payload.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/ads-dashboard/internal/config"
	"github.com/ignite/ads-dashboard/internal/pkg/logger"
)

// ErrNotFound is returned by Get when nothing was stored under the key.
var ErrNotFound = errors.New("storage: not found")

// Store keeps opaque JSON documents by key.
type Store interface {
	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, data []byte) error
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Name identifies the backend in logs and health checks.
	Name() string
}

// Backend names accepted in StorageConfig.Type.
const (
	TypeLocal    = "local"
	TypeS3       = "s3"
	TypeDynamoDB = "dynamodb"
	TypeRedis    = "redis"
	TypePostgres = "postgres"
)

// New builds the Store selected by cfg.Type. rdb and db are shared clients
// owned by the caller; they are only required by the redis and postgres
// backends.
func New(ctx context.Context, cfg config.StorageConfig, rdb *redis.Client, db *sql.DB) (Store, error) {
	var (
		store Store
		err   error
	)

	switch strings.ToLower(cfg.Type) {
	case "", TypeLocal:
		store, err = NewLocalStore(cfg.LocalPath)
	case TypeS3, "aws":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("storage type %q requires s3_bucket", cfg.Type)
		}
		awsCfg, cerr := loadAWSConfig(ctx, cfg.AWSRegion, cfg.GetAWSProfile())
		if cerr != nil {
			return nil, cerr
		}
		store = NewS3Store(newS3Client(awsCfg), cfg.S3Bucket, cfg.S3Prefix)
	case TypeDynamoDB:
		if cfg.DynamoDBTable == "" {
			return nil, fmt.Errorf("storage type %q requires dynamodb_table", cfg.Type)
		}
		awsCfg, cerr := loadAWSConfig(ctx, cfg.AWSRegion, cfg.GetAWSProfile())
		if cerr != nil {
			return nil, cerr
		}
		store = NewDynamoStore(newDynamoClient(awsCfg), cfg.DynamoDBTable)
	case TypeRedis:
		if rdb == nil {
			return nil, errors.New("storage type redis requires REDIS_URL")
		}
		store = NewRedisStore(rdb, cfg.RedisKey)
	case TypePostgres:
		if db == nil {
			return nil, errors.New("storage type postgres requires DATABASE_URL")
		}
		store = NewPostgresStore(db)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("storage initialized", "backend", store.Name())
	return store, nil
}
