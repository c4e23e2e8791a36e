package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Redis defaults.
const (
	defaultKeyPrefix = "campaignlens:"
	DefaultTTL       = 10 * time.Minute
)

// Redis stores reports as JSON strings with a TTL.
type Redis struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis creates a Redis backend from connection settings.
func NewRedis(cfg types.RedisConfig, ttl time.Duration) *Redis {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisFromClient(client, cfg.KeyPrefix, ttl)
}

// NewRedisFromClient creates a Redis backend from an existing client (useful for testing).
func NewRedisFromClient(client *goredis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// Name returns the backend identifier.
func (r *Redis) Name() string { return string(types.CacheRedis) }

func (r *Redis) key(k string) string { return r.prefix + "report:" + k }

// Ping checks connectivity to the Redis server.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Get looks up key.
func (r *Redis) Get(ctx context.Context, key string) (types.Report, bool, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return types.Report{}, false, nil
	}
	if err != nil {
		return types.Report{}, false, err
	}
	var rep types.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return types.Report{}, false, fmt.Errorf("decoding cached report: %w", err)
	}
	return rep, true, nil
}

// Set stores rep under key for the configured TTL.
func (r *Redis) Set(ctx context.Context, key string, rep types.Report) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return r.client.Set(ctx, r.key(key), data, r.ttl).Err()
}

// Close closes the client.
func (r *Redis) Close() error { return r.client.Close() }
