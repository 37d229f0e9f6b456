package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appledger "github.com/fleet/backend/internal/application/ledger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisSummaryCache implements the inventory summary cache using Redis.
// Suitable for distributed deployments where several instances must see
// invalidations from each other.
type RedisSummaryCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRedisSummaryCache creates a new Redis-based summary cache
func NewRedisSummaryCache(cfg RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisSummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = defaultSummaryTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisSummaryCache{
		client:    client,
		keyPrefix: "ledger:summary:",
		ttl:       ttl,
		logger:    logger,
	}, nil
}

// NewRedisSummaryCacheWithClient creates a cache with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisSummaryCacheWithClient(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	if ttl <= 0 {
		ttl = defaultSummaryTTL
	}
	return &RedisSummaryCache{
		client:    client,
		keyPrefix: "ledger:summary:",
		ttl:       ttl,
		logger:    zap.NewNop(),
	}
}

func (c *RedisSummaryCache) key(tenantID uuid.UUID) string {
	return c.keyPrefix + tenantID.String()
}

// Get retrieves the cached summary for a tenant. Cache errors degrade to a
// miss: the summary is recomputed rather than the request failing.
func (c *RedisSummaryCache) Get(ctx context.Context, tenantID uuid.UUID) (*appledger.InventorySummaryResponse, bool) {
	payload, err := c.client.Get(ctx, c.key(tenantID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("summary cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var summary appledger.InventorySummaryResponse
	if err := json.Unmarshal(payload, &summary); err != nil {
		c.logger.Warn("summary cache entry corrupt, dropping", zap.Error(err))
		c.client.Del(ctx, c.key(tenantID))
		return nil, false
	}
	return &summary, true
}

// Set stores the summary for a tenant
func (c *RedisSummaryCache) Set(ctx context.Context, tenantID uuid.UUID, summary *appledger.InventorySummaryResponse) {
	if summary == nil {
		return
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		c.logger.Warn("summary cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(tenantID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("summary cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached summary for a tenant
func (c *RedisSummaryCache) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	if err := c.client.Del(ctx, c.key(tenantID)).Err(); err != nil {
		c.logger.Warn("summary cache invalidation failed", zap.Error(err))
	}
}

// Close closes the Redis client
func (c *RedisSummaryCache) Close() error {
	return c.client.Close()
}

// Ensure RedisSummaryCache implements SummaryCache
var _ appledger.SummaryCache = (*RedisSummaryCache)(nil)
