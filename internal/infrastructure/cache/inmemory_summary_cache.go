package cache

import (
	"context"
	"sync"
	"time"

	appledger "github.com/fleet/backend/internal/application/ledger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// defaultSummaryTTL bounds how stale a cached inventory summary may be
// served when no invalidation event arrives.
const defaultSummaryTTL = 5 * time.Minute

// InMemorySummaryCache implements the inventory summary cache using
// in-process storage. Entries are invalidated explicitly by the ledger's
// event handler when a route mutates inventory, with a TTL backstop.
type InMemorySummaryCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*summaryEntry
	ttl     time.Duration
	logger  *zap.Logger
}

type summaryEntry struct {
	summary   *appledger.InventorySummaryResponse
	expiresAt time.Time
}

// InMemorySummaryCacheOption is a functional option for configuring the cache
type InMemorySummaryCacheOption func(*InMemorySummaryCache)

// WithSummaryTTL sets the TTL backstop for cached summaries
func WithSummaryTTL(ttl time.Duration) InMemorySummaryCacheOption {
	return func(c *InMemorySummaryCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithSummaryLogger sets the logger for the cache
func WithSummaryLogger(logger *zap.Logger) InMemorySummaryCacheOption {
	return func(c *InMemorySummaryCache) {
		c.logger = logger
	}
}

// NewInMemorySummaryCache creates a new in-memory summary cache
func NewInMemorySummaryCache(opts ...InMemorySummaryCacheOption) *InMemorySummaryCache {
	cache := &InMemorySummaryCache{
		entries: make(map[uuid.UUID]*summaryEntry),
		ttl:     defaultSummaryTTL,
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// Get retrieves the cached summary for a tenant
func (c *InMemorySummaryCache) Get(_ context.Context, tenantID uuid.UUID) (*appledger.InventorySummaryResponse, bool) {
	c.mu.RLock()
	entry, ok := c.entries[tenantID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, tenantID)
		c.mu.Unlock()
		return nil, false
	}

	c.logger.Debug("summary cache hit", zap.String("tenant_id", tenantID.String()))
	return entry.summary, true
}

// Set stores the summary for a tenant
func (c *InMemorySummaryCache) Set(_ context.Context, tenantID uuid.UUID, summary *appledger.InventorySummaryResponse) {
	if summary == nil {
		return
	}

	c.mu.Lock()
	c.entries[tenantID] = &summaryEntry{
		summary:   summary,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Invalidate drops the cached summary for a tenant
func (c *InMemorySummaryCache) Invalidate(_ context.Context, tenantID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, tenantID)
	c.mu.Unlock()

	c.logger.Debug("summary cache invalidated", zap.String("tenant_id", tenantID.String()))
}

// Ensure InMemorySummaryCache implements SummaryCache
var _ appledger.SummaryCache = (*InMemorySummaryCache)(nil)
