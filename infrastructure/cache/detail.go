package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kgexplorer/domain/graph"
)

// DefaultDetailTTL is how long a node's supplementary data stays valid.
const DefaultDetailTTL = 24 * time.Hour

// DetailEntry is the cached supplementary payload for one node.
type DetailEntry struct {
	Timestamp    time.Time           `json:"timestamp"`
	Details      *graph.NodeDetails  `json:"details"`
	RelatedNodes []graph.RelatedNode `json:"relatedNodes"`
	Examples     []graph.Example     `json:"examples"`
}

// DetailCache stores previously fetched node details keyed by
// (graphID, nodeID). Entries expire by timestamp; expiry is checked lazily
// on lookup and expired or malformed entries are purged then reported as
// misses. Writes are idempotent; concurrent writers to the same key resolve
// last-writer-wins.
type DetailCache struct {
	backend Cache
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewDetailCache creates a detail cache over a byte-level backend.
func NewDetailCache(backend Cache, ttl time.Duration, logger *zap.Logger) *DetailCache {
	if ttl <= 0 {
		ttl = DefaultDetailTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DetailCache{
		backend: backend,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// WithClock overrides the cache's clock. Used in tests.
func (c *DetailCache) WithClock(now func() time.Time) *DetailCache {
	c.now = now
	return c
}

// Get returns the unexpired entry for (graphID, nodeID), or nil on a miss.
func (c *DetailCache) Get(ctx context.Context, graphID, nodeID string) *DetailEntry {
	key := detailKey(graphID, nodeID)

	raw, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.Warn("detail cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	var entry DetailEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Timestamp.IsZero() {
		// Corrupt entries are purged and treated as misses.
		c.logger.Warn("purging malformed detail cache entry", zap.String("key", key))
		_ = c.backend.Delete(ctx, key)
		return nil
	}

	if c.now().Sub(entry.Timestamp) >= c.ttl {
		_ = c.backend.Delete(ctx, key)
		return nil
	}

	return &entry
}

// Put stores an entry for (graphID, nodeID) stamped with the current time.
func (c *DetailCache) Put(ctx context.Context, graphID, nodeID string, details *graph.NodeDetails, related []graph.RelatedNode, examples []graph.Example) {
	entry := DetailEntry{
		Timestamp:    c.now(),
		Details:      details,
		RelatedNodes: related,
		Examples:     examples,
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("failed to encode detail cache entry", zap.Error(err))
		return
	}

	key := detailKey(graphID, nodeID)
	if err := c.backend.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("detail cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes the entry for (graphID, nodeID).
func (c *DetailCache) Invalidate(ctx context.Context, graphID, nodeID string) {
	_ = c.backend.Delete(ctx, detailKey(graphID, nodeID))
}

func detailKey(graphID, nodeID string) string {
	return fmt.Sprintf("node-details:%s:%s", graphID, nodeID)
}
