package loaders

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"kgexplorer/application/store"
	"kgexplorer/infrastructure/cache"
	"kgexplorer/infrastructure/upstream"
	"kgexplorer/pkg/observability"
)

// NodeDetailLoader resolves the detail panel data for a selected node,
// serving from the detail cache when possible. Every Load call takes a new
// request token; a response whose token is no longer current is discarded,
// so rapid reselection never shows data for a previously selected node.
type NodeDetailLoader struct {
	nodes *store.NodeState
	cache *cache.DetailCache
	api   API
	token atomic.Uint64
	// loadingToken holds the token of the request that last raised the
	// loading flag, so exactly one completion lowers it.
	loadingToken atomic.Uint64
	group        singleflight.Group
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewNodeDetailLoader creates a detail loader writing into the node state.
func NewNodeDetailLoader(nodes *store.NodeState, detailCache *cache.DetailCache, api API, metrics *observability.Metrics, logger *zap.Logger) *NodeDetailLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NodeDetailLoader{
		nodes:   nodes,
		cache:   detailCache,
		api:     api,
		metrics: metrics,
		logger:  logger,
	}
}

// Load fetches details, related nodes and examples for one node and commits
// them atomically. A cache hit is applied without flipping the loading flag.
func (l *NodeDetailLoader) Load(ctx context.Context, graphID, nodeID string) error {
	token := l.token.Add(1)

	if entry := l.cache.Get(ctx, graphID, nodeID); entry != nil {
		l.metrics.DetailCacheHit()
		if l.current(token) {
			l.nodes.SetResults(entry.Details, entry.RelatedNodes, entry.Examples)
		}
		return nil
	}
	l.metrics.DetailCacheMiss()

	l.nodes.SetLoading(true)
	l.loadingToken.Store(token)
	// The flag this call raised must come back down on every exit, even
	// when the response is discarded as stale. Only a newer miss that has
	// taken over the flag is allowed to leave it up.
	defer func() {
		if l.loadingToken.CompareAndSwap(token, 0) {
			l.nodes.SetLoading(false)
		}
	}()

	// Concurrent loads of the same node collapse into one upstream call.
	payload, err, _ := l.singleFetch(ctx, graphID, nodeID)
	if err != nil {
		if l.current(token) {
			l.nodes.SetError(err.Error())
		}
		return err
	}

	l.cache.Put(ctx, graphID, nodeID, payload.Details, payload.RelatedNodes, payload.Examples)

	if !l.current(token) {
		l.metrics.StaleDiscard()
		l.logger.Debug("discarding stale node detail response",
			zap.String("graph_id", graphID),
			zap.String("node_id", nodeID))
		return nil
	}

	l.nodes.SetResults(payload.Details, payload.RelatedNodes, payload.Examples)
	return nil
}

func (l *NodeDetailLoader) singleFetch(ctx context.Context, graphID, nodeID string) (*upstream.NodePayload, error, bool) {
	v, err, shared := l.group.Do(graphID+":"+nodeID, func() (any, error) {
		return l.api.FetchNode(ctx, graphID, nodeID)
	})
	if err != nil {
		return nil, err, shared
	}
	return v.(*upstream.NodePayload), nil, shared
}

func (l *NodeDetailLoader) current(token uint64) bool {
	return token == l.token.Load()
}
