package loaders

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"kgexplorer/application/store"
	"kgexplorer/domain/graph"
	"kgexplorer/infrastructure/upstream"
	apperrors "kgexplorer/pkg/errors"
)

// fetchLayerDepth is the depth requested from the graph endpoint. The full
// hierarchy is fetched once; layer filtering happens locally.
const fetchLayerDepth = 4

// GraphLoader submits queries and loads the resulting graphs into the store.
type GraphLoader struct {
	graphs *store.GraphStore
	query  *store.QueryState
	nodes  *store.NodeState
	quiz   *store.QuizState
	api    API
	logger *zap.Logger
}

// NewGraphLoader creates a graph loader writing into the given stores.
func NewGraphLoader(graphs *store.GraphStore, query *store.QueryState, nodes *store.NodeState, quiz *store.QuizState, api API, logger *zap.Logger) *GraphLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphLoader{
		graphs: graphs,
		query:  query,
		nodes:  nodes,
		quiz:   quiz,
		api:    api,
		logger: logger,
	}
}

// Submit commits the pending query text, submits it upstream and loads the
// generated graph. The new graph replaces the old one with the selection
// cleared and the layer reset to the root.
func (l *GraphLoader) Submit(ctx context.Context) (*upstream.QueryResult, error) {
	text := strings.TrimSpace(l.query.CommitPending())
	if text == "" {
		return nil, apperrors.NewValidationError("query text is empty")
	}

	snap := l.query.Snapshot()
	documentID := ""
	if snap.SelectedDocument != nil {
		documentID = snap.SelectedDocument.ID
	}

	l.query.SetLoading(true)
	l.query.SetError("")
	defer l.query.SetLoading(false)

	result, err := l.api.SubmitQuery(ctx, upstream.QueryInput{
		Query:         text,
		DocumentID:    documentID,
		CompanySize:   snap.ContextParams.CompanySize,
		Maturity:      snap.ContextParams.CompanyMaturity,
		Industry:      snap.ContextParams.Industry,
		Role:          snap.ContextParams.ManagementRole,
		ChallengeType: snap.ContextParams.ChallengeType,
		Volatility:    snap.ContextParams.MarketVolatility,
		Pressure:      snap.ContextParams.CompetitivePressure,
		Regulatory:    snap.ContextParams.RegulatoryEnvironment,
	})
	if err != nil {
		l.query.SetError(err.Error())
		return nil, err
	}

	l.query.AddToHistory(store.QueryRecord{
		Query:         text,
		Timestamp:     time.Now().UTC(),
		GraphID:       result.GraphID,
		QueryID:       result.QueryID,
		DocumentID:    documentID,
		ContextParams: snap.ContextParams,
	})
	l.logger.Info("query submitted",
		zap.String("query_id", result.QueryID),
		zap.String("graph_id", result.GraphID))

	if err := l.Load(ctx, result.GraphID); err != nil {
		return nil, err
	}
	return result, nil
}

// Load fetches a graph by id and replaces the store contents. Used both
// after a submission and when revisiting a graph from the history.
func (l *GraphLoader) Load(ctx context.Context, graphID string) error {
	if graphID == "" {
		return apperrors.NewValidationError("graph id is empty")
	}

	l.graphs.SetLoading(true)
	l.graphs.SetError("")
	defer l.graphs.SetLoading(false)

	root, connections, err := l.api.GetGraph(ctx, graphID, fetchLayerDepth, true)
	if err != nil {
		l.graphs.SetError(err.Error())
		return err
	}

	nodes, links := graph.Flatten(root, connections, graphID)
	l.graphs.ReplaceGraph(nodes, links)
	l.graphs.SetLayer(0)
	l.graphs.SetSelection(nil)
	l.nodes.Clear()
	l.quiz.Clear()

	l.logger.Info("graph loaded",
		zap.String("graph_id", graphID),
		zap.Int("nodes", len(nodes)),
		zap.Int("links", len(links)))
	return nil
}
