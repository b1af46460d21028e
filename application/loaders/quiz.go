package loaders

import (
	"context"

	"go.uber.org/zap"

	"kgexplorer/application/store"
	apperrors "kgexplorer/pkg/errors"
	"kgexplorer/pkg/observability"
)

// QuizLoader fetches quiz questions for the selected node. A response that
// arrives after the selection moved to another node is discarded.
type QuizLoader struct {
	quiz    *store.QuizState
	graphs  *store.GraphStore
	query   *store.QueryState
	api     API
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewQuizLoader creates a quiz loader writing into the quiz state.
func NewQuizLoader(quiz *store.QuizState, graphs *store.GraphStore, query *store.QueryState, api API, metrics *observability.Metrics, logger *zap.Logger) *QuizLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizLoader{
		quiz:    quiz,
		graphs:  graphs,
		query:   query,
		api:     api,
		metrics: metrics,
		logger:  logger,
	}
}

// Load fetches numQuestions questions for the currently selected node.
func (l *QuizLoader) Load(ctx context.Context, numQuestions int) error {
	selected := l.graphs.Selected()
	if selected == nil {
		return apperrors.NewValidationError("no node selected for quiz")
	}

	querySnap := l.query.Snapshot()
	documentID := ""
	if querySnap.SelectedDocument != nil {
		documentID = querySnap.SelectedDocument.ID
	}

	l.quiz.SetLoading(true)
	defer l.quiz.SetLoading(false)

	questions, err := l.api.GetQuiz(ctx, selected.GraphID, selected.ID, l.query.LatestQueryID(), documentID, numQuestions)
	if err != nil {
		l.quiz.SetError(err.Error())
		return err
	}

	// The response is only applied if the same node is still selected.
	if now := l.graphs.Selected(); now == nil || now.ID != selected.ID || now.GraphID != selected.GraphID {
		l.metrics.StaleDiscard()
		l.logger.Debug("discarding stale quiz response",
			zap.String("node_id", selected.ID))
		return nil
	}

	converted := make([]store.QuizQuestion, 0, len(questions))
	for _, q := range questions {
		converted = append(converted, store.QuizQuestion{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}
	l.quiz.SetQuestions(converted)
	return nil
}
