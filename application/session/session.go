// Package session ties one exploration session together: its stores, the
// projection, the interaction controller and the loaders. Each session is
// isolated; nothing is shared between sessions except the detail cache and
// the upstream client.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"kgexplorer/application/interaction"
	"kgexplorer/application/loaders"
	"kgexplorer/application/projection"
	"kgexplorer/application/store"
	"kgexplorer/infrastructure/cache"
	"kgexplorer/pkg/observability"
)

// Session is one live exploration session.
type Session struct {
	ID        string
	CreatedAt time.Time

	Graph *store.GraphStore
	Query *store.QueryState
	Nodes *store.NodeState
	Chat  *store.ChatState
	Quiz  *store.QuizState

	Projector  *projection.Projector
	Controller *interaction.Controller

	GraphLoader *loaders.GraphLoader
	NodeLoader  *loaders.NodeDetailLoader
	ChatLoader  *loaders.ChatLoader
	QuizLoader  *loaders.QuizLoader

	lastActive time.Time
}

// newSession builds a fully wired session. Selecting a node kicks off the
// detail load in the background; its result lands in the node state when it
// is still the current selection.
func newSession(id string, persister store.Persister, api loaders.API, detailCache *cache.DetailCache, metrics *observability.Metrics, logger *zap.Logger) *Session {
	logger = logger.With(zap.String("session_id", id))

	graphs := store.NewGraphStore()
	query := store.NewQueryState(persister)
	nodes := store.NewNodeState()
	chat := store.NewChatState(persister)
	quiz := store.NewQuizState()

	s := &Session{
		ID:         id,
		CreatedAt:  time.Now().UTC(),
		Graph:      graphs,
		Query:      query,
		Nodes:      nodes,
		Chat:       chat,
		Quiz:       quiz,
		Projector:  projection.NewProjector(metrics),
		Controller: interaction.NewController(graphs, logger),

		GraphLoader: loaders.NewGraphLoader(graphs, query, nodes, quiz, api, logger),
		NodeLoader:  loaders.NewNodeDetailLoader(nodes, detailCache, api, metrics, logger),
		ChatLoader:  loaders.NewChatLoader(chat, graphs, query, api, logger),
		QuizLoader:  loaders.NewQuizLoader(quiz, graphs, query, api, metrics, logger),

		lastActive: time.Now().UTC(),
	}

	s.Controller.OnSelect(func(sel store.SelectedNode) {
		go func() {
			if err := s.NodeLoader.Load(context.Background(), sel.GraphID, sel.ID); err != nil {
				logger.Warn("node detail load failed",
					zap.String("node_id", sel.ID), zap.Error(err))
			}
		}()
	})

	return s
}

// View projects the current graph state for rendering.
func (s *Session) View() *projection.View {
	return s.Projector.Project(s.Graph.Snapshot())
}
