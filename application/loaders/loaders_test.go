package loaders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgexplorer/application/store"
	"kgexplorer/domain/graph"
	"kgexplorer/infrastructure/cache"
	"kgexplorer/infrastructure/upstream"
	apperrors "kgexplorer/pkg/errors"
)

type fakeAPI struct {
	mu         sync.Mutex
	fetchCalls int

	submitFn func(input upstream.QueryInput) (*upstream.QueryResult, error)
	graphFn  func(graphID string, layer int, connections bool) (*graph.TreeNode, []graph.Connection, error)
	fetchFn  func(graphID, nodeID string) (*upstream.NodePayload, error)
	chatFn   func(input upstream.ChatInput) (*upstream.ChatResult, error)
	quizFn   func(graphID, nodeID string) ([]upstream.QuizQuestion, error)
}

func (f *fakeAPI) SubmitQuery(_ context.Context, input upstream.QueryInput) (*upstream.QueryResult, error) {
	return f.submitFn(input)
}

func (f *fakeAPI) GetGraph(_ context.Context, graphID string, layer int, connections bool) (*graph.TreeNode, []graph.Connection, error) {
	return f.graphFn(graphID, layer, connections)
}

func (f *fakeAPI) FetchNode(_ context.Context, graphID, nodeID string) (*upstream.NodePayload, error) {
	f.mu.Lock()
	f.fetchCalls++
	f.mu.Unlock()
	return f.fetchFn(graphID, nodeID)
}

func (f *fakeAPI) SendChat(_ context.Context, input upstream.ChatInput) (*upstream.ChatResult, error) {
	return f.chatFn(input)
}

func (f *fakeAPI) GetQuiz(_ context.Context, graphID, nodeID, _, _ string, _ int) ([]upstream.QuizQuestion, error) {
	return f.quizFn(graphID, nodeID)
}

func chainTree() *graph.TreeNode {
	return &graph.TreeNode{
		ID: "n0", Title: "Root", Layer: 0,
		Children: []graph.TreeNode{
			{
				ID: "n1", Title: "Middle", Layer: 1,
				Children: []graph.TreeNode{
					{ID: "n2", Title: "Leaf", Layer: 2},
				},
			},
		},
	}
}

func payloadFor(nodeID string) *upstream.NodePayload {
	return &upstream.NodePayload{
		Details:      &graph.NodeDetails{ID: nodeID, Title: "Title " + nodeID},
		RelatedNodes: []graph.RelatedNode{},
		Examples:     []graph.Example{},
	}
}

func TestGraphLoaderSubmit_LoadsGraphAndRecordsHistory(t *testing.T) {
	graphs := store.NewGraphStore()
	query := store.NewQueryState(nil)
	nodes := store.NewNodeState()
	quiz := store.NewQuizState()
	api := &fakeAPI{
		submitFn: func(input upstream.QueryInput) (*upstream.QueryResult, error) {
			assert.Equal(t, "how to delegate", input.Query)
			return &upstream.QueryResult{QueryID: "q1", GraphID: "g1"}, nil
		},
		graphFn: func(graphID string, layer int, connections bool) (*graph.TreeNode, []graph.Connection, error) {
			assert.Equal(t, "g1", graphID)
			assert.Equal(t, 4, layer)
			assert.True(t, connections)
			return chainTree(), nil, nil
		},
	}
	l := NewGraphLoader(graphs, query, nodes, quiz, api, nil)

	query.SetPendingQuery("how to delegate")
	result, err := l.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "g1", result.GraphID)

	snap := graphs.Snapshot()
	assert.Len(t, snap.Nodes, 3)
	assert.Len(t, snap.Links, 2)
	assert.Equal(t, 0, snap.CurrentLayer, "a fresh graph starts at the root layer")
	assert.Nil(t, snap.Selected)
	assert.False(t, snap.Loading)

	history := query.Snapshot().History
	require.Len(t, history, 1)
	assert.Equal(t, "q1", history[0].QueryID)
	assert.Equal(t, "g1", history[0].GraphID)
	assert.Equal(t, "q1", query.LatestQueryID())
}

func TestGraphLoaderSubmit_EmptyQueryRejected(t *testing.T) {
	l := NewGraphLoader(store.NewGraphStore(), store.NewQueryState(nil), store.NewNodeState(), store.NewQuizState(), &fakeAPI{}, nil)

	_, err := l.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestGraphLoaderSubmit_UpstreamFailureRecorded(t *testing.T) {
	query := store.NewQueryState(nil)
	api := &fakeAPI{
		submitFn: func(upstream.QueryInput) (*upstream.QueryResult, error) {
			return nil, apperrors.NewUpstreamError("api down", nil)
		},
	}
	l := NewGraphLoader(store.NewGraphStore(), query, store.NewNodeState(), store.NewQuizState(), api, nil)

	query.SetPendingQuery("q")
	_, err := l.Submit(context.Background())
	require.Error(t, err)

	snap := query.Snapshot()
	assert.NotEmpty(t, snap.Err)
	assert.Empty(t, snap.History, "failed submissions never enter the history")
	assert.False(t, snap.Loading)
}

func TestGraphLoaderLoad_ClearsNodePanels(t *testing.T) {
	graphs := store.NewGraphStore()
	nodes := store.NewNodeState()
	quiz := store.NewQuizState()
	nodes.SetResults(&graph.NodeDetails{ID: "old"}, nil, nil)
	quiz.SetQuestions([]store.QuizQuestion{{Question: "old?"}})

	api := &fakeAPI{
		graphFn: func(string, int, bool) (*graph.TreeNode, []graph.Connection, error) {
			return chainTree(), nil, nil
		},
	}
	l := NewGraphLoader(graphs, store.NewQueryState(nil), nodes, quiz, api, nil)

	require.NoError(t, l.Load(context.Background(), "g2"))

	assert.Nil(t, nodes.Snapshot().Details)
	assert.Empty(t, quiz.Snapshot().Questions)
}

func newDetailFixture(api *fakeAPI) (*store.NodeState, *NodeDetailLoader) {
	nodes := store.NewNodeState()
	detailCache := cache.NewDetailCache(cache.NewMemoryCache(100, cache.DefaultDetailTTL), 0, nil)
	return nodes, NewNodeDetailLoader(nodes, detailCache, api, nil, nil)
}

func TestNodeDetailLoader_FetchThenCacheHit(t *testing.T) {
	api := &fakeAPI{
		fetchFn: func(graphID, nodeID string) (*upstream.NodePayload, error) {
			return payloadFor(nodeID), nil
		},
	}
	nodes, l := newDetailFixture(api)

	require.NoError(t, l.Load(context.Background(), "g1", "n1"))
	snap := nodes.Snapshot()
	require.NotNil(t, snap.Details)
	assert.Equal(t, "n1", snap.Details.ID)
	assert.False(t, snap.Loading)
	assert.Equal(t, 1, api.fetchCalls)

	// A second selection of the same node is served from cache.
	require.NoError(t, l.Load(context.Background(), "g1", "n1"))
	assert.Equal(t, 1, api.fetchCalls)
	assert.Equal(t, "n1", nodes.Snapshot().Details.ID)
}

func TestNodeDetailLoader_ErrorRecorded(t *testing.T) {
	api := &fakeAPI{
		fetchFn: func(string, string) (*upstream.NodePayload, error) {
			return nil, errors.New("fetch failed")
		},
	}
	nodes, l := newDetailFixture(api)

	err := l.Load(context.Background(), "g1", "n1")
	require.Error(t, err)

	snap := nodes.Snapshot()
	assert.Equal(t, "fetch failed", snap.Err)
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.Details)
}

func TestNodeDetailLoader_StaleResponseDiscarded(t *testing.T) {
	releaseA := make(chan struct{})
	startedA := make(chan struct{})
	api := &fakeAPI{
		fetchFn: func(graphID, nodeID string) (*upstream.NodePayload, error) {
			if nodeID == "a" {
				close(startedA)
				<-releaseA
			}
			return payloadFor(nodeID), nil
		},
	}
	nodes, l := newDetailFixture(api)

	done := make(chan error, 1)
	go func() { done <- l.Load(context.Background(), "g1", "a") }()
	<-startedA

	// The selection moves to b while a is still in flight.
	require.NoError(t, l.Load(context.Background(), "g1", "b"))
	assert.Equal(t, "b", nodes.Snapshot().Details.ID)

	close(releaseA)
	require.NoError(t, <-done)

	snap := nodes.Snapshot()
	assert.Equal(t, "b", snap.Details.ID, "the late response for a must not overwrite b")
	assert.False(t, snap.Loading)
}

func TestNodeDetailLoader_MissSupersededByCacheHitClearsLoading(t *testing.T) {
	releaseA := make(chan struct{})
	startedA := make(chan struct{})
	api := &fakeAPI{
		fetchFn: func(graphID, nodeID string) (*upstream.NodePayload, error) {
			if nodeID == "a" {
				close(startedA)
				<-releaseA
			}
			return payloadFor(nodeID), nil
		},
	}
	nodes := store.NewNodeState()
	detailCache := cache.NewDetailCache(cache.NewMemoryCache(100, cache.DefaultDetailTTL), 0, nil)
	l := NewNodeDetailLoader(nodes, detailCache, api, nil, nil)

	// b is already cached, so selecting it is served without a fetch and
	// without touching the loading flag.
	b := payloadFor("b")
	detailCache.Put(context.Background(), "g1", "b", b.Details, b.RelatedNodes, b.Examples)

	done := make(chan error, 1)
	go func() { done <- l.Load(context.Background(), "g1", "a") }()
	<-startedA
	assert.True(t, nodes.Snapshot().Loading)

	require.NoError(t, l.Load(context.Background(), "g1", "b"))

	close(releaseA)
	require.NoError(t, <-done)

	snap := nodes.Snapshot()
	assert.Equal(t, "b", snap.Details.ID)
	assert.False(t, snap.Loading, "a discarded completion still lowers the flag it raised")
	assert.Equal(t, 1, api.fetchCalls)
}

func newChatFixture(api *fakeAPI) (*store.GraphStore, *store.ChatState, *ChatLoader) {
	graphs := store.NewGraphStore()
	chat := store.NewChatState(nil)
	query := store.NewQueryState(nil)
	query.AddToHistory(store.QueryRecord{QueryID: "q1", GraphID: "g1", Timestamp: time.Now()})
	return graphs, chat, NewChatLoader(chat, graphs, query, api, nil)
}

func TestChatLoader_AppendsUserAndAssistantMessages(t *testing.T) {
	var captured upstream.ChatInput
	api := &fakeAPI{
		chatFn: func(input upstream.ChatInput) (*upstream.ChatResult, error) {
			captured = input
			return &upstream.ChatResult{
				Message:            "Delegation builds trust.",
				SuggestedQuestions: []string{"How do I start?"},
			}, nil
		},
	}
	graphs, chat, l := newChatFixture(api)
	graphs.SetSelection(&store.SelectedNode{ID: "n1", GraphID: "g1"})
	chat.AddMessage(store.ChatMessage{Type: store.ChatMessageUser, Content: "earlier question"})

	require.NoError(t, l.Send(context.Background(), "what is delegation?"))

	assert.Equal(t, "n1", captured.NodeID)
	assert.Equal(t, "q1", captured.QueryID)
	require.Len(t, captured.History, 1, "the new message must not appear in the history")
	assert.Equal(t, "earlier question", captured.History[0].Content)

	messages := chat.Snapshot().Messages
	require.Len(t, messages, 3)
	assert.Equal(t, store.ChatMessageUser, messages[1].Type)
	assert.Equal(t, store.ChatMessageAssistant, messages[2].Type)
	assert.Equal(t, []string{"How do I start?"}, chat.Snapshot().SuggestedQuestions)
}

func TestChatLoader_FailureAppendsErrorMessage(t *testing.T) {
	api := &fakeAPI{
		chatFn: func(upstream.ChatInput) (*upstream.ChatResult, error) {
			return nil, apperrors.NewUpstreamError("chat down", nil)
		},
	}
	graphs, chat, l := newChatFixture(api)
	graphs.SetSelection(&store.SelectedNode{ID: "n1", GraphID: "g1"})

	err := l.Send(context.Background(), "hello")
	require.Error(t, err)

	messages := chat.Snapshot().Messages
	require.Len(t, messages, 2)
	assert.Equal(t, store.ChatMessageUser, messages[0].Type)
	assert.Equal(t, store.ChatMessageError, messages[1].Type)
	assert.False(t, chat.Snapshot().Loading)
}

func TestChatLoader_RequiresSelection(t *testing.T) {
	_, _, l := newChatFixture(&fakeAPI{})

	err := l.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func newQuizFixture(api *fakeAPI) (*store.GraphStore, *store.QuizState, *QuizLoader) {
	graphs := store.NewGraphStore()
	quiz := store.NewQuizState()
	query := store.NewQueryState(nil)
	return graphs, quiz, NewQuizLoader(quiz, graphs, query, api, nil, nil)
}

func TestQuizLoader_LoadsQuestions(t *testing.T) {
	api := &fakeAPI{
		quizFn: func(graphID, nodeID string) ([]upstream.QuizQuestion, error) {
			assert.Equal(t, "g1", graphID)
			assert.Equal(t, "n1", nodeID)
			return []upstream.QuizQuestion{
				{Question: "Q?", Options: map[string]string{"a": "A"}, CorrectAnswer: "a"},
			}, nil
		},
	}
	graphs, quiz, l := newQuizFixture(api)
	graphs.SetSelection(&store.SelectedNode{ID: "n1", GraphID: "g1"})

	require.NoError(t, l.Load(context.Background(), 5))

	snap := quiz.Snapshot()
	require.Len(t, snap.Questions, 1)
	assert.Equal(t, "a", snap.Questions[0].CorrectAnswer)
	assert.False(t, snap.Loading)
}

func TestQuizLoader_DiscardsWhenSelectionMoved(t *testing.T) {
	graphs, quiz, _ := newQuizFixture(&fakeAPI{})
	api := &fakeAPI{
		quizFn: func(string, string) ([]upstream.QuizQuestion, error) {
			// The user clicks another node while the quiz is generating.
			graphs.SetSelection(&store.SelectedNode{ID: "n2", GraphID: "g1"})
			return []upstream.QuizQuestion{{Question: "Q?"}}, nil
		},
	}
	l := NewQuizLoader(quiz, graphs, store.NewQueryState(nil), api, nil, nil)
	graphs.SetSelection(&store.SelectedNode{ID: "n1", GraphID: "g1"})

	require.NoError(t, l.Load(context.Background(), 5))
	assert.Empty(t, quiz.Snapshot().Questions)
}

func TestQuizLoader_RequiresSelection(t *testing.T) {
	_, _, l := newQuizFixture(&fakeAPI{})

	err := l.Load(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
