// Package loaders drives the asynchronous fetch flows: query submission,
// graph loading, node details with caching, chat and quizzes. Loaders own
// the loading and error flags of the stores they write to, and guard
// against late responses overwriting newer state.
package loaders

import (
	"context"

	"kgexplorer/domain/graph"
	"kgexplorer/infrastructure/upstream"
)

// API is the slice of the upstream client the loaders consume.
type API interface {
	SubmitQuery(ctx context.Context, input upstream.QueryInput) (*upstream.QueryResult, error)
	GetGraph(ctx context.Context, graphID string, layer int, connections bool) (*graph.TreeNode, []graph.Connection, error)
	FetchNode(ctx context.Context, graphID, nodeID string) (*upstream.NodePayload, error)
	SendChat(ctx context.Context, input upstream.ChatInput) (*upstream.ChatResult, error)
	GetQuiz(ctx context.Context, graphID, nodeID, queryID, documentID string, numQuestions int) ([]upstream.QuizQuestion, error)
}
