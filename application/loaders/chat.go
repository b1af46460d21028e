package loaders

import (
	"context"
	"time"

	"go.uber.org/zap"

	"kgexplorer/application/store"
	"kgexplorer/infrastructure/upstream"
	apperrors "kgexplorer/pkg/errors"
)

// ChatLoader sends chat messages about the selected node. The user's
// message is appended immediately; the assistant reply follows when it
// arrives. Failures append a distinguishable error message so the
// conversation log shows what happened.
type ChatLoader struct {
	chat   *store.ChatState
	graphs *store.GraphStore
	query  *store.QueryState
	api    API
	logger *zap.Logger
}

// NewChatLoader creates a chat loader writing into the chat state.
func NewChatLoader(chat *store.ChatState, graphs *store.GraphStore, query *store.QueryState, api API, logger *zap.Logger) *ChatLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatLoader{
		chat:   chat,
		graphs: graphs,
		query:  query,
		api:    api,
		logger: logger,
	}
}

// Send submits a message about the currently selected node.
func (l *ChatLoader) Send(ctx context.Context, message string) error {
	if message == "" {
		return apperrors.NewValidationError("chat message is empty")
	}
	selected := l.graphs.Selected()
	if selected == nil {
		return apperrors.NewValidationError("no node selected for chat")
	}

	// History is captured before the new message is appended; the message
	// itself rides in the query field.
	history := chatHistory(l.chat.Snapshot().Messages)

	l.chat.AddMessage(store.ChatMessage{
		Type:      store.ChatMessageUser,
		Content:   message,
		Timestamp: time.Now().UTC(),
	})
	l.chat.SetLoading(true)
	defer l.chat.SetLoading(false)

	querySnap := l.query.Snapshot()
	documentID := ""
	if querySnap.SelectedDocument != nil {
		documentID = querySnap.SelectedDocument.ID
	}

	result, err := l.api.SendChat(ctx, upstream.ChatInput{
		GraphID:    selected.GraphID,
		NodeID:     selected.ID,
		QueryID:    l.query.LatestQueryID(),
		DocumentID: documentID,
		Message:    message,
		History:    history,
	})
	if err != nil {
		l.logger.Warn("chat request failed",
			zap.String("node_id", selected.ID), zap.Error(err))
		l.chat.AddMessage(store.ChatMessage{
			Type:      store.ChatMessageError,
			Content:   "Sorry, something went wrong. Please try again.",
			Timestamp: time.Now().UTC(),
		})
		l.chat.SetError(err.Error())
		return err
	}

	l.chat.AddMessage(store.ChatMessage{
		Type:      store.ChatMessageAssistant,
		Content:   result.Message,
		Timestamp: time.Now().UTC(),
	})
	l.chat.SetSuggestedQuestions(result.SuggestedQuestions)
	l.chat.SetError("")
	return nil
}

// chatHistory converts the conversation log into upstream turns. Anything
// not authored by the user is presented as the assistant.
func chatHistory(messages []store.ChatMessage) []upstream.ChatTurn {
	turns := make([]upstream.ChatTurn, 0, len(messages))
	for _, msg := range messages {
		role := "assistant"
		if msg.Type == store.ChatMessageUser {
			role = "user"
		}
		turns = append(turns, upstream.ChatTurn{Role: role, Content: msg.Content})
	}
	return turns
}
