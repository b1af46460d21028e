package store

import (
	"sync"
	"time"
)

// ChatMessageType distinguishes the author of a chat message. Failures are
// appended as a distinguishable error message rather than silently dropped.
type ChatMessageType string

const (
	ChatMessageUser      ChatMessageType = "user"
	ChatMessageAssistant ChatMessageType = "assistant"
	ChatMessageError     ChatMessageType = "error"
)

// ChatMessage is one entry of the conversation log.
type ChatMessage struct {
	Type      ChatMessageType `json:"type"`
	Content   string          `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
}

// chatPersisted is the JSON shape flushed to the local state store.
type chatPersisted struct {
	IsOpen             bool          `json:"isOpen"`
	Messages           []ChatMessage `json:"messages"`
	SuggestedQuestions []string      `json:"suggestedQuestions"`
}

// ChatState holds the chat panel state. It hydrates from the persister on
// construction and flushes on every committed transition, replacing the ad
// hoc storage writes the panels would otherwise scatter around.
type ChatState struct {
	mu sync.RWMutex

	isOpen             bool
	messages           []ChatMessage
	suggestedQuestions []string
	loading            bool
	err                string

	persister Persister
}

// ChatSnapshot is a consistent copy of the chat panel state.
type ChatSnapshot struct {
	IsOpen             bool          `json:"isOpen"`
	Messages           []ChatMessage `json:"messages"`
	SuggestedQuestions []string      `json:"suggestedQuestions"`
	Loading            bool          `json:"isLoading"`
	Err                string        `json:"error,omitempty"`
}

// NewChatState creates a chat state hydrated from the persister.
func NewChatState(persister Persister) *ChatState {
	if persister == nil {
		persister = NopPersister{}
	}
	s := &ChatState{persister: persister}

	var saved chatPersisted
	if persister.Load(KeyChatState, &saved) {
		s.isOpen = saved.IsOpen
		s.messages = saved.Messages
		s.suggestedQuestions = saved.SuggestedQuestions
	}
	return s
}

// Toggle flips the open flag.
func (s *ChatState) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = !s.isOpen
	s.flushLocked()
}

// AddMessage appends a message to the conversation log.
func (s *ChatState) AddMessage(msg ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.flushLocked()
}

// SetSuggestedQuestions replaces the suggested follow-up questions.
func (s *ChatState) SetSuggestedQuestions(questions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestedQuestions = questions
	s.flushLocked()
}

// SetLoading flips the loading flag.
func (s *ChatState) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetError records a panel-local error message.
func (s *ChatState) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}

// Clear drops the conversation, keeping the open flag.
func (s *ChatState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.suggestedQuestions = nil
	s.err = ""
	s.flushLocked()
}

// Snapshot returns a consistent copy of the chat panel state.
func (s *ChatState) Snapshot() ChatSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]ChatMessage, len(s.messages))
	copy(messages, s.messages)
	questions := make([]string, len(s.suggestedQuestions))
	copy(questions, s.suggestedQuestions)

	return ChatSnapshot{
		IsOpen:             s.isOpen,
		Messages:           messages,
		SuggestedQuestions: questions,
		Loading:            s.loading,
		Err:                s.err,
	}
}

func (s *ChatState) flushLocked() {
	s.persister.Save(KeyChatState, chatPersisted{
		IsOpen:             s.isOpen,
		Messages:           s.messages,
		SuggestedQuestions: s.suggestedQuestions,
	})
}
