package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"kgexplorer/application/session"
	apperrors "kgexplorer/pkg/errors"
)

// ChatHandler serves the node chat panel.
type ChatHandler struct {
	sessions     *session.Manager
	logger       *zap.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewChatHandler creates a chat handler.
func NewChatHandler(sessions *session.Manager, logger *zap.Logger, errorHandler *apperrors.ErrorHandler) *ChatHandler {
	return &ChatHandler{
		sessions:     sessions,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

type sendChatRequest struct {
	Message string `json:"message"`
}

// Send handles POST /sessions/{sessionID}/chat.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}

	var req sendChatRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError("invalid request body"))
		return
	}

	if err := s.ChatLoader.Send(r.Context(), req.Message); err != nil && apperrors.IsValidation(err) {
		h.errorHandler.Handle(w, r, err)
		return
	}
	// Upstream chat failures are reported inside the conversation log.
	respondJSON(w, http.StatusOK, s.Chat.Snapshot())
}

// Get handles GET /sessions/{sessionID}/chat.
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}
	respondJSON(w, http.StatusOK, s.Chat.Snapshot())
}

// Toggle handles POST /sessions/{sessionID}/chat/toggle.
func (h *ChatHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}
	s.Chat.Toggle()
	respondJSON(w, http.StatusOK, s.Chat.Snapshot())
}

// Clear handles POST /sessions/{sessionID}/chat/clear.
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}
	s.Chat.Clear()
	w.WriteHeader(http.StatusNoContent)
}
