package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kgexplorer/application/session"
	apperrors "kgexplorer/pkg/errors"
)

// SessionHandler manages session lifecycle endpoints.
type SessionHandler struct {
	sessions     *session.Manager
	logger       *zap.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(sessions *session.Manager, logger *zap.Logger, errorHandler *apperrors.ErrorHandler) *SessionHandler {
	return &SessionHandler{
		sessions:     sessions,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// Create handles POST /sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	respondJSON(w, http.StatusCreated, map[string]string{"session_id": s.ID})
}

// Delete handles DELETE /sessions/{sessionID}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

// resolve pulls the session named in the URL, or writes an error response.
func resolve(sessions *session.Manager, errorHandler *apperrors.ErrorHandler, w http.ResponseWriter, r *http.Request) *session.Session {
	id := chi.URLParam(r, "sessionID")
	if id == "" {
		errorHandler.Handle(w, r, apperrors.NewValidationError("session id is required"))
		return nil
	}
	s, err := sessions.Get(id)
	if err != nil {
		errorHandler.Handle(w, r, err)
		return nil
	}
	return s
}
