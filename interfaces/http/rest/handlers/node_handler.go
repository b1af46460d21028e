package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kgexplorer/application/session"
	apperrors "kgexplorer/pkg/errors"
)

// NodeHandler serves node selection, dragging and the detail panel.
type NodeHandler struct {
	sessions     *session.Manager
	logger       *zap.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewNodeHandler creates a node handler.
func NewNodeHandler(sessions *session.Manager, logger *zap.Logger, errorHandler *apperrors.ErrorHandler) *NodeHandler {
	return &NodeHandler{
		sessions:     sessions,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// Select handles POST /sessions/{sessionID}/nodes/{nodeID}/select. The
// click lands synchronously; the detail load it triggers runs in the
// background and shows up on the next details poll.
func (h *NodeHandler) Select(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}

	nodeID := chi.URLParam(r, "nodeID")
	view := s.View()
	for _, node := range view.Nodes {
		if node.ID == nodeID {
			s.Controller.Click(node)
			respondJSON(w, http.StatusOK, map[string]any{"selected": s.Graph.Selected()})
			return
		}
	}
	h.errorHandler.Handle(w, r, apperrors.NewNotFoundError("node not visible in the current view"))
}

// GetDetails handles GET /sessions/{sessionID}/node.
func (h *NodeHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}
	respondJSON(w, http.StatusOK, s.Nodes.Snapshot())
}

type dragRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BeginDrag handles POST /sessions/{sessionID}/nodes/{nodeID}/drag/begin.
func (h *NodeHandler) BeginDrag(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}

	var req dragRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError("invalid request body"))
		return
	}
	s.Controller.BeginDrag(chi.URLParam(r, "nodeID"), req.X, req.Y)
	w.WriteHeader(http.StatusNoContent)
}

// EndDrag handles POST /sessions/{sessionID}/nodes/{nodeID}/drag/end.
func (h *NodeHandler) EndDrag(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}

	var req dragRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError("invalid request body"))
		return
	}
	s.Controller.EndDrag(chi.URLParam(r, "nodeID"), req.X, req.Y)
	respondJSON(w, http.StatusOK, map[string]any{"view": s.View()})
}
