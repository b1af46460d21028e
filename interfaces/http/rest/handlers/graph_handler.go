package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kgexplorer/application/session"
	"kgexplorer/application/store"
	apperrors "kgexplorer/pkg/errors"
)

// GraphHandler serves query submission, graph loading and the rendered view.
type GraphHandler struct {
	sessions     *session.Manager
	logger       *zap.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewGraphHandler creates a graph handler.
func NewGraphHandler(sessions *session.Manager, logger *zap.Logger, errorHandler *apperrors.ErrorHandler) *GraphHandler {
	return &GraphHandler{
		sessions:     sessions,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

type submitQueryRequest struct {
	Query         string               `json:"query"`
	ContextParams *store.ContextParams `json:"contextParams"`
	Document      *store.Document      `json:"document"`
}

// SubmitQuery handles POST /sessions/{sessionID}/query.
func (h *GraphHandler) SubmitQuery(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}

	var req submitQueryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError("invalid request body"))
		return
	}

	if req.ContextParams != nil {
		s.Query.SetContextParams(*req.ContextParams)
	}
	if req.Document != nil {
		s.Query.SetSelectedDocument(req.Document)
	}
	s.Query.SetPendingQuery(req.Query)

	result, err := s.GraphLoader.Submit(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"query_id": result.QueryID,
		"graph_id": result.GraphID,
		"view":     s.View(),
	})
}

// LoadGraph handles POST /sessions/{sessionID}/graphs/{graphID}/load, used
// to revisit a graph from the query history.
func (h *GraphHandler) LoadGraph(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}

	if err := s.GraphLoader.Load(r.Context(), chi.URLParam(r, "graphID")); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"view": s.View()})
}

// GetView handles GET /sessions/{sessionID}/view.
func (h *GraphHandler) GetView(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}

	snap := s.Graph.Snapshot()
	respondJSON(w, http.StatusOK, map[string]any{
		"view":            s.View(),
		"selected":        snap.Selected,
		"currentLayer":    snap.CurrentLayer,
		"showConnections": snap.ShowConnections,
		"viewport":        snap.Viewport,
		"isLoading":       snap.Loading,
		"error":           snap.Err,
	})
}

type setLayerRequest struct {
	Layer int `json:"layer"`
}

// SetLayer handles POST /sessions/{sessionID}/layer.
func (h *GraphHandler) SetLayer(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}

	var req setLayerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError("invalid request body"))
		return
	}
	s.Controller.SetLayer(req.Layer)
	respondJSON(w, http.StatusOK, map[string]any{"view": s.View()})
}

// ToggleConnections handles POST /sessions/{sessionID}/connections/toggle.
func (h *GraphHandler) ToggleConnections(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}

	s.Controller.ToggleConnections()
	respondJSON(w, http.StatusOK, map[string]any{"view": s.View()})
}

type viewportRequest struct {
	Zoom    float64 `json:"zoom"`
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
}

// SetViewport handles POST /sessions/{sessionID}/viewport.
func (h *GraphHandler) SetViewport(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}

	var req viewportRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError("invalid request body"))
		return
	}
	s.Controller.SetViewport(req.Zoom, req.CenterX, req.CenterY)
	w.WriteHeader(http.StatusNoContent)
}

// GetQueryState handles GET /sessions/{sessionID}/query.
func (h *GraphHandler) GetQueryState(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}
	respondJSON(w, http.StatusOK, s.Query.Snapshot())
}
