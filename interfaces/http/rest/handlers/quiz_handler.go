package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"kgexplorer/application/session"
	apperrors "kgexplorer/pkg/errors"
)

// QuizHandler serves the node quiz panel.
type QuizHandler struct {
	sessions     *session.Manager
	logger       *zap.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewQuizHandler creates a quiz handler.
func NewQuizHandler(sessions *session.Manager, logger *zap.Logger, errorHandler *apperrors.ErrorHandler) *QuizHandler {
	return &QuizHandler{
		sessions:     sessions,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

type generateQuizRequest struct {
	NumQuestions int `json:"num_questions"`
}

// Generate handles POST /sessions/{sessionID}/quiz.
func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}

	var req generateQuizRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError("invalid request body"))
		return
	}

	if err := s.QuizLoader.Load(r.Context(), req.NumQuestions); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Quiz.Snapshot())
}

// Get handles GET /sessions/{sessionID}/quiz.
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}
	respondJSON(w, http.StatusOK, s.Quiz.Snapshot())
}

type answerRequest struct {
	Index  int    `json:"index"`
	Answer string `json:"answer"`
}

// Answer handles POST /sessions/{sessionID}/quiz/answer.
func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}

	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError("invalid request body"))
		return
	}
	s.Quiz.SetAnswer(req.Index, req.Answer)
	s.Quiz.SetCurrentIndex(req.Index + 1)
	respondJSON(w, http.StatusOK, s.Quiz.Snapshot())
}

// Score handles POST /sessions/{sessionID}/quiz/score.
func (h *QuizHandler) Score(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}

	score := s.Quiz.CalculateScore()
	respondJSON(w, http.StatusOK, map[string]any{
		"score": score,
		"state": s.Quiz.Snapshot(),
	})
}

// Reset handles POST /sessions/{sessionID}/quiz/reset.
func (h *QuizHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s := resolve(h.sessions, h.errorHandler, w, r)
	if s == nil {
		return
	}
	s.Quiz.Reset()
	respondJSON(w, http.StatusOK, s.Quiz.Snapshot())
}
