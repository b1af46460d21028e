package store

import (
	"sync"
	"time"
)

// ContextParams are the contextual knobs submitted alongside a query.
type ContextParams struct {
	CompanySize           string `json:"companySize,omitempty"`
	CompanyMaturity       string `json:"companyMaturity,omitempty"`
	Industry              string `json:"industry,omitempty"`
	ManagementRole        string `json:"managementRole,omitempty"`
	ChallengeType         string `json:"challengeType,omitempty"`
	MarketVolatility      string `json:"marketVolatility,omitempty"`
	CompetitivePressure   string `json:"competitivePressure,omitempty"`
	RegulatoryEnvironment string `json:"regulatoryEnvironment,omitempty"`
}

// Document identifies the source document a query runs against.
type Document struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// QueryRecord is one entry of the persisted query history.
type QueryRecord struct {
	Query         string        `json:"query"`
	Timestamp     time.Time     `json:"timestamp"`
	GraphID       string        `json:"graphId"`
	QueryID       string        `json:"queryId"`
	DocumentID    string        `json:"documentId"`
	ContextParams ContextParams `json:"contextParams"`
}

// QueryState holds the query form state and history. The query text keeps a
// single source of truth with an explicit pending edit: transport layers
// write the pending value as the user types and commit it on submission (or
// on a debounce interval), instead of mirroring the text into two stores.
type QueryState struct {
	mu sync.RWMutex

	currentQuery     string
	pendingQuery     string
	contextParams    ContextParams
	selectedDocument *Document
	history          []QueryRecord
	loading          bool
	err              string

	persister Persister
}

// QuerySnapshot is a consistent copy of the query state.
type QuerySnapshot struct {
	CurrentQuery     string        `json:"currentQuery"`
	PendingQuery     string        `json:"pendingQuery"`
	ContextParams    ContextParams `json:"contextParams"`
	SelectedDocument *Document     `json:"selectedDocument"`
	History          []QueryRecord `json:"queryHistory"`
	Loading          bool          `json:"isLoading"`
	Err              string        `json:"error,omitempty"`
}

// NewQueryState creates a query state with history hydrated from the persister.
func NewQueryState(persister Persister) *QueryState {
	if persister == nil {
		persister = NopPersister{}
	}
	s := &QueryState{persister: persister}

	var history []QueryRecord
	if persister.Load(KeyQueryHistory, &history) {
		s.history = history
	}
	return s
}

// SetPendingQuery records an uncommitted edit of the query text.
func (s *QueryState) SetPendingQuery(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingQuery = text
}

// CommitPending promotes the pending edit to the current query and returns it.
func (s *QueryState) CommitPending() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentQuery = s.pendingQuery
	return s.currentQuery
}

// SetContextParams merges non-empty fields into the context parameters.
func (s *QueryState) SetContextParams(params ContextParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	merge(&s.contextParams.CompanySize, params.CompanySize)
	merge(&s.contextParams.CompanyMaturity, params.CompanyMaturity)
	merge(&s.contextParams.Industry, params.Industry)
	merge(&s.contextParams.ManagementRole, params.ManagementRole)
	merge(&s.contextParams.ChallengeType, params.ChallengeType)
	merge(&s.contextParams.MarketVolatility, params.MarketVolatility)
	merge(&s.contextParams.CompetitivePressure, params.CompetitivePressure)
	merge(&s.contextParams.RegulatoryEnvironment, params.RegulatoryEnvironment)
}

// SetSelectedDocument replaces the selected document; nil clears it.
func (s *QueryState) SetSelectedDocument(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc == nil {
		s.selectedDocument = nil
		return
	}
	copied := *doc
	s.selectedDocument = &copied
}

// AddToHistory prepends a record and flushes the history.
func (s *QueryState) AddToHistory(record QueryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append([]QueryRecord{record}, s.history...)
	s.persister.Save(KeyQueryHistory, s.history)
}

// LatestQueryID returns the query id of the most recent history entry.
func (s *QueryState) LatestQueryID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.history) == 0 {
		return ""
	}
	return s.history[0].QueryID
}

// SetLoading flips the loading flag.
func (s *QueryState) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetError records a panel-local error message.
func (s *QueryState) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}

// Clear resets the form but keeps the persisted history.
func (s *QueryState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentQuery = ""
	s.pendingQuery = ""
	s.contextParams = ContextParams{}
	s.selectedDocument = nil
	s.err = ""
}

// Snapshot returns a consistent copy of the query state.
func (s *QueryState) Snapshot() QuerySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc *Document
	if s.selectedDocument != nil {
		copied := *s.selectedDocument
		doc = &copied
	}
	history := make([]QueryRecord, len(s.history))
	copy(history, s.history)

	return QuerySnapshot{
		CurrentQuery:     s.currentQuery,
		PendingQuery:     s.pendingQuery,
		ContextParams:    s.contextParams,
		SelectedDocument: doc,
		History:          history,
		Loading:          s.loading,
		Err:              s.err,
	}
}

func merge(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
