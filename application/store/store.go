// Package store holds the canonical exploration state for one session: the
// raw node/link collection, selection, layer filter, visibility toggles and
// viewport, plus the dependent panel slices (node details, chat, quiz, query).
// It is a pure state container; no I/O happens here.
package store

import (
	"sync"

	"kgexplorer/domain/graph"
)

// SelectedNode is the sanitized selection written by the interaction
// controller. It carries domain fields only, never simulation-owned objects,
// so panels can serialize or cache it safely.
type SelectedNode struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Layer       int     `json:"layer"`
	Relevance   float64 `json:"relevance"`
	GraphID     string  `json:"graphId"`
	Color       string  `json:"color"`
}

// Viewport records the last-known camera state. It is used only for
// restoring the view, never to gate any other logic.
type Viewport struct {
	Zoom    float64 `json:"zoom"`
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
}

// Snapshot is a consistent, defensively copied view of the graph state.
// Revision changes whenever the raw node/link collection changes and is the
// projection's memoization key for raw state.
type Snapshot struct {
	Nodes           []graph.Node
	Links           []graph.Link
	Selected        *SelectedNode
	CurrentLayer    int
	ShowConnections bool
	Viewport        Viewport
	Loading         bool
	Err             string
	Revision        uint64
}

// GraphStore is the single source of truth for raw graph state.
//
// None of its operations can fail: invalid inputs are accepted as-is and
// simply produce an empty or degenerate projected view. Validation is a
// projection-time concern.
type GraphStore struct {
	mu sync.RWMutex

	nodes           []graph.Node
	links           []graph.Link
	selected        *SelectedNode
	currentLayer    int
	showConnections bool
	viewport        Viewport
	loading         bool
	err             string
	revision        uint64
}

// NewGraphStore creates an empty graph store with connections visible.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		nodes:           []graph.Node{},
		links:           []graph.Link{},
		showConnections: true,
		viewport:        Viewport{Zoom: 1},
	}
}

// ReplaceGraph atomically replaces the entire raw collection. Selection and
// layer are intentionally NOT reset here; callers that switch graphs must
// reset them explicitly (see the graph loader).
func (s *GraphStore) ReplaceGraph(nodes []graph.Node, links []graph.Link) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make([]graph.Node, len(nodes))
	copy(s.nodes, nodes)
	s.links = make([]graph.Link, len(links))
	copy(s.links, links)
	s.revision++
}

// UpdatePosition merges a position update into the matching node, preserving
// every other field. Absent ids are a no-op.
func (s *GraphStore) UpdatePosition(nodeID string, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.nodes {
		if s.nodes[i].ID == nodeID {
			s.nodes[i].SetPosition(x, y)
			s.revision++
			return
		}
	}
}

// SetLayer sets the active layer filter. Any non-negative integer is
// accepted even if no nodes exist at that depth; negatives are stored as-is
// and yield an empty projection.
func (s *GraphStore) SetLayer(layer int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentLayer = layer
}

// SetSelection replaces the current selection; nil clears it.
func (s *GraphStore) SetSelection(node *SelectedNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if node == nil {
		s.selected = nil
		return
	}
	copied := *node
	s.selected = &copied
}

// ToggleConnections flips link visibility.
func (s *GraphStore) ToggleConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showConnections = !s.showConnections
}

// SetViewport records the camera state.
func (s *GraphStore) SetViewport(zoom, centerX, centerY float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = Viewport{Zoom: zoom, CenterX: centerX, CenterY: centerY}
}

// SetLoading flips the loading flag.
func (s *GraphStore) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetError records a user-visible error message; empty clears it.
func (s *GraphStore) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}

// Clear resets the store to its initial state.
func (s *GraphStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = []graph.Node{}
	s.links = []graph.Link{}
	s.selected = nil
	s.currentLayer = 0
	s.showConnections = true
	s.viewport = Viewport{Zoom: 1}
	s.err = ""
	s.revision++
}

// Selected returns the current selection, or nil.
func (s *GraphStore) Selected() *SelectedNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil
	}
	copied := *s.selected
	return &copied
}

// Snapshot returns a consistent copy of the full graph state.
func (s *GraphStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]graph.Node, len(s.nodes))
	copy(nodes, s.nodes)
	links := make([]graph.Link, len(s.links))
	copy(links, s.links)

	var selected *SelectedNode
	if s.selected != nil {
		copied := *s.selected
		selected = &copied
	}

	return Snapshot{
		Nodes:           nodes,
		Links:           links,
		Selected:        selected,
		CurrentLayer:    s.currentLayer,
		ShowConnections: s.showConnections,
		Viewport:        s.viewport,
		Loading:         s.loading,
		Err:             s.err,
		Revision:        s.revision,
	}
}
