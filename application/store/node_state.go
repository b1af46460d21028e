package store

import (
	"sync"

	"kgexplorer/domain/graph"
)

// NodeState holds the supplementary data for the currently selected node.
// Details, related nodes and examples are always written together so the
// panels never mix data from two different nodes.
type NodeState struct {
	mu sync.RWMutex

	details  *graph.NodeDetails
	related  []graph.RelatedNode
	examples []graph.Example
	loading  bool
	err      string
}

// NodeSnapshot is a consistent copy of the node panel state.
type NodeSnapshot struct {
	Details  *graph.NodeDetails  `json:"details"`
	Related  []graph.RelatedNode `json:"relatedNodes"`
	Examples []graph.Example     `json:"examples"`
	Loading  bool                `json:"isLoading"`
	Err      string              `json:"error,omitempty"`
}

// NewNodeState creates an empty node panel state.
func NewNodeState() *NodeState {
	return &NodeState{}
}

// SetResults commits a joined detail/related/examples result atomically.
func (s *NodeState) SetResults(details *graph.NodeDetails, related []graph.RelatedNode, examples []graph.Example) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.details = details
	s.related = related
	s.examples = examples
	s.err = ""
}

// SetLoading flips the loading flag.
func (s *NodeState) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetError records a panel-local error message.
func (s *NodeState) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}

// Clear drops all node panel data.
func (s *NodeState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.details = nil
	s.related = nil
	s.examples = nil
	s.err = ""
}

// Snapshot returns a consistent copy of the node panel state.
func (s *NodeState) Snapshot() NodeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var details *graph.NodeDetails
	if s.details != nil {
		copied := *s.details
		details = &copied
	}
	related := make([]graph.RelatedNode, len(s.related))
	copy(related, s.related)
	examples := make([]graph.Example, len(s.examples))
	copy(examples, s.examples)

	return NodeSnapshot{
		Details:  details,
		Related:  related,
		Examples: examples,
		Loading:  s.loading,
		Err:      s.err,
	}
}
