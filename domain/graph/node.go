package graph

import "strings"

// Layer palette used by the visualization. Colors are derived from hierarchy
// depth and are not user-settable.
var layerColors = map[int]string{
	0: "#4F46E5",
	1: "#10B981",
	2: "#F59E0B",
	3: "#EF4444",
	4: "#8B5CF6",
}

const (
	// DefaultColor is used for layers beyond the palette and for links.
	DefaultColor = "#CBD5E0"

	// DefaultRelevance is assumed when the backend omits a relevance score.
	DefaultRelevance = 5
)

// Node is the canonical node schema held in the graph store. All inbound
// payloads are normalized into it at this boundary, so downstream code never
// branches on optional or duck-typed fields.
type Node struct {
	ID          string
	Name        string
	Description string
	Relevance   float64
	Layer       int
	GraphID     string
	Color       string

	// X and Y are nil until the first simulation tick or an explicit drag
	// commit. Once set they persist across projections until the owning
	// graph changes.
	X *float64
	Y *float64

	// FX and FY pin a node against the simulation; nil means free.
	FX *float64
	FY *float64
}

// Link is a canonical edge between two nodes, referenced by bare ids.
type Link struct {
	Source string
	Target string
	Value  float64
	Color  string
}

// ColorForLayer returns the palette color for a hierarchy depth.
func ColorForLayer(layer int) string {
	if c, ok := layerColors[layer]; ok {
		return c
	}
	return DefaultColor
}

// NewNode builds a canonical node, normalizing the duck-typed fields of the
// source payload: an empty name falls back to the title, relevance defaults
// when missing, and color is always derived from the layer.
func NewNode(id, name, title, description string, relevance float64, layer int, graphID string) Node {
	label := strings.TrimSpace(name)
	if label == "" {
		label = strings.TrimSpace(title)
	}
	if relevance <= 0 {
		relevance = DefaultRelevance
	}
	if layer < 0 {
		layer = 0
	}
	return Node{
		ID:          id,
		Name:        label,
		Description: description,
		Relevance:   relevance,
		Layer:       layer,
		GraphID:     graphID,
		Color:       ColorForLayer(layer),
	}
}

// Pinned reports whether the node has fixed coordinates.
func (n *Node) Pinned() bool {
	return n.FX != nil || n.FY != nil
}

// SetPosition records a concrete position on the node.
func (n *Node) SetPosition(x, y float64) {
	n.X = &x
	n.Y = &y
}
