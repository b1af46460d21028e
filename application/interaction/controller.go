// Package interaction translates user gestures into graph store updates.
package interaction

import (
	"sync"

	"go.uber.org/zap"

	"kgexplorer/application/projection"
	"kgexplorer/application/store"
)

type dragState struct {
	nodeID string
	startX float64
	startY float64
}

// Controller is the state machine mediating between simulation callbacks and
// the graph store. Every handler no-ops defensively on null or unknown node
// references, since the simulation can fire late events for a node whose
// graph has already been replaced.
type Controller struct {
	mu      sync.Mutex
	store   *store.GraphStore
	drag    *dragState
	hovered string

	onSelect func(store.SelectedNode)
	logger   *zap.Logger
}

// NewController creates a controller bound to a graph store.
func NewController(gs *store.GraphStore, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{store: gs, logger: logger}
}

// OnSelect registers the callback fired after a click commits a selection;
// the detail loader hangs off this.
func (c *Controller) OnSelect(fn func(store.SelectedNode)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSelect = fn
}

// Click selects a node. Only a sanitized copy of the domain fields is
// written into selection state, never the live simulation-owned object,
// so panels that serialize or cache the selection can't pick up simulation
// internals.
func (c *Controller) Click(node *projection.Node) {
	if node == nil || node.ID == "" {
		return
	}

	selected := store.SelectedNode{
		ID:          node.ID,
		Name:        node.Name,
		Description: node.Description,
		Layer:       node.Layer,
		Relevance:   node.Relevance,
		GraphID:     node.GraphID,
		Color:       node.Color,
	}
	c.store.SetSelection(&selected)

	c.mu.Lock()
	fn := c.onSelect
	c.mu.Unlock()
	if fn != nil {
		fn(selected)
	}
}

// BeginDrag records the drag target and its starting position. The store is
// not touched until the drag ends.
func (c *Controller) BeginDrag(nodeID string, x, y float64) {
	if nodeID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drag = &dragState{nodeID: nodeID, startX: x, startY: y}
}

// EndDrag commits the final position if and only if the ended node matches
// the recorded drag target. Mismatched or unsolicited drag-end events from
// the simulation are discarded.
func (c *Controller) EndDrag(nodeID string, x, y float64) {
	if nodeID == "" {
		return
	}

	c.mu.Lock()
	drag := c.drag
	if drag != nil && drag.nodeID == nodeID {
		c.drag = nil
		c.mu.Unlock()
		c.store.UpdatePosition(nodeID, x, y)
		return
	}
	c.mu.Unlock()

	c.logger.Debug("discarding drag-end for unexpected node",
		zap.String("nodeID", nodeID),
	)
}

// Dragging reports the id of the node currently being dragged, if any.
func (c *Controller) Dragging() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil {
		return "", false
	}
	return c.drag.nodeID, true
}

// Hover tracks the hovered node for cursor feedback only; no store mutation.
func (c *Controller) Hover(nodeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hovered = nodeID
}

// Hovered returns the currently hovered node id, if any.
func (c *Controller) Hovered() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hovered
}

// SetLayer switches the active layer filter.
func (c *Controller) SetLayer(layer int) {
	c.store.SetLayer(layer)
}

// ToggleConnections flips link visibility.
func (c *Controller) ToggleConnections() {
	c.store.ToggleConnections()
}

// SetViewport records camera state for a later restore.
func (c *Controller) SetViewport(zoom, centerX, centerY float64) {
	c.store.SetViewport(zoom, centerX, centerY)
}
