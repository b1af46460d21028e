// Package projection derives the renderable view from raw graph state.
//
// The consuming force simulation treats node objects as its own mutable
// scratch space, so the projector hands out plain, independently owned
// objects, never the store's. At the same time it must not mint a new object
// for a node whose raw state is unchanged, or the simulation restarts that
// node's layout and the graph visibly jitters. Both needs are met with an
// arena: one object per node per raw-state revision, indexed by id, with
// positions carried over between rebuilds.
package projection

import (
	"math/rand"
	"sync"
	"time"

	"kgexplorer/application/store"
	"kgexplorer/domain/graph"
	"kgexplorer/pkg/observability"
)

// seedSpan bounds the pseudo-random starting layout handed to the
// simulation: positions are drawn from [-seedSpan, seedSpan]².
const seedSpan = 400.0

// Node is a projected, render-ready node. The simulation owns these objects
// and writes onto them freely.
type Node struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Relevance   float64  `json:"relevance"`
	Layer       int      `json:"layer"`
	GraphID     string   `json:"graphId"`
	Val         float64  `json:"val"`
	Color       string   `json:"color"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	FX          *float64 `json:"fx"`
	FY          *float64 `json:"fy"`
}

// Link is a projected edge. Endpoints are always bare node ids; consumers
// that need object references resolve them against the view's node set.
type Link struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
	Color  string  `json:"color"`
}

// View is the derived {nodes, links} pair handed to the renderer.
type View struct {
	Nodes []*Node `json:"nodes"`
	Links []Link  `json:"links"`
}

type memoKey struct {
	revision        uint64
	layer           int
	showConnections bool
}

// Projector computes filtered render views from store snapshots. Project is
// memoized on (revision, layer, showConnections): identical inputs return
// the identical *View, so the result is safe to use as a cache key.
type Projector struct {
	mu sync.Mutex

	rand          *rand.Rand
	arena         map[string]*Node
	arenaRevision uint64
	arenaReady    bool

	memo    *View
	memoKey memoKey
	hasMemo bool
	metrics *observability.Metrics
}

// NewProjector creates a projector. Metrics may be nil.
func NewProjector(metrics *observability.Metrics) *Projector {
	return &Projector{
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		arena:   make(map[string]*Node),
		metrics: metrics,
	}
}

// Project derives the filtered render view for a snapshot. It never mutates
// the snapshot. Node membership follows the cumulative layer policy
// (layer <= currentLayer) so earlier rings stay visible as deeper layers are
// revealed; link membership additionally requires both endpoints retained
// and the connections toggle on.
func (p *Projector) Project(snap store.Snapshot) *View {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.arenaReady || snap.Revision != p.arenaRevision {
		p.rebuildArena(snap)
	}

	key := memoKey{revision: snap.Revision, layer: snap.CurrentLayer, showConnections: snap.ShowConnections}
	if p.hasMemo && p.memoKey == key {
		p.metrics.ProjectionMemoHit()
		return p.memo
	}

	nodes := make([]*Node, 0, len(snap.Nodes))
	retained := make(map[string]struct{}, len(snap.Nodes))
	for i := range snap.Nodes {
		raw := &snap.Nodes[i]
		if raw.Layer > snap.CurrentLayer {
			continue
		}
		if pn, ok := p.arena[raw.ID]; ok {
			nodes = append(nodes, pn)
			retained[raw.ID] = struct{}{}
		}
	}

	links := make([]Link, 0)
	if snap.ShowConnections {
		for _, raw := range snap.Links {
			if _, ok := retained[raw.Source]; !ok {
				continue
			}
			if _, ok := retained[raw.Target]; !ok {
				continue
			}
			value := raw.Value
			if value <= 0 {
				value = 1
			}
			color := raw.Color
			if color == "" {
				color = graph.DefaultColor
			}
			links = append(links, Link{
				Source: raw.Source,
				Target: raw.Target,
				Value:  value,
				Color:  color,
			})
		}
	}

	view := &View{Nodes: nodes, Links: links}
	p.memo = view
	p.memoKey = key
	p.hasMemo = true
	p.metrics.ProjectionRecompute()
	return view
}

// rebuildArena mints a fresh object per raw node, carrying positions over so
// the simulation does not restart layout: a raw position wins, otherwise the
// previous arena object's position is kept (unless the node now belongs to a
// different graph), otherwise a pseudo-random seed is drawn.
func (p *Projector) rebuildArena(snap store.Snapshot) {
	next := make(map[string]*Node, len(snap.Nodes))

	for i := range snap.Nodes {
		raw := &snap.Nodes[i]
		pn := &Node{
			ID:          raw.ID,
			Name:        raw.Name,
			Description: raw.Description,
			Relevance:   raw.Relevance,
			Layer:       raw.Layer,
			GraphID:     raw.GraphID,
			Val:         raw.Relevance,
			Color:       raw.Color,
		}
		if pn.Val <= 0 {
			pn.Val = graph.DefaultRelevance
		}
		if pn.Color == "" {
			pn.Color = graph.ColorForLayer(raw.Layer)
		}

		switch {
		case raw.X != nil && raw.Y != nil:
			pn.X = *raw.X
			pn.Y = *raw.Y
		default:
			if prev, ok := p.arena[raw.ID]; ok && prev.GraphID == raw.GraphID {
				pn.X = prev.X
				pn.Y = prev.Y
			} else {
				pn.X = p.rand.Float64()*2*seedSpan - seedSpan
				pn.Y = p.rand.Float64()*2*seedSpan - seedSpan
			}
		}

		if raw.FX != nil {
			fx := *raw.FX
			pn.FX = &fx
		}
		if raw.FY != nil {
			fy := *raw.FY
			pn.FY = &fy
		}

		next[raw.ID] = pn
	}

	p.arena = next
	p.arenaRevision = snap.Revision
	p.arenaReady = true
	p.hasMemo = false
	p.memo = nil
}
