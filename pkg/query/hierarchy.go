// Package query implements the bidirectional level-climbing query
// engine (C10): point snapping against the base graph, a Dijkstra
// search on each side that climbs from level 0 into higher levels once
// it outgrows a node's neighborhood radius, and provenance-chain
// expansion of the matched path back down to a level-0 walk.
// Generalizes the teacher's single-level pkg/routing/engine.go.
package query

import (
	"context"

	"github.com/azybler/hwyhier/pkg/hhgraph"
	"github.com/azybler/hwyhier/pkg/neighborhood"
)

const noNode = ^uint32(0)

// level bundles one hierarchy level's graph with the radii the climbing
// decision needs and the map from this level's node id to the node id
// the same contracted node carries one level up (noNode if it did not
// survive that contraction).
type level struct {
	graph  *hhgraph.Graph
	radii  neighborhood.Radii
	nextID []uint32
}

// Hierarchy is every level of a built highway hierarchy, ready for
// querying: level 0 is the base graph, levels[i+1].graph.Preimage maps
// back into levels[i].
type Hierarchy struct {
	levels []level
}

// NewHierarchy derives per-level radii and up-climbing maps from a
// sequence of hierarchy levels (as produced by hierarchy.BuildAll) and
// the neighborhood size H used to build them. H must be the same value
// BuildAll was called with — radii are recomputed rather than persisted,
// since they are a deterministic, cheap-to-rebuild function of (graph, H).
func NewHierarchy(ctx context.Context, graphs []*hhgraph.Graph, h uint32) (*Hierarchy, error) {
	levels := make([]level, len(graphs))
	for i, g := range graphs {
		radii, err := neighborhood.Compute(ctx, g, h)
		if err != nil {
			return nil, err
		}
		levels[i] = level{graph: g, radii: radii}
	}
	for i := 0; i < len(levels)-1; i++ {
		next := levels[i+1].graph
		nextID := make([]uint32, levels[i].graph.NumNodes)
		for j := range nextID {
			nextID[j] = noNode
		}
		for newID, oldID := range next.Preimage {
			nextID[oldID] = uint32(newID)
		}
		levels[i].nextID = nextID
	}
	return &Hierarchy{levels: levels}, nil
}

// NumLevels returns 1 + the number of levels built above the base.
func (h *Hierarchy) NumLevels() int { return len(h.levels) }

// BaseGraph returns the level-0 graph, the one point snapping runs
// against.
func (h *Hierarchy) BaseGraph() *hhgraph.Graph { return h.levels[0].graph }
