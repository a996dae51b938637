// Package hhgraph implements the immutable CSR directed graph that every
// level of the highway hierarchy is stored as, along with the per-edge
// shortcut provenance that lets any level-k edge be expanded into a walk
// in the base graph.
package hhgraph

import "fmt"

// Direction tags how an edge slot participates in a node's row: Forward
// slots are visited by that node's OutEdges, Backward slots by its
// InEdges, and Both slots by either.
type Direction uint8

const (
	Forward Direction = iota
	Backward
	Both
)

// Provenance is the ordered list of base-graph edge ids a (possibly
// shortcut) edge represents. A single-base-edge provenance is stored
// without a slice allocation via Base; Chain is populated only once a
// shortcut has fused two or more base edges.
type Provenance struct {
	Base  uint32
	Chain []uint32 // nil unless len > 1
}

// Single wraps one base edge id as a provenance.
func Single(id uint32) Provenance { return Provenance{Base: id} }

// IDs returns the ordered base edge ids this provenance represents.
func (p Provenance) IDs() []uint32 {
	if len(p.Chain) > 0 {
		return p.Chain
	}
	return []uint32{p.Base}
}

// Concat fuses two provenance chains in order — used whenever Phase 2
// bypasses a node and replaces a (parent-edge, child-edge) pair with a
// single shortcut.
func Concat(a, b Provenance) Provenance {
	ids := make([]uint32, 0, len(a.IDs())+len(b.IDs()))
	ids = append(ids, a.IDs()...)
	ids = append(ids, b.IDs()...)
	return Provenance{Base: ids[0], Chain: ids}
}

// Edge is the materialized view of one CSR row slot.
type Edge struct {
	Source, Target uint32
	Weight         float32
	Dir            Direction
}

// Graph is a frozen CSR directed graph. Every logical directed edge
// occupies one slot in its source node's row (tagged Forward, or Both if
// the edge is bidirectional) and one slot in its target node's row
// (tagged Backward, or Both if bidirectional) — so OutEdges(v) and
// InEdges(v) are both O(degree) row scans with no secondary index. A
// bidirectional edge gets exactly one Both-tagged slot per endpoint, not
// a separate Backward slot alongside it (the invariant in the data
// model: a Both edge never coexists with a separate reverse-tagged
// duplicate of the same endpoints).
type Graph struct {
	NumNodes uint32

	FirstOut []uint32 // len NumNodes+1; row v is [FirstOut[v], FirstOut[v+1])
	Target   []uint32 // len NumEdges(); row-relative "other endpoint"
	Weight   []float32
	Dir      []Direction
	Prov     []Provenance

	// Preimage maps this level's node id to its predecessor level's node
	// id. Nil for the base graph (level 0).
	Preimage []uint32
}

// NumEdges returns the number of stored row slots (a bidirectional
// logical edge contributes two: one per endpoint).
func (g *Graph) NumEdges() uint32 {
	return uint32(len(g.Target))
}

func (g *Graph) rowSource(id uint32) uint32 {
	lo, hi := uint32(0), g.NumNodes
	for lo < hi {
		mid := (lo + hi) / 2
		if g.FirstOut[mid+1] <= id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Edge reconstructs the Edge value stored at slot id.
func (g *Graph) Edge(id uint32) Edge {
	return Edge{
		Source: g.rowSource(id),
		Target: g.Target[id],
		Weight: g.Weight[id],
		Dir:    g.Dir[id],
	}
}

// Provenance returns the base-edge-id chain for slot id.
func (g *Graph) Provenance(id uint32) Provenance {
	return g.Prov[id]
}

// OutEdges calls yield for every slot in v's row tagged Forward or Both.
func (g *Graph) OutEdges(v uint32, yield func(slot uint32, e Edge)) {
	start, end := g.FirstOut[v], g.FirstOut[v+1]
	for id := start; id < end; id++ {
		if d := g.Dir[id]; d == Forward || d == Both {
			yield(id, g.Edge(id))
		}
	}
}

// InEdges calls yield for every slot in v's row tagged Backward or Both;
// the edge's Target field names the predecessor node reachable by
// traversing the edge in reverse.
func (g *Graph) InEdges(v uint32, yield func(slot uint32, e Edge)) {
	start, end := g.FirstOut[v], g.FirstOut[v+1]
	for id := start; id < end; id++ {
		if d := g.Dir[id]; d == Backward || d == Both {
			yield(id, g.Edge(id))
		}
	}
}

// Error taxonomy (spec §7).

// InvalidInputError reports a malformed builder edge — a non-finite or
// non-positive weight, a dangling node reference, or a conflicting
// duplicate (source, target) pair. Fatal at construction.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// InconsistentError reports a violated internal invariant — indicates a
// bug in the construction pipeline, not a caller mistake.
type InconsistentError struct {
	Reason string
}

func (e *InconsistentError) Error() string {
	return fmt.Sprintf("inconsistent graph state: %s", e.Reason)
}

// EmptyLevelError is reported by the layer builder when a level
// contracts to zero edges, so the hierarchy driver can stop early.
type EmptyLevelError struct {
	Level int
}

func (e *EmptyLevelError) Error() string {
	return fmt.Sprintf("level %d contracted to zero edges", e.Level)
}
