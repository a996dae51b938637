// Package intermediate implements the mutable map-based graph that Phase 2
// core contraction operates on (C6): O(1) edge lookup and O(|in|·|out|)
// node bypass, materialized from Phase 1's retained edge set. Grounded on
// the original's network/src/highway/intermediate_network.rs.
package intermediate

import (
	"sort"

	"github.com/azybler/hwyhier/pkg/hhgraph"
)

// Edge is one directed edge of the intermediate graph — always Forward,
// always carrying a provenance chain back to base edges.
type Edge struct {
	Weight float32
	Prov   hhgraph.Provenance
}

// Graph is a mutable adjacency-map directed graph: every node keeps both
// its outgoing and incoming edges so bypass can walk in- and out-edges
// without a reverse scan.
type Graph struct {
	out map[uint32]map[uint32]Edge // node -> target -> edge
	in  map[uint32]map[uint32]Edge // node -> source -> edge
}

// New returns an empty intermediate graph.
func New() *Graph {
	return &Graph{
		out: make(map[uint32]map[uint32]Edge),
		in:  make(map[uint32]map[uint32]Edge),
	}
}

// ensure makes sure v has (possibly empty) out/in rows, so a node with no
// edges yet (but named by AddEdge) is still visible to Nodes/OutDegree.
func (g *Graph) ensure(v uint32) {
	if _, ok := g.out[v]; !ok {
		g.out[v] = make(map[uint32]Edge)
	}
	if _, ok := g.in[v]; !ok {
		g.in[v] = make(map[uint32]Edge)
	}
}

// AddEdge inserts a source->target edge, or keeps the existing one if it is
// already present with a smaller-or-equal weight (C6 rule 2: ties favor the
// edge already there).
func (g *Graph) AddEdge(source, target uint32, weight float32, prov hhgraph.Provenance) {
	g.ensure(source)
	g.ensure(target)
	if existing, ok := g.out[source][target]; ok && existing.Weight <= weight {
		return
	}
	e := Edge{Weight: weight, Prov: prov}
	g.out[source][target] = e
	g.in[target][source] = e
}

// NumNodes returns the number of distinct nodes currently present (those
// touching at least one edge, or explicitly ensured).
func (g *Graph) NumNodes() int { return len(g.out) }

// Contains reports whether v is still present in the graph (it may have
// been removed by an earlier Bypass).
func (g *Graph) Contains(v uint32) bool {
	_, ok := g.out[v]
	return ok
}

// Nodes returns every node id currently present, sorted ascending. The
// core contractor seeds its FIFO work queue from this order, and spec §5
// requires that seed to be deterministic (node-id order), not Go's
// randomized map iteration order.
func (g *Graph) Nodes() []uint32 {
	ids := make([]uint32, 0, len(g.out))
	for v := range g.out {
		ids = append(ids, v)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// OutDegree and InDegree report |out(v)| and |in(v)|; a node absent from
// the graph reports degree 0 for both.
func (g *Graph) OutDegree(v uint32) int { return len(g.out[v]) }
func (g *Graph) InDegree(v uint32) int  { return len(g.in[v]) }

// OutEdges and InEdges expose v's adjacency for callers that need to
// iterate without mutating (the contraction driver's short/cost formula).
func (g *Graph) OutEdges(v uint32) map[uint32]Edge { return g.out[v] }
func (g *Graph) InEdges(v uint32) map[uint32]Edge  { return g.in[v] }

// removeNode deletes v and every edge incident to it.
func (g *Graph) removeNode(v uint32) {
	for target := range g.out[v] {
		delete(g.in[target], v)
	}
	for source := range g.in[v] {
		delete(g.out[source], v)
	}
	delete(g.out, v)
	delete(g.in, v)
}

// Bypass implements the C6 bypass operation: if v has no in-edges or no
// out-edges it is simply removed. Otherwise every (parent, child) pair
// (parent != child) gets a new shortcut edge summing weights and
// concatenating provenance, an existing cheaper edge between the same pair
// wins ties, then v and its incident edges are removed. Bypass returns
// every node that had an edge to or from v — old neighbors and the fresh
// sources/targets of any shortcut — so the contraction driver can
// re-examine them.
func (g *Graph) Bypass(v uint32) []uint32 {
	parents := g.in[v]
	children := g.out[v]

	if len(parents) == 0 || len(children) == 0 {
		touched := make([]uint32, 0, len(parents)+len(children))
		for p := range parents {
			touched = append(touched, p)
		}
		for q := range children {
			touched = append(touched, q)
		}
		g.removeNode(v)
		sort.Slice(touched, func(i, j int) bool { return touched[i] < touched[j] })
		return touched
	}

	touched := make(map[uint32]bool, len(parents)+len(children))
	for p, pe := range parents {
		touched[p] = true
		for q, qe := range children {
			if p == q {
				continue // self-loops produced by bypass are silently dropped
			}
			touched[q] = true
			weight := pe.Weight + qe.Weight
			prov := hhgraph.Concat(pe.Prov, qe.Prov)
			g.AddEdge(p, q, weight, prov)
		}
	}

	g.removeNode(v)

	out := make([]uint32, 0, len(touched))
	for n := range touched {
		out = append(out, n)
	}
	// Sorted so the contraction driver's FIFO re-enqueue order — and thus
	// which node is bypassed next whenever a tie arises — is deterministic
	// (spec §5/P7), not dependent on Go's randomized map iteration order.
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
