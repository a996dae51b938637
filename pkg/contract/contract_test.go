package contract

import (
	"testing"

	"github.com/azybler/hwyhier/pkg/hhgraph"
	"github.com/azybler/hwyhier/pkg/intermediate"
)

// After Run terminates, no surviving node may satisfy the bypass predicate
// at its final degree — otherwise the driver stopped before reaching a
// fixed point. This holds regardless of FIFO processing order, since any
// degree change always re-enqueues the affected neighbor.
func assertFixedPoint(t *testing.T, g *intermediate.Graph, factor float32) {
	t.Helper()
	for _, v := range g.Nodes() {
		out, in := g.OutDegree(v), g.InDegree(v)
		short := float32(out * in)
		cost := factor * float32(out+in)
		if short <= cost {
			t.Errorf("node %d survived with short=%v <= cost=%v at factor=%v", v, short, cost, factor)
		}
	}
}

// A pure star (every spoke has degree 1 on exactly one side) fully
// contracts away: every spoke is bypassed as a degenerate empty-side node
// (deleting its edge to the hub), and once the hub loses all its edges it
// too becomes a degenerate empty-side node and is removed.
func TestRunCollapsesPureStar(t *testing.T) {
	g := intermediate.New()
	for i := uint32(1); i <= 4; i++ {
		g.AddEdge(i, 0, 1, hhgraph.Single(i))
	}
	for j := uint32(5); j <= 8; j++ {
		g.AddEdge(0, j, 1, hhgraph.Single(j))
	}

	Run(g, 1.0)

	if g.NumNodes() != 0 {
		t.Fatalf("expected the star to fully contract, got nodes %v", g.Nodes())
	}
}

// A two-hop chain 0->1->2 contracts away entirely. The FIFO is seeded in
// node-id order, so the degenerate ends are stripped one after another
// before node 1 is ever examined with both an in-edge and an out-edge.
func TestRunFullyContractsChain(t *testing.T) {
	g := intermediate.New()
	g.AddEdge(0, 1, 3, hhgraph.Single(100))
	g.AddEdge(1, 2, 4, hhgraph.Single(101))

	Run(g, 1.0)

	assertFixedPoint(t, g, 1.0)
	if g.NumNodes() != 0 {
		// Node 0 (in=0) is popped first and removed; that leaves node 1
		// with in=0, so it is removed without a shortcut, and node 2 is
		// then left with no edges at all.
		t.Fatalf("expected the two-hop chain to fully contract, got nodes %v", g.Nodes())
	}
}

func TestRunOnEmptyGraph(t *testing.T) {
	g := intermediate.New()
	Run(g, 1.0) // must not panic on an empty graph
	if g.NumNodes() != 0 {
		t.Fatalf("expected no nodes, got %v", g.Nodes())
	}
}
