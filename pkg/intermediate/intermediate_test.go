package intermediate

import (
	"testing"

	"github.com/azybler/hwyhier/pkg/hhgraph"
)

// Path 0->1;3, 1->2;4 with no other edges incident to 1. Bypassing node 1
// must produce 0->2;7 with provenance [e(0,1), e(1,2)].
func TestBypassCreatesShortcut(t *testing.T) {
	g := New()
	g.AddEdge(0, 1, 3, hhgraph.Single(10))
	g.AddEdge(1, 2, 4, hhgraph.Single(11))

	touched := g.Bypass(1)

	if g.OutDegree(1) != 0 || g.InDegree(1) != 0 {
		t.Fatalf("node 1 still has edges after bypass")
	}
	if _, present := g.OutEdges(0)[1]; present {
		t.Fatalf("node 1 was not removed from the graph")
	}

	shortcut, ok := g.OutEdges(0)[2]
	if !ok {
		t.Fatalf("expected shortcut edge 0->2")
	}
	if shortcut.Weight != 7 {
		t.Errorf("shortcut weight = %v, want 7", shortcut.Weight)
	}
	want := []uint32{10, 11}
	got := shortcut.Prov.IDs()
	if len(got) != len(want) {
		t.Fatalf("provenance = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("provenance[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	wantTouched := map[uint32]bool{0: true, 2: true}
	if len(touched) != len(wantTouched) {
		t.Fatalf("touched = %v, want keys %v", touched, wantTouched)
	}
	for _, n := range touched {
		if !wantTouched[n] {
			t.Errorf("unexpected touched node %d", n)
		}
	}
}

func TestBypassDropsSelfLoop(t *testing.T) {
	g := New()
	// A triangle 0->1, 1->0, 1->2: bypassing 1 would produce a 0->0
	// self-loop from (0->1, 1->0) which must be silently dropped, and a
	// real shortcut 0->2 from (0->1, 1->2).
	g.AddEdge(0, 1, 1, hhgraph.Single(0))
	g.AddEdge(1, 0, 1, hhgraph.Single(1))
	g.AddEdge(1, 2, 1, hhgraph.Single(2))

	g.Bypass(1)

	if _, present := g.OutEdges(0)[0]; present {
		t.Fatalf("self-loop 0->0 should have been dropped")
	}
	if _, present := g.OutEdges(0)[2]; !present {
		t.Fatalf("expected shortcut 0->2")
	}
}

func TestBypassWithEmptyInOrOutRemovesNode(t *testing.T) {
	g := New()
	g.AddEdge(0, 1, 5, hhgraph.Single(0)) // node 1 has in-degree 1, out-degree 0
	touched := g.Bypass(1)

	if g.NumNodes() != 1 {
		t.Fatalf("expected only node 0 to remain, got nodes %v", g.Nodes())
	}
	if len(touched) != 1 || touched[0] != 0 {
		t.Errorf("touched = %v, want [0]", touched)
	}
}

func TestAddEdgeKeepsSmallerWeight(t *testing.T) {
	g := New()
	g.AddEdge(0, 1, 10, hhgraph.Single(0))
	g.AddEdge(0, 1, 5, hhgraph.Single(1))
	if g.OutEdges(0)[1].Weight != 5 {
		t.Errorf("weight = %v, want 5 (smaller wins)", g.OutEdges(0)[1].Weight)
	}
	g.AddEdge(0, 1, 20, hhgraph.Single(2))
	if g.OutEdges(0)[1].Weight != 5 {
		t.Errorf("weight = %v, want 5 (existing smaller edge kept)", g.OutEdges(0)[1].Weight)
	}
}
