package dijkstra

import (
	"testing"

	"github.com/azybler/hwyhier/pkg/hhgraph"
)

// buildLineGraph builds 0 -> 1 -> 2 -> 3 with weights 1, 2, 4.
func buildLineGraph(t *testing.T) *hhgraph.Graph {
	t.Helper()
	g, err := hhgraph.Build(4, []hhgraph.BuilderEdge{
		{Source: 0, Target: 1, Weight: 1, Prov: hhgraph.Single(0)},
		{Source: 1, Target: 2, Weight: 2, Prov: hhgraph.Single(1)},
		{Source: 2, Target: 3, Weight: 4, Prov: hhgraph.Single(2)},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestStateRunForward(t *testing.T) {
	g := buildLineGraph(t)
	s := NewState(g.NumNodes)
	got := map[uint32]float32{}
	s.Run(g, 0, true, func(node uint32, dist float32) bool {
		got[node] = dist
		return true
	})
	want := map[uint32]float32{0: 0, 1: 1, 2: 3, 3: 7}
	for node, dist := range want {
		if got[node] != dist {
			t.Errorf("dist[%d] = %v, want %v", node, got[node], dist)
		}
	}
}

func TestStateRunBackward(t *testing.T) {
	g := buildLineGraph(t)
	s := NewState(g.NumNodes)
	got := map[uint32]float32{}
	s.Run(g, 3, false, func(node uint32, dist float32) bool {
		got[node] = dist
		return true
	})
	want := map[uint32]float32{3: 0, 2: 4, 1: 6, 0: 7}
	for node, dist := range want {
		if got[node] != dist {
			t.Errorf("dist[%d] = %v, want %v", node, got[node], dist)
		}
	}
}

// buildSixNodeReference builds spec §8's worked example: nodes 0..5, edges
// 0->1;10, 0->2;15, 1->3;12, 1->5;15, 2->4;10, 3->4;2, 3->5;1, 5->4;5.
func buildSixNodeReference(t *testing.T) *hhgraph.Graph {
	t.Helper()
	g, err := hhgraph.Build(6, []hhgraph.BuilderEdge{
		{Source: 0, Target: 1, Weight: 10, Prov: hhgraph.Single(0)},
		{Source: 0, Target: 2, Weight: 15, Prov: hhgraph.Single(1)},
		{Source: 1, Target: 3, Weight: 12, Prov: hhgraph.Single(2)},
		{Source: 1, Target: 5, Weight: 15, Prov: hhgraph.Single(3)},
		{Source: 2, Target: 4, Weight: 10, Prov: hhgraph.Single(4)},
		{Source: 3, Target: 4, Weight: 2, Prov: hhgraph.Single(5)},
		{Source: 3, Target: 5, Weight: 1, Prov: hhgraph.Single(6)},
		{Source: 5, Target: 4, Weight: 5, Prov: hhgraph.Single(7)},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestStateRunSixNodeReferenceSettleOrder(t *testing.T) {
	g := buildSixNodeReference(t)
	s := NewState(g.NumNodes)

	type settle struct {
		node uint32
		dist float32
	}
	var got []settle
	s.Run(g, 0, true, func(node uint32, dist float32) bool {
		got = append(got, settle{node, dist})
		return true
	})

	want := []settle{{0, 0}, {1, 10}, {2, 15}, {3, 22}, {5, 23}, {4, 24}}
	if len(got) != len(want) {
		t.Fatalf("settled %d nodes, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("settle[%d] = %+v, want %+v", i, got[i], w)
		}
	}
}

func TestStateRunEarlyStop(t *testing.T) {
	g := buildLineGraph(t)
	s := NewState(g.NumNodes)
	settled := 0
	s.Run(g, 0, true, func(node uint32, dist float32) bool {
		settled++
		return settled < 2 // stop after the 2nd settle
	})
	if settled != 2 {
		t.Errorf("settled = %d, want 2", settled)
	}
}

func TestStateReset(t *testing.T) {
	g := buildLineGraph(t)
	s := NewState(g.NumNodes)
	s.Run(g, 0, true, func(uint32, float32) bool { return true })
	if len(s.Touched) == 0 {
		t.Fatal("expected touched nodes after a run")
	}
	s.Reset()
	for _, d := range s.Dist {
		if d != Inf {
			t.Errorf("Dist not reset: %v", d)
		}
	}
	for _, p := range s.Pred {
		if p != NoPred {
			t.Errorf("Pred not reset: %v", p)
		}
	}
	if len(s.Touched) != 0 {
		t.Errorf("Touched not cleared: %v", s.Touched)
	}
	if s.PQ.Len() != 0 {
		t.Errorf("PQ not cleared")
	}
}
