package dijkstra

import "github.com/azybler/hwyhier/pkg/hhgraph"

// State is reusable per-worker Dijkstra scratch space. Every neighborhood
// worker goroutine owns its own State so searches can run concurrently
// across sources without synchronization; Reset() only
// touches the nodes visited by the previous search, following the
// teacher's touched-list fast-reset pattern (pkg/routing/dijkstra.go).
type State struct {
	Dist    []float32
	Pred    []uint32 // node the settling edge was relaxed from, or NoPred
	Touched []uint32
	PQ      MinHeap
}

// NoPred marks a node with no predecessor node (the search source).
const NoPred = ^uint32(0)

// NewState allocates a State sized for a graph with n nodes.
func NewState(n uint32) *State {
	dist := make([]float32, n)
	pred := make([]uint32, n)
	for i := range dist {
		dist[i] = Inf
		pred[i] = NoPred
	}
	return &State{
		Dist:    dist,
		Pred:    pred,
		Touched: make([]uint32, 0, 64),
	}
}

// Reset clears only the entries touched by the last search.
func (s *State) Reset() {
	for _, node := range s.Touched {
		s.Dist[node] = Inf
		s.Pred[node] = NoPred
	}
	s.Touched = s.Touched[:0]
	s.PQ.Reset()
}

func (s *State) touch(node uint32, dist float32, pred uint32) {
	if s.Dist[node] == Inf {
		s.Touched = append(s.Touched, node)
	}
	s.Dist[node] = dist
	s.Pred[node] = pred
}

// Run drives a plain single-source Dijkstra from source over g, walking
// out-edges when forward is true and in-edges otherwise. onSettle is
// called once per popped (permanently labeled) node in increasing distance
// order; returning false stops the search immediately (used to bound
// neighborhood computation to the H-th settled node).
func (s *State) Run(g *hhgraph.Graph, source uint32, forward bool, onSettle func(node uint32, dist float32) bool) {
	s.touch(source, 0, NoPred)
	s.PQ.Push(source, 0)

	for s.PQ.Len() > 0 {
		top := s.PQ.Pop()
		if top.Dist > s.Dist[top.Node] {
			continue // stale heap entry
		}
		if !onSettle(top.Node, top.Dist) {
			return
		}
		relax := func(_ uint32, e hhgraph.Edge) {
			nd := top.Dist + e.Weight
			if nd < s.Dist[e.Target] {
				s.touch(e.Target, nd, top.Node)
				s.PQ.Push(e.Target, nd)
			}
		}
		if forward {
			g.OutEdges(top.Node, relax)
		} else {
			g.InEdges(top.Node, relax)
		}
	}
}
