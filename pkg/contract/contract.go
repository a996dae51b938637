// Package contract implements the core contraction driver (C7): a FIFO
// sweep over the intermediate graph that bypasses any node whose bypass
// would not blow up the edge count by more than a tunable factor.
// Grounded on the original's generation/core.rs core_network_with_patch.
package contract

import "github.com/azybler/hwyhier/pkg/intermediate"

// fifo is a work queue guarded by a membership set, so a node already
// waiting to be (re-)examined is never queued twice.
type fifo struct {
	items []uint32
	pos   int
	seen  map[uint32]bool
}

func newFifo(nodes []uint32) *fifo {
	items := make([]uint32, len(nodes))
	copy(items, nodes)
	seen := make(map[uint32]bool, len(nodes))
	for _, n := range nodes {
		seen[n] = true
	}
	return &fifo{items: items, seen: seen}
}

func (f *fifo) empty() bool { return f.pos >= len(f.items) }

func (f *fifo) popFront() uint32 {
	v := f.items[f.pos]
	f.pos++
	delete(f.seen, v)
	return v
}

func (f *fifo) pushBack(v uint32) {
	if f.seen[v] {
		return
	}
	f.seen[v] = true
	f.items = append(f.items, v)
}

// Run drives core contraction over g in place until the queue empties.
// factor is the contraction factor c (>= 1): a node is bypassed whenever
// |out(v)|*|in(v)| <= c*(|out(v)|+|in(v)|), the non-strict form (see the
// termination-with-ties decision this fixes). Nodes with an empty in- or
// out-degree are always bypassed, since short is 0 there and cost is
// never negative.
func Run(g *intermediate.Graph, factor float32) {
	q := newFifo(g.Nodes())
	for !q.empty() {
		v := q.popFront()
		if !g.Contains(v) {
			continue
		}
		out := g.OutDegree(v)
		in := g.InDegree(v)
		short := float32(out * in)
		cost := factor * float32(out+in)
		if short > cost {
			continue
		}
		for _, n := range g.Bypass(v) {
			q.pushBack(n)
		}
	}
}
