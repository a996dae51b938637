package intermediate

import "github.com/azybler/hwyhier/pkg/phase1"

// FromRetained materializes an intermediate graph from Phase 1's retained
// edge set, via repeated AddEdge — the "edges.into_par_iter().collect()"
// step of the original, expressed sequentially since AddEdge's tie-break
// needs to see prior insertions in a defined order.
func FromRetained(edges []phase1.RetainedEdge) *Graph {
	g := New()
	for _, e := range edges {
		g.AddEdge(e.Source, e.Target, e.Weight, e.Prov)
	}
	return g
}
