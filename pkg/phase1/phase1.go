package phase1

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/azybler/hwyhier/pkg/hhgraph"
	"github.com/azybler/hwyhier/pkg/neighborhood"
)

// RetainedEdge is one edge that survived Phase 1's restricted search,
// materialized with the fields the intermediate graph (C6) needs. Every
// retained edge is emitted Forward, regardless of the source edge's
// original direction tag — Phase 1 only ever walks out-edges, so whatever
// it retains is, by construction, a forward traversal.
type RetainedEdge struct {
	Source, Target uint32
	Weight         float32
	Prov           hhgraph.Provenance
}

// ComputeRetainedEdges runs the restricted DAG search and edge collector
// for every node of g as a source, in parallel, and returns the union of
// retained edges (duplicates — the same physical edge justified from
// multiple sources — collapse).
func ComputeRetainedEdges(ctx context.Context, g *hhgraph.Graph, radii neighborhood.Radii) ([]RetainedEdge, error) {
	const batchSize = 2048
	numBatches := (g.NumNodes + batchSize - 1) / batchSize
	if numBatches == 0 {
		return nil, nil
	}
	perBatch := make([][]uint32, numBatches)

	grp, gctx := errgroup.WithContext(ctx)
	for bi := uint32(0); bi < numBatches; bi++ {
		bi := bi
		start := bi * batchSize
		end := start + batchSize
		if end > g.NumNodes {
			end = g.NumNodes
		}
		grp.Go(func() error {
			var local []uint32
			for s0 := start; s0 < end; s0++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				settledOrder, visited := buildDAG(g, radii, s0)
				local = append(local, collectRetainedEdges(s0, settledOrder, visited, radii)...)
			}
			perBatch[bi] = local
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	needed := make([]bool, g.NumEdges())
	for _, ids := range perBatch {
		for _, id := range ids {
			needed[id] = true
		}
	}

	var out []RetainedEdge
	for id := uint32(0); id < g.NumEdges(); id++ {
		if !needed[id] {
			continue
		}
		e := g.Edge(id)
		out = append(out, RetainedEdge{
			Source: e.Source,
			Target: e.Target,
			Weight: e.Weight,
			Prov:   g.Provenance(id),
		})
	}
	return out, nil
}
