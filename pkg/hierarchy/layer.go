// Package hierarchy builds and serializes the multi-level highway
// hierarchy (C8): one layer builder wiring neighborhood radii, Phase 1
// retention, and Phase 2 contraction into a fresh CSR graph, plus a
// driver iterating that builder across levels and a binary encoder for
// the resulting blobs.
package hierarchy

import (
	"context"
	"sort"

	"github.com/azybler/hwyhier/pkg/contract"
	"github.com/azybler/hwyhier/pkg/hhgraph"
	"github.com/azybler/hwyhier/pkg/intermediate"
	"github.com/azybler/hwyhier/pkg/neighborhood"
	"github.com/azybler/hwyhier/pkg/phase1"
)

// BuildLayer runs one full level transition: neighborhood radii (C3),
// Phase 1 edge retention (C4/C5), intermediate-graph materialization and
// core contraction (C6/C7), then reassembles the surviving nodes and
// shortcut edges into a new CSR graph. The returned graph's Preimage[i]
// names the input graph's node id that survivor i was contracted from,
// so a caller can walk back down through as many levels as were built.
//
// If the contracted core has no edges left, BuildLayer returns
// *hhgraph.EmptyLevelError instead of a graph, so the caller can stop
// the hierarchy there. level is only used to label that error.
func BuildLayer(ctx context.Context, g *hhgraph.Graph, level int, h uint32, c float32) (*hhgraph.Graph, error) {
	radii, err := neighborhood.Compute(ctx, g, h)
	if err != nil {
		return nil, err
	}

	retained, err := phase1.ComputeRetainedEdges(ctx, g, radii)
	if err != nil {
		return nil, err
	}

	ig := intermediate.FromRetained(retained)
	contract.Run(ig, c)

	survivors := ig.Nodes()
	sort.Slice(survivors, func(i, j int) bool { return survivors[i] < survivors[j] })

	newID := make(map[uint32]uint32, len(survivors))
	preimage := make([]uint32, len(survivors))
	for i, old := range survivors {
		newID[old] = uint32(i)
		preimage[i] = old
	}

	var builderEdges []hhgraph.BuilderEdge
	for _, old := range survivors {
		for target, e := range ig.OutEdges(old) {
			builderEdges = append(builderEdges, hhgraph.BuilderEdge{
				Source: newID[old],
				Target: newID[target],
				Weight: e.Weight,
				Prov:   e.Prov,
			})
		}
	}

	if len(builderEdges) == 0 {
		return nil, &hhgraph.EmptyLevelError{Level: level}
	}

	next, err := hhgraph.Build(uint32(len(survivors)), builderEdges)
	if err != nil {
		return nil, err
	}
	next.Preimage = preimage
	return next, nil
}
