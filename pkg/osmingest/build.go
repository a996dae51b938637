package osmingest

import (
	"sort"

	"github.com/azybler/hwyhier/pkg/hhgraph"

	"github.com/paulmach/osm"
)

// Base is the materialized base graph (level 0): the CSR graph plus the
// per-node metadata the query engine's point snapper needs, indexed by
// the same dense node ids as Graph.
type Base struct {
	Graph      *hhgraph.Graph
	NodeLat    []float64
	NodeLon    []float64
	ExternalID []int64 // original OSM node id, for diagnostics
}

// Build assembles a Base graph from a ParseResult: nodes are densely
// renumbered in OSM node id order, the largest weakly connected
// component is extracted (a disconnected fragment cannot contribute a
// usable route and is discarded before the hierarchy is built — see
// the supplemented-feature note on this), and every remaining segment
// becomes one hhgraph.BuilderEdge. A base edge's provenance must be a
// CSR slot id of the base graph itself (every higher level's shortcut
// chain is built by concatenating ids already drawn from g.Provenance,
// see pkg/phase1.ComputeRetainedEdges), so it can only be assigned once
// hhgraph.Build has laid the graph out and fixed those ids — see
// assignBaseProvenance below.
func Build(pr *ParseResult) (*Base, error) {
	ids := make([]osm.NodeID, 0, len(pr.NodeLat))
	for id := range pr.NodeLat {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	denseID := make(map[osm.NodeID]uint32, len(ids))
	for i, id := range ids {
		denseID[id] = uint32(i)
	}

	fromIdx := make([]uint32, 0, len(pr.Edges))
	toIdx := make([]uint32, 0, len(pr.Edges))
	for _, e := range pr.Edges {
		fromIdx = append(fromIdx, denseID[e.From])
		toIdx = append(toIdx, denseID[e.To])
	}

	keep := largestComponent(uint32(len(ids)), fromIdx, toIdx)

	finalID := make([]uint32, len(ids))
	var nodeLat, nodeLon []float64
	var externalID []int64
	var n uint32
	for i, id := range ids {
		if !keep[i] {
			finalID[i] = ^uint32(0)
			continue
		}
		finalID[i] = n
		nodeLat = append(nodeLat, pr.NodeLat[id])
		nodeLon = append(nodeLon, pr.NodeLon[id])
		externalID = append(externalID, int64(id))
		n++
	}

	var builderEdges []hhgraph.BuilderEdge
	for i, e := range pr.Edges {
		fu, fv := finalID[fromIdx[i]], finalID[toIdx[i]]
		if fu == ^uint32(0) || fv == ^uint32(0) {
			continue
		}
		if e.Dir == hhgraph.Backward {
			fu, fv = fv, fu // travel allowed only to->from along the polyline
		}
		builderEdges = append(builderEdges, hhgraph.BuilderEdge{
			Source:        fu,
			Target:        fv,
			Weight:        e.WeightMeters,
			Bidirectional: e.Dir == hhgraph.Both,
			// Placeholder: the real, slot-id-based provenance is assigned
			// by assignBaseProvenance once Build has fixed the CSR layout.
			Prov: hhgraph.Single(0),
		})
	}

	g, err := hhgraph.Build(n, builderEdges)
	if err != nil {
		return nil, err
	}
	if err := assignBaseProvenance(g); err != nil {
		return nil, err
	}

	return &Base{Graph: g, NodeLat: nodeLat, NodeLon: nodeLon, ExternalID: externalID}, nil
}

// assignBaseProvenance gives every base-graph CSR slot the provenance
// every higher level's shortcut chain recursively expands down to.
//
// A Both-tagged slot (either direction of a bidirectional road segment)
// already resolves correctly on its own: g.Edge(id) reports that slot's
// own row as Source, which is exactly the direction of travel that slot
// represents, so Single(id) is correct.
//
// A Forward/Backward pair (a one-way segment) represents a single
// direction of travel, but occupies two slots — one in each endpoint's
// row, so both OutEdges(source) and InEdges(target) can find it. Only
// the Forward slot's row matches the true source; g.Edge on the
// Backward slot would report the *target* as Source, reversed. So both
// slots of the pair must share the Forward slot's id, not each carry a
// self-referential one — matching how hhgraph.Build already shares one
// BuilderEdge.Prov value across both of a logical edge's slots (see
// builder.go), which this base case replicates after the fact since
// the slot ids themselves don't exist until Build has run.
func assignBaseProvenance(g *hhgraph.Graph) error {
	for i := range g.Prov {
		g.Prov[i] = hhgraph.Single(uint32(i))
	}
	for v := uint32(0); v < g.NumNodes; v++ {
		start, end := g.FirstOut[v], g.FirstOut[v+1]
		for id := start; id < end; id++ {
			if g.Dir[id] != hhgraph.Backward {
				continue
			}
			source := g.Target[id] // this slot's row (v) is the true target
			fwdID, ok := findForwardSlot(g, source, v)
			if !ok {
				return &hhgraph.InconsistentError{Reason: "one-way edge missing its forward slot"}
			}
			g.Prov[id] = g.Prov[fwdID]
		}
	}
	return nil
}

// findForwardSlot locates the Forward-tagged slot at source's row whose
// target is target. Forward-tagged slots sort first within a row (see
// hhgraph.Build's (dir, target) ordering), so they form a contiguous
// prefix that can be binary-searched by target.
func findForwardSlot(g *hhgraph.Graph, source, target uint32) (uint32, bool) {
	start, end := g.FirstOut[source], g.FirstOut[source+1]
	fwdEnd := start
	for fwdEnd < end && g.Dir[fwdEnd] == hhgraph.Forward {
		fwdEnd++
	}
	lo, hi := start, fwdEnd
	for lo < hi {
		mid := (lo + hi) / 2
		if g.Target[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < fwdEnd && g.Target[lo] == target {
		return lo, true
	}
	return 0, false
}
