package hhgraph

import (
	"math"
	"sort"
)

// BuilderEdge is one logical directed (or bidirectional) edge supplied to
// Build. Bidirectional marks a road segment traversable in either
// direction; otherwise the edge is a one-way Source -> Target.
type BuilderEdge struct {
	Source, Target uint32
	Weight         float32
	Bidirectional  bool
	Prov           Provenance
}

// Build assembles an immutable CSR Graph from a set of builder edges,
// following the teacher's counting-sort CSR assembly (builder.go):
// dedupe by (source, target) keeping the most recently supplied (a
// duplicate whose Bidirectional flag differs is rejected), then a
// single counting pass plus prefix sum to lay out FirstOut.
//
// Each logical edge is dedup'd, validated, then emitted as two row
// slots (see Graph's doc comment): one at Source's row, one at Target's.
func Build(numNodes uint32, edges []BuilderEdge) (*Graph, error) {
	type key struct{ s, t uint32 }
	dedup := make(map[key]BuilderEdge, len(edges))
	order := make([]key, 0, len(edges))

	for _, e := range edges {
		if e.Weight <= 0 || math.IsNaN(float64(e.Weight)) || math.IsInf(float64(e.Weight), 0) {
			return nil, &InvalidInputError{Reason: "edge weight must be finite and strictly positive"}
		}
		if e.Source >= numNodes || e.Target >= numNodes {
			return nil, &InvalidInputError{Reason: "edge references node id >= node count"}
		}
		k := key{e.Source, e.Target}
		prev, ok := dedup[k]
		if !ok {
			order = append(order, k)
		} else if prev.Bidirectional != e.Bidirectional {
			return nil, &InvalidInputError{Reason: "duplicate (source, target) pair with conflicting directions"}
		}
		dedup[k] = e // most-recently-supplied wins
	}

	// Two row slots per logical edge.
	type slot struct {
		row, target uint32
		weight      float32
		dir         Direction
		prov        Provenance
	}
	slots := make([]slot, 0, len(order)*2)
	for _, k := range order {
		e := dedup[k]
		if e.Bidirectional {
			slots = append(slots,
				slot{row: e.Source, target: e.Target, weight: e.Weight, dir: Both, prov: e.Prov},
				slot{row: e.Target, target: e.Source, weight: e.Weight, dir: Both, prov: e.Prov},
			)
		} else {
			slots = append(slots,
				slot{row: e.Source, target: e.Target, weight: e.Weight, dir: Forward, prov: e.Prov},
				slot{row: e.Target, target: e.Source, weight: e.Weight, dir: Backward, prov: e.Prov},
			)
		}
	}

	// Sort each node's row by (direction, target), as required by the
	// CSR invariant.
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].row != slots[j].row {
			return slots[i].row < slots[j].row
		}
		if slots[i].dir != slots[j].dir {
			return slots[i].dir < slots[j].dir
		}
		return slots[i].target < slots[j].target
	})

	numSlots := uint32(len(slots))
	firstOut := make([]uint32, numNodes+1)
	for _, s := range slots {
		firstOut[s.row+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	target := make([]uint32, numSlots)
	weight := make([]float32, numSlots)
	dir := make([]Direction, numSlots)
	prov := make([]Provenance, numSlots)
	for i, s := range slots {
		target[i] = s.target
		weight[i] = s.weight
		dir[i] = s.dir
		prov[i] = s.prov
	}

	return &Graph{
		NumNodes: numNodes,
		FirstOut: firstOut,
		Target:   target,
		Weight:   weight,
		Dir:      dir,
		Prov:     prov,
	}, nil
}
