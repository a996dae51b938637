// Package phase1 implements the restricted per-source Dijkstra DAG builder
// and edge collector (components C4 and C5): for every source node it grows
// a partial shortest-path tree that self-prunes once neighborhoods cover
// the remaining frontier, then walks the settled order back-to-front to
// decide which edges must survive into the next hierarchy level.
//
// Grounded on the original's generation/dag.rs (the merging priority queue)
// and generation/dijkstra.rs (the DAG growth and edge-collection sweep).
package phase1

import (
	"math"

	"github.com/azybler/hwyhier/pkg/hhgraph"
	"github.com/azybler/hwyhier/pkg/neighborhood"
)

var posInf = float32(math.Inf(1))

// parentEntry is carried on a heap entry before it settles: which parent
// node produced this distance, over which edge, and whether the
// contributing branch is still active.
type parentEntry struct {
	parent     uint32
	edge       uint32
	edgeWeight float32
	active     bool
}

// nodeState is one heap entry: a candidate (not yet settled) distance to
// current via a single parent.
type nodeState struct {
	distance float32
	current  uint32
	parent   parentEntry
}

// parentInfo is how a settled node records one of its (possibly several)
// shortest-path parents.
type parentInfo struct {
	edge     uint32
	distance float32
}

// visitedState is what gets recorded once a node is finalized.
type visitedState struct {
	distance          float32
	borderDistance    float32
	referenceDistance float32
	parents           map[uint32]parentInfo
}

// settledEntry is one node as it leaves the queue, in settle (non-decreasing
// distance) order; collect.go walks it back to front, largest distance first.
type settledEntry struct {
	node     uint32
	distance float32
}

// queue merges all heap entries that share (current, distance) before
// handing a settled node to the caller, tracking the count of still-active
// entries so the search can terminate once none remain.
type queue struct {
	items   []nodeState
	visited map[uint32]visitedState
	active  int
}

func newQueue() *queue {
	return &queue{
		items:   make([]nodeState, 0, 256),
		visited: make(map[uint32]visitedState, 256),
	}
}

func less(a, b nodeState) bool {
	if a.distance != b.distance {
		return a.distance < b.distance
	}
	if a.current != b.current {
		return a.current < b.current
	}
	return a.parent.parent < b.parent.parent
}

func (q *queue) push(s nodeState) {
	if s.parent.active {
		q.active++
	}
	q.items = append(q.items, s)
	i := len(q.items) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !less(q.items[i], q.items[parent]) {
			break
		}
		q.items[i], q.items[parent] = q.items[parent], q.items[i]
		i = parent
	}
}

func (q *queue) popHeap() nodeState {
	n := len(q.items)
	top := q.items[0]
	q.items[0] = q.items[n-1]
	q.items = q.items[:n-1]
	n--
	i := 0
	for {
		smallest := i
		l, r := 2*i+1, 2*i+2
		if l < n && less(q.items[l], q.items[smallest]) {
			smallest = l
		}
		if r < n && less(q.items[r], q.items[smallest]) {
			smallest = r
		}
		if smallest == i {
			break
		}
		q.items[i], q.items[smallest] = q.items[smallest], q.items[i]
		i = smallest
	}
	return top
}

// queueEntry is a settled, merged heap pop: all parents contributing the
// same (current, distance) folded together.
type queueEntry struct {
	state             nodeState
	parents           map[uint32]parentInfo
	borderDistance    float32
	referenceDistance float32
	parentActive      bool
}

// pop merges and returns the next settleable entry, or false once no active
// entries remain in the heap.
func (q *queue) pop() (queueEntry, bool) {
	if q.active <= 0 {
		return queueEntry{}, false
	}
	for len(q.items) > 0 {
		state := q.popHeap()
		if state.parent.active {
			q.active--
		}
		if _, ok := q.visited[state.current]; ok {
			continue // already settled via a different merge group
		}

		pv := q.visited[state.parent.parent]
		borderDistance := pv.borderDistance
		referenceDistance := pv.referenceDistance
		parents := map[uint32]parentInfo{
			state.parent.parent: {edge: state.parent.edge, distance: state.parent.edgeWeight},
		}
		active := state.parent.active

		for len(q.items) > 0 {
			peek := q.items[0]
			if peek.current != state.current || peek.distance != state.distance {
				break
			}
			if peek.parent.active {
				q.active--
			}
			ppv := q.visited[peek.parent.parent]
			if ppv.borderDistance > borderDistance {
				borderDistance = ppv.borderDistance
			}
			if ppv.referenceDistance > referenceDistance {
				referenceDistance = ppv.referenceDistance
			}
			parents[peek.parent.parent] = parentInfo{edge: peek.parent.edge, distance: peek.parent.edgeWeight}
			active = active || peek.parent.active
			state = q.popHeap()
		}

		return queueEntry{
			state:             state,
			parents:           parents,
			borderDistance:    borderDistance,
			referenceDistance: referenceDistance,
			parentActive:      active,
		}, true
	}
	return queueEntry{}, false
}

// buildDAG grows the restricted shortest-path DAG rooted at s0, returning
// the settle order (ascending distance) and the finalized per-node state.
func buildDAG(g *hhgraph.Graph, radii neighborhood.Radii, s0 uint32) ([]settledEntry, map[uint32]visitedState) {
	q := newQueue()
	q.visited[s0] = visitedState{
		distance:          0,
		borderDistance:    0,
		referenceDistance: posInf,
		parents:           map[uint32]parentInfo{s0: {distance: 0}},
	}

	g.OutEdges(s0, func(id uint32, e hhgraph.Edge) {
		q.push(nodeState{
			distance: e.Weight,
			current:  e.Target,
			parent:   parentEntry{parent: s0, edge: id, edgeWeight: e.Weight, active: true},
		})
	})

	settledOrder := make([]settledEntry, 0, 256)

	for {
		entry, ok := q.pop()
		if !ok {
			break
		}

		bd := borderDistance(s0, entry.state.current, entry.parents, radii, entry.borderDistance)
		rd := referenceDistance(entry, bd, q.visited)

		q.visited[entry.state.current] = visitedState{
			distance:          entry.state.distance,
			borderDistance:    bd,
			referenceDistance: rd,
			parents:           entry.parents,
		}
		settledOrder = append(settledOrder, settledEntry{node: entry.state.current, distance: entry.state.distance})

		shouldAbort := rd+radii.Backward[entry.state.current] < entry.state.distance
		active := entry.parentActive && !shouldAbort

		g.OutEdges(entry.state.current, func(id uint32, e hhgraph.Edge) {
			q.push(nodeState{
				distance: entry.state.distance + e.Weight,
				current:  e.Target,
				parent:   parentEntry{parent: entry.state.current, edge: id, edgeWeight: e.Weight, active: active},
			})
		})
	}

	return settledOrder, q.visited
}

func borderDistance(s0, node uint32, parents map[uint32]parentInfo, radii neighborhood.Radii, parentBorderDistance float32) float32 {
	if p, ok := parents[s0]; ok {
		return p.distance + radii.Forward[node]
	}
	return parentBorderDistance
}

func referenceDistance(entry queueEntry, borderDistance float32, visited map[uint32]visitedState) float32 {
	if entry.referenceDistance != posInf || entry.state.distance <= borderDistance {
		return entry.referenceDistance
	}
	max := float32(math.Inf(-1))
	for parent := range entry.parents {
		for grandparent := range visited[parent].parents {
			d := visited[grandparent].distance
			if d > max {
				max = d
			}
		}
	}
	return max
}
