// Package dijkstra provides the concrete binary-heap Dijkstra machinery
// used by neighborhood computation: State.Run owns the settle-then-relax
// loop over an hhgraph.Graph and hands each settled node to a caller
// callback that decides when to stop. Phase 1 and the query engine keep
// their own heaps.
package dijkstra

import "math"

// Inf is the sentinel "not yet reached" distance.
const Inf = float32(math.MaxFloat32)

// PQItem is a priority queue entry: a node and its tentative distance.
type PQItem struct {
	Node uint32
	Dist float32
}

// MinHeap is a concrete-typed min-heap, avoiding interface boxing overhead
// of container/heap.
type MinHeap struct {
	items []PQItem
}

func (h *MinHeap) Len() int { return len(h.items) }

func (h *MinHeap) Push(node uint32, dist float32) {
	h.items = append(h.items, PQItem{node, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *MinHeap) Pop() PQItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *MinHeap) PeekDist() float32 {
	if len(h.items) == 0 {
		return Inf
	}
	return h.items[0].Dist
}

func (h *MinHeap) Reset() {
	h.items = h.items[:0]
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].Dist >= h.items[parent].Dist {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].Dist < h.items[smallest].Dist {
			smallest = left
		}
		if right < n && h.items[right].Dist < h.items[smallest].Dist {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
