package query

import "math"

// pqItem is one entry of a level-climbing search's priority queue: a
// node, the level it lives at, and the tentative distance to it.
type pqItem struct {
	Level uint8
	Node  uint32
	Dist  float32
}

// minHeap is a concrete-typed min-heap, matching the teacher's
// pkg/routing MinHeap rather than container/heap's interface boxing.
type minHeap struct {
	items []pqItem
}

func (h *minHeap) Len() int { return len(h.items) }

func (h *minHeap) Push(level uint8, node uint32, dist float32) {
	h.items = append(h.items, pqItem{level, node, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *minHeap) Pop() pqItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *minHeap) PeekDist() float32 {
	if len(h.items) == 0 {
		return float32(math.Inf(1))
	}
	return h.items[0].Dist
}

func (h *minHeap) Reset() { h.items = h.items[:0] }

func (h *minHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].Dist >= h.items[parent].Dist {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *minHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
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
