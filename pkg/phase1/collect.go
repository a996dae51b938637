package phase1

import "github.com/azybler/hwyhier/pkg/neighborhood"

// collectRetainedEdges walks the settled order from largest distance down
// to smallest, maintaining a tentative-slack map, and decides which edges
// must be retained into the next level. Entries at or below s0's forward
// radius are skipped via continue (not an early return: a later, farther
// entry in the same sweep may still need an edge that an earlier, nearer
// one doesn't) — see the Open Question this resolves.
func collectRetainedEdges(s0 uint32, settledOrder []settledEntry, visited map[uint32]visitedState, radii neighborhood.Radii) []uint32 {
	var retained []uint32
	tentativeSlack := make(map[uint32]float32, len(settledOrder))

	for i := len(settledOrder) - 1; i >= 0; i-- {
		node := settledOrder[i].node
		distance := settledOrder[i].distance
		if distance <= radii.Forward[s0] {
			continue
		}

		slack, ok := tentativeSlack[node]
		if !ok {
			slack = radii.Backward[node]
		}

		for parent, info := range visited[node].parents {
			slackParent := slack - info.distance
			if slackParent < 0 {
				retained = append(retained, info.edge)
			}
			cur, ok := tentativeSlack[parent]
			if !ok {
				cur = radii.Backward[parent]
			}
			if slackParent < cur {
				cur = slackParent
			}
			tentativeSlack[parent] = cur
		}
	}

	return retained
}
