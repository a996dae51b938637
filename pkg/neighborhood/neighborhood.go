// Package neighborhood computes, for every node, the distance to its H-th
// nearest reachable node in each direction — the radius that Phase 1 uses
// to decide how far a restricted search must run before an edge can be
// safely dropped. Grounded on the original's parallel forward/backward
// radius computation (components/graph/src/neighbourhood.rs), adapted to
// a worker-pool idiom via golang.org/x/sync/errgroup.
package neighborhood

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/azybler/hwyhier/pkg/dijkstra"
	"github.com/azybler/hwyhier/pkg/hhgraph"
)

// Radii holds, per node, the distance to its H-th nearest node reachable
// via out-edges (Forward) and via in-edges (Backward), counting the node
// itself as the 1st (distance 0). A node with fewer than H reachable nodes
// (including itself) gets the distance of the farthest node it can reach.
type Radii struct {
	Forward  []float32
	Backward []float32
}

// Compute runs Radii computation for every node of g, fanning out one
// goroutine per batch of 4096 nodes in each direction. H is the neighborhood size:
// the radius of v is the distance emitted by the H-th settle (1-indexed,
// where the 1st settle is always v itself at distance 0) of a plain
// Dijkstra rooted at v.
func Compute(ctx context.Context, g *hhgraph.Graph, h uint32) (Radii, error) {
	r := Radii{
		Forward:  make([]float32, g.NumNodes),
		Backward: make([]float32, g.NumNodes),
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		return fill(gctx, g, h, true, r.Forward)
	})
	grp.Go(func() error {
		return fill(gctx, g, h, false, r.Backward)
	})
	if err := grp.Wait(); err != nil {
		return Radii{}, err
	}
	return r, nil
}

// fill computes one direction's radius slice, partitioning the node range
// across a worker pool. Each worker owns a private dijkstra.State so no
// synchronization is needed beyond the output slice (each node id is
// written by exactly one worker).
func fill(ctx context.Context, g *hhgraph.Graph, h uint32, forward bool, out []float32) error {
	const batch = 4096
	grp, gctx := errgroup.WithContext(ctx)

	for start := uint32(0); start < g.NumNodes; start += batch {
		end := start + batch
		if end > g.NumNodes {
			end = g.NumNodes
		}
		start, end := start, end
		grp.Go(func() error {
			state := dijkstra.NewState(g.NumNodes)
			for v := start; v < end; v++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				out[v] = radiusOf(state, g, v, h, forward)
				state.Reset()
			}
			return nil
		})
	}
	return grp.Wait()
}

// radiusOf returns the distance emitted by the H-th settle of a Dijkstra
// search rooted at v (the 1st settle is always v itself, at distance 0).
// If the search exhausts before the H-th settle, the last (farthest)
// distance reached stands in for it.
func radiusOf(state *dijkstra.State, g *hhgraph.Graph, v uint32, h uint32, forward bool) float32 {
	var call uint32
	var last float32
	state.Run(g, v, forward, func(_ uint32, dist float32) bool {
		call++
		last = dist
		return call < h
	})
	return last
}
