package query

import (
	"context"
	"errors"
	"math"

	"github.com/azybler/hwyhier/pkg/hhgraph"
)

// ErrNoRoute is returned when no path connects the two snapped points.
var ErrNoRoute = errors.New("no route found")

// ErrPointTooFar is returned when a query point snaps to nothing nearby.
var ErrPointTooFar = errors.New("point too far from road")

// LatLng is a geographic coordinate.
type LatLng struct {
	Lat, Lng float64
}

// RouteResult is the output of a route query.
type RouteResult struct {
	DistanceMeters float64
	Path           []LatLng
}

// Engine answers point-to-point queries against a built Hierarchy.
type Engine struct {
	hier    *Hierarchy
	snapper *Snapper
}

// NewEngine builds a query engine. snapper indexes level 0's road
// segments for point snapping.
func NewEngine(hier *Hierarchy, snapper *Snapper) *Engine {
	return &Engine{hier: hier, snapper: snapper}
}

// key packs (level, node) into one map key.
func key(level uint8, node uint32) uint64 {
	return uint64(level)<<32 | uint64(node)
}

// predEntry records how (level, node) was first reached: via a real
// edge slot within that level's graph, via a climb step (edge == noNode)
// from the same physical node one level down, or not at all (valid ==
// false) when it is a search root seeded directly from a snapped point.
type predEntry struct {
	fromLevel uint8
	fromNode  uint32
	edge      uint32 // noNode for a climb step or a seed root
	valid     bool
}

// searchSide is one direction's Dijkstra-with-climbing state. backward
// selects whether expand walks out-edges (growing toward the
// destination) or in-edges (growing toward the source).
type searchSide struct {
	backward bool
	dist     map[uint64]float32
	pred     map[uint64]predEntry
	pq       minHeap
}

func newSide(backward bool) *searchSide {
	return &searchSide{
		backward: backward,
		dist:     make(map[uint64]float32),
		pred:     make(map[uint64]predEntry),
	}
}

func (s *searchSide) distOf(level uint8, node uint32) float32 {
	if d, ok := s.dist[key(level, node)]; ok {
		return d
	}
	return float32(math.Inf(1))
}

// relax pushes (level, node) at dist if it improves on the best known
// distance, recording pred as how it was reached.
func (s *searchSide) relax(level uint8, node uint32, dist float32, pred predEntry) {
	k := key(level, node)
	if d, ok := s.dist[k]; ok && dist >= d {
		return
	}
	s.dist[k] = dist
	s.pred[k] = pred
	s.pq.Push(level, node, dist)
}

// Route finds the shortest path between start and end.
func (e *Engine) Route(ctx context.Context, start, end LatLng) (*RouteResult, error) {
	startSnap, err := e.snapper.Snap(start.Lat, start.Lng)
	if err != nil {
		return nil, err
	}
	endSnap, err := e.snapper.Snap(end.Lat, end.Lng)
	if err != nil {
		return nil, err
	}

	fwd, bwd := newSide(false), newSide(true)
	seedForward(fwd, startSnap)
	seedBackward(bwd, endSnap)

	mu := float32(math.Inf(1))
	var meetLevel uint8
	var meetNode uint32
	meetFound := false

	tryMeet := func(level uint8, node uint32) {
		fd, fok := fwd.dist[key(level, node)]
		bd, bok := bwd.dist[key(level, node)]
		if fok && bok && fd+bd < mu {
			mu = fd + bd
			meetLevel, meetNode = level, node
			meetFound = true
		}
	}

	iterations := 0
	for {
		fwdMin, bwdMin := fwd.pq.PeekDist(), bwd.pq.PeekDist()
		if fwdMin >= mu && bwdMin >= mu {
			break
		}
		iterations++
		if iterations&255 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if fwdMin < mu {
			item := fwd.pq.Pop()
			if item.Dist <= fwd.distOf(item.Level, item.Node) {
				tryMeet(item.Level, item.Node)
				e.expand(fwd, item)
			}
		}
		if bwd.pq.PeekDist() < mu {
			item := bwd.pq.Pop()
			if item.Dist <= bwd.distOf(item.Level, item.Node) {
				tryMeet(item.Level, item.Node)
				e.expand(bwd, item)
			}
		}
	}

	if !meetFound {
		return nil, ErrNoRoute
	}

	nodes := e.reconstruct(fwd, bwd, meetLevel, meetNode)

	// The node walk begins and ends at the snapped segments' endpoints;
	// the snapped points on those segments bound the path on either side.
	onRoad := func(s SnapResult) LatLng {
		sLat, sLon := e.snapper.lat[s.Source], e.snapper.lon[s.Source]
		tLat, tLon := e.snapper.lat[s.Target], e.snapper.lon[s.Target]
		return LatLng{Lat: sLat + s.Ratio*(tLat-sLat), Lng: sLon + s.Ratio*(tLon-sLon)}
	}
	path := e.toLatLng(nodes)
	if p := onRoad(startSnap); path[0] != p {
		path = append([]LatLng{p}, path...)
	}
	if p := onRoad(endSnap); path[len(path)-1] != p {
		path = append(path, p)
	}
	return &RouteResult{
		DistanceMeters: float64(mu),
		Path:           path,
	}, nil
}

// seedForward relaxes the nodes reachable from a snapped start point: the
// segment's Target is always reachable (continuing along the allowed
// direction of travel); its Source is reachable too when the segment is
// bidirectional.
func seedForward(side *searchSide, s SnapResult) {
	remaining := float32(1-s.Ratio) * s.Weight
	side.relax(0, s.Target, remaining, predEntry{})
	if s.Dir == hhgraph.Both {
		traveled := float32(s.Ratio) * s.Weight
		side.relax(0, s.Source, traveled, predEntry{})
	}
}

// seedBackward relaxes the nodes that can reach a snapped end point: its
// Source always can (the point lies further along the segment's allowed
// direction); its Target can too when the segment is bidirectional.
func seedBackward(side *searchSide, s SnapResult) {
	traveled := float32(s.Ratio) * s.Weight
	side.relax(0, s.Source, traveled, predEntry{})
	if s.Dir == hhgraph.Both {
		remaining := float32(1-s.Ratio) * s.Weight
		side.relax(0, s.Target, remaining, predEntry{})
	}
}

// expand relaxes outward from item: if still within this node's radius
// at its current level, it walks that level's own edges; once the
// node's distance exceeds its radius, the search climbs to the next
// level instead (a zero-cost relabeling of the same physical node) and
// relaxes from there.
func (e *Engine) expand(side *searchSide, item pqItem) {
	lv := e.hier.levels[item.Level]

	radius := lv.radii.Forward[item.Node]
	if side.backward {
		radius = lv.radii.Backward[item.Node]
	}

	if item.Dist <= radius || int(item.Level) == len(e.hier.levels)-1 {
		e.relaxLocalEdges(side, item)
		return
	}

	nextID := lv.nextID[item.Node]
	if nextID == noNode {
		// This node never survived into the next level: the search
		// along this branch stops here, trusting the alternate route
		// through a node that does survive (standard HH behavior).
		return
	}
	side.relax(item.Level+1, nextID, item.Dist, predEntry{
		fromLevel: item.Level, fromNode: item.Node, edge: noNode, valid: true,
	})
}

func (e *Engine) relaxLocalEdges(side *searchSide, item pqItem) {
	g := e.hier.levels[item.Level].graph
	walk := g.OutEdges
	if side.backward {
		walk = g.InEdges
	}
	walk(item.Node, func(slot uint32, ed hhgraph.Edge) {
		other := ed.Target
		nd := item.Dist + ed.Weight
		side.relax(item.Level, other, nd, predEntry{
			fromLevel: item.Level, fromNode: item.Node, edge: slot, valid: true,
		})
	})
}

// hop is one traversed graph edge, named by the level it lives in and
// the row slot within that level's graph.
type hop struct {
	level uint8
	slot  uint32
}

// walkPreds follows a side's predecessor chain from (level, node) back to
// its seed root, returning the hops in root-to-(level,node) order. Climb
// steps (edge == noNode) are followed but yield no hop.
func walkPreds(side *searchSide, level uint8, node uint32) []hop {
	var hops []hop
	for {
		p, ok := side.pred[key(level, node)]
		if !ok || !p.valid {
			break
		}
		if p.edge != noNode {
			hops = append(hops, hop{p.fromLevel, p.edge})
		}
		level, node = p.fromLevel, p.fromNode
	}
	for i, j := 0, len(hops)-1; i < j; i, j = i+1, j-1 {
		hops[i], hops[j] = hops[j], hops[i]
	}
	return hops
}

// reconstruct expands the meeting point's two predecessor chains into a
// single base-graph (level 0) node walk. Climb steps contribute no edge
// of their own — walkPreds filters them out (p.valid is false for both
// climb steps and seed roots) since the physical node doesn't move,
// only its level label does.
//
// Forward-side hops already run start -> meet in root-to-node order
// (after walkPreds's reversal); each hop's slot was discovered via
// OutEdges, so its Provenance chain is already oriented
// predecessor -> successor, matching the walk direction.
//
// Backward-side hops run meet -> end: each predecessor pointer names
// the node nearer the destination, so walking the chain from the meet
// node outward yields that order — the reverse of what walkPreds
// returns, so these hops are appended back to front. Each hop's slot
// (discovered via InEdges) shares its Provenance with its Forward twin
// from the same logical edge, which is also predecessor -> successor
// along the true direction of travel (see hhgraph.Build for levels >= 1
// and osmingest.assignBaseProvenance for level 0, which must fix this
// up after the fact since base-graph slot ids don't exist until
// hhgraph.Build has run).
func (e *Engine) reconstruct(fwd, bwd *searchSide, meetLevel uint8, meetNode uint32) []uint32 {
	base := e.hier.BaseGraph()
	var nodes []uint32

	appendHop := func(h hop) {
		g := e.hier.levels[h.level].graph
		for _, id := range g.Provenance(h.slot).IDs() {
			be := base.Edge(id)
			if len(nodes) == 0 || nodes[len(nodes)-1] != be.Source {
				nodes = append(nodes, be.Source)
			}
			nodes = append(nodes, be.Target)
		}
	}

	for _, h := range walkPreds(fwd, meetLevel, meetNode) {
		appendHop(h)
	}
	bwdHops := walkPreds(bwd, meetLevel, meetNode)
	for i := len(bwdHops) - 1; i >= 0; i-- {
		appendHop(bwdHops[i])
	}

	if len(nodes) == 0 {
		// Degenerate case: start and end snapped onto the same node
		// with no hops in between (meetNode must then be a level-0 id,
		// since the search never needed to climb).
		nodes = append(nodes, meetNode)
	}
	return nodes
}

// toLatLng converts base-graph node ids into coordinates via the
// snapper's node coordinate arrays.
func (e *Engine) toLatLng(nodes []uint32) []LatLng {
	out := make([]LatLng, len(nodes))
	for i, n := range nodes {
		out[i] = LatLng{Lat: e.snapper.lat[n], Lng: e.snapper.lon[n]}
	}
	return out
}
