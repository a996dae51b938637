package query

import (
	"math"
	"sort"

	"github.com/azybler/hwyhier/pkg/geo"
	"github.com/azybler/hwyhier/pkg/hhgraph"
)

const maxSnapDistMeters = 500.0

// SnapResult is a query point snapped onto a level-0 road segment, kept
// as the segment's two endpoints and the fraction of the way along it.
type SnapResult struct {
	Slot           uint32 // the OutEdges slot this segment was found through
	Source, Target uint32
	Dir            hhgraph.Direction
	Weight         float32
	Ratio          float64 // 0 = at Source, 1 = at Target
	Dist           float64 // meters from the query point to the segment
}

// Grid cell size in degrees, matching the teacher's pkg/routing/snap.go:
// 0.01° ≈ 1.1 km at the equator, so a 3×3 cell search comfortably covers
// the 500 m max snap distance.
const gridCellSize = 0.01

func gridCell(lat, lon float64) (latIdx, lonIdx int32) {
	return int32(math.Floor(lat / gridCellSize)), int32(math.Floor(lon / gridCellSize))
}

func cellKey(latIdx, lonIdx int32) uint64 {
	return uint64(uint32(latIdx))<<32 | uint64(uint32(lonIdx))
}

type cellEdge struct {
	key  uint64
	slot uint32
}

// Snapper indexes level-0's road segments in a flat sorted grid for
// nearest-road lookup, generalizing the teacher's Snapper
// (pkg/routing/snap.go) to hhgraph's direction-tagged CSR edges instead
// of the teacher's dedicated CHGraph node-coordinate arrays.
type Snapper struct {
	edges    []cellEdge // sorted by key
	g        *hhgraph.Graph
	lat, lon []float64
}

// NewSnapper builds a spatial grid index over g's edges, discovered via
// OutEdges: a one-way edge gets one entry (its Forward slot), a
// bidirectional edge two (the Both slot in each endpoint's row). lat/lon
// are indexed by g's node ids.
func NewSnapper(g *hhgraph.Graph, lat, lon []float64) *Snapper {
	var edges []cellEdge
	for u := uint32(0); u < g.NumNodes; u++ {
		g.OutEdges(u, func(slot uint32, e hhgraph.Edge) {
			uLat, uLon := lat[u], lon[u]
			vLat, vLon := lat[e.Target], lon[e.Target]

			latLo, lonLo := gridCell(math.Min(uLat, vLat), math.Min(uLon, vLon))
			latHi, lonHi := gridCell(math.Max(uLat, vLat), math.Max(uLon, vLon))
			for la := latLo; la <= latHi; la++ {
				for lo := lonLo; lo <= lonHi; lo++ {
					edges = append(edges, cellEdge{key: cellKey(la, lo), slot: slot})
				}
			}
		})
	}

	sort.Slice(edges, func(i, j int) bool { return edges[i].key < edges[j].key })

	return &Snapper{edges: edges, g: g, lat: lat, lon: lon}
}

func (s *Snapper) cellRange(key uint64) []cellEdge {
	lo := sort.Search(len(s.edges), func(i int) bool { return s.edges[i].key >= key })
	if lo >= len(s.edges) || s.edges[lo].key != key {
		return nil
	}
	hi := sort.Search(len(s.edges), func(i int) bool { return s.edges[i].key > key })
	return s.edges[lo:hi]
}

// Snap finds the nearest level-0 road segment to (lat, lng), searching
// the 3x3 grid of cells centered on the query point.
func (s *Snapper) Snap(lat, lng float64) (SnapResult, error) {
	centerLat, centerLon := gridCell(lat, lng)

	bestDist := math.Inf(1)
	var best SnapResult
	found := false

	for dLat := int32(-1); dLat <= 1; dLat++ {
		for dLon := int32(-1); dLon <= 1; dLon++ {
			for _, ce := range s.cellRange(cellKey(centerLat+dLat, centerLon+dLon)) {
				e := s.g.Edge(ce.slot)
				dist, ratio := geo.PointToSegmentDist(
					lat, lng,
					s.lat[e.Source], s.lon[e.Source],
					s.lat[e.Target], s.lon[e.Target],
				)
				if dist < bestDist {
					bestDist = dist
					found = true
					best = SnapResult{
						Slot:   ce.slot,
						Source: e.Source,
						Target: e.Target,
						Dir:    e.Dir,
						Weight: e.Weight,
						Ratio:  ratio,
						Dist:   dist,
					}
				}
			}
		}
	}

	if !found || bestDist > maxSnapDistMeters {
		return SnapResult{}, ErrPointTooFar
	}
	return best, nil
}
