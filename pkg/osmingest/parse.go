// Package osmingest parses OSM PBF extracts into the input format the
// hierarchy builder's base graph expects: direction-tagged edges ready
// for hhgraph.Build, with zero-length and self-loop segments filtered
// out before they ever reach the core (spec §6's ingester contract).
// Adapted from the teacher's pkg/osm/parser.go, generalized to emit one
// direction-tagged RawEdge per way segment instead of up to two
// unidirectional ones.
package osmingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/azybler/hwyhier/pkg/geo"
	"github.com/azybler/hwyhier/pkg/hhgraph"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// RawEdge is one directed-or-bidirectional road segment between two
// adjacent way nodes, tagged with the hhgraph Direction it should carry
// once the base graph is built.
type RawEdge struct {
	From, To     osm.NodeID
	WeightMeters float32
	Dir          hhgraph.Direction
}

// ParseResult holds every edge and referenced node coordinate collected
// from an OSM extract.
type ParseResult struct {
	Edges   []RawEdge
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

var carHighways = map[string]bool{
	"motorway": true, "motorway_link": true, "trunk": true, "trunk_link": true,
	"primary": true, "primary_link": true, "secondary": true, "secondary_link": true,
	"tertiary": true, "tertiary_link": true, "unclassified": true,
	"residential": true, "living_street": true, "service": true,
}

func isCarAccessible(tags osm.Tags) bool {
	if !carHighways[tags.Find("highway")] {
		return false
	}
	if tags.Find("area") == "yes" {
		return false
	}
	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false
	}
	return true
}

// wayDirection returns the hhgraph.Direction implied by highway type and
// oneway tags, and ok=false for a "reversible" (time-dependent) way,
// which the ingester must skip entirely.
func wayDirection(tags osm.Tags) (dir hhgraph.Direction, ok bool) {
	forward, backward := true, true

	hw := tags.Find("highway")
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	case "no":
		forward, backward = true, true
	case "reversible":
		return 0, false
	}

	switch {
	case forward && backward:
		return hhgraph.Both, true
	case forward:
		return hhgraph.Forward, true
	case backward:
		return hhgraph.Backward, true
	default:
		return 0, false
	}
}

type wayInfo struct {
	NodeIDs []osm.NodeID
	Dir     hhgraph.Direction
}

// BBox filters edges to those with both endpoints inside the box; the
// zero value matches everything.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseOptions configures Parse.
type ParseOptions struct {
	BBox BBox
}

// Parse reads an OSM PBF extract and returns direction-tagged edges for
// car routing. rs is scanned twice (ways, then referenced nodes), so it
// must support seeking back to the start.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ParseOptions) (*ParseResult, error) {
	useBBox := !opts.BBox.IsZero()

	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok || !isCarAccessible(w.Tags) || len(w.Nodes) < 2 {
			continue
		}
		dir, ok := wayDirection(w.Tags)
		if !ok {
			continue
		}
		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}
		ways = append(ways, wayInfo{NodeIDs: nodeIDs, Dir: dir})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()
	log.Printf("osmingest: pass 1 complete: %d ways, %d referenced nodes", len(ways), len(referencedNodes))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeLon := make(map[osm.NodeID]float64, len(referencedNodes))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()
	log.Printf("osmingest: pass 2 complete: %d node coordinates collected", len(nodeLat))

	var edges []RawEdge
	var skipped, bboxFiltered, degenerate int
	for _, w := range ways {
		for i := 0; i < len(w.NodeIDs)-1; i++ {
			fromID, toID := w.NodeIDs[i], w.NodeIDs[i+1]
			if fromID == toID {
				degenerate++
				continue
			}
			fromLat, fromOk := nodeLat[fromID]
			fromLon := nodeLon[fromID]
			toLat, toOk := nodeLat[toID]
			toLon := nodeLon[toID]
			if !fromOk || !toOk {
				skipped++
				continue
			}
			if useBBox && (!opts.BBox.Contains(fromLat, fromLon) || !opts.BBox.Contains(toLat, toLon)) {
				bboxFiltered++
				continue
			}
			dist := geo.Haversine(fromLat, fromLon, toLat, toLon)
			if dist <= 0 || math.IsNaN(dist) {
				degenerate++
				continue
			}
			edges = append(edges, RawEdge{From: fromID, To: toID, WeightMeters: float32(dist), Dir: w.Dir})
		}
	}
	if skipped > 0 {
		log.Printf("osmingest: skipped %d segments with missing coordinates", skipped)
	}
	if bboxFiltered > 0 {
		log.Printf("osmingest: filtered %d segments outside bounding box", bboxFiltered)
	}
	if degenerate > 0 {
		log.Printf("osmingest: dropped %d zero-length or self-loop segments", degenerate)
	}
	log.Printf("osmingest: built %d directed segments", len(edges))

	return &ParseResult{Edges: edges, NodeLat: nodeLat, NodeLon: nodeLon}, nil
}
