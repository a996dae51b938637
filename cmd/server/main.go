package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/azybler/hwyhier/pkg/api"
	"github.com/azybler/hwyhier/pkg/hierarchy"
	"github.com/azybler/hwyhier/pkg/osmingest"
	"github.com/azybler/hwyhier/pkg/query"
)

// maxLevels bounds how many level-<i>.hhb files ReadAll will look for;
// cmd/build-hierarchy writes the base graph plus at most --levels built
// levels, and ReadAll stops at the first missing file regardless.
const maxLevels = 32

func main() {
	hierarchyDir := flag.String("hierarchy", "hierarchy", "Path to directory written by build-hierarchy")
	neighborhoodSize := flag.Uint("neighborhood-size", 18, "Neighborhood size H (must match build-hierarchy)")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	flag.Parse()

	start := time.Now()

	log.Printf("Loading hierarchy from %s...", *hierarchyDir)
	levels, err := hierarchy.ReadAll(*hierarchyDir, maxLevels)
	if err != nil {
		log.Fatalf("Failed to load hierarchy: %v", err)
	}
	log.Printf("Loaded %d levels", len(levels))
	for i, g := range levels {
		log.Printf("Level %d: %d nodes, %d edge slots", i, g.NumNodes, g.NumEdges())
	}

	coordsPath := filepath.Join(*hierarchyDir, "base-coords.bin")
	log.Printf("Loading base coordinates from %s...", coordsPath)
	lat, lon, _, err := osmingest.ReadCoords(coordsPath)
	if err != nil {
		log.Fatalf("Failed to load coordinates: %v", err)
	}

	ctx := context.Background()

	log.Println("Computing neighborhood radii and climb maps...")
	hier, err := query.NewHierarchy(ctx, levels, uint32(*neighborhoodSize))
	if err != nil {
		log.Fatalf("Failed to build query hierarchy: %v", err)
	}

	log.Println("Building spatial snap index...")
	snapper := query.NewSnapper(hier.BaseGraph(), lat, lon)

	engine := query.NewEngine(hier, snapper)

	// Reclaim memory from init-time temporaries. Without this, Go's heap
	// retains peak RSS from index construction.
	runtime.GC()
	debug.FreeOSMemory()

	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	stats := api.StatsResponse{
		NumLevels:   hier.NumLevels(),
		NumNodes:    hier.BaseGraph().NumNodes,
		NumBaseEdge: hier.BaseGraph().NumEdges(),
	}

	handlers := api.NewHandlers(engine, stats)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
