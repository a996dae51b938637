// Command build-hierarchy ingests an OSM PBF extract and writes the
// resulting highway hierarchy — one binary blob per level plus a base
// coordinates sidecar — to an output directory, ready for cmd/server to
// load. Generalizes the teacher's cmd/preprocess, swapping its
// OSM-ingest + single-shot CH pipeline for osmingest + pkg/hierarchy's
// multi-level build.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/azybler/hwyhier/pkg/hierarchy"
	"github.com/azybler/hwyhier/pkg/osmingest"
)

func main() {
	input := flag.String("input", "", "Path to .osm.pbf file")
	outDir := flag.String("output", "hierarchy", "Output directory for level blobs and coordinates")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng (e.g. 1.15,103.6,1.48,104.1)")
	singapore := flag.Bool("singapore", false, "Shortcut for --bbox 1.15,103.6,1.48,104.1 (Singapore bounding box)")
	kl := flag.Bool("kl", false, "Shortcut for --bbox 2.75,101.2,3.5,102.0 (Selangor + Kuala Lumpur bounding box)")
	neighborhoodSize := flag.Uint("neighborhood-size", 18, "Neighborhood size H (>= 2)")
	contractionFactor := flag.Float64("contraction-factor", 1.5, "Contraction factor c (>= 1.0)")
	levels := flag.Uint("levels", 6, "Number of hierarchy levels to build above the base (>= 1)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: build-hierarchy --input <file.osm.pbf> [--output hierarchy] [--singapore | --kl | --bbox minLat,minLng,maxLat,maxLng]")
		os.Exit(1)
	}

	var opts osmingest.ParseOptions
	switch {
	case *kl:
		opts.BBox = osmingest.BBox{MinLat: 2.75, MaxLat: 3.5, MinLng: 101.2, MaxLng: 102.0}
		log.Println("Using Selangor + KL bounding box filter: lat [2.75, 3.50], lng [101.20, 102.00]")
	case *singapore:
		opts.BBox = osmingest.BBox{MinLat: 1.15, MaxLat: 1.48, MinLng: 103.6, MaxLng: 104.1}
		log.Println("Using Singapore bounding box filter: lat [1.15, 1.48], lng [103.6, 104.1]")
	case *bbox != "":
		var minLat, minLng, maxLat, maxLng float64
		if _, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng); err != nil {
			log.Fatalf("Invalid bbox format (expected minLat,minLng,maxLat,maxLng): %v", err)
		}
		opts.BBox = osmingest.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
		log.Printf("Using bounding box filter: lat [%.4f, %.4f], lng [%.4f, %.4f]", minLat, maxLat, minLng, maxLng)
	}

	start := time.Now()
	ctx := context.Background()

	log.Println("Opening OSM file...")
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	log.Println("Parsing OSM data...")
	parseResult, err := osmingest.Parse(ctx, f, opts)
	if err != nil {
		log.Fatalf("Failed to parse OSM data: %v", err)
	}
	log.Printf("Parsed %d edges, %d nodes", len(parseResult.Edges), len(parseResult.NodeLat))

	log.Println("Building base graph (largest component only)...")
	base, err := osmingest.Build(parseResult)
	if err != nil {
		log.Fatalf("Failed to build base graph: %v", err)
	}
	log.Printf("Base graph: %d nodes, %d edge slots", base.Graph.NumNodes, base.Graph.NumEdges())

	cfg := hierarchy.Config{
		NeighborhoodSize:  uint32(*neighborhoodSize),
		ContractionFactor: float32(*contractionFactor),
		Levels:            uint8(*levels),
	}

	log.Printf("Building hierarchy: H=%d c=%.2f levels=%d...", cfg.NeighborhoodSize, cfg.ContractionFactor, cfg.Levels)
	built, err := hierarchy.BuildAll(ctx, base.Graph, cfg)
	if err != nil {
		log.Fatalf("Failed to build hierarchy: %v", err)
	}
	for i, g := range built {
		log.Printf("Level %d: %d nodes, %d edge slots", i, g.NumNodes, g.NumEdges())
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	log.Printf("Writing %d level blobs to %s...", len(built), *outDir)
	if err := hierarchy.WriteAll(*outDir, built); err != nil {
		log.Fatalf("Failed to write levels: %v", err)
	}

	coordsPath := filepath.Join(*outDir, "base-coords.bin")
	log.Printf("Writing base coordinates to %s...", coordsPath)
	if err := osmingest.WriteCoords(coordsPath, base); err != nil {
		log.Fatalf("Failed to write coordinates: %v", err)
	}

	log.Printf("Done in %s. %d levels written to %s", time.Since(start).Round(time.Second), len(built), *outDir)
}
