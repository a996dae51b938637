package query

import (
	"testing"

	"github.com/azybler/hwyhier/pkg/hhgraph"
)

// A short north-south road: 0 at (1.000, 103.000), 1 at (1.001, 103.000),
// about 111 m apart.
func buildRoadGraph(t *testing.T) (*hhgraph.Graph, []float64, []float64) {
	t.Helper()
	lat := []float64{1.000, 1.001}
	lon := []float64{103.000, 103.000}
	g, err := hhgraph.Build(2, []hhgraph.BuilderEdge{
		{Source: 0, Target: 1, Weight: 111, Bidirectional: true, Prov: hhgraph.Single(0)},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g, lat, lon
}

func TestSnapOnSegment(t *testing.T) {
	g, lat, lon := buildRoadGraph(t)
	s := NewSnapper(g, lat, lon)

	res, err := s.Snap(1.0005, 103.000)
	if err != nil {
		t.Fatalf("Snap: %v", err)
	}
	if res.Dir != hhgraph.Both {
		t.Errorf("Dir = %v, want Both", res.Dir)
	}
	if res.Ratio < 0.3 || res.Ratio > 0.7 {
		t.Errorf("Ratio = %v, want near 0.5 (midpoint)", res.Ratio)
	}
	if res.Dist > 5 {
		t.Errorf("Dist = %v, want near 0 (point lies on the segment)", res.Dist)
	}
}

func TestSnapTooFar(t *testing.T) {
	g, lat, lon := buildRoadGraph(t)
	s := NewSnapper(g, lat, lon)

	_, err := s.Snap(5.0, 103.000)
	if err != ErrPointTooFar {
		t.Errorf("err = %v, want ErrPointTooFar", err)
	}
}

func TestSnapOneWay(t *testing.T) {
	lat := []float64{1.000, 1.001}
	lon := []float64{103.000, 103.000}
	g, err := hhgraph.Build(2, []hhgraph.BuilderEdge{
		{Source: 0, Target: 1, Weight: 111, Bidirectional: false, Prov: hhgraph.Single(0)},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	s := NewSnapper(g, lat, lon)

	res, err := s.Snap(1.0005, 103.000)
	if err != nil {
		t.Fatalf("Snap: %v", err)
	}
	if res.Dir != hhgraph.Forward {
		t.Errorf("Dir = %v, want Forward", res.Dir)
	}
}
