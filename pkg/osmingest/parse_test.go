package osmingest

import (
	"testing"

	"github.com/azybler/hwyhier/pkg/hhgraph"

	"github.com/paulmach/osm"
)

func TestIsCarAccessible(t *testing.T) {
	tests := []struct {
		name string
		tags osm.Tags
		want bool
	}{
		{"residential road", osm.Tags{{Key: "highway", Value: "residential"}}, true},
		{"footway", osm.Tags{{Key: "highway", Value: "footway"}}, false},
		{"private access", osm.Tags{{Key: "highway", Value: "residential"}, {Key: "access", Value: "private"}}, false},
		{"area=yes", osm.Tags{{Key: "highway", Value: "service"}, {Key: "area", Value: "yes"}}, false},
		{"motor_vehicle=no", osm.Tags{{Key: "highway", Value: "residential"}, {Key: "motor_vehicle", Value: "no"}}, false},
		{"no highway tag", osm.Tags{{Key: "name", Value: "Some Street"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCarAccessible(tt.tags); got != tt.want {
				t.Errorf("isCarAccessible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWayDirection(t *testing.T) {
	tests := []struct {
		name    string
		tags    osm.Tags
		wantDir hhgraph.Direction
		wantOK  bool
	}{
		{"default bidirectional", osm.Tags{{Key: "highway", Value: "residential"}}, hhgraph.Both, true},
		{"motorway implied oneway", osm.Tags{{Key: "highway", Value: "motorway"}}, hhgraph.Forward, true},
		{"roundabout implied oneway", osm.Tags{{Key: "highway", Value: "residential"}, {Key: "junction", Value: "roundabout"}}, hhgraph.Forward, true},
		{"explicit oneway=yes", osm.Tags{{Key: "highway", Value: "primary"}, {Key: "oneway", Value: "yes"}}, hhgraph.Forward, true},
		{"explicit oneway=-1", osm.Tags{{Key: "highway", Value: "primary"}, {Key: "oneway", Value: "-1"}}, hhgraph.Backward, true},
		{"oneway=no overrides implied", osm.Tags{{Key: "highway", Value: "motorway"}, {Key: "oneway", Value: "no"}}, hhgraph.Both, true},
		{"oneway=reversible skipped", osm.Tags{{Key: "highway", Value: "primary"}, {Key: "oneway", Value: "reversible"}}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, ok := wayDirection(tt.tags)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && dir != tt.wantDir {
				t.Errorf("dir = %v, want %v", dir, tt.wantDir)
			}
		})
	}
}
