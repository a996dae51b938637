package osmingest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadCoordsRoundTrip(t *testing.T) {
	base, err := Build(buildResult())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	path := filepath.Join(t.TempDir(), "coords.bin")
	if err := WriteCoords(path, base); err != nil {
		t.Fatalf("WriteCoords: %v", err)
	}

	lat, lon, externalID, err := ReadCoords(path)
	if err != nil {
		t.Fatalf("ReadCoords: %v", err)
	}
	if len(lat) != len(base.NodeLat) || len(lon) != len(base.NodeLon) || len(externalID) != len(base.ExternalID) {
		t.Fatalf("length mismatch: got %d/%d/%d, want %d/%d/%d",
			len(lat), len(lon), len(externalID), len(base.NodeLat), len(base.NodeLon), len(base.ExternalID))
	}
	for i := range lat {
		if lat[i] != base.NodeLat[i] || lon[i] != base.NodeLon[i] {
			t.Errorf("node %d: got (%v, %v), want (%v, %v)", i, lat[i], lon[i], base.NodeLat[i], base.NodeLon[i])
		}
		if externalID[i] != base.ExternalID[i] {
			t.Errorf("node %d: externalID got %d, want %d", i, externalID[i], base.ExternalID[i])
		}
	}
}

func TestReadCoordsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(path, []byte("NOTVALID"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, _, _, err := ReadCoords(path); err == nil {
		t.Error("ReadCoords with bad magic: want error, got nil")
	}
}
