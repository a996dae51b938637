package osmingest

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unsafe"
)

// Coordinates are outside the per-level blob format (spec §6 output per
// level has none): only level 0 carries real positions, and the query
// engine's point snapper needs them kept alongside, not inside, the CSR
// graph. WriteCoords/ReadCoords persist a Base's NodeLat/NodeLon/
// ExternalID arrays in the same little-endian, self-describing style as
// pkg/hierarchy's level blobs.
const coordsMagic = "HWYCOOR\x00"

// WriteCoords serializes base's per-node coordinates and external ids.
func WriteCoords(path string, base *Base) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	var magic [8]byte
	copy(magic[:], coordsMagic)
	if err := binary.Write(f, binary.LittleEndian, magic); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	n := uint32(len(base.NodeLat))
	if err := binary.Write(f, binary.LittleEndian, n); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	if err := writeFloat64Slice(f, base.NodeLat); err != nil {
		return fmt.Errorf("write NodeLat: %w", err)
	}
	if err := writeFloat64Slice(f, base.NodeLon); err != nil {
		return fmt.Errorf("write NodeLon: %w", err)
	}
	if err := writeInt64Slice(f, base.ExternalID); err != nil {
		return fmt.Errorf("write ExternalID: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// ReadCoords deserializes a coordinates file written by WriteCoords.
func ReadCoords(path string) (lat, lon []float64, externalID []int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	var magic [8]byte
	if err := binary.Read(f, binary.LittleEndian, &magic); err != nil {
		return nil, nil, nil, fmt.Errorf("read magic: %w", err)
	}
	if string(magic[:]) != coordsMagic {
		return nil, nil, nil, fmt.Errorf("invalid magic bytes: %q", magic)
	}
	var n uint32
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return nil, nil, nil, fmt.Errorf("read count: %w", err)
	}
	if lat, err = readFloat64Slice(f, int(n)); err != nil {
		return nil, nil, nil, fmt.Errorf("read NodeLat: %w", err)
	}
	if lon, err = readFloat64Slice(f, int(n)); err != nil {
		return nil, nil, nil, fmt.Errorf("read NodeLon: %w", err)
	}
	if externalID, err = readInt64Slice(f, int(n)); err != nil {
		return nil, nil, nil, fmt.Errorf("read ExternalID: %w", err)
	}
	return lat, lon, externalID, nil
}

func writeFloat64Slice(f *os.File, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := f.Write(b)
	return err
}

func writeInt64Slice(f *os.File, s []int64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := f.Write(b)
	return err
}

func readFloat64Slice(f *os.File, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(f, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readInt64Slice(f *os.File, n int) ([]int64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]int64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(f, b); err != nil {
		return nil, err
	}
	return s, nil
}
