package hierarchy

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"

	"github.com/azybler/hwyhier/pkg/hhgraph"
)

// Binary level format: magic + version header, fixed little-endian CSR
// arrays, length-prefixed variable arrays for provenance chains and the
// preimage map, CRC32 trailer. Ported from the teacher's
// pkg/graph/binary.go, extended for per-edge Direction/Provenance and
// the level-to-level preimage mapping instead of a fixed two-way
// forward/backward overlay.
const (
	magicBytes = "HWYHIER\x00"
	version    = uint32(1)
	maxNodes   = 50_000_000
	maxEdges   = 200_000_000
)

type fileHeader struct {
	Magic       [8]byte
	Version     uint32
	NumNodes    uint32
	NumEdges    uint32
	HasPreimage uint32
}

// WriteLevel serializes one hierarchy level to path.
func WriteLevel(path string, g *hhgraph.Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	cw := &crc32Writer{w: f, hash: crc32.NewIEEE()}

	numEdges := g.NumEdges()
	hasPreimage := uint32(0)
	if g.Preimage != nil {
		hasPreimage = 1
	}
	hdr := fileHeader{
		Version:     version,
		NumNodes:    g.NumNodes,
		NumEdges:    numEdges,
		HasPreimage: hasPreimage,
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(cw, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if err := writeUint32Slice(cw, g.FirstOut); err != nil {
		return fmt.Errorf("write FirstOut: %w", err)
	}
	if err := writeUint32Slice(cw, g.Target); err != nil {
		return fmt.Errorf("write Target: %w", err)
	}
	if err := writeFloat32Slice(cw, g.Weight); err != nil {
		return fmt.Errorf("write Weight: %w", err)
	}
	dirBytes := make([]byte, len(g.Dir))
	for i, d := range g.Dir {
		dirBytes[i] = byte(d)
	}
	if _, err := cw.Write(dirBytes); err != nil {
		return fmt.Errorf("write Dir: %w", err)
	}

	provLens := make([]uint32, len(g.Prov))
	var provIDs []uint32
	for i, p := range g.Prov {
		ids := p.IDs()
		provLens[i] = uint32(len(ids))
		provIDs = append(provIDs, ids...)
	}
	if err := writeUint32Slice(cw, provLens); err != nil {
		return fmt.Errorf("write provenance lengths: %w", err)
	}
	if err := writeLenPrefixedUint32(cw, provIDs); err != nil {
		return fmt.Errorf("write provenance ids: %w", err)
	}

	if hasPreimage == 1 {
		if err := writeLenPrefixedUint32(cw, g.Preimage); err != nil {
			return fmt.Errorf("write preimage: %w", err)
		}
	}

	checksum := cw.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// ReadLevel deserializes one hierarchy level from path.
func ReadLevel(path string) (*hhgraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	cr := &crc32Reader{r: f, hash: crc32.NewIEEE()}

	var hdr fileHeader
	if err := binary.Read(cr, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}

	g := &hhgraph.Graph{NumNodes: hdr.NumNodes}

	if g.FirstOut, err = readUint32Slice(cr, int(hdr.NumNodes+1)); err != nil {
		return nil, fmt.Errorf("read FirstOut: %w", err)
	}
	if g.Target, err = readUint32Slice(cr, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read Target: %w", err)
	}
	if g.Weight, err = readFloat32Slice(cr, int(hdr.NumEdges)); err != nil {
		return nil, fmt.Errorf("read Weight: %w", err)
	}
	dirBytes := make([]byte, hdr.NumEdges)
	if hdr.NumEdges > 0 {
		if _, err := io.ReadFull(cr, dirBytes); err != nil {
			return nil, fmt.Errorf("read Dir: %w", err)
		}
	}
	g.Dir = make([]hhgraph.Direction, hdr.NumEdges)
	for i, b := range dirBytes {
		g.Dir[i] = hhgraph.Direction(b)
	}

	provLens, err := readUint32Slice(cr, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("read provenance lengths: %w", err)
	}
	provIDs, err := readLenPrefixedUint32(cr)
	if err != nil {
		return nil, fmt.Errorf("read provenance ids: %w", err)
	}
	g.Prov = make([]hhgraph.Provenance, hdr.NumEdges)
	var cursor uint32
	for i, n := range provLens {
		ids := provIDs[cursor : cursor+n]
		cursor += n
		if n == 1 {
			g.Prov[i] = hhgraph.Single(ids[0])
		} else {
			chain := make([]uint32, n)
			copy(chain, ids)
			g.Prov[i] = hhgraph.Provenance{Base: chain[0], Chain: chain}
		}
	}

	if hdr.HasPreimage == 1 {
		if g.Preimage, err = readLenPrefixedUint32(cr); err != nil {
			return nil, fmt.Errorf("read preimage: %w", err)
		}
	}

	expectedCRC := cr.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	return g, nil
}

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeFloat32Slice(w io.Writer, s []float32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat32Slice(r io.Reader, n int) ([]float32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func writeLenPrefixedUint32(w io.Writer, s []uint32) error {
	n := uint32(len(s))
	if err := binary.Write(w, binary.LittleEndian, n); err != nil {
		return err
	}
	return writeUint32Slice(w, s)
}

func readLenPrefixedUint32(r io.Reader) ([]uint32, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	return readUint32Slice(r, int(n))
}

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
