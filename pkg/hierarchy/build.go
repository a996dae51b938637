package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/azybler/hwyhier/pkg/hhgraph"
)

// Config is the build configuration named in the external interface: the
// neighborhood size H, the contraction factor c, and the number of
// levels to produce above the base graph.
type Config struct {
	NeighborhoodSize  uint32  // H, >= 2
	ContractionFactor float32 // c, >= 1.0
	Levels            uint8   // L, >= 1
}

func (c Config) validate() error {
	if c.NeighborhoodSize < 2 {
		return &hhgraph.InvalidInputError{Reason: "neighborhood_size must be >= 2"}
	}
	if c.ContractionFactor < 1.0 {
		return &hhgraph.InvalidInputError{Reason: "contraction_factor must be >= 1.0"}
	}
	if c.Levels < 1 {
		return &hhgraph.InvalidInputError{Reason: "levels must be >= 1"}
	}
	return nil
}

// BuildAll iterates BuildLayer up to cfg.Levels times, feeding each
// level's output graph into the next. It stops early — without error —
// if a level contracts to zero edges, since that is expected behavior
// for small or already-dense graphs, not a failure (spec §7's Empty
// case). g0 itself is always included as levels[0].
func BuildAll(ctx context.Context, g0 *hhgraph.Graph, cfg Config) ([]*hhgraph.Graph, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	levels := []*hhgraph.Graph{g0}
	cur := g0
	for lvl := 1; lvl <= int(cfg.Levels); lvl++ {
		next, err := BuildLayer(ctx, cur, lvl, cfg.NeighborhoodSize, cfg.ContractionFactor)
		if err != nil {
			var empty *hhgraph.EmptyLevelError
			if errors.As(err, &empty) {
				break
			}
			return nil, fmt.Errorf("build level %d: %w", lvl, err)
		}
		levels = append(levels, next)
		cur = next
	}
	return levels, nil
}

// WriteAll serializes levels[i] to dir/level-<i>.hhb.
func WriteAll(dir string, levels []*hhgraph.Graph) error {
	for i, g := range levels {
		path := filepath.Join(dir, fmt.Sprintf("level-%d.hhb", i))
		if err := WriteLevel(path, g); err != nil {
			return fmt.Errorf("write level %d: %w", i, err)
		}
	}
	return nil
}

// ReadAll loads levels[0..n) from dir/level-<i>.hhb, stopping at the
// first missing file.
func ReadAll(dir string, n int) ([]*hhgraph.Graph, error) {
	levels := make([]*hhgraph.Graph, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("level-%d.hhb", i))
		g, err := ReadLevel(path)
		if err != nil {
			if i == 0 {
				return nil, fmt.Errorf("read level 0: %w", err)
			}
			break
		}
		levels = append(levels, g)
	}
	return levels, nil
}
