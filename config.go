package uphysics

import (
	"os"

	"github.com/gekko3d/uphysics/bvh"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config holds the engine tunables. Zero values are not meaningful; start
// from DefaultConfig.
type Config struct {
	// LeafSize is the largest triangle count the builder keeps in one leaf.
	LeafSize int `yaml:"leaf_size"`
	// SAHBuckets is the number of histogram bins evaluated per split.
	SAHBuckets int `yaml:"sah_buckets"`
	// MaxDepth forces leaves below this depth. At most bvh.StackCapacity-1.
	MaxDepth int `yaml:"max_depth"`
	// SphereMargin pads node bounds during sphere casts.
	SphereMargin float32 `yaml:"sphere_margin"`
	// GridCellSize is the edge length of one broad-phase cell.
	GridCellSize float32 `yaml:"grid_cell_size"`
	// GridMaxCells caps how many cells one registration may occupy before it
	// is tracked in the oversize list instead.
	GridMaxCells int `yaml:"grid_max_cells"`
	Debug        bool `yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		LeafSize:     bvh.DefaultLeafSize,
		SAHBuckets:   bvh.DefaultBuckets,
		MaxDepth:     bvh.StackCapacity - 1,
		SphereMargin: 1e-6,
		GridCellSize: 16,
		GridMaxCells: 512,
	}
}

// ParseConfig reads YAML over the defaults, so omitted keys keep their
// default values.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "load config %s", path)
	}
	return cfg, nil
}

// Validate reports every out-of-range field at once.
func (c Config) Validate() error {
	var err error
	if c.LeafSize < 1 {
		err = multierr.Append(err, errors.Errorf("leaf_size must be at least 1, got %d", c.LeafSize))
	}
	if c.SAHBuckets < 2 {
		err = multierr.Append(err, errors.Errorf("sah_buckets must be at least 2, got %d", c.SAHBuckets))
	}
	if c.MaxDepth < 1 || c.MaxDepth > bvh.StackCapacity-1 {
		err = multierr.Append(err, errors.Errorf("max_depth must be in [1,%d], got %d", bvh.StackCapacity-1, c.MaxDepth))
	}
	if c.SphereMargin < 0 {
		err = multierr.Append(err, errors.Errorf("sphere_margin must not be negative, got %g", c.SphereMargin))
	}
	if c.GridCellSize <= 0 {
		err = multierr.Append(err, errors.Errorf("grid_cell_size must be positive, got %g", c.GridCellSize))
	}
	if c.GridMaxCells < 1 {
		err = multierr.Append(err, errors.Errorf("grid_max_cells must be at least 1, got %d", c.GridMaxCells))
	}
	return err
}

func (c Config) builderOptions() bvh.Options {
	return bvh.Options{
		LeafSize: c.LeafSize,
		Buckets:  c.SAHBuckets,
		MaxDepth: c.MaxDepth,
	}
}
