package heterogeneity

import (
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/stats"
)

// ForestConfig holds the causal-forest hyperparameters.
type ForestConfig struct {
	// NTrees is the ensemble size. Default 100.
	NTrees int

	// MinLeafSize is the smallest sample count either child of a split may
	// keep. Default 20.
	MinLeafSize int

	// MaxDepth bounds tree depth. Default 12.
	MaxDepth int

	// Seed drives all bootstrap draws. Same seed, same forest.
	Seed int64

	// Parallelism bounds concurrent tree builds; 0 means NTrees.
	Parallelism int
}

func (c ForestConfig) withDefaults() ForestConfig {
	if c.NTrees == 0 {
		c.NTrees = 100
	}
	if c.MinLeafSize == 0 {
		c.MinLeafSize = 20
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = 12
	}
	if c.Parallelism == 0 {
		c.Parallelism = c.NTrees
	}
	return c
}

// CausalForest is an ensemble of causal trees. Prediction is a plain average
// over trees; trees share no mutable state after construction.
type CausalForest struct {
	trees    []*causalTree
	features []string
}

// BuildForest grows a causal forest for the conditional effect of a binary
// treatment on an outcome given the confounder columns. A forest is built
// once per call; it is not incrementally updatable.
func BuildForest(d *dataset.Dataset, treatment, outcome string, confounders []string, cfg ForestConfig) (*CausalForest, error) {
	cfg = cfg.withDefaults()
	if len(confounders) == 0 {
		return nil, fmt.Errorf("heterogeneity: forest needs at least one covariate to split on")
	}
	tr, err := d.Column(treatment)
	if err != nil {
		return nil, err
	}
	y, err := d.Column(outcome)
	if err != nil {
		return nil, err
	}
	zs, err := d.Columns(confounders...)
	if err != nil {
		return nil, err
	}
	n := len(y)
	if n < 2*cfg.MinLeafSize {
		return nil, &stats.InsufficientDataError{Op: "forest", Need: 2 * cfg.MinLeafSize, Got: n}
	}
	for i, v := range tr {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("heterogeneity: treatment %q must be 0/1 coded; row %d is %v", treatment, i, v)
		}
	}

	// Feature rows, one per observation.
	x := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(zs))
		for k := range zs {
			row[k] = zs[k][i]
		}
		x[i] = row
	}

	// Draw per-tree seeds up front so the forest is identical no matter
	// how the builds interleave.
	seedRng := rand.New(rand.NewSource(cfg.Seed))
	seeds := make([]int64, cfg.NTrees)
	for i := range seeds {
		seeds[i] = seedRng.Int63()
	}

	trees := make([]*causalTree, cfg.NTrees)
	var eg errgroup.Group
	eg.SetLimit(cfg.Parallelism)
	for ti := 0; ti < cfg.NTrees; ti++ {
		ti := ti
		eg.Go(func() error {
			rng := rand.New(rand.NewSource(seeds[ti]))
			boot := stats.BootstrapIndices(rng, n)
			tree, err := growTree(x, tr, y, boot, cfg)
			if err != nil {
				return fmt.Errorf("heterogeneity: tree %d: %w", ti, err)
			}
			trees[ti] = tree
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &CausalForest{trees: trees, features: append([]string(nil), confounders...)}, nil
}

// Features returns the covariate names, in split-index order.
func (f *CausalForest) Features() []string {
	return append([]string(nil), f.features...)
}

// PredictCATE returns the conditional average treatment effect at a
// covariate point, averaged over all trees.
func (f *CausalForest) PredictCATE(x []float64) (float64, error) {
	if len(x) != len(f.features) {
		return 0, fmt.Errorf("heterogeneity: predict: %d features, want %d", len(x), len(f.features))
	}
	var s float64
	for _, t := range f.trees {
		s += t.predict(x)
	}
	return s / float64(len(f.trees)), nil
}

// CATEArray evaluates PredictCATE at every observation of a dataset,
// returning one scalar per row.
func (f *CausalForest) CATEArray(d *dataset.Dataset) ([]float64, error) {
	zs, err := d.Columns(f.features...)
	if err != nil {
		return nil, err
	}
	out := make([]float64, d.N())
	row := make([]float64, len(f.features))
	for i := range out {
		for k := range zs {
			row[k] = zs[k][i]
		}
		v, err := f.PredictCATE(row)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
