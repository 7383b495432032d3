package heterogeneity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darwinlab/causal/internal/testutil"
)

func TestCausalForestRecoversHeterogeneousEffect(t *testing.T) {
	// Y = (2 + 1.5·Z)·T + Z + noise: the effect at z=1 is 3.5, at z=-1 is 0.5.
	ds := testutil.HeterogeneousEffect(4000, 2.0, 1.5, 7)

	forest, err := BuildForest(ds, "t", "y", []string{"z"}, ForestConfig{Seed: 7})
	require.NoError(t, err)

	high, err := forest.PredictCATE([]float64{1.0})
	require.NoError(t, err)
	low, err := forest.PredictCATE([]float64{-1.0})
	require.NoError(t, err)

	assert.Greater(t, high, low+1.0, "forest should separate high- and low-effect units")
	assert.InDelta(t, 3.5, high, 1.0)
	assert.InDelta(t, 0.5, low, 1.0)
}

func TestCausalForestHomogeneousEffectIsFlat(t *testing.T) {
	ds := testutil.HeterogeneousEffect(3000, 2.0, 0.0, 11)

	forest, err := BuildForest(ds, "t", "y", []string{"z"}, ForestConfig{Seed: 3})
	require.NoError(t, err)

	high, err := forest.PredictCATE([]float64{1.0})
	require.NoError(t, err)
	low, err := forest.PredictCATE([]float64{-1.0})
	require.NoError(t, err)

	assert.InDelta(t, high, low, 0.8)
	assert.InDelta(t, 2.0, high, 0.8)
}

func TestCausalForestDeterministicBySeed(t *testing.T) {
	ds := testutil.HeterogeneousEffect(1200, 1.0, 1.0, 5)
	cfg := ForestConfig{NTrees: 40, Seed: 42, Parallelism: 4}

	f1, err := BuildForest(ds, "t", "y", []string{"z"}, cfg)
	require.NoError(t, err)
	f2, err := BuildForest(ds, "t", "y", []string{"z"}, cfg)
	require.NoError(t, err)

	c1, err := f1.CATEArray(ds)
	require.NoError(t, err)
	c2, err := f2.CATEArray(ds)
	require.NoError(t, err)
	assert.Equal(t, c1, c2, "identical seeds must produce identical forests")
}

func TestBuildForestValidatesInputs(t *testing.T) {
	ds := testutil.ConfoundedTriple(200, 1) // x is continuous, not a treatment

	_, err := BuildForest(ds, "x", "y", []string{"z"}, ForestConfig{})
	assert.Error(t, err, "non-binary treatment must be rejected")

	binary := testutil.BinaryConfounded(200, 1.0, 1)
	_, err = BuildForest(binary, "t", "y", nil, ForestConfig{})
	assert.Error(t, err, "at least one covariate is required")
}

func TestGrowTreeRespectsDepthBound(t *testing.T) {
	ds := testutil.HeterogeneousEffect(2000, 1.0, 2.0, 9)

	forest, err := BuildForest(ds, "t", "y", []string{"z"}, ForestConfig{
		NTrees: 5, MaxDepth: 1, MinLeafSize: 20, Seed: 1,
	})
	require.NoError(t, err)
	for _, tree := range forest.trees {
		// Depth 1 allows one split: at most three nodes.
		assert.LessOrEqual(t, len(tree.nodes), 3)
	}
}

func TestDoubleMLRecoversConfoundedATE(t *testing.T) {
	ds := testutil.BinaryConfounded(4000, 2.0, 13)

	est, err := DoubleML(ds, "t", "y", []string{"z"}, DoubleMLConfig{Seed: 13})
	require.NoError(t, err)

	assert.Equal(t, "double_ml", est.Estimator)
	assert.InDelta(t, 2.0, est.Value, 0.2)
	assert.Less(t, est.CILower, 2.0)
	assert.Greater(t, est.CIUpper, 2.0)
	assert.Positive(t, est.StdErr)
}

func TestDoubleMLDeterministicBySeed(t *testing.T) {
	ds := testutil.BinaryConfounded(1000, 1.5, 3)

	a, err := DoubleML(ds, "t", "y", []string{"z"}, DoubleMLConfig{Seed: 21})
	require.NoError(t, err)
	b, err := DoubleML(ds, "t", "y", []string{"z"}, DoubleMLConfig{Seed: 21})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDoubleMLRejectsTinySamples(t *testing.T) {
	ds := testutil.BinaryConfounded(6, 1.0, 2)

	_, err := DoubleML(ds, "t", "y", []string{"z"}, DoubleMLConfig{Folds: 5})
	assert.Error(t, err)
}
