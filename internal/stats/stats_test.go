package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darwinlab/causal/internal/mat"
)

func TestNormalCDF_KnownValues(t *testing.T) {
	assert.InDelta(t, 0.5, NormalCDF(0), 1e-12)
	assert.InDelta(t, 0.9750, NormalCDF(1.959964), 1e-4)
	assert.InDelta(t, 0.0250, NormalCDF(-1.959964), 1e-4)
}

func TestNormalQuantile_RoundTrip(t *testing.T) {
	for _, p := range []float64{0.01, 0.025, 0.1, 0.5, 0.9, 0.975, 0.99} {
		x := NormalQuantile(p)
		assert.InDelta(t, p, NormalCDF(x), 1e-8, "p=%v", p)
	}
}

func TestFitOLS_RecoversLinearModel(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 2000
	x1 := make([]float64, n)
	x2 := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x1[i] = rng.NormFloat64()
		x2[i] = rng.NormFloat64()
		y[i] = 1.5 + 2.0*x1[i] - 0.5*x2[i] + 0.1*rng.NormFloat64()
	}

	design, err := Design(n, x1, x2)
	require.NoError(t, err)
	fit, err := FitOLS(design, y)
	require.NoError(t, err)

	assert.InDelta(t, 1.5, fit.Coef[0], 0.02)
	assert.InDelta(t, 2.0, fit.Coef[1], 0.02)
	assert.InDelta(t, -0.5, fit.Coef[2], 0.02)
	assert.Greater(t, fit.RSquared, 0.99)
}

func TestFitOLS_CollinearDesign(t *testing.T) {
	n := 50
	x1 := make([]float64, n)
	x2 := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x1[i] = float64(i)
		x2[i] = 2 * float64(i) // exact collinearity
		y[i] = float64(i)
	}

	design, err := Design(n, x1, x2)
	require.NoError(t, err)
	_, err = FitOLS(design, y)
	require.Error(t, err)
}

func TestFitLogistic_SeparatesClasses(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	n := 4000
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = rng.NormFloat64()
		p := 1 / (1 + math.Exp(-(0.5 + 1.5*x[i])))
		if rng.Float64() < p {
			y[i] = 1
		}
	}

	design, err := Design(n, x)
	require.NoError(t, err)
	fit, err := FitLogistic(design, y)
	require.NoError(t, err)
	require.True(t, fit.Converged)

	assert.InDelta(t, 0.5, fit.Coef[0], 0.15)
	assert.InDelta(t, 1.5, fit.Coef[1], 0.2)
}

func TestFitLogistic_RejectsNonBinaryResponse(t *testing.T) {
	design, err := Design(3, []float64{1, 2, 3})
	require.NoError(t, err)
	_, err = FitLogistic(design, []float64{0, 1, 2})
	require.Error(t, err)
}

func TestPartialCorrelation_ChainVanishes(t *testing.T) {
	// Z -> X -> Y : corr(Z, Y | X) should be near zero.
	rng := rand.New(rand.NewSource(3))
	n := 5000
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		z := rng.NormFloat64()
		x := 2*z + rng.NormFloat64()
		y := 3*x + rng.NormFloat64()
		rows[i] = []float64{z, x, y}
	}
	m, err := mat.FromRows(rows)
	require.NoError(t, err)

	corr := CorrelationMatrix(m)
	marginal := corr.At(0, 2)
	assert.Greater(t, math.Abs(marginal), 0.5, "Z and Y are marginally dependent")

	partial, err := PartialCorrelation(corr, 0, 2, []int{1})
	require.NoError(t, err)
	assert.Less(t, math.Abs(partial), 0.05, "conditioning on X should break the dependence")
}

func TestFisherZPValue_SmallSampleNeverRejects(t *testing.T) {
	assert.Equal(t, 1.0, FisherZPValue(0.9, 4, 2))
}

func TestKFold_CoversAllIndices(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	folds := KFold(rng, 103, 5)
	require.Len(t, folds, 5)

	seen := map[int]bool{}
	for _, f := range folds {
		for _, idx := range f {
			assert.False(t, seen[idx], "index %d assigned twice", idx)
			seen[idx] = true
		}
	}
	assert.Len(t, seen, 103)
}

func TestQuantile(t *testing.T) {
	xs := []float64{5, 1, 3, 2, 4}
	assert.Equal(t, 1.0, Quantile(xs, 0))
	assert.Equal(t, 3.0, Quantile(xs, 0.5))
	assert.Equal(t, 5.0, Quantile(xs, 1))
}
