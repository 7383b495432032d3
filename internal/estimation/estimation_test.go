package estimation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/stats"
	"github.com/darwinlab/causal/internal/testutil"
)

func TestBackdoor_RecoversTrueATE(t *testing.T) {
	d := testutil.ConfoundedTriple(10000, 51)

	est, err := Backdoor(d, "x", "y", []string{"z"})
	require.NoError(t, err)

	assert.InDelta(t, 3.0, est.Value, 0.1, "adjusted estimate recovers the true effect")
	assert.Equal(t, "backdoor", est.Estimator)
	assert.Less(t, est.CILower, est.Value)
	assert.Greater(t, est.CIUpper, est.Value)
}

func TestBackdoor_UnadjustedIsBiased(t *testing.T) {
	d := testutil.ConfoundedTriple(10000, 52)

	est, err := Backdoor(d, "x", "y", nil)
	require.NoError(t, err)

	// Omitted-variable bias: slope = cov(X,Y)/var(X) = 17/5 = 3.4 for
	// this data-generating process, well away from the true 3.0.
	assert.InDelta(t, 3.4, est.Value, 0.1, "unadjusted regression absorbs the confounding path")
	assert.Greater(t, est.Value, 3.2)
}

func TestFrontdoor_RecoversChainEffect(t *testing.T) {
	// z -> x -> y: x fully mediates z's effect on y, so the frontdoor
	// product equals the product of the chain coefficients 1.5·1.2 = 1.8.
	d := testutil.Chain3(10000, 53)

	est, err := Frontdoor(d, "z", "y", "x")
	require.NoError(t, err)
	assert.InDelta(t, 1.8, est.Value, 0.1)
	assert.Equal(t, "frontdoor", est.Estimator)
}

func TestPropensityScores_ClippedAndCalibrated(t *testing.T) {
	d := testutil.BinaryConfounded(8000, 2.0, 54)

	scores, err := PropensityScores(d, "t", []string{"z"})
	require.NoError(t, err)
	require.Len(t, scores, d.N())

	tr, err := d.Column("t")
	require.NoError(t, err)
	var mean, rate float64
	for i, s := range scores {
		require.GreaterOrEqual(t, s, 0.01)
		require.LessOrEqual(t, s, 0.99)
		mean += s
		rate += tr[i]
	}
	mean /= float64(len(scores))
	rate /= float64(len(tr))
	assert.InDelta(t, rate, mean, 0.02, "average score tracks the treated rate")
}

func TestPropensityScores_RejectsNonBinaryTreatment(t *testing.T) {
	d := testutil.ConfoundedTriple(100, 55) // x is continuous
	_, err := PropensityScores(d, "x", []string{"z"})
	require.Error(t, err)
}

func TestEstimatorsAgreeOnConfoundedBinaryData(t *testing.T) {
	const trueATE = 2.0
	d := testutil.BinaryConfounded(10000, trueATE, 56)

	backdoor, err := Backdoor(d, "t", "y", []string{"z"})
	require.NoError(t, err)
	ipw, err := IPW(d, "t", "y", []string{"z"})
	require.NoError(t, err)
	matching, err := Matching(d, "t", "y", []string{"z"})
	require.NoError(t, err)
	aipw, err := AIPW(d, "t", "y", []string{"z"})
	require.NoError(t, err)

	assert.InDelta(t, trueATE, backdoor.Value, 0.1)
	assert.InDelta(t, backdoor.Value, ipw.Value, 0.2)
	assert.InDelta(t, backdoor.Value, matching.Value, 0.2)
	assert.InDelta(t, backdoor.Value, aipw.Value, 0.2)
}

func TestAIPW_RobustToOutcomeModelMisspecification(t *testing.T) {
	// Outcome depends on z² but the linear outcome model only sees z.
	// The propensity model is still correct, so AIPW stays near the true
	// ATE while the plain outcome regression drifts.
	const trueATE = 2.0
	rng := rand.New(rand.NewSource(57))
	n := 12000
	rows := make([][]float64, n)
	for i := range rows {
		z := rng.NormFloat64()
		p := 1 / (1 + math.Exp(-0.8*z))
		tr := 0.0
		if rng.Float64() < p {
			tr = 1.0
		}
		y := trueATE*tr + 1.5*z*z + rng.NormFloat64()
		rows[i] = []float64{z, tr, y}
	}
	d, err := dataset.New([]string{"z", "t", "y"}, rows)
	require.NoError(t, err)

	outcomeOnly, err := Backdoor(d, "t", "y", []string{"z"})
	require.NoError(t, err)
	aipw, err := AIPW(d, "t", "y", []string{"z"})
	require.NoError(t, err)

	errOutcome := math.Abs(outcomeOnly.Value - trueATE)
	errAIPW := math.Abs(aipw.Value - trueATE)
	assert.Less(t, errAIPW, errOutcome,
		"doubly robust estimate (%.3f) should beat the misspecified outcome model (%.3f)",
		aipw.Value, outcomeOnly.Value)
}

func TestMatching_RequiresBothArms(t *testing.T) {
	rows := [][]float64{{0.1, 1, 2}, {0.2, 1, 3}}
	d, err := dataset.New([]string{"z", "t", "y"}, rows)
	require.NoError(t, err)

	_, err = Matching(d, "t", "y", []string{"z"})
	require.Error(t, err)
	assert.True(t, stats.IsInsufficientData(err))
}

func TestBackdoor_EmptyConfoundersIsMeanDifference(t *testing.T) {
	rows := [][]float64{{1, 5}, {1, 7}, {0, 1}, {0, 3}}
	d, err := dataset.New([]string{"t", "y"}, rows)
	require.NoError(t, err)

	est, err := Backdoor(d, "t", "y", nil)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, est.Value, 1e-9, "mean(treated) − mean(control) = 6 − 2")
}
