package sensitivity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darwinlab/causal/internal/estimation"
	"github.com/darwinlab/causal/internal/testutil"
)

func TestEValue_WorkedExample(t *testing.T) {
	// RR 2.0 → 2 + sqrt(2·1) = 2 + sqrt(2) ≈ 3.414.
	v, err := EValue(2.0)
	require.NoError(t, err)
	assert.InDelta(t, 2+math.Sqrt2, v, 1e-12)
}

func TestEValue_ProtectiveRatioIsInverted(t *testing.T) {
	a, err := EValue(0.5)
	require.NoError(t, err)
	b, err := EValue(2.0)
	require.NoError(t, err)
	assert.InDelta(t, b, a, 1e-12)

	null, err := EValue(1.0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, null, 1e-12)

	_, err = EValue(0)
	assert.Error(t, err)
}

func TestEValueForCI_NullCoveringIntervalYieldsOne(t *testing.T) {
	point, ci, err := EValueForCI(2.0, 0.9, 4.4)
	require.NoError(t, err)
	assert.Greater(t, point, 3.0)
	assert.InDelta(t, 1.0, ci, 1e-12)

	_, ci, err = EValueForCI(2.0, 1.5, 2.7)
	require.NoError(t, err)
	assert.Greater(t, ci, 1.0)
	assert.Less(t, ci, point)
}

func TestOVBBounds_StrongerConfoundingWidensBracket(t *testing.T) {
	est := &estimation.Estimate{Value: 2.0, StdErr: 0.1, N: 400}

	weak, err := OVBBounds(est, 0.01, 0.01)
	require.NoError(t, err)
	strong, err := OVBBounds(est, 0.8, 0.8)
	require.NoError(t, err)

	assert.Less(t, weak.Bias, strong.Bias)
	assert.False(t, weak.ExplainsAway)
	assert.True(t, strong.ExplainsAway, "bias %.3f should cover the 2.0 estimate", strong.Bias)

	zero, err := OVBBounds(est, 0, 0.5)
	require.NoError(t, err)
	assert.Zero(t, zero.Bias)

	_, err = OVBBounds(est, 1.0, 0.5)
	assert.Error(t, err)
}

func TestTwoStageLeastSquares_RecoversConfoundedEffect(t *testing.T) {
	// OLS of y on t is biased by the unobserved confounder; the instrument
	// recovers beta = 2.0.
	ds := testutil.IVData(8000, 2.0, 1.5, 3)

	res, err := TwoStageLeastSquares(ds, "i", "t", "y")
	require.NoError(t, err)

	assert.False(t, res.WeakInstrument)
	assert.Greater(t, res.FirstStageF, weakInstrumentF)
	assert.InDelta(t, 2.0, res.Estimate.Value, 0.1)
	assert.Equal(t, "iv_2sls", res.Estimate.Estimator)
}

func TestTwoStageLeastSquares_FlagsWeakInstrument(t *testing.T) {
	ds := testutil.IVData(300, 2.0, 0.02, 5)

	res, err := TwoStageLeastSquares(ds, "i", "t", "y")
	require.NoError(t, err)
	assert.True(t, res.WeakInstrument)
	assert.Less(t, res.FirstStageF, weakInstrumentF)
}

func TestRDD_RecoversJumpAtCutoff(t *testing.T) {
	ds := testutil.RDDData(6000, 0.0, 2.5, 11)

	est, err := RDD(ds, "x", "y", 0.0, RDDConfig{Seed: 11})
	require.NoError(t, err)

	assert.InDelta(t, 2.5, est.Value, 0.15)
	assert.Positive(t, est.StdErr)
	assert.Less(t, est.CILower, 2.5)
	assert.Greater(t, est.CIUpper, 2.5)
}

func TestRDD_DeterministicBySeed(t *testing.T) {
	ds := testutil.RDDData(1000, 0.0, 1.0, 2)

	a, err := RDD(ds, "x", "y", 0.0, RDDConfig{Seed: 9})
	require.NoError(t, err)
	b, err := RDD(ds, "x", "y", 0.0, RDDConfig{Seed: 9})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDiD_RecoversInjectedDelta(t *testing.T) {
	ds := testutil.DiDPanel(2000, 4.0, 0.0, 7)

	res, err := DiD(ds, "group", "period", "y")
	require.NoError(t, err)

	assert.InDelta(t, 4.0, res.Estimate.Value, 0.15)
	assert.InDelta(t, 0.0, res.PreTrend, 0.1)
	assert.Equal(t, "did_2x2", res.Estimate.Estimator)
}

func TestDiD_SurfacesParallelTrendsViolation(t *testing.T) {
	ds := testutil.DiDPanel(2000, 4.0, 1.5, 7)

	res, err := DiD(ds, "group", "period", "y")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, res.PreTrend, 0.15, "injected pre-period gap must be reported")
}

func TestDiD_RejectsNonBinaryColumns(t *testing.T) {
	ds := testutil.ConfoundedTriple(50, 1)

	_, err := DiD(ds, "z", "x", "y")
	assert.Error(t, err)
}
