package pipeline

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darwinlab/causal/internal/graph"
	"github.com/darwinlab/causal/internal/heterogeneity"
	"github.com/darwinlab/causal/internal/testutil"
)

func mustGraph(t *testing.T, names []string, edges [][2]string) *graph.CausalGraph {
	t.Helper()
	g, err := graph.New(names)
	require.NoError(t, err)
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

// confounderGraph is z → x → y with z → y; all three variables observed.
func confounderGraph(t *testing.T) *graph.CausalGraph {
	return mustGraph(t, []string{"z", "x", "y"},
		[][2]string{{"z", "x"}, {"x", "y"}, {"z", "y"}})
}

func TestIdentify_PrefersBackdoor(t *testing.T) {
	g := confounderGraph(t)

	est, err := Identify(g, "x", "y", []string{"z", "x", "y"})
	require.NoError(t, err)
	assert.Equal(t, EstimandBackdoor, est.Kind)
	assert.Equal(t, []string{"z"}, est.Adjustment)
}

func TestIdentify_EmptySetWhenObservedColliderOpensBackdoor(t *testing.T) {
	// u1 and u2 are latent; c is an observed collider on the only backdoor
	// path. Adjusting for c would open x ← u1 → c ← u2 → y, but the empty
	// set blocks it, so the effect is identified with no adjustment at all.
	g := mustGraph(t, []string{"u1", "u2", "x", "c", "y"},
		[][2]string{{"u1", "x"}, {"u1", "c"}, {"u2", "c"}, {"u2", "y"}, {"x", "y"}})

	est, err := Identify(g, "x", "y", []string{"x", "c", "y"})
	require.NoError(t, err)
	assert.Equal(t, EstimandBackdoor, est.Kind)
	assert.Empty(t, est.Adjustment)
}

func TestIdentify_ParentSetWhenFullSetOpensBackdoor(t *testing.T) {
	// z is a real confounder and c an observed collider of two latents.
	// The all-non-descendants candidate {z, c} fails (c opens a path);
	// the treatment's observed parents {z} block every backdoor path.
	g := mustGraph(t, []string{"u1", "u2", "z", "x", "c", "y"},
		[][2]string{{"z", "x"}, {"z", "y"}, {"x", "y"},
			{"u1", "x"}, {"u1", "c"}, {"u2", "c"}, {"u2", "y"}})

	est, err := Identify(g, "x", "y", []string{"z", "c", "x", "y"})
	require.NoError(t, err)
	assert.Equal(t, EstimandBackdoor, est.Kind)
	assert.Equal(t, []string{"z"}, est.Adjustment)
}

func TestIdentify_FallsBackToFrontdoor(t *testing.T) {
	// u is a graph node but not observed; the mediator m carries the effect.
	g := mustGraph(t, []string{"u", "t", "m", "y"},
		[][2]string{{"u", "t"}, {"u", "y"}, {"t", "m"}, {"m", "y"}})

	est, err := Identify(g, "t", "y", []string{"t", "m", "y"})
	require.NoError(t, err)
	assert.Equal(t, EstimandFrontdoor, est.Kind)
	assert.Equal(t, "m", est.Mediator)
}

func TestIdentify_FallsBackToInstrument(t *testing.T) {
	g := mustGraph(t, []string{"i", "u", "t", "y"},
		[][2]string{{"i", "t"}, {"u", "t"}, {"u", "y"}, {"t", "y"}})

	est, err := Identify(g, "t", "y", []string{"i", "t", "y"})
	require.NoError(t, err)
	assert.Equal(t, EstimandInstrumental, est.Kind)
	assert.Equal(t, "i", est.Instrument)
}

func TestIdentify_FailsLoudlyWhenNothingApplies(t *testing.T) {
	g := mustGraph(t, []string{"u", "t", "y"},
		[][2]string{{"u", "t"}, {"u", "y"}, {"t", "y"}})

	_, err := Identify(g, "t", "y", []string{"t", "y"})
	require.Error(t, err)
	assert.True(t, IsNotIdentifiable(err))
}

func TestOrchestrator_FullBackdoorRun(t *testing.T) {
	ds := testutil.ConfoundedTriple(5000, 19)
	o, err := New(ds, confounderGraph(t), "x", "y",
		WithTokenGenerator(NewFixedGenerator("run-1")),
		WithSeed(19))
	require.NoError(t, err)
	assert.Equal(t, StateUnidentified, o.State())
	assert.Equal(t, "run-1", o.RunToken())

	estimand, err := o.Identify()
	require.NoError(t, err)
	assert.Equal(t, EstimandBackdoor, estimand.Kind)
	assert.Equal(t, StateIdentified, o.State())

	est, err := o.Estimate()
	require.NoError(t, err)
	assert.InDelta(t, 3.0, est.Value, 0.1)
	assert.Equal(t, StateEstimated, o.State())

	report, err := o.Refute()
	require.NoError(t, err)
	assert.Equal(t, StateRefuted, o.State())
	assert.Equal(t, "run-1", report.RunToken)
	require.Len(t, report.Checks, 4)
	for _, c := range report.Checks {
		assert.True(t, c.Passed, "check %s failed: %s", c.Name, c.Detail)
	}
	assert.True(t, report.Passed)

	// Refuted is re-enterable.
	_, err = o.Refute()
	require.NoError(t, err)
}

func TestOrchestrator_FrontdoorEstimate(t *testing.T) {
	ds := testutil.FrontdoorData(8000, 1.5, 1.2, 23)
	g := mustGraph(t, []string{"u", "t", "m", "y"},
		[][2]string{{"u", "t"}, {"u", "y"}, {"t", "m"}, {"m", "y"}})

	o, err := New(ds, g, "t", "y", WithSeed(23))
	require.NoError(t, err)

	estimand, err := o.Identify()
	require.NoError(t, err)
	assert.Equal(t, EstimandFrontdoor, estimand.Kind)

	est, err := o.Estimate()
	require.NoError(t, err)
	assert.InDelta(t, 1.8, est.Value, 0.15)
}

func TestOrchestrator_InstrumentEstimate(t *testing.T) {
	ds := testutil.IVData(8000, 2.0, 1.5, 29)
	g := mustGraph(t, []string{"i", "u", "t", "y"},
		[][2]string{{"i", "t"}, {"u", "t"}, {"u", "y"}, {"t", "y"}})

	o, err := New(ds, g, "t", "y", WithSeed(29))
	require.NoError(t, err)

	estimand, err := o.Identify()
	require.NoError(t, err)
	assert.Equal(t, EstimandInstrumental, estimand.Kind)

	est, err := o.Estimate()
	require.NoError(t, err)
	assert.InDelta(t, 2.0, est.Value, 0.1)
	assert.Equal(t, "iv_2sls", est.Estimator)
}

func TestOrchestrator_EstimateHeterogeneity(t *testing.T) {
	ds := testutil.BinaryConfounded(3000, 2.0, 31)
	g := mustGraph(t, []string{"z", "t", "y"},
		[][2]string{{"z", "t"}, {"z", "y"}, {"t", "y"}})

	o, err := New(ds, g, "t", "y", WithSeed(31))
	require.NoError(t, err)

	// Needs an identified estimand first.
	_, err = o.EstimateHeterogeneity(heterogeneity.ForestConfig{})
	require.Error(t, err)
	assert.True(t, IsState(err))

	estimand, err := o.Identify()
	require.NoError(t, err)
	require.Equal(t, EstimandBackdoor, estimand.Kind)

	report, err := o.EstimateHeterogeneity(heterogeneity.ForestConfig{NTrees: 50})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, report.ATE.Value, 0.2)
	assert.Len(t, report.CATE, ds.N())
	assert.Equal(t, []string{"z"}, report.Covariates)

	// A side analysis: the lifecycle stays where Identify left it.
	assert.Equal(t, StateIdentified, o.State())
}

func TestOrchestrator_HeterogeneityNeedsBackdoorEstimand(t *testing.T) {
	ds := testutil.IVData(1000, 2.0, 1.5, 37)
	g := mustGraph(t, []string{"i", "u", "t", "y"},
		[][2]string{{"i", "t"}, {"u", "t"}, {"u", "y"}, {"t", "y"}})

	o, err := New(ds, g, "t", "y", WithSeed(37))
	require.NoError(t, err)
	_, err = o.Identify()
	require.NoError(t, err)

	_, err = o.EstimateHeterogeneity(heterogeneity.ForestConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backdoor")
}

func TestOrchestrator_EnforcesLifecycleOrder(t *testing.T) {
	ds := testutil.ConfoundedTriple(500, 3)
	o, err := New(ds, confounderGraph(t), "x", "y")
	require.NoError(t, err)

	_, err = o.Estimate()
	require.Error(t, err)
	assert.True(t, IsState(err))

	_, err = o.Identify()
	require.NoError(t, err)
	_, err = o.Refute()
	require.Error(t, err)
	assert.True(t, IsState(err))
}

func TestOrchestrator_SetGraphInvalidatesEstimand(t *testing.T) {
	ds := testutil.ConfoundedTriple(500, 5)
	o, err := New(ds, confounderGraph(t), "x", "y")
	require.NoError(t, err)

	first, err := o.Identify()
	require.NoError(t, err)

	// Identify is cached until the graph changes.
	again, err := o.Identify()
	require.NoError(t, err)
	assert.Same(t, first, again)

	o.SetGraph(confounderGraph(t))
	assert.Equal(t, StateUnidentified, o.State())
	assert.Nil(t, o.Estimand())
	assert.Nil(t, o.CurrentEstimate())

	fresh, err := o.Identify()
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
	assert.Equal(t, first.Kind, fresh.Kind)
}

func TestOrchestrator_RejectsUnknownVariables(t *testing.T) {
	ds := testutil.ConfoundedTriple(100, 1)

	_, err := New(ds, confounderGraph(t), "missing", "y")
	assert.Error(t, err)
}

func TestUUIDv7Generator_IssuesValidTokens(t *testing.T) {
	gen := UUIDv7Generator{}
	token := gen.Generate()

	parsed, err := uuid.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestFixedGenerator_ReturnsTokensInOrder(t *testing.T) {
	gen := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}
