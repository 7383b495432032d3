package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// ReportSnapshot is the structural shape of a scenario report pinned by the
// golden files: strategy, estimator, and refutation outcomes, with the point
// estimate reduced to whether it fell inside the expected bracket. Raw
// floats stay out of the goldens so the files pin behavior, not noise.
type ReportSnapshot struct {
	Scenario             string          `json:"scenario"`
	RunToken             string          `json:"run_token"`
	Strategy             string          `json:"strategy"`
	Estimator            string          `json:"estimator"`
	Samples              int             `json:"samples"`
	EffectWithinExpected bool            `json:"effect_within_expected"`
	RefutationPassed     bool            `json:"refutation_passed"`
	Checks               []CheckSnapshot `json:"checks"`
}

// CheckSnapshot is one refutation check's name and verdict.
type CheckSnapshot struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
}

// Snapshot reduces a scenario result to its golden form.
func Snapshot(scenario *Scenario, r *Result) *ReportSnapshot {
	effectOK := r.Estimate.Value >= scenario.Expect.Effect.Min &&
		r.Estimate.Value <= scenario.Expect.Effect.Max
	snap := &ReportSnapshot{
		Scenario:             scenario.Name,
		RunToken:             r.Refutation.RunToken,
		Strategy:             string(r.Estimand.Kind),
		Estimator:            r.Estimate.Estimator,
		Samples:              r.Estimate.N,
		EffectWithinExpected: effectOK,
		RefutationPassed:     r.Refutation.Passed,
	}
	for _, c := range r.Refutation.Checks {
		snap.Checks = append(snap.Checks, CheckSnapshot{Name: c.Name, Passed: c.Passed})
	}
	return snap
}

// RunWithGolden executes a scenario and compares the report snapshot against
// testdata/golden/{scenario.Name}.golden. Regenerate with -update.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(Snapshot(scenario, result), "", "  ")
	if err != nil {
		return nil, err
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
