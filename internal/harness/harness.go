package harness

import (
	"fmt"

	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/estimation"
	"github.com/darwinlab/causal/internal/graph"
	"github.com/darwinlab/causal/internal/pipeline"
	"github.com/darwinlab/causal/internal/testutil"
)

// Result is one scenario's execution output: the pipeline artifacts plus any
// expectation violations. Violations are collected, not returned as errors;
// an error means the scenario could not run at all.
type Result struct {
	Estimand   *pipeline.IdentifiedEstimand
	Estimate   *estimation.Estimate
	Refutation *pipeline.RefutationReport

	// Violations lists unmet expectations; empty means the scenario passed.
	Violations []string
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool { return len(r.Violations) == 0 }

// generatorFunc builds a synthetic dataset from a scenario's data spec.
type generatorFunc func(samples int, params map[string]float64, seed int64) *dataset.Dataset

// param reads a generator parameter with a default.
func param(params map[string]float64, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}

// generators is the registry of synthetic data sources scenarios may name.
var generators = map[string]generatorFunc{
	"confounded_triple": func(n int, _ map[string]float64, seed int64) *dataset.Dataset {
		return testutil.ConfoundedTriple(n, seed)
	},
	"binary_confounded": func(n int, p map[string]float64, seed int64) *dataset.Dataset {
		return testutil.BinaryConfounded(n, param(p, "ate", 1.0), seed)
	},
	"frontdoor": func(n int, p map[string]float64, seed int64) *dataset.Dataset {
		return testutil.FrontdoorData(n, param(p, "a", 1.0), param(p, "b", 1.0), seed)
	},
	"iv": func(n int, p map[string]float64, seed int64) *dataset.Dataset {
		return testutil.IVData(n, param(p, "beta", 1.0), param(p, "gamma", 1.0), seed)
	},
}

// Run executes a scenario end to end: generate data, build the assumed
// graph, run identify/estimate/refute with a fixed run token and seed, then
// check the scenario's expectations.
func Run(scenario *Scenario) (*Result, error) {
	gen, ok := generators[scenario.Data.Generator]
	if !ok {
		return nil, fmt.Errorf("harness: unknown data generator %q", scenario.Data.Generator)
	}
	ds := gen(scenario.Data.Samples, scenario.Data.Params, scenario.Seed)

	g, err := graph.New(scenario.Graph.Nodes)
	if err != nil {
		return nil, fmt.Errorf("harness: building scenario graph: %w", err)
	}
	for _, e := range scenario.Graph.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, fmt.Errorf("harness: building scenario graph: %w", err)
		}
	}
	if err := scenario.Roles.Validate(ds); err != nil {
		return nil, fmt.Errorf("harness: scenario roles: %w", err)
	}

	orch, err := pipeline.New(ds, g, scenario.Roles.Treatment, scenario.Roles.Outcome,
		pipeline.WithTokenGenerator(pipeline.NewFixedGenerator(scenario.RunToken)),
		pipeline.WithSeed(scenario.Seed))
	if err != nil {
		return nil, err
	}

	result := &Result{}
	result.Estimand, err = orch.Identify()
	if err != nil {
		return nil, err
	}
	result.Estimate, err = orch.Estimate()
	if err != nil {
		return nil, err
	}
	result.Refutation, err = orch.Refute()
	if err != nil {
		return nil, err
	}

	result.Violations = checkExpectations(scenario, result)
	return result, nil
}

func checkExpectations(scenario *Scenario, r *Result) []string {
	var violations []string

	if got := string(r.Estimand.Kind); got != scenario.Expect.Strategy {
		violations = append(violations,
			fmt.Sprintf("strategy: expected %s, got %s", scenario.Expect.Strategy, got))
	}
	if v := r.Estimate.Value; v < scenario.Expect.Effect.Min || v > scenario.Expect.Effect.Max {
		violations = append(violations,
			fmt.Sprintf("effect: %.4f outside expected [%.4f, %.4f]",
				v, scenario.Expect.Effect.Min, scenario.Expect.Effect.Max))
	}
	if scenario.Expect.RefutationPassed && !r.Refutation.Passed {
		for _, c := range r.Refutation.Checks {
			if !c.Passed {
				violations = append(violations,
					fmt.Sprintf("refutation: %s failed (%s)", c.Name, c.Detail))
			}
		}
	}
	return violations
}
