package counterfactual

import (
	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/graph"
)

// Compute answers a counterfactual query for one unit. observed must assign
// a value to every node of the model; do is the counterfactual intervention.
// The result maps every node to its value in the counterfactual world.
func Compute(scm *graph.SCM, observed map[string]float64, do graph.InterventionSpec) (map[string]float64, error) {
	g := scm.Graph()
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}
	for _, name := range order {
		if _, ok := observed[name]; !ok {
			return nil, &MissingObservationError{Node: name}
		}
	}

	// Abduction: under additive noise the exogenous term is the residual of
	// the observed value against the noiseless structural evaluation.
	noise := make(map[string]float64, len(order))
	for _, name := range order {
		eq, err := scm.Equation(name)
		if err != nil {
			return nil, err
		}
		parents, err := g.Parents(name)
		if err != nil {
			return nil, err
		}
		pv := make(map[string]float64, len(parents))
		for _, p := range parents {
			pv[p] = observed[p]
		}
		noise[name] = observed[name] - eq(pv, 0)
	}

	// Action: sever incoming edges and pin the intervened values.
	twin, err := scm.Intervene(do)
	if err != nil {
		return nil, err
	}
	tg := twin.Graph()
	twinOrder, err := tg.TopologicalSort()
	if err != nil {
		return nil, err
	}

	// Prediction: re-evaluate with the abducted noise. Intervened nodes carry
	// constant equations, so their noise term is inert.
	values := make(map[string]float64, len(twinOrder))
	for _, name := range twinOrder {
		eq, err := twin.Equation(name)
		if err != nil {
			return nil, err
		}
		parents, err := tg.Parents(name)
		if err != nil {
			return nil, err
		}
		pv := make(map[string]float64, len(parents))
		for _, p := range parents {
			pv[p] = values[p]
		}
		values[name] = eq(pv, noise[name])
	}
	return values, nil
}

// Outcome is Compute narrowed to a single node of interest.
func Outcome(scm *graph.SCM, observed map[string]float64, do graph.InterventionSpec, outcome string) (float64, error) {
	values, err := Compute(scm, observed, do)
	if err != nil {
		return 0, err
	}
	v, ok := values[outcome]
	if !ok {
		return 0, &graph.UnknownNodeError{Name: outcome}
	}
	return v, nil
}

// OutcomeArray evaluates the same counterfactual query for every row of a
// dataset whose columns cover the model's nodes, returning one outcome per
// row.
func OutcomeArray(scm *graph.SCM, ds *dataset.Dataset, do graph.InterventionSpec, outcome string) ([]float64, error) {
	g := scm.Graph()
	names := g.Names()
	cols := make([][]float64, len(names))
	for j, name := range names {
		col, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}

	out := make([]float64, ds.N())
	observed := make(map[string]float64, len(names))
	for i := 0; i < ds.N(); i++ {
		for j, name := range names {
			observed[name] = cols[j][i]
		}
		v, err := Outcome(scm, observed, do, outcome)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
