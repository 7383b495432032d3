package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/estimation"
	"github.com/darwinlab/causal/internal/graph"
	"github.com/darwinlab/causal/internal/sensitivity"
)

// State is the orchestrator lifecycle position.
type State string

const (
	StateUnidentified State = "unidentified"
	StateIdentified   State = "identified"
	StateEstimated    State = "estimated"
	StateRefuted      State = "refuted"
)

func (s State) String() string { return string(s) }

// Orchestrator drives one causal question (treatment, outcome) through
// identification, estimation, and refutation over a fixed dataset and a
// caller-supplied causal graph.
//
// Not safe for concurrent use; each question gets its own orchestrator.
type Orchestrator struct {
	data      *dataset.Dataset
	g         *graph.CausalGraph
	treatment string
	outcome   string

	gen  RunTokenGenerator
	seed int64

	state    State
	token    string
	estimand *IdentifiedEstimand
	estimate *estimation.Estimate
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTokenGenerator overrides the run-token source, for deterministic tests.
func WithTokenGenerator(gen RunTokenGenerator) Option {
	return func(o *Orchestrator) { o.gen = gen }
}

// WithSeed sets the seed for the randomized refutation checks.
func WithSeed(seed int64) Option {
	return func(o *Orchestrator) { o.seed = seed }
}

// New builds an orchestrator. treatment and outcome must be columns of the
// dataset and nodes of the graph.
func New(data *dataset.Dataset, g *graph.CausalGraph, treatment, outcome string, opts ...Option) (*Orchestrator, error) {
	for _, name := range []string{treatment, outcome} {
		if !data.HasColumn(name) {
			return nil, &dataset.UnknownColumnError{Name: name}
		}
		if _, err := g.Parents(name); err != nil {
			return nil, fmt.Errorf("pipeline: variable %q is not a graph node: %w", name, err)
		}
	}
	o := &Orchestrator{
		data:      data,
		g:         g.Clone(),
		treatment: treatment,
		outcome:   outcome,
		gen:       UUIDv7Generator{},
		state:     StateUnidentified,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.token = o.gen.Generate()
	return o, nil
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State { return o.state }

// RunToken returns the token correlating this run's reports.
func (o *Orchestrator) RunToken() string { return o.token }

// Estimand returns the cached identified estimand, nil before Identify.
func (o *Orchestrator) Estimand() *IdentifiedEstimand { return o.estimand }

// CurrentEstimate returns the latest estimate, nil before Estimate.
func (o *Orchestrator) CurrentEstimate() *estimation.Estimate { return o.estimate }

// SetGraph replaces the causal graph. Any cached estimand and estimate are
// invalidated and the lifecycle restarts at Unidentified.
func (o *Orchestrator) SetGraph(g *graph.CausalGraph) {
	o.g = g.Clone()
	o.estimand = nil
	o.estimate = nil
	o.state = StateUnidentified
	slog.Info("graph replaced, estimand invalidated", "run", o.token)
}

// Identify selects and caches the identification strategy. Calling it again
// without a graph change returns the cached estimand.
func (o *Orchestrator) Identify() (*IdentifiedEstimand, error) {
	if o.estimand != nil {
		return o.estimand, nil
	}
	est, err := Identify(o.g, o.treatment, o.outcome, o.data.Names())
	if err != nil {
		return nil, err
	}
	o.estimand = est
	o.state = StateIdentified
	slog.Info("estimand identified",
		"run", o.token,
		"kind", est.Kind,
		"treatment", est.Treatment,
		"outcome", est.Outcome)
	return est, nil
}

// Estimate computes the effect using the identified strategy. Requires a
// prior successful Identify.
func (o *Orchestrator) Estimate() (*estimation.Estimate, error) {
	if o.estimand == nil {
		return nil, &StateError{Op: "estimate", State: o.state, Required: StateIdentified}
	}
	est, err := o.estimateOn(o.data, o.estimand)
	if err != nil {
		return nil, err
	}
	o.estimate = est
	o.state = StateEstimated
	slog.Info("effect estimated",
		"run", o.token,
		"estimator", est.Estimator,
		"value", est.Value,
		"stderr", est.StdErr)
	return est, nil
}

// estimateOn dispatches on the estimand kind against an arbitrary dataset,
// so refutation checks can re-estimate on perturbed copies.
func (o *Orchestrator) estimateOn(d *dataset.Dataset, e *IdentifiedEstimand) (*estimation.Estimate, error) {
	switch e.Kind {
	case EstimandBackdoor:
		return estimation.Backdoor(d, e.Treatment, e.Outcome, e.Adjustment)
	case EstimandFrontdoor:
		return estimation.Frontdoor(d, e.Treatment, e.Outcome, e.Mediator)
	case EstimandInstrumental:
		res, err := sensitivity.TwoStageLeastSquares(d, e.Instrument, e.Treatment, e.Outcome)
		if err != nil {
			return nil, err
		}
		if res.WeakInstrument {
			slog.Warn("weak instrument",
				"run", o.token,
				"instrument", e.Instrument,
				"first_stage_f", res.FirstStageF)
		}
		return res.Estimate, nil
	default:
		return nil, fmt.Errorf("pipeline: unknown estimand kind %q", e.Kind)
	}
}
