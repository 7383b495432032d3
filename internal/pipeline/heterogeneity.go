package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/darwinlab/causal/internal/estimation"
	"github.com/darwinlab/causal/internal/heterogeneity"
)

// HeterogeneityReport is the effect-heterogeneity analysis for one run: the
// cross-fitted average effect alongside per-unit conditional effects over the
// adjustment covariates.
type HeterogeneityReport struct {
	RunToken   string               `json:"run_token"`
	ATE        *estimation.Estimate `json:"ate"`
	CATE       []float64            `json:"cate"`
	Covariates []string             `json:"covariates"`
}

// EstimateHeterogeneity estimates how the treatment effect varies with the
// identified adjustment covariates: DoubleML for the orthogonalized average
// effect and a causal forest for per-unit conditional effects. It requires a
// prior Identify yielding a backdoor estimand (the adjustment set supplies
// the splitting covariates) and a 0/1-coded treatment. The lifecycle state is
// left unchanged; heterogeneity is a side analysis, not a pipeline stage.
func (o *Orchestrator) EstimateHeterogeneity(cfg heterogeneity.ForestConfig) (*HeterogeneityReport, error) {
	if o.estimand == nil {
		return nil, &StateError{Op: "estimate heterogeneity", State: o.state, Required: StateIdentified}
	}
	if o.estimand.Kind != EstimandBackdoor {
		return nil, fmt.Errorf("pipeline: heterogeneity needs a backdoor estimand with adjustment covariates, identified kind is %q",
			o.estimand.Kind)
	}
	if cfg.Seed == 0 {
		cfg.Seed = o.seed
	}

	ate, err := heterogeneity.DoubleML(o.data, o.estimand.Treatment, o.estimand.Outcome,
		o.estimand.Adjustment, heterogeneity.DoubleMLConfig{Seed: cfg.Seed})
	if err != nil {
		return nil, err
	}
	forest, err := heterogeneity.BuildForest(o.data, o.estimand.Treatment, o.estimand.Outcome,
		o.estimand.Adjustment, cfg)
	if err != nil {
		return nil, err
	}
	cate, err := forest.CATEArray(o.data)
	if err != nil {
		return nil, err
	}

	slog.Info("heterogeneity estimated",
		"run", o.token,
		"ate", ate.Value,
		"covariates", len(o.estimand.Adjustment),
		"units", len(cate))
	return &HeterogeneityReport{
		RunToken:   o.token,
		ATE:        ate,
		CATE:       cate,
		Covariates: forest.Features(),
	}, nil
}
