package sensitivity

import (
	"math"

	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/estimation"
	"github.com/darwinlab/causal/internal/stats"
)

// weakInstrumentF is the conventional first-stage F threshold below which an
// instrument is flagged weak.
const weakInstrumentF = 10.0

// IVResult carries a two-stage least squares estimate together with its
// first-stage diagnostic. A weak instrument still produces an estimate; the
// flag is the caller's signal to distrust it.
type IVResult struct {
	Estimate       *estimation.Estimate `json:"estimate"`
	FirstStageF    float64              `json:"first_stage_f"`
	WeakInstrument bool                 `json:"weak_instrument"`
}

// TwoStageLeastSquares estimates the effect of treatment on outcome using a
// single instrument. Stage one regresses treatment on the instrument and
// computes the F statistic; stage two regresses the outcome on the fitted
// treatment. Standard errors use the structural residuals against the
// observed treatment, the usual IV variance.
func TwoStageLeastSquares(d *dataset.Dataset, instrument, treatment, outcome string) (*IVResult, error) {
	iv, err := d.Column(instrument)
	if err != nil {
		return nil, err
	}
	tr, err := d.Column(treatment)
	if err != nil {
		return nil, err
	}
	y, err := d.Column(outcome)
	if err != nil {
		return nil, err
	}
	n := d.N()
	if n < 3 {
		return nil, &stats.InsufficientDataError{Op: "two-stage least squares", Need: 3, Got: n}
	}

	firstDesign, err := stats.Design(n, iv)
	if err != nil {
		return nil, err
	}
	first, err := stats.FitOLS(firstDesign, tr)
	if err != nil {
		return nil, err
	}
	fStat := math.Inf(1)
	if first.RSquared < 1 {
		fStat = first.RSquared / (1 - first.RSquared) * float64(n-2)
	}

	fitted := make([]float64, n)
	for i := range fitted {
		fitted[i] = first.Coef[0] + first.Coef[1]*iv[i]
	}
	secondDesign, err := stats.Design(n, fitted)
	if err != nil {
		return nil, err
	}
	second, err := stats.FitOLS(secondDesign, y)
	if err != nil {
		return nil, err
	}
	theta := second.Coef[1]
	alpha := second.Coef[0]

	// IV variance: sigma_u^2 * Var(I) / (n * Cov(I,T)^2), with u the
	// structural residual against the observed treatment.
	ivMean := stats.Mean(iv)
	trMean := stats.Mean(tr)
	var sII, sIT, ssu float64
	for i := 0; i < n; i++ {
		di := iv[i] - ivMean
		sII += di * di
		sIT += di * (tr[i] - trMean)
		u := y[i] - alpha - theta*tr[i]
		ssu += u * u
	}
	se := math.Sqrt(ssu / float64(n-2) * sII / (sIT * sIT))

	z := stats.NormalQuantile(0.975)
	return &IVResult{
		Estimate: &estimation.Estimate{
			Value:     theta,
			StdErr:    se,
			CILower:   theta - z*se,
			CIUpper:   theta + z*se,
			Estimator: "iv_2sls",
			N:         n,
		},
		FirstStageF:    fStat,
		WeakInstrument: fStat < weakInstrumentF,
	}, nil
}
