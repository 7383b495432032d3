package estimation

import (
	"fmt"
	"math"
	"strings"

	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/stats"
)

// Backdoor estimates the ATE of treatment on outcome by adjusting for the
// given confounder set: it regresses outcome on treatment plus confounders
// and differences the predictions at treatment = 1 vs 0.
//
// Validity requires the confounder set to satisfy the backdoor criterion;
// checking that is the identification layer's job, not this function's.
// An empty confounder set degrades to the plain regression (for a binary
// treatment, the mean difference).
func Backdoor(d *dataset.Dataset, treatment, outcome string, confounders []string) (*Estimate, error) {
	y, err := d.Column(outcome)
	if err != nil {
		return nil, err
	}
	tr, err := d.Column(treatment)
	if err != nil {
		return nil, err
	}
	zs, err := d.Columns(confounders...)
	if err != nil {
		return nil, err
	}

	cols := append([][]float64{tr}, zs...)
	design, err := stats.Design(len(y), cols...)
	if err != nil {
		return nil, err
	}
	fit, err := stats.FitOLS(design, y)
	if err != nil {
		return nil, fmt.Errorf("estimation: backdoor adjusting for {%s}: %w",
			strings.Join(confounders, ", "), err)
	}

	// Prediction difference at treatment 1 vs 0, averaged over the sample.
	// In this linear model it equals the treatment coefficient; computing
	// it as a contrast keeps the estimator's definition honest.
	var diff float64
	row := make([]float64, design.Cols())
	for i := 0; i < len(y); i++ {
		row[0] = 1
		for k := range zs {
			row[2+k] = zs[k][i]
		}
		row[1] = 1
		p1 := fit.Predict(row)
		row[1] = 0
		p0 := fit.Predict(row)
		diff += p1 - p0
	}
	diff /= float64(len(y))

	return newEstimate("backdoor", diff, fit.StdErr[1], len(y)), nil
}

// Frontdoor estimates the ATE through a mediator when no backdoor set
// exists but the mediator intercepts the full effect: stage one regresses
// the mediator on treatment, stage two regresses the outcome on the mediator
// controlling for treatment; the effect is the product of the two
// coefficients, with a delta-method standard error.
func Frontdoor(d *dataset.Dataset, treatment, outcome, mediator string) (*Estimate, error) {
	tr, err := d.Column(treatment)
	if err != nil {
		return nil, err
	}
	med, err := d.Column(mediator)
	if err != nil {
		return nil, err
	}
	y, err := d.Column(outcome)
	if err != nil {
		return nil, err
	}
	n := len(y)

	stage1Design, err := stats.Design(n, tr)
	if err != nil {
		return nil, err
	}
	stage1, err := stats.FitOLS(stage1Design, med)
	if err != nil {
		return nil, fmt.Errorf("estimation: frontdoor stage 1 (%s ~ %s): %w", mediator, treatment, err)
	}

	stage2Design, err := stats.Design(n, med, tr)
	if err != nil {
		return nil, err
	}
	stage2, err := stats.FitOLS(stage2Design, y)
	if err != nil {
		return nil, fmt.Errorf("estimation: frontdoor stage 2 (%s ~ %s + %s): %w", outcome, mediator, treatment, err)
	}

	a, seA := stage1.Coef[1], stage1.StdErr[1] // treatment → mediator
	b, seB := stage2.Coef[1], stage2.StdErr[1] // mediator → outcome
	value := a * b
	stdErr := deltaProductSE(a, seA, b, seB)

	return newEstimate("frontdoor", value, stdErr, n), nil
}

// deltaProductSE is the first-order delta-method SE of a product of two
// independent estimates.
func deltaProductSE(a, seA, b, seB float64) float64 {
	v := a*a*seB*seB + b*b*seA*seA
	if v < 0 {
		v = 0
	}
	return math.Sqrt(v)
}
