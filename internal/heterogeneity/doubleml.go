package heterogeneity

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/estimation"
	"github.com/darwinlab/causal/internal/stats"
)

// DoubleMLConfig controls cross-fitted ATE estimation.
type DoubleMLConfig struct {
	// Folds is K for cross-fitting. Default 5.
	Folds int
	// Seed drives the fold assignment shuffle.
	Seed int64
}

func (c DoubleMLConfig) withDefaults() DoubleMLConfig {
	if c.Folds <= 0 {
		c.Folds = 5
	}
	return c
}

// DoubleML estimates the ATE with K-fold cross-fitting. On each fold it fits
// outcome-on-confounders and treatment-on-confounders models on the other
// K-1 folds, collects out-of-fold residuals for both, then regresses
// outcome residuals on treatment residuals pooled across folds. The score
// is Neyman-orthogonal, so slack in the nuisance fits enters the estimate
// only at second order.
func DoubleML(ds *dataset.Dataset, treatment, outcome string, confounders []string, cfg DoubleMLConfig) (*estimation.Estimate, error) {
	cfg = cfg.withDefaults()

	n := ds.N()
	if n < 2*cfg.Folds {
		return nil, &stats.InsufficientDataError{Op: "double_ml", Need: 2 * cfg.Folds, Got: n}
	}

	t, err := ds.Column(treatment)
	if err != nil {
		return nil, err
	}
	y, err := ds.Column(outcome)
	if err != nil {
		return nil, err
	}
	zCols := make([][]float64, len(confounders))
	for i, name := range confounders {
		zCols[i], err = ds.Column(name)
		if err != nil {
			return nil, err
		}
	}

	folds := stats.KFold(rand.New(rand.NewSource(cfg.Seed)), n, cfg.Folds)

	resT := make([]float64, n)
	resY := make([]float64, n)
	for _, fold := range folds {
		train := complement(n, fold)
		mT, err := fitNuisance(zCols, t, train)
		if err != nil {
			return nil, fmt.Errorf("double_ml treatment model: %w", err)
		}
		mY, err := fitNuisance(zCols, y, train)
		if err != nil {
			return nil, fmt.Errorf("double_ml outcome model: %w", err)
		}
		for _, i := range fold {
			resT[i] = t[i] - mT.at(zCols, i)
			resY[i] = y[i] - mY.at(zCols, i)
		}
	}

	// theta = sum(resT*resY) / sum(resT^2), the partialled-out regression
	// slope with no intercept.
	var num, den float64
	for i := 0; i < n; i++ {
		num += resT[i] * resY[i]
		den += resT[i] * resT[i]
	}
	if den == 0 {
		return nil, &stats.InsufficientDataError{Op: "double_ml: no treatment variation after partialling out", Need: 1, Got: 0}
	}
	theta := num / den

	// Influence-function variance of the orthogonal score.
	var sumSq float64
	for i := 0; i < n; i++ {
		psi := resT[i] * (resY[i] - theta*resT[i])
		sumSq += psi * psi
	}
	se := math.Sqrt(sumSq/float64(n)) / (den / float64(n)) / math.Sqrt(float64(n))

	z := stats.NormalQuantile(0.975)
	return &estimation.Estimate{
		Value:     theta,
		StdErr:    se,
		CILower:   theta - z*se,
		CIUpper:   theta + z*se,
		Estimator: "double_ml",
		N:         n,
	}, nil
}

// nuisanceModel is a linear predictor over the confounder columns, or a
// plain mean when there are none.
type nuisanceModel struct {
	coef []float64 // intercept first
}

func fitNuisance(zCols [][]float64, target []float64, train []int) (*nuisanceModel, error) {
	if len(zCols) == 0 {
		var sum float64
		for _, i := range train {
			sum += target[i]
		}
		return &nuisanceModel{coef: []float64{sum / float64(len(train))}}, nil
	}

	sub := make([][]float64, len(zCols))
	for j, col := range zCols {
		s := make([]float64, len(train))
		for k, i := range train {
			s[k] = col[i]
		}
		sub[j] = s
	}
	ty := make([]float64, len(train))
	for k, i := range train {
		ty[k] = target[i]
	}
	design, err := stats.Design(len(train), sub...)
	if err != nil {
		return nil, err
	}
	fit, err := stats.FitOLS(design, ty)
	if err != nil {
		return nil, err
	}
	return &nuisanceModel{coef: fit.Coef}, nil
}

func (m *nuisanceModel) at(zCols [][]float64, i int) float64 {
	v := m.coef[0]
	for j, col := range zCols {
		v += m.coef[j+1] * col[i]
	}
	return v
}

func complement(n int, fold []int) []int {
	in := make([]bool, n)
	for _, i := range fold {
		in[i] = true
	}
	out := make([]int, 0, n-len(fold))
	for i := 0; i < n; i++ {
		if !in[i] {
			out = append(out, i)
		}
	}
	return out
}
