package stats

import (
	"fmt"
	"math"

	"github.com/darwinlab/causal/internal/mat"
)

// OLSResult holds a fitted least-squares model.
type OLSResult struct {
	// Coef holds one coefficient per design-matrix column.
	Coef []float64

	// StdErr holds the coefficient standard errors (same order as Coef).
	StdErr []float64

	// Residuals are y - X·β, one per observation.
	Residuals []float64

	// RSquared is the coefficient of determination.
	RSquared float64

	// N is the observation count.
	N int
}

// Predict evaluates the fitted model on a single design row.
func (r *OLSResult) Predict(row []float64) float64 {
	var s float64
	for j, b := range r.Coef {
		s += b * row[j]
	}
	return s
}

// Design builds a design matrix with a leading intercept column followed by
// the given covariate columns. All columns must share a length.
func Design(n int, cols ...[]float64) (*mat.Dense, error) {
	for k, c := range cols {
		if len(c) != n {
			return nil, fmt.Errorf("stats: design column %d has %d rows, want %d", k, len(c), n)
		}
	}
	x := mat.NewDense(n, 1+len(cols))
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
		for k, c := range cols {
			x.Set(i, k+1, c[i])
		}
	}
	return x, nil
}

// FitOLS fits y ≈ X·β by ordinary least squares via the normal equations.
// X must already carry an intercept column if one is wanted. A collinear
// design surfaces as a wrapped mat.SingularError.
func FitOLS(x *mat.Dense, y []float64) (*OLSResult, error) {
	n, p := x.Rows(), x.Cols()
	if len(y) != n {
		return nil, fmt.Errorf("stats: ols: %d responses for %d rows", len(y), n)
	}
	if n <= p {
		return nil, &InsufficientDataError{Op: "ols", Need: p + 1, Got: n}
	}

	xt := x.Transpose()
	xtx, err := mat.Mul(xt, x)
	if err != nil {
		return nil, err
	}
	xty, err := mat.MatVec(xt, y)
	if err != nil {
		return nil, err
	}
	coef, err := mat.Solve(xtx, xty)
	if err != nil {
		return nil, fmt.Errorf("stats: ols: collinear design: %w", err)
	}

	fitted, err := mat.MatVec(x, coef)
	if err != nil {
		return nil, err
	}
	resid := make([]float64, n)
	var rss float64
	for i := range fitted {
		resid[i] = y[i] - fitted[i]
		rss += resid[i] * resid[i]
	}

	ybar := Mean(y)
	var tss float64
	for _, v := range y {
		d := v - ybar
		tss += d * d
	}
	r2 := 0.0
	if tss > 0 {
		r2 = 1 - rss/tss
	}

	sigma2 := rss / float64(n-p)
	cov, err := mat.Inverse(xtx)
	if err != nil {
		return nil, fmt.Errorf("stats: ols: covariance: %w", err)
	}
	se := make([]float64, p)
	for j := 0; j < p; j++ {
		se[j] = math.Sqrt(sigma2 * cov.At(j, j))
	}

	return &OLSResult{Coef: coef, StdErr: se, Residuals: resid, RSquared: r2, N: n}, nil
}
