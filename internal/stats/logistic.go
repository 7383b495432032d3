package stats

import (
	"fmt"
	"math"

	"github.com/darwinlab/causal/internal/mat"
)

// LogisticResult holds a fitted logistic regression.
type LogisticResult struct {
	// Coef holds one coefficient per design-matrix column.
	Coef []float64

	// Iterations is the number of Newton–Raphson steps taken.
	Iterations int

	// Converged reports whether the score norm fell below tolerance.
	// When false the coefficients are the last valid iterate: a singular
	// Hessian (separation, collinearity) aborts the loop but never
	// propagates NaNs.
	Converged bool
}

// Predict returns the fitted probability P(y=1 | row).
func (r *LogisticResult) Predict(row []float64) float64 {
	var s float64
	for j, b := range r.Coef {
		s += b * row[j]
	}
	return sigmoid(s)
}

func sigmoid(z float64) float64 {
	// Split by sign to avoid overflow in exp.
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

const (
	logisticMaxIter = 50
	logisticTol     = 1e-8
)

// FitLogistic fits P(y=1|x) = sigmoid(X·β) by Newton–Raphson. y must be
// 0/1 coded. X must carry an intercept column if one is wanted.
//
// On a singular Hessian mid-search the fit stops and returns the last valid
// iterate with Converged=false rather than failing, matching local-recovery
// semantics: propensity estimation degrades, it does not poison downstream
// estimators with NaNs. A Hessian singular on the very first step (fully
// collinear design) is returned as an error.
func FitLogistic(x *mat.Dense, y []float64) (*LogisticResult, error) {
	n, p := x.Rows(), x.Cols()
	if len(y) != n {
		return nil, fmt.Errorf("stats: logistic: %d responses for %d rows", len(y), n)
	}
	if n <= p {
		return nil, &InsufficientDataError{Op: "logistic", Need: p + 1, Got: n}
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("stats: logistic: response %d is %v, want 0 or 1", i, v)
		}
	}

	beta := make([]float64, p)
	res := &LogisticResult{Coef: beta}

	for iter := 0; iter < logisticMaxIter; iter++ {
		// Score g = Xᵀ(y − μ) and Hessian H = XᵀWX with W = diag(μ(1−μ)).
		g := make([]float64, p)
		h := mat.NewDense(p, p)
		for i := 0; i < n; i++ {
			row := x.Row(i)
			mu := sigmoid(dot(beta, row))
			w := mu * (1 - mu)
			d := y[i] - mu
			for j := 0; j < p; j++ {
				g[j] += row[j] * d
				for k := 0; k < p; k++ {
					h.Set(j, k, h.At(j, k)+w*row[j]*row[k])
				}
			}
		}

		step, err := mat.Solve(h, g)
		if err != nil {
			if iter == 0 {
				return nil, fmt.Errorf("stats: logistic: singular Hessian at first step: %w", err)
			}
			// Keep the last good iterate.
			res.Iterations = iter
			return res, nil
		}

		var norm float64
		for j := 0; j < p; j++ {
			beta[j] += step[j]
			norm += g[j] * g[j]
		}
		res.Iterations = iter + 1
		if math.Sqrt(norm) < logisticTol {
			res.Converged = true
			return res, nil
		}
	}
	return res, nil
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
