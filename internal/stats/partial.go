package stats

import (
	"fmt"
	"math"

	"github.com/darwinlab/causal/internal/mat"
)

// CorrelationMatrix computes the Pearson correlation between every pair of
// columns of x.
func CorrelationMatrix(x *mat.Dense) *mat.Dense {
	n, p := x.Rows(), x.Cols()
	means := mat.ColMeans(x)

	sd := make([]float64, p)
	for j := 0; j < p; j++ {
		var s float64
		for i := 0; i < n; i++ {
			d := x.At(i, j) - means[j]
			s += d * d
		}
		sd[j] = math.Sqrt(s)
	}

	corr := mat.Identity(p)
	for a := 0; a < p; a++ {
		for b := a + 1; b < p; b++ {
			var s float64
			for i := 0; i < n; i++ {
				s += (x.At(i, a) - means[a]) * (x.At(i, b) - means[b])
			}
			r := 0.0
			if sd[a] > 0 && sd[b] > 0 {
				r = s / (sd[a] * sd[b])
			}
			corr.Set(a, b, r)
			corr.Set(b, a, r)
		}
	}
	return corr
}

// PartialCorrelation returns the correlation between variables i and j given
// the conditioning set cond, computed by inverting the submatrix of corr over
// {i, j} ∪ cond.
func PartialCorrelation(corr *mat.Dense, i, j int, cond []int) (float64, error) {
	if len(cond) == 0 {
		return corr.At(i, j), nil
	}

	idx := make([]int, 0, 2+len(cond))
	idx = append(idx, i, j)
	idx = append(idx, cond...)

	sub := mat.NewDense(len(idx), len(idx))
	for a, va := range idx {
		for b, vb := range idx {
			sub.Set(a, b, corr.At(va, vb))
		}
	}

	prec, err := mat.Inverse(sub)
	if err != nil {
		return 0, fmt.Errorf("stats: partial correlation of (%d,%d | %v): %w", i, j, cond, err)
	}
	denom := math.Sqrt(prec.At(0, 0) * prec.At(1, 1))
	if denom == 0 {
		return 0, nil
	}
	r := -prec.At(0, 1) / denom
	// Numerical drift can push |r| fractionally past 1.
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, nil
}

// FisherZPValue returns the two-sided p-value for H0: partial correlation is
// zero, given the observed r, sample size n, and conditioning-set size.
// Requires n > condSize+3; smaller samples return p=1 (never reject), the
// documented low-sample degradation of constraint-based search.
func FisherZPValue(r float64, n, condSize int) float64 {
	if n-condSize-3 <= 0 {
		return 1
	}
	if r >= 1 || r <= -1 {
		return 0
	}
	z := 0.5 * math.Log((1+r)/(1-r))
	stat := math.Sqrt(float64(n-condSize-3)) * math.Abs(z)
	return 2 * (1 - NormalCDF(stat))
}
