package sensitivity

import (
	"fmt"
	"math"

	"github.com/darwinlab/causal/internal/estimation"
)

// OVBResult bounds the bias an unobserved confounder of assumed strength
// could induce in a regression estimate.
type OVBResult struct {
	// Bias is the worst-case absolute bias under the assumed partial R²s.
	Bias float64 `json:"bias"`
	// Lower and Upper bracket the estimate once the worst-case bias is
	// applied in either direction.
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	// ExplainsAway reports whether the bracket covers zero, meaning a
	// confounder of the assumed strength could account for the whole effect.
	ExplainsAway bool `json:"explains_away"`
}

// OVBBounds computes omitted-variable bounds for est. r2Treatment is the
// assumed partial R² between the unobserved confounder and the treatment
// (residual of the observed model); r2Outcome likewise for the outcome.
// Worst-case |bias| = se·sqrt(df)·sqrt(r2Outcome·r2Treatment/(1−r2Treatment)).
func OVBBounds(est *estimation.Estimate, r2Treatment, r2Outcome float64) (*OVBResult, error) {
	if r2Treatment < 0 || r2Treatment >= 1 || r2Outcome < 0 || r2Outcome > 1 {
		return nil, fmt.Errorf("sensitivity: partial R² values must lie in [0,1) / [0,1], got %v and %v",
			r2Treatment, r2Outcome)
	}
	df := est.N - 2
	if df < 1 {
		df = 1
	}
	bias := est.StdErr * math.Sqrt(float64(df)) *
		math.Sqrt(r2Outcome*r2Treatment/(1-r2Treatment))

	lower := est.Value - bias
	upper := est.Value + bias
	return &OVBResult{
		Bias:         bias,
		Lower:        lower,
		Upper:        upper,
		ExplainsAway: lower <= 0 && 0 <= upper,
	}, nil
}
