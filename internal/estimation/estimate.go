package estimation

import (
	"fmt"

	"github.com/darwinlab/causal/internal/stats"
)

// Estimate is one effect-estimate record.
type Estimate struct {
	// Value is the point estimate.
	Value float64 `json:"value"`

	// StdErr is the estimated standard error of Value.
	StdErr float64 `json:"std_err"`

	// CILower and CIUpper bound the 95% confidence interval.
	CILower float64 `json:"ci_lower"`
	CIUpper float64 `json:"ci_upper"`

	// Estimator tags which method produced the estimate.
	Estimator string `json:"estimator"`

	// N is the number of observations used.
	N int `json:"n"`
}

// String renders the estimate for logs and CLI text output.
func (e *Estimate) String() string {
	return fmt.Sprintf("%s: %.4f (se %.4f, 95%% CI [%.4f, %.4f], n=%d)",
		e.Estimator, e.Value, e.StdErr, e.CILower, e.CIUpper, e.N)
}

// newEstimate fills the CI from the point estimate and standard error.
func newEstimate(estimator string, value, stdErr float64, n int) *Estimate {
	z := stats.NormalQuantile(0.975)
	return &Estimate{
		Value:     value,
		StdErr:    stdErr,
		CILower:   value - z*stdErr,
		CIUpper:   value + z*stdErr,
		Estimator: estimator,
		N:         n,
	}
}
