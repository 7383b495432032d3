package sensitivity

import (
	"fmt"

	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/estimation"
	"github.com/darwinlab/causal/internal/stats"
)

// DiDResult is a 2×2 difference-in-differences estimate plus its
// parallel-trends diagnostic.
type DiDResult struct {
	Estimate *estimation.Estimate `json:"estimate"`
	// PreTrend is the pre-period group gap. Under parallel trends with
	// comparable baselines it should be near zero; callers must inspect it,
	// a large gap means the design assumption is suspect.
	PreTrend float64 `json:"pre_trend"`
}

// DiD estimates a 2×2 difference-in-differences effect by regressing the
// outcome on group, period, and their interaction; the interaction
// coefficient is the effect. group and period columns must be binary 0/1.
func DiD(d *dataset.Dataset, group, period, outcome string) (*DiDResult, error) {
	g, err := d.Column(group)
	if err != nil {
		return nil, err
	}
	p, err := d.Column(period)
	if err != nil {
		return nil, err
	}
	y, err := d.Column(outcome)
	if err != nil {
		return nil, err
	}
	for i := range g {
		if (g[i] != 0 && g[i] != 1) || (p[i] != 0 && p[i] != 1) {
			return nil, fmt.Errorf("sensitivity: did: group and period must be binary 0/1, row %d has (%v, %v)", i, g[i], p[i])
		}
	}

	n := d.N()
	inter := make([]float64, n)
	for i := range inter {
		inter[i] = g[i] * p[i]
	}
	design, err := stats.Design(n, g, p, inter)
	if err != nil {
		return nil, err
	}
	fit, err := stats.FitOLS(design, y)
	if err != nil {
		return nil, err
	}
	value := fit.Coef[3]
	se := fit.StdErr[3]

	// Pre-period group gap: mean(y | g=1, p=0) − mean(y | g=0, p=0).
	var sum1, sum0 float64
	var n1, n0 int
	for i := 0; i < n; i++ {
		if p[i] != 0 {
			continue
		}
		if g[i] == 1 {
			sum1 += y[i]
			n1++
		} else {
			sum0 += y[i]
			n0++
		}
	}
	if n1 == 0 || n0 == 0 {
		return nil, &stats.InsufficientDataError{Op: "did pre-period cells", Need: 1, Got: 0}
	}

	z := stats.NormalQuantile(0.975)
	return &DiDResult{
		Estimate: &estimation.Estimate{
			Value:     value,
			StdErr:    se,
			CILower:   value - z*se,
			CIUpper:   value + z*se,
			Estimator: "did_2x2",
			N:         n,
		},
		PreTrend: sum1/float64(n1) - sum0/float64(n0),
	}, nil
}
