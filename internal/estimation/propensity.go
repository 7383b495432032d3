package estimation

import (
	"fmt"
	"math"
	"sort"

	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/stats"
)

// Propensity clipping bounds: extreme scores explode inverse weights, so
// estimated probabilities are pinned to [0.01, 0.99].
const (
	propensityMin = 0.01
	propensityMax = 0.99
)

// PropensityScores fits P(treatment=1 | confounders) by logistic regression
// and returns one clipped score per observation. The treatment column must
// be 0/1 coded. An empty confounder set yields the overall treated rate.
func PropensityScores(d *dataset.Dataset, treatment string, confounders []string) ([]float64, error) {
	tr, err := d.Column(treatment)
	if err != nil {
		return nil, err
	}
	if err := requireBinary(treatment, tr); err != nil {
		return nil, err
	}
	zs, err := d.Columns(confounders...)
	if err != nil {
		return nil, err
	}

	design, err := stats.Design(len(tr), zs...)
	if err != nil {
		return nil, err
	}
	fit, err := stats.FitLogistic(design, tr)
	if err != nil {
		return nil, fmt.Errorf("estimation: propensity model for %q: %w", treatment, err)
	}

	scores := make([]float64, len(tr))
	for i := range scores {
		scores[i] = clip(fit.Predict(design.Row(i)), propensityMin, propensityMax)
	}
	return scores, nil
}

// IPW estimates the ATE by inverse-propensity weighting with Hajek
// normalization. The standard error comes from the influence function of
// the weighted contrast.
func IPW(d *dataset.Dataset, treatment, outcome string, confounders []string) (*Estimate, error) {
	scores, err := PropensityScores(d, treatment, confounders)
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
	n := len(y)

	var sumW1, sumWY1, sumW0, sumWY0 float64
	for i := 0; i < n; i++ {
		if tr[i] == 1 {
			w := 1 / scores[i]
			sumW1 += w
			sumWY1 += w * y[i]
		} else {
			w := 1 / (1 - scores[i])
			sumW0 += w
			sumWY0 += w * y[i]
		}
	}
	if sumW1 == 0 || sumW0 == 0 {
		return nil, &stats.InsufficientDataError{Op: "ipw: both treatment arms required", Need: 1, Got: 0}
	}
	mu1 := sumWY1 / sumW1
	mu0 := sumWY0 / sumW0
	ate := mu1 - mu0

	// Influence-function variance of the Hajek contrast.
	var ssq float64
	for i := 0; i < n; i++ {
		var psi float64
		if tr[i] == 1 {
			psi = (y[i] - mu1) / scores[i]
		} else {
			psi = -(y[i] - mu0) / (1 - scores[i])
		}
		ssq += psi * psi
	}
	se := math.Sqrt(ssq) / float64(n)

	return newEstimate("ipw", ate, se, n), nil
}

// Matching estimates the ATT by pairing each treated unit with its
// nearest-propensity control. Requires at least one unit in each arm.
func Matching(d *dataset.Dataset, treatment, outcome string, confounders []string) (*Estimate, error) {
	scores, err := PropensityScores(d, treatment, confounders)
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

	var treated, controls []scoredUnit
	for i := range tr {
		u := scoredUnit{score: scores[i], outcome: y[i]}
		if tr[i] == 1 {
			treated = append(treated, u)
		} else {
			controls = append(controls, u)
		}
	}
	if len(treated) == 0 || len(controls) == 0 {
		return nil, &stats.InsufficientDataError{
			Op:   fmt.Sprintf("matching: treated=%d controls=%d", len(treated), len(controls)),
			Need: 1,
			Got:  0,
		}
	}

	// Sort controls by score so each match is a binary search plus a
	// neighbor comparison.
	sort.Slice(controls, func(a, b int) bool { return controls[a].score < controls[b].score })

	diffs := make([]float64, len(treated))
	for k, tu := range treated {
		m := nearestByScore(controls, tu.score)
		diffs[k] = tu.outcome - m.outcome
	}
	att := stats.Mean(diffs)
	se := stats.StdDev(diffs) / math.Sqrt(float64(len(diffs)))

	return newEstimate("matching_att", att, se, d.N()), nil
}

// scoredUnit pairs a propensity score with the unit's outcome.
type scoredUnit struct {
	score   float64
	outcome float64
}

func nearestByScore(sorted []scoredUnit, score float64) scoredUnit {
	i := sort.Search(len(sorted), func(k int) bool { return sorted[k].score >= score })
	switch {
	case i == 0:
		return sorted[0]
	case i == len(sorted):
		return sorted[len(sorted)-1]
	default:
		if score-sorted[i-1].score <= sorted[i].score-score {
			return sorted[i-1]
		}
		return sorted[i]
	}
}

// AIPW estimates the ATE with augmented inverse-propensity weighting: an
// outcome model per arm plus a propensity correction. The estimate stays
// consistent if either the outcome models or the propensity model is
// correctly specified.
func AIPW(d *dataset.Dataset, treatment, outcome string, confounders []string) (*Estimate, error) {
	scores, err := PropensityScores(d, treatment, confounders)
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
	zs, err := d.Columns(confounders...)
	if err != nil {
		return nil, err
	}
	n := len(y)

	mu1, err := armModel(tr, y, zs, 1)
	if err != nil {
		return nil, fmt.Errorf("estimation: aipw treated-arm outcome model: %w", err)
	}
	mu0, err := armModel(tr, y, zs, 0)
	if err != nil {
		return nil, fmt.Errorf("estimation: aipw control-arm outcome model: %w", err)
	}

	psi := make([]float64, n)
	for i := 0; i < n; i++ {
		m1 := mu1(i)
		m0 := mu0(i)
		v := m1 - m0
		if tr[i] == 1 {
			v += (y[i] - m1) / scores[i]
		} else {
			v -= (y[i] - m0) / (1 - scores[i])
		}
		psi[i] = v
	}
	ate := stats.Mean(psi)
	se := stats.StdDev(psi) / math.Sqrt(float64(n))

	return newEstimate("aipw", ate, se, n), nil
}

// armModel fits the outcome-on-confounders regression within one treatment
// arm and returns a predictor indexed by original row. With no confounders
// it returns the arm mean.
func armModel(tr, y []float64, zs [][]float64, arm float64) (func(i int) float64, error) {
	var rows []int
	for i := range tr {
		if tr[i] == arm {
			rows = append(rows, i)
		}
	}
	if len(rows) < len(zs)+2 {
		return nil, &stats.InsufficientDataError{Op: fmt.Sprintf("outcome model, arm %v", arm), Need: len(zs) + 2, Got: len(rows)}
	}

	if len(zs) == 0 {
		var m float64
		for _, i := range rows {
			m += y[i]
		}
		m /= float64(len(rows))
		return func(int) float64 { return m }, nil
	}

	sub := make([][]float64, len(zs))
	suby := make([]float64, len(rows))
	for k := range zs {
		sub[k] = make([]float64, len(rows))
	}
	for r, i := range rows {
		suby[r] = y[i]
		for k := range zs {
			sub[k][r] = zs[k][i]
		}
	}
	design, err := stats.Design(len(rows), sub...)
	if err != nil {
		return nil, err
	}
	fit, err := stats.FitOLS(design, suby)
	if err != nil {
		return nil, err
	}

	row := make([]float64, len(zs)+1)
	return func(i int) float64 {
		row[0] = 1
		for k := range zs {
			row[k+1] = zs[k][i]
		}
		return fit.Predict(row)
	}, nil
}

func requireBinary(name string, col []float64) error {
	for i, v := range col {
		if v != 0 && v != 1 {
			return fmt.Errorf("estimation: treatment %q must be 0/1 coded; row %d is %v", name, i, v)
		}
	}
	return nil
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
