package pipeline

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/darwinlab/causal/internal/stats"
)

const (
	refuteBootstrapDraws = 100
	refutePlaceboDraws   = 5
	refuteSubsetFraction = 0.8
)

// RefutationCheck is one robustness check's outcome: the re-estimated (or
// diagnostic) value alongside the original estimate, with pass/fail decided
// by the check's own criterion. Numbers are always reported; nothing is
// swallowed on failure.
type RefutationCheck struct {
	Name     string  `json:"name"`
	Passed   bool    `json:"passed"`
	Value    float64 `json:"value"`
	Baseline float64 `json:"baseline"`
	Detail   string  `json:"detail,omitempty"`
}

// RefutationReport aggregates all checks for one run.
type RefutationReport struct {
	RunToken string            `json:"run_token"`
	Checks   []RefutationCheck `json:"checks"`
	Passed   bool              `json:"passed"`
}

// Refute runs the robustness suite against the current estimate: placebo
// treatment, random common cause, subset stability, and a bootstrap
// confidence interval. Requires a prior Estimate; the state moves to Refuted
// and the suite may be re-run.
func (o *Orchestrator) Refute() (*RefutationReport, error) {
	if o.estimate == nil {
		return nil, &StateError{Op: "refute", State: o.state, Required: StateEstimated}
	}
	rng := rand.New(rand.NewSource(o.seed))
	orig := o.estimate

	report := &RefutationReport{RunToken: o.token}

	placebo, err := o.placeboTreatment(rng)
	if err != nil {
		return nil, fmt.Errorf("pipeline: placebo treatment check: %w", err)
	}
	report.Checks = append(report.Checks, placebo)

	rcc, err := o.randomCommonCause(rng)
	if err != nil {
		return nil, fmt.Errorf("pipeline: random common cause check: %w", err)
	}
	report.Checks = append(report.Checks, rcc)

	subset, err := o.subsetStability(rng)
	if err != nil {
		return nil, fmt.Errorf("pipeline: subset stability check: %w", err)
	}
	report.Checks = append(report.Checks, subset)

	boot, err := o.bootstrapCI(rng)
	if err != nil {
		return nil, fmt.Errorf("pipeline: bootstrap check: %w", err)
	}
	report.Checks = append(report.Checks, boot)

	report.Passed = true
	for _, c := range report.Checks {
		if !c.Passed {
			report.Passed = false
		}
	}
	o.state = StateRefuted
	slog.Info("refutation complete",
		"run", o.token,
		"passed", report.Passed,
		"checks", len(report.Checks),
		"estimate", orig.Value)
	return report, nil
}

// stabilityTolerance is how far a perturbed re-estimate may drift from the
// original before the check fails.
func stabilityTolerance(value, stderr float64) float64 {
	return 0.1*math.Abs(value) + 2*stderr
}

// placeboTreatment permutes the treatment column and re-estimates; a real
// effect should vanish. Ratio estimators (instrumental variables in
// particular) are unstable under a shuffled treatment, so the verdict is a
// majority vote over several independent permutations rather than a single
// draw.
func (o *Orchestrator) placeboTreatment(rng *rand.Rand) (RefutationCheck, error) {
	tr, err := o.data.Column(o.estimand.Treatment)
	if err != nil {
		return RefutationCheck{}, err
	}

	values := make([]float64, 0, refutePlaceboDraws)
	var passes int
	for d := 0; d < refutePlaceboDraws; d++ {
		perm := stats.Permutation(rng, len(tr))
		shuffled := make([]float64, len(tr))
		for i, j := range perm {
			shuffled[i] = tr[j]
		}
		placeboData, err := o.data.WithReplacedColumn(o.estimand.Treatment, shuffled)
		if err != nil {
			return RefutationCheck{}, err
		}
		est, err := o.estimateOn(placeboData, o.estimand)
		if err != nil {
			return RefutationCheck{}, err
		}
		values = append(values, est.Value)
		if math.Abs(est.Value) <= stabilityTolerance(o.estimate.Value, est.StdErr) {
			passes++
		}
	}
	med := stats.Quantile(values, 0.5)
	return RefutationCheck{
		Name:     "placebo_treatment",
		Passed:   2*passes > refutePlaceboDraws,
		Value:    med,
		Baseline: o.estimate.Value,
		Detail: fmt.Sprintf("placebo effect %.4f (median of %d permutations), %d/%d near 0",
			med, refutePlaceboDraws, passes, refutePlaceboDraws),
	}, nil
}

// randomCommonCause adds an independent covariate to the adjustment set; the
// estimate should barely move.
func (o *Orchestrator) randomCommonCause(rng *rand.Rand) (RefutationCheck, error) {
	noise := make([]float64, o.data.N())
	for i := range noise {
		noise[i] = rng.NormFloat64()
	}
	augmented, err := o.data.WithColumn("random_common_cause", noise)
	if err != nil {
		return RefutationCheck{}, err
	}
	estimand := *o.estimand
	if estimand.Kind == EstimandBackdoor {
		estimand.Adjustment = append(append([]string{}, estimand.Adjustment...), "random_common_cause")
	}
	est, err := o.estimateOn(augmented, &estimand)
	if err != nil {
		return RefutationCheck{}, err
	}
	tol := stabilityTolerance(o.estimate.Value, o.estimate.StdErr)
	drift := math.Abs(est.Value - o.estimate.Value)
	return RefutationCheck{
		Name:     "random_common_cause",
		Passed:   drift <= tol,
		Value:    est.Value,
		Baseline: o.estimate.Value,
		Detail:   fmt.Sprintf("drift %.4f, tolerance %.4f", drift, tol),
	}, nil
}

// subsetStability re-estimates on a random subset of the rows.
func (o *Orchestrator) subsetStability(rng *rand.Rand) (RefutationCheck, error) {
	n := o.data.N()
	keep := int(refuteSubsetFraction * float64(n))
	if keep < 2 {
		keep = n
	}
	idx := stats.Permutation(rng, n)[:keep]
	est, err := o.estimateOn(o.data.Subset(idx), o.estimand)
	if err != nil {
		return RefutationCheck{}, err
	}
	tol := stabilityTolerance(o.estimate.Value, o.estimate.StdErr)
	drift := math.Abs(est.Value - o.estimate.Value)
	return RefutationCheck{
		Name:     "data_subset",
		Passed:   drift <= tol,
		Value:    est.Value,
		Baseline: o.estimate.Value,
		Detail:   fmt.Sprintf("subset of %d rows, drift %.4f, tolerance %.4f", keep, drift, tol),
	}, nil
}

// bootstrapCI re-estimates on bootstrap resamples and checks that the
// percentile interval covers the original estimate.
func (o *Orchestrator) bootstrapCI(rng *rand.Rand) (RefutationCheck, error) {
	values := make([]float64, 0, refuteBootstrapDraws)
	for b := 0; b < refuteBootstrapDraws; b++ {
		idx := stats.BootstrapIndices(rng, o.data.N())
		est, err := o.estimateOn(o.data.Subset(idx), o.estimand)
		if err != nil {
			continue // degenerate resample
		}
		values = append(values, est.Value)
	}
	if len(values) < refuteBootstrapDraws/2 {
		return RefutationCheck{}, &stats.InsufficientDataError{
			Op:   "refutation bootstrap",
			Need: refuteBootstrapDraws / 2,
			Got:  len(values),
		}
	}
	lo := stats.Quantile(values, 0.025)
	hi := stats.Quantile(values, 0.975)
	passed := lo <= o.estimate.Value && o.estimate.Value <= hi
	return RefutationCheck{
		Name:     "bootstrap_ci",
		Passed:   passed,
		Value:    o.estimate.Value,
		Baseline: o.estimate.Value,
		Detail:   fmt.Sprintf("bootstrap 95%% interval [%.4f, %.4f] over %d draws", lo, hi, len(values)),
	}, nil
}
