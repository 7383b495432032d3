// Package heterogeneity estimates how treatment effects vary across units.
//
// CausalForest grows trees on bootstrap resamples; each split maximizes the
// weighted squared difference in treatment effect between children. Tree
// construction is iterative over an explicit worklist with a depth bound, so
// adversarial inputs cannot blow the goroutine stack. Per-tree training is
// embarrassingly parallel over read-only inputs; tree seeds are drawn from
// the caller's seed before the fan-out, so results do not depend on
// scheduling.
//
// DoubleML cross-fits nuisance regressions over K folds and regresses
// outcome residuals on treatment residuals for a Neyman-orthogonal ATE.
package heterogeneity
