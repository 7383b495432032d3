// Package sensitivity provides post-hoc robustness diagnostics and
// quasi-experimental estimators that stand apart from the orchestrated
// pipeline: E-values, omitted-variable-bias bounds, instrumental-variable
// two-stage least squares, regression discontinuity, and
// difference-in-differences. Each works from raw data or a precomputed
// estimate; none needs a causal graph.
package sensitivity
