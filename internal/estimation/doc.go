// Package estimation turns an identified adjustment strategy plus data into
// effect estimates with uncertainty.
//
// Estimators:
//   - Backdoor: outcome regression on treatment plus confounders, effect
//     read as the prediction difference at treatment 1 vs 0.
//   - Frontdoor: two-stage regression through a mediator.
//   - IPW: inverse-propensity weighting with clipped scores.
//   - Matching: nearest-propensity-neighbor pairing, estimating the ATT.
//   - AIPW: doubly robust combination of an outcome model and a propensity
//     model; consistent if either is correctly specified.
//
// Every estimator accepts an empty confounder set, degrading to a plain
// mean difference. Collinear designs surface as wrapped mat.SingularError
// values with the offending variables named; strata too small to estimate
// surface as stats.InsufficientDataError.
package estimation
