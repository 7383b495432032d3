// Package mat provides deterministic, allocation-aware dense linear algebra
// kernels for the causal engine.
//
// Design rules:
//   - Determinism first: all loops have fixed orders; results are bit-stable
//     across runs for identical inputs.
//   - Explicit errors: dimension mismatches and singular systems return
//     structured errors, never NaN-poisoned results.
//   - No external numeric dependency: kernels are small, written for the
//     modest matrix sizes causal discovery works with (tens of variables).
package mat
