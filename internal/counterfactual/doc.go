// Package counterfactual answers unit-level "what if" queries over a
// structural causal model via abduction, action, prediction: recover the
// exogenous noise consistent with the observed unit, apply the intervention
// with the do-operator, then re-evaluate the model under the recovered noise.
//
// Abduction assumes additive noise: each structural equation must satisfy
// f(parents, e) = f(parents, 0) + e, so the noise is recoverable as the
// residual between the observed value and the noiseless evaluation. Linear
// equations built with graph.LinearEquation satisfy this.
package counterfactual
