// Package pipeline orchestrates the model → identify → estimate → refute
// workflow over a causal graph and a dataset.
//
// The orchestrator is a small state machine:
//
//	Unidentified → Identified → Estimated → Refuted
//
// Identify selects an identification strategy from the graph alone, in fixed
// priority order: backdoor adjustment, then frontdoor mediation, then an
// instrumental variable. When none applies it fails with
// NotIdentifiableError; there is no silent fallback to a naive estimate.
// Estimate dispatches on the estimand's kind. Refute requires a prior
// estimate and runs four robustness checks, each reporting pass/fail with
// the underlying numbers.
//
// Each orchestrator run carries a UUIDv7 run token for correlating reports;
// tests substitute a FixedGenerator for deterministic output.
package pipeline
