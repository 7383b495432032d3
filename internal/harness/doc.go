// Package harness runs conformance scenarios: YAML files describing a
// synthetic dataset, an assumed causal graph, variable roles, and the
// expected pipeline outcome. A scenario executes the full
// identify/estimate/refute pipeline deterministically (fixed seed, fixed
// run token) and checks its expectations; golden files pin the structural
// shape of the resulting report.
//
// Scenarios live in testdata/scenarios, golden files in testdata/golden.
// Regenerate goldens with:
//
//	go test ./internal/harness -update
package harness
