// Package discovery learns causal graph structure from observational data.
//
// Four algorithms sit behind one contract: each consumes a dataset and
// produces a graph whose directed subgraph is acyclic.
//
//   - PC: constraint-based search with Fisher-z partial-correlation tests,
//     v-structure orientation, and Meek-rule propagation.
//   - FCI: PC plus bidirected-edge marking for latent confounding; the
//     output is a PAG approximation, not a plain DAG.
//   - GES: BIC-scored greedy forward/backward edge search.
//   - NOTEARS: continuous optimization under the smooth acyclicity
//     constraint h(W) = tr(exp(W∘W)) − d.
//
// INVARIANT: every returned graph passes TopologicalSort. Transient cycles
// inside GES/NOTEARS search never escape; NOTEARS reports a
// ConvergenceError instead of an accepted-but-cyclic graph.
//
// Independence tests degrade at larger conditioning sets when samples are
// scarce; FisherZPValue then never rejects, which leaves extra edges in
// place. That is a documented limitation, not an error.
package discovery
