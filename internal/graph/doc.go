// Package graph implements the causal graph core: a DAG with optional
// bidirected (latent-confounder) edges, ancestry queries, d-separation,
// topological ordering, and structural causal models with forward sampling
// and do-operator interventions.
//
// INVARIANTS:
//   - The directed subgraph is acyclic at every externally observed state.
//     AddEdge rejects any edge that would close a cycle.
//   - Graphs are never mutated in place by other packages: Intervene and
//     discovery all build fresh copies.
//
// Bidirected edges mark unobserved common causes (FCI output). They do not
// participate in topological order or d-separation, which are defined on the
// directed subgraph.
package graph
