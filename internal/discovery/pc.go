package discovery

import (
	"fmt"

	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/graph"
	"github.com/darwinlab/causal/internal/mat"
	"github.com/darwinlab/causal/internal/stats"
)

// PCConfig holds the PC hyperparameters.
type PCConfig struct {
	// Alpha is the significance level for the Fisher-z independence test.
	// Default 0.05.
	Alpha float64

	// MaxCondSize bounds conditioning-set size in the skeleton phase.
	// Default 3.
	MaxCondSize int
}

func (c PCConfig) withDefaults() PCConfig {
	if c.Alpha == 0 {
		c.Alpha = 0.05
	}
	if c.MaxCondSize == 0 {
		c.MaxCondSize = 3
	}
	return c
}

// PC is the constraint-based PC algorithm.
type PC struct {
	cfg PCConfig
}

// NewPC creates a PC learner; zero-valued config fields take defaults.
func NewPC(cfg PCConfig) *PC {
	return &PC{cfg: cfg.withDefaults()}
}

// Name implements Algorithm.
func (p *PC) Name() string { return "pc" }

// Discover implements Algorithm. The skeleton phase removes an edge the
// first time some conditioning subset of a node's other neighbors renders
// the pair independent; the orientation phase marks v-structures and then
// propagates Meek's rules to a fixpoint. Remaining undirected edges are
// oriented in declaration order, never closing a cycle.
func (p *PC) Discover(d *dataset.Dataset) (*graph.CausalGraph, error) {
	names := d.Names()
	sk, err := newSkeleton(d, p.cfg.Alpha, p.cfg.MaxCondSize)
	if err != nil {
		return nil, err
	}
	sk.orientVStructures()
	sk.meekPropagate()
	return sk.buildDAG(names)
}

// pairKey normalizes an unordered pair for separating-set lookups.
func pairKey(i, j int) [2]int {
	if i > j {
		i, j = j, i
	}
	return [2]int{i, j}
}

// skeleton is the PC working state: a symmetric adjacency plus partial
// orientations and recorded separating sets. Mutation is strictly
// single-threaded.
type skeleton struct {
	p    int
	n    int
	adj  [][]bool // symmetric
	dir  [][]bool // dir[i][j]: oriented i → j (adj stays true)
	sep  map[[2]int][]int
	corr *mat.Dense
}

// newSkeleton runs the stable PC skeleton phase: start complete, and for
// growing conditioning-set sizes remove edge (i,j) the first time some subset
// of i's other neighbors makes the pair conditionally independent. Neighbor
// sets are frozen at the start of each level, so removals within a level
// cannot influence later tests at that level and the skeleton does not
// depend on variable order.
func newSkeleton(d *dataset.Dataset, alpha float64, maxCond int) (*skeleton, error) {
	m := d.Matrix()
	p := m.Cols()
	sk := &skeleton{
		p:    p,
		n:    d.N(),
		adj:  make([][]bool, p),
		dir:  make([][]bool, p),
		sep:  make(map[[2]int][]int),
		corr: stats.CorrelationMatrix(m),
	}
	for i := 0; i < p; i++ {
		sk.adj[i] = make([]bool, p)
		sk.dir[i] = make([]bool, p)
		for j := 0; j < p; j++ {
			sk.adj[i][j] = i != j
		}
	}

	for size := 0; size <= maxCond; size++ {
		frozen := sk.adjCopy()
		anyTestable := false
		for i := 0; i < p; i++ {
			for j := 0; j < p; j++ {
				if i == j || !sk.adj[i][j] {
					continue
				}
				nbrs := neighborsExcluding(frozen, i, j)
				if len(nbrs) < size {
					continue
				}
				anyTestable = true
				removed := combinations(nbrs, size, func(cond []int) bool {
					r, err := stats.PartialCorrelation(sk.corr, i, j, cond)
					if err != nil {
						// Singular conditioning submatrix: this
						// subset carries no usable test.
						return false
					}
					if stats.FisherZPValue(r, sk.n, size) > alpha {
						sk.sep[pairKey(i, j)] = append([]int(nil), cond...)
						return true
					}
					return false
				})
				if removed {
					sk.adj[i][j] = false
					sk.adj[j][i] = false
				}
			}
		}
		if !anyTestable {
			break
		}
	}
	return sk, nil
}

// adjCopy snapshots the adjacency matrix for a level's frozen neighbor sets.
func (sk *skeleton) adjCopy() [][]bool {
	out := make([][]bool, sk.p)
	for i := range out {
		out[i] = append([]bool(nil), sk.adj[i]...)
	}
	return out
}

func neighborsExcluding(adj [][]bool, i, exclude int) []int {
	var out []int
	for k := range adj {
		if k != i && k != exclude && adj[i][k] {
			out = append(out, k)
		}
	}
	return out
}

// orient marks i → j unless either direction is already fixed.
func (sk *skeleton) orient(i, j int) bool {
	if sk.dir[i][j] || sk.dir[j][i] {
		return false
	}
	sk.dir[i][j] = true
	return true
}

// orientVStructures applies the only sound local rule: for non-adjacent i, j
// both adjacent to k, orient i → k ← j iff k is not in sepset(i, j).
func (sk *skeleton) orientVStructures() {
	for k := 0; k < sk.p; k++ {
		for i := 0; i < sk.p; i++ {
			if i == k || !sk.adj[i][k] {
				continue
			}
			for j := i + 1; j < sk.p; j++ {
				if j == k || !sk.adj[j][k] || sk.adj[i][j] {
					continue
				}
				if containsInt(sk.sep[pairKey(i, j)], k) {
					continue
				}
				sk.orient(i, k)
				sk.orient(j, k)
			}
		}
	}
}

// meekPropagate applies Meek rules 1–3 until a sweep changes nothing.
// Sweeps are capped at p², the maximum number of orientable edges, so the
// loop terminates even on malformed partial orientations.
func (sk *skeleton) meekPropagate() {
	maxSweeps := sk.p*sk.p + 1
	for sweep := 0; sweep < maxSweeps; sweep++ {
		changed := false

		// R1: i → j, j − k undirected, i and k non-adjacent ⇒ j → k,
		// else a new v-structure i → j ← k would have been found earlier.
		for i := 0; i < sk.p; i++ {
			for j := 0; j < sk.p; j++ {
				if !sk.dir[i][j] {
					continue
				}
				for k := 0; k < sk.p; k++ {
					if k == i || k == j || !sk.undirected(j, k) || sk.adj[i][k] {
						continue
					}
					changed = sk.orient(j, k) || changed
				}
			}
		}

		// R2: i → k → j with i − j undirected ⇒ i → j, else a cycle.
		for i := 0; i < sk.p; i++ {
			for j := 0; j < sk.p; j++ {
				if !sk.undirected(i, j) {
					continue
				}
				for k := 0; k < sk.p; k++ {
					if sk.dir[i][k] && sk.dir[k][j] {
						changed = sk.orient(i, j) || changed
						break
					}
				}
			}
		}

		// R3: i − j with two non-adjacent k, l where i − k, i − l and
		// k → j, l → j ⇒ i → j.
		for i := 0; i < sk.p; i++ {
			for j := 0; j < sk.p; j++ {
				if !sk.undirected(i, j) {
					continue
				}
				if sk.hasR3Witness(i, j) {
					changed = sk.orient(i, j) || changed
				}
			}
		}

		if !changed {
			break
		}
	}
}

func (sk *skeleton) hasR3Witness(i, j int) bool {
	for k := 0; k < sk.p; k++ {
		if k == i || k == j || !sk.undirected(i, k) || !sk.dir[k][j] {
			continue
		}
		for l := k + 1; l < sk.p; l++ {
			if l == i || l == j || !sk.undirected(i, l) || !sk.dir[l][j] {
				continue
			}
			if !sk.adj[k][l] {
				return true
			}
		}
	}
	return false
}

func (sk *skeleton) undirected(i, j int) bool {
	return sk.adj[i][j] && !sk.dir[i][j] && !sk.dir[j][i]
}

// buildDAG converts the partially oriented skeleton into a DAG. Oriented
// edges go in first; an orientation that would close a cycle (possible only
// on unfaithful data) is demoted back to undirected. Remaining undirected
// edges are then oriented in declaration order, flipping when necessary to
// keep the graph acyclic.
func (sk *skeleton) buildDAG(names []string) (*graph.CausalGraph, error) {
	g, err := graph.New(names)
	if err != nil {
		return nil, err
	}

	type pair struct{ i, j int }
	var undecided []pair
	for i := 0; i < sk.p; i++ {
		for j := i + 1; j < sk.p; j++ {
			if !sk.adj[i][j] {
				continue
			}
			switch {
			case sk.dir[i][j]:
				if err := g.AddEdge(names[i], names[j]); err != nil {
					if !graph.IsCycle(err) {
						return nil, err
					}
					undecided = append(undecided, pair{i, j})
				}
			case sk.dir[j][i]:
				if err := g.AddEdge(names[j], names[i]); err != nil {
					if !graph.IsCycle(err) {
						return nil, err
					}
					undecided = append(undecided, pair{i, j})
				}
			default:
				undecided = append(undecided, pair{i, j})
			}
		}
	}

	for _, e := range undecided {
		if err := g.AddEdge(names[e.i], names[e.j]); err == nil {
			continue
		} else if !graph.IsCycle(err) {
			return nil, err
		}
		if err := g.AddEdge(names[e.j], names[e.i]); err != nil {
			return nil, fmt.Errorf("discovery: pc: orienting %s−%s: %w", names[e.i], names[e.j], err)
		}
	}
	return g, nil
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
