package graph

import (
	"fmt"
	"sort"
)

// EdgeKind distinguishes the three states an ordered node pair can be in.
type EdgeKind int

const (
	// EdgeNone means no edge.
	EdgeNone EdgeKind = iota

	// EdgeDirected at (i, j) means i → j.
	EdgeDirected

	// EdgeBidirected at (i, j) and (j, i) means i ↔ j, an unobserved
	// common cause of both endpoints.
	EdgeBidirected
)

// CausalGraph is a set of named nodes with directed and bidirected edges.
//
// The directed subgraph is kept acyclic: AddEdge rejects cycle-closing edges
// with a CycleError. Mutating methods are not safe for concurrent use;
// query methods are safe once construction is done.
type CausalGraph struct {
	names []string
	index map[string]int
	adj   [][]EdgeKind
}

// New creates a graph over the given node names, with no edges.
// Names must be unique and non-empty.
func New(names []string) (*CausalGraph, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("graph: need at least one node")
	}
	g := &CausalGraph{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
		adj:   make([][]EdgeKind, len(names)),
	}
	copy(g.names, names)
	for i, n := range names {
		if n == "" {
			return nil, fmt.Errorf("graph: node %d has an empty name", i)
		}
		if _, dup := g.index[n]; dup {
			return nil, fmt.Errorf("graph: duplicate node name %q", n)
		}
		g.index[n] = i
		g.adj[i] = make([]EdgeKind, len(names))
	}
	return g, nil
}

// NodeCount returns the number of nodes.
func (g *CausalGraph) NodeCount() int { return len(g.names) }

// Names returns a copy of the node names in declaration order.
func (g *CausalGraph) Names() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Index returns the column index of a node name.
func (g *CausalGraph) Index(name string) (int, bool) {
	i, ok := g.index[name]
	return i, ok
}

// Clone returns a deep copy of the graph.
func (g *CausalGraph) Clone() *CausalGraph {
	c := &CausalGraph{
		names: append([]string(nil), g.names...),
		index: make(map[string]int, len(g.index)),
		adj:   make([][]EdgeKind, len(g.adj)),
	}
	for k, v := range g.index {
		c.index[k] = v
	}
	for i, row := range g.adj {
		c.adj[i] = append([]EdgeKind(nil), row...)
	}
	return c
}

func (g *CausalGraph) lookup(name string) (int, error) {
	i, ok := g.index[name]
	if !ok {
		return 0, &UnknownNodeError{Name: name}
	}
	return i, nil
}

// AddEdge adds the directed edge from → to. Adding an edge that would close
// a directed cycle fails with a CycleError.
func (g *CausalGraph) AddEdge(from, to string) error {
	f, err := g.lookup(from)
	if err != nil {
		return err
	}
	t, err := g.lookup(to)
	if err != nil {
		return err
	}
	if f == t {
		return &CycleError{Nodes: []string{from}}
	}
	// A cycle closes iff from is already reachable from to.
	if g.reachable(t, f) {
		return &CycleError{Nodes: []string{from, to}}
	}
	g.adj[f][t] = EdgeDirected
	return nil
}

// RemoveEdge deletes any edge (directed or bidirected) between from and to
// in the given orientation. Removing an absent edge is a no-op.
func (g *CausalGraph) RemoveEdge(from, to string) error {
	f, err := g.lookup(from)
	if err != nil {
		return err
	}
	t, err := g.lookup(to)
	if err != nil {
		return err
	}
	if g.adj[f][t] == EdgeBidirected {
		g.adj[t][f] = EdgeNone
	}
	g.adj[f][t] = EdgeNone
	return nil
}

// AddBidirected marks a ↔ b, signaling an unobserved common cause.
func (g *CausalGraph) AddBidirected(a, b string) error {
	i, err := g.lookup(a)
	if err != nil {
		return err
	}
	j, err := g.lookup(b)
	if err != nil {
		return err
	}
	if i == j {
		return fmt.Errorf("graph: bidirected self-loop on %q", a)
	}
	g.adj[i][j] = EdgeBidirected
	g.adj[j][i] = EdgeBidirected
	return nil
}

// HasDirected reports whether from → to exists.
func (g *CausalGraph) HasDirected(from, to string) bool {
	f, ok := g.index[from]
	if !ok {
		return false
	}
	t, ok := g.index[to]
	if !ok {
		return false
	}
	return g.adj[f][t] == EdgeDirected
}

// HasBidirected reports whether a ↔ b exists.
func (g *CausalGraph) HasBidirected(a, b string) bool {
	i, ok := g.index[a]
	if !ok {
		return false
	}
	j, ok := g.index[b]
	if !ok {
		return false
	}
	return g.adj[i][j] == EdgeBidirected
}

// Parents returns the directed parents of name, in declaration order.
func (g *CausalGraph) Parents(name string) ([]string, error) {
	t, err := g.lookup(name)
	if err != nil {
		return nil, err
	}
	var out []string
	for i := range g.names {
		if g.adj[i][t] == EdgeDirected {
			out = append(out, g.names[i])
		}
	}
	return out, nil
}

// Children returns the directed children of name, in declaration order.
func (g *CausalGraph) Children(name string) ([]string, error) {
	f, err := g.lookup(name)
	if err != nil {
		return nil, err
	}
	var out []string
	for j := range g.names {
		if g.adj[f][j] == EdgeDirected {
			out = append(out, g.names[j])
		}
	}
	return out, nil
}

// Ancestors returns every node with a directed path to name (name excluded),
// in declaration order.
func (g *CausalGraph) Ancestors(name string) ([]string, error) {
	t, err := g.lookup(name)
	if err != nil {
		return nil, err
	}
	seen := g.collect(t, func(node int) []int { return g.parentIdx(node) })
	return g.toNames(seen), nil
}

// Descendants returns every node reachable from name by directed edges
// (name excluded), in declaration order.
func (g *CausalGraph) Descendants(name string) ([]string, error) {
	f, err := g.lookup(name)
	if err != nil {
		return nil, err
	}
	seen := g.collect(f, func(node int) []int { return g.childIdx(node) })
	return g.toNames(seen), nil
}

// DirectedEdges returns all directed edges sorted by (from, to) name.
func (g *CausalGraph) DirectedEdges() [][2]string {
	var out [][2]string
	for i := range g.names {
		for j := range g.names {
			if g.adj[i][j] == EdgeDirected {
				out = append(out, [2]string{g.names[i], g.names[j]})
			}
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a][0] != out[b][0] {
			return out[a][0] < out[b][0]
		}
		return out[a][1] < out[b][1]
	})
	return out
}

// BidirectedEdges returns all bidirected edges, each reported once with
// endpoints in name order, sorted.
func (g *CausalGraph) BidirectedEdges() [][2]string {
	var out [][2]string
	for i := range g.names {
		for j := i + 1; j < len(g.names); j++ {
			if g.adj[i][j] == EdgeBidirected {
				a, b := g.names[i], g.names[j]
				if a > b {
					a, b = b, a
				}
				out = append(out, [2]string{a, b})
			}
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a][0] != out[b][0] {
			return out[a][0] < out[b][0]
		}
		return out[a][1] < out[b][1]
	})
	return out
}

func (g *CausalGraph) parentIdx(node int) []int {
	var out []int
	for i := range g.adj {
		if g.adj[i][node] == EdgeDirected {
			out = append(out, i)
		}
	}
	return out
}

func (g *CausalGraph) childIdx(node int) []int {
	var out []int
	for j := range g.adj[node] {
		if g.adj[node][j] == EdgeDirected {
			out = append(out, j)
		}
	}
	return out
}

// collect BFS-walks from start along next(), excluding start itself.
func (g *CausalGraph) collect(start int, next func(int) []int) []bool {
	seen := make([]bool, len(g.names))
	queue := next(start)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n] {
			continue
		}
		seen[n] = true
		queue = append(queue, next(n)...)
	}
	seen[start] = false
	return seen
}

func (g *CausalGraph) toNames(seen []bool) []string {
	var out []string
	for i, ok := range seen {
		if ok {
			out = append(out, g.names[i])
		}
	}
	return out
}

// reachable reports whether a directed path from → to exists.
func (g *CausalGraph) reachable(from, to int) bool {
	if from == to {
		return true
	}
	seen := g.collect(from, func(node int) []int { return g.childIdx(node) })
	return seen[to]
}
