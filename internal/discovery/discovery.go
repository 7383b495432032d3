package discovery

import (
	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/graph"
)

// Algorithm is the shared contract for structure learning: data in, causal
// graph out. Implementations must return graphs whose directed subgraph is
// acyclic (FCI may additionally carry bidirected edges).
type Algorithm interface {
	// Name identifies the algorithm in logs and reports.
	Name() string

	// Discover learns a causal graph over the dataset's columns.
	Discover(d *dataset.Dataset) (*graph.CausalGraph, error)
}

// combinations invokes fn with every size-k subset of items, in
// lexicographic index order. fn returning true stops the enumeration early;
// combinations reports whether it was stopped.
func combinations(items []int, k int, fn func([]int) bool) bool {
	if k > len(items) {
		return false
	}
	if k == 0 {
		return fn(nil)
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	buf := make([]int, k)
	for {
		for i, v := range idx {
			buf[i] = items[v]
		}
		if fn(buf) {
			return true
		}
		// Advance the rightmost index that can still move.
		i := k - 1
		for i >= 0 && idx[i] == len(items)-k+i {
			i--
		}
		if i < 0 {
			return false
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
