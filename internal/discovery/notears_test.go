package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darwinlab/causal/internal/testutil"
)

func TestNOTEARS_RecoversSparseSixNodeDAG(t *testing.T) {
	d, truth := testutil.SparseDAG6(5000, 41)

	g, err := NewNOTEARS(NOTEARSConfig{}).Discover(d)
	require.NoError(t, err)

	_, err = g.TopologicalSort()
	require.NoError(t, err)

	truthSet := map[[2]string]bool{}
	for _, e := range truth {
		truthSet[e] = true
	}
	found := g.DirectedEdges()

	var hits int
	for _, e := range found {
		if truthSet[[2]string{e[0], e[1]}] {
			hits++
		}
	}
	precision := 1.0
	if len(found) > 0 {
		precision = float64(hits) / float64(len(found))
	}
	recall := float64(hits) / float64(len(truth))

	assert.GreaterOrEqual(t, precision, 0.8, "edges found: %v", found)
	assert.GreaterOrEqual(t, recall, 0.8, "edges found: %v", found)
}

func TestNOTEARS_SignalsNonConvergence(t *testing.T) {
	d := testutil.ConfoundedTriple(2000, 42)

	// One outer iteration with one inner step leaves a symmetric, cyclic
	// weight matrix far from the acyclicity tolerance.
	_, err := NewNOTEARS(NOTEARSConfig{
		Lambda:       1e-4,
		HTolerance:   1e-12,
		MaxOuterIter: 1,
		MaxInnerIter: 1,
	}).Discover(d)
	require.Error(t, err)
	assert.True(t, IsConvergence(err), "got %v", err)
}

func TestNOTEARS_EmptyGraphOnIndependentColumns(t *testing.T) {
	d := testutil.IndependentColumns(3, 2000, 43)

	g, err := NewNOTEARS(NOTEARSConfig{}).Discover(d)
	require.NoError(t, err)
	assert.Empty(t, g.DirectedEdges())
}

func TestEveryAlgorithmReturnsSortableGraph(t *testing.T) {
	d := testutil.ConfoundedTriple(3000, 44)

	algos := []Algorithm{
		NewPC(PCConfig{}),
		NewFCI(FCIConfig{}),
		NewGES(GESConfig{}),
		NewNOTEARS(NOTEARSConfig{}),
	}
	for _, a := range algos {
		g, err := a.Discover(d)
		require.NoError(t, err, a.Name())
		_, err = g.TopologicalSort()
		assert.NoError(t, err, "%s returned a graph that does not sort", a.Name())
	}
}

func TestCombinations_EnumeratesAllSubsets(t *testing.T) {
	var got [][]int
	combinations([]int{1, 2, 3}, 2, func(s []int) bool {
		got = append(got, append([]int(nil), s...))
		return false
	})
	assert.Equal(t, [][]int{{1, 2}, {1, 3}, {2, 3}}, got)
}

func TestCombinations_EmptySubset(t *testing.T) {
	calls := 0
	combinations([]int{1, 2}, 0, func(s []int) bool {
		calls++
		assert.Empty(t, s)
		return false
	})
	assert.Equal(t, 1, calls)
}
