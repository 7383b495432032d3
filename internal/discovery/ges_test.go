package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darwinlab/causal/internal/testutil"
)

func TestGES_ChainAdjacency(t *testing.T) {
	d := testutil.Chain3(5000, 31)

	g, err := NewGES(GESConfig{}).Discover(d)
	require.NoError(t, err)

	assert.True(t, adjacentEither(g, "z", "x"))
	assert.True(t, adjacentEither(g, "x", "y"))
	assert.False(t, adjacentEither(g, "z", "y"),
		"BIC prefers the sparse chain over a direct z→y edge")

	_, err = g.TopologicalSort()
	assert.NoError(t, err)
}

func TestGES_RecoversSparseSixNodeSkeleton(t *testing.T) {
	d, truth := testutil.SparseDAG6(5000, 32)

	g, err := NewGES(GESConfig{}).Discover(d)
	require.NoError(t, err)

	for _, e := range truth {
		assert.True(t, adjacentEither(g, e[0], e[1]),
			"true edge %s-%s missing", e[0], e[1])
	}
	_, err = g.TopologicalSort()
	assert.NoError(t, err)
}

func TestGES_EmptyOnIndependentData(t *testing.T) {
	d := testutil.IndependentColumns(4, 2000, 34)

	g, err := NewGES(GESConfig{}).Discover(d)
	require.NoError(t, err)
	assert.Empty(t, g.DirectedEdges(), "no edge should improve BIC on independent columns")
}
