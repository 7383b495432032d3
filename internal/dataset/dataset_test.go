package dataset

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsNaN(t *testing.T) {
	_, err := New([]string{"a", "b"}, [][]float64{{1, math.NaN()}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"b"`)
}

func TestNew_RejectsRaggedRows(t *testing.T) {
	_, err := New([]string{"a", "b"}, [][]float64{{1, 2}, {3}})
	require.Error(t, err)
}

func TestFromCSV(t *testing.T) {
	in := "x,y,z\n1,2,3\n4,5,6\n"
	d, err := FromCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 2, d.N())
	assert.Equal(t, []string{"x", "y", "z"}, d.Names())

	y, err := d.Column("y")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, y)
}

func TestFromCSV_BadValue(t *testing.T) {
	_, err := FromCSV(strings.NewReader("x\nnot-a-number\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestColumn_Unknown(t *testing.T) {
	d, err := New([]string{"a"}, [][]float64{{1}})
	require.NoError(t, err)
	_, err = d.Column("missing")
	assert.True(t, IsUnknownColumn(err))
}

func TestSubset_AllowsRepetition(t *testing.T) {
	d, err := New([]string{"a"}, [][]float64{{1}, {2}, {3}})
	require.NoError(t, err)

	boot := d.Subset([]int{2, 2, 0})
	col, err := boot.Column("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3, 1}, col)
	assert.Equal(t, 3, d.N(), "source unchanged")
}

func TestWithColumn(t *testing.T) {
	d, err := New([]string{"a"}, [][]float64{{1}, {2}})
	require.NoError(t, err)

	d2, err := d.WithColumn("b", []float64{10, 20})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, d2.Names())
	assert.False(t, d.HasColumn("b"), "source unchanged")
}

func TestWithReplacedColumn(t *testing.T) {
	d, err := New([]string{"a", "b"}, [][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	d2, err := d.WithReplacedColumn("b", []float64{9, 9})
	require.NoError(t, err)
	b, err := d2.Column("b")
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 9}, b)

	orig, err := d.Column("b")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, orig)
}

func TestRoles_Validate(t *testing.T) {
	d, err := New([]string{"t", "y", "z"}, [][]float64{{0, 1, 2}})
	require.NoError(t, err)

	ok := Roles{Treatment: "t", Outcome: "y", Confounders: []string{"z"}}
	require.NoError(t, ok.Validate(d))

	missing := Roles{Treatment: "t", Outcome: "y", Confounders: []string{"nope"}}
	require.Error(t, missing.Validate(d))

	clash := Roles{Treatment: "t", Outcome: "y", Confounders: []string{"t"}}
	require.Error(t, clash.Validate(d))

	same := Roles{Treatment: "t", Outcome: "t"}
	require.Error(t, same.Validate(d))
}
