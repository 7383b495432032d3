package stats

import (
	"math/rand"
	"sort"
)

// BootstrapIndices draws n indices with replacement from [0, n).
func BootstrapIndices(rng *rand.Rand, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = rng.Intn(n)
	}
	return out
}

// Permutation returns a random permutation of [0, n).
func Permutation(rng *rand.Rand, n int) []int {
	return rng.Perm(n)
}

// KFold partitions [0, n) into k shuffled folds whose sizes differ by at
// most one. Returns an error-free best effort; callers validate k against n.
func KFold(rng *rand.Rand, n, k int) [][]int {
	perm := rng.Perm(n)
	folds := make([][]int, k)
	for i, idx := range perm {
		f := i % k
		folds[f] = append(folds[f], idx)
	}
	return folds
}

// Quantile returns the q-quantile (0..1) of xs using linear interpolation on
// a sorted copy.
func Quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}
