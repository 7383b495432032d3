// Package testutil provides deterministic synthetic data generators shared
// by the engine's tests. Every generator takes an explicit seed and returns
// identical data for identical seeds.
package testutil

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/darwinlab/causal/internal/dataset"
)

func mustDataset(names []string, rows [][]float64) *dataset.Dataset {
	d, err := dataset.New(names, rows)
	if err != nil {
		panic("testutil: generator produced an invalid dataset: " + err.Error())
	}
	return d
}

// ConfoundedTriple draws n rows from Z ~ N(0,1), X = 2Z + N(0,1),
// Y = 3X + Z + N(0,1). The true ATE of X on Y is 3.0; the unadjusted
// regression of Y on X is biased upward to cov(X,Y)/var(X) = 17/5 = 3.4.
func ConfoundedTriple(n int, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float64, n)
	for i := range rows {
		z := rng.NormFloat64()
		x := 2*z + rng.NormFloat64()
		y := 3*x + z + rng.NormFloat64()
		rows[i] = []float64{z, x, y}
	}
	return mustDataset([]string{"z", "x", "y"}, rows)
}

// Chain3 draws n rows from the chain Z → X → Y with unit-variance noise.
func Chain3(n int, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float64, n)
	for i := range rows {
		z := rng.NormFloat64()
		x := 1.5*z + rng.NormFloat64()
		y := 1.2*x + rng.NormFloat64()
		rows[i] = []float64{z, x, y}
	}
	return mustDataset([]string{"z", "x", "y"}, rows)
}

// Collider3 draws n rows from a → c ← b with a ⊥ b.
func Collider3(n int, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float64, n)
	for i := range rows {
		a := rng.NormFloat64()
		b := rng.NormFloat64()
		c := a + b + 0.5*rng.NormFloat64()
		rows[i] = []float64{a, b, c}
	}
	return mustDataset([]string{"a", "b", "c"}, rows)
}

// SparseDAG6 draws n rows from a fixed sparse 6-node linear-Gaussian DAG and
// returns the dataset together with the true directed edges. Coefficients
// are large enough to survive standardization and a 0.3 weight threshold.
func SparseDAG6(n int, seed int64) (*dataset.Dataset, [][2]string) {
	rng := rand.New(rand.NewSource(seed))
	names := []string{"v0", "v1", "v2", "v3", "v4", "v5"}
	edges := [][2]string{
		{"v0", "v1"}, {"v0", "v2"}, {"v1", "v3"}, {"v2", "v3"}, {"v3", "v5"}, {"v4", "v5"},
	}
	rows := make([][]float64, n)
	for i := range rows {
		v0 := rng.NormFloat64()
		v1 := 1.5*v0 + rng.NormFloat64()
		v2 := -1.8*v0 + rng.NormFloat64()
		v3 := 1.2*v1 + 1.1*v2 + rng.NormFloat64()
		v4 := rng.NormFloat64()
		v5 := 1.4*v3 + 1.6*v4 + rng.NormFloat64()
		rows[i] = []float64{v0, v1, v2, v3, v4, v5}
	}
	return mustDataset(names, rows), edges
}

// IndependentColumns draws n rows of p mutually independent standard
// normal columns named c0..c(p-1).
func IndependentColumns(p, n int, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))
	names := make([]string, p)
	for j := range names {
		names[j] = fmt.Sprintf("c%d", j)
	}
	rows := make([][]float64, n)
	for i := range rows {
		row := make([]float64, p)
		for j := range row {
			row[j] = rng.NormFloat64()
		}
		rows[i] = row
	}
	return mustDataset(names, rows)
}

// BinaryConfounded draws a binary-treatment dataset with confounder Z:
// P(T=1|Z) = sigmoid(0.8·Z), Y = ate·T + 1.5·Z + N(0,1). Returns the
// dataset; the true ATE is the supplied value.
func BinaryConfounded(n int, ate float64, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float64, n)
	for i := range rows {
		z := rng.NormFloat64()
		p := 1 / (1 + math.Exp(-0.8*z))
		tr := 0.0
		if rng.Float64() < p {
			tr = 1.0
		}
		y := ate*tr + 1.5*z + rng.NormFloat64()
		rows[i] = []float64{z, tr, y}
	}
	return mustDataset([]string{"z", "t", "y"}, rows)
}

// DiDPanel draws a 2×2 difference-in-differences panel: columns group
// (0/1), period (0/1), outcome. The treated-group post-period outcome is
// shifted by delta. Groups start at the same level, so the pre-period group
// gap is zero unless preTrendGap injects a parallel-trends violation.
func DiDPanel(nPerCell int, delta, preTrendGap float64, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))
	var rows [][]float64
	for g := 0; g <= 1; g++ {
		for p := 0; p <= 1; p++ {
			for i := 0; i < nPerCell; i++ {
				y := 1.0 + 0.5*float64(p) + rng.NormFloat64()
				if g == 1 && p == 1 {
					y += delta
				}
				if g == 1 && p == 0 {
					y += preTrendGap
				}
				rows = append(rows, []float64{float64(g), float64(p), y})
			}
		}
	}
	return mustDataset([]string{"group", "period", "y"}, rows)
}

// IVData draws instrument I ~ N(0,1), unobserved confounder U,
// T = gamma·I + U + noise, Y = beta·T + U + noise. OLS of Y on T is biased
// by U; a valid instrument recovers beta. Small gamma makes the instrument
// weak.
func IVData(n int, beta, gamma float64, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float64, n)
	for i := range rows {
		iv := rng.NormFloat64()
		u := rng.NormFloat64()
		tr := gamma*iv + u + 0.5*rng.NormFloat64()
		y := beta*tr + u + 0.5*rng.NormFloat64()
		rows[i] = []float64{iv, tr, y}
	}
	return mustDataset([]string{"i", "t", "y"}, rows)
}

// RDDData draws a sharp regression-discontinuity sample: running variable
// X ~ U(-1, 1), treatment T = 1{X ≥ cutoff}, Y = 1 + 0.8·X + effect·T + noise.
func RDDData(n int, cutoff, effect float64, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float64, n)
	for i := range rows {
		x := rng.Float64()*2 - 1
		tr := 0.0
		if x >= cutoff {
			tr = 1.0
		}
		y := 1 + 0.8*x + effect*tr + 0.3*rng.NormFloat64()
		rows[i] = []float64{x, tr, y}
	}
	return mustDataset([]string{"x", "t", "y"}, rows)
}

// FrontdoorData draws t, m, y where an unobserved confounder U links t and
// y while the full effect of t flows through the mediator m: t = U + noise,
// m = a·t + noise, y = b·m + U + noise. The true effect of t on y is a·b.
func FrontdoorData(n int, a, b float64, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float64, n)
	for i := range rows {
		u := rng.NormFloat64()
		tr := u + rng.NormFloat64()
		m := a*tr + rng.NormFloat64()
		y := b*m + u + rng.NormFloat64()
		rows[i] = []float64{tr, m, y}
	}
	return mustDataset([]string{"t", "m", "y"}, rows)
}

// HeterogeneousEffect draws a dataset whose treatment effect depends on a
// covariate: Y = (base + slope·Z)·T + Z + noise with randomized binary T.
func HeterogeneousEffect(n int, base, slope float64, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float64, n)
	for i := range rows {
		z := rng.NormFloat64()
		tr := 0.0
		if rng.Float64() < 0.5 {
			tr = 1.0
		}
		y := (base+slope*z)*tr + z + 0.5*rng.NormFloat64()
		rows[i] = []float64{z, tr, y}
	}
	return mustDataset([]string{"z", "t", "y"}, rows)
}
