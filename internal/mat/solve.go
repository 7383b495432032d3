package mat

import "math"

// pivotTol is the smallest pivot magnitude elimination accepts before
// declaring the system singular.
const pivotTol = 1e-12

// Solve solves a*x = b by Gaussian elimination with partial pivoting.
// a must be square; a and b are not mutated.
func Solve(a *Dense, b []float64) ([]float64, error) {
	n := a.rows
	if a.cols != n {
		return nil, &ShapeError{Op: "Solve", RowsA: a.rows, ColsA: a.cols}
	}
	if len(b) != n {
		return nil, &ShapeError{Op: "Solve", RowsA: a.rows, ColsA: a.cols, RowsB: len(b), ColsB: 1}
	}

	// Augmented working copy.
	w := a.Clone()
	rhs := make([]float64, n)
	copy(rhs, b)

	for col := 0; col < n; col++ {
		// Partial pivot: largest |value| at or below the diagonal.
		pivRow, pivVal := col, math.Abs(w.data[col*n+col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(w.data[r*n+col]); v > pivVal {
				pivRow, pivVal = r, v
			}
		}
		if pivVal < pivotTol {
			return nil, &SingularError{Column: col, Pivot: pivVal}
		}
		if pivRow != col {
			for j := 0; j < n; j++ {
				w.data[col*n+j], w.data[pivRow*n+j] = w.data[pivRow*n+j], w.data[col*n+j]
			}
			rhs[col], rhs[pivRow] = rhs[pivRow], rhs[col]
		}

		inv := 1 / w.data[col*n+col]
		for r := col + 1; r < n; r++ {
			f := w.data[r*n+col] * inv
			if f == 0 {
				continue
			}
			w.data[r*n+col] = 0
			for j := col + 1; j < n; j++ {
				w.data[r*n+j] -= f * w.data[col*n+j]
			}
			rhs[r] -= f * rhs[col]
		}
	}

	// Back substitution.
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		s := rhs[i]
		for j := i + 1; j < n; j++ {
			s -= w.data[i*n+j] * x[j]
		}
		x[i] = s / w.data[i*n+i]
	}
	return x, nil
}

// Inverse returns a⁻¹ by solving against each identity column.
func Inverse(a *Dense) (*Dense, error) {
	n := a.rows
	if a.cols != n {
		return nil, &ShapeError{Op: "Inverse", RowsA: a.rows, ColsA: a.cols}
	}
	out := NewDense(n, n)
	e := make([]float64, n)
	for j := 0; j < n; j++ {
		for k := range e {
			e[k] = 0
		}
		e[j] = 1
		col, err := Solve(a, e)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			out.data[i*n+j] = col[i]
		}
	}
	return out, nil
}
