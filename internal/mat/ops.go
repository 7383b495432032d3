package mat

import "math"

// Mul returns a*b.
func Mul(a, b *Dense) (*Dense, error) {
	if a.cols != b.rows {
		return nil, &ShapeError{Op: "Mul", RowsA: a.rows, ColsA: a.cols, RowsB: b.rows, ColsB: b.cols}
	}
	out := NewDense(a.rows, b.cols)
	for i := 0; i < a.rows; i++ {
		for k := 0; k < a.cols; k++ {
			aik := a.data[i*a.cols+k]
			if aik == 0 {
				continue
			}
			for j := 0; j < b.cols; j++ {
				out.data[i*b.cols+j] += aik * b.data[k*b.cols+j]
			}
		}
	}
	return out, nil
}

// MatVec returns a*x.
func MatVec(a *Dense, x []float64) ([]float64, error) {
	if a.cols != len(x) {
		return nil, &ShapeError{Op: "MatVec", RowsA: a.rows, ColsA: a.cols, RowsB: len(x), ColsB: 1}
	}
	out := make([]float64, a.rows)
	for i := 0; i < a.rows; i++ {
		var s float64
		for j := 0; j < a.cols; j++ {
			s += a.data[i*a.cols+j] * x[j]
		}
		out[i] = s
	}
	return out, nil
}

// Add returns a+b.
func Add(a, b *Dense) (*Dense, error) {
	if a.rows != b.rows || a.cols != b.cols {
		return nil, &ShapeError{Op: "Add", RowsA: a.rows, ColsA: a.cols, RowsB: b.rows, ColsB: b.cols}
	}
	out := NewDense(a.rows, a.cols)
	for i := range a.data {
		out.data[i] = a.data[i] + b.data[i]
	}
	return out, nil
}

// Sub returns a-b.
func Sub(a, b *Dense) (*Dense, error) {
	if a.rows != b.rows || a.cols != b.cols {
		return nil, &ShapeError{Op: "Sub", RowsA: a.rows, ColsA: a.cols, RowsB: b.rows, ColsB: b.cols}
	}
	out := NewDense(a.rows, a.cols)
	for i := range a.data {
		out.data[i] = a.data[i] - b.data[i]
	}
	return out, nil
}

// Hadamard returns the element-wise product a∘b.
func Hadamard(a, b *Dense) (*Dense, error) {
	if a.rows != b.rows || a.cols != b.cols {
		return nil, &ShapeError{Op: "Hadamard", RowsA: a.rows, ColsA: a.cols, RowsB: b.rows, ColsB: b.cols}
	}
	out := NewDense(a.rows, a.cols)
	for i := range a.data {
		out.data[i] = a.data[i] * b.data[i]
	}
	return out, nil
}

// Scale returns s*a.
func Scale(s float64, a *Dense) *Dense {
	out := NewDense(a.rows, a.cols)
	for i := range a.data {
		out.data[i] = s * a.data[i]
	}
	return out
}

// Trace returns the sum of diagonal elements of a square matrix.
func Trace(a *Dense) float64 {
	n := a.rows
	if a.cols < n {
		n = a.cols
	}
	var t float64
	for i := 0; i < n; i++ {
		t += a.data[i*a.cols+i]
	}
	return t
}

// MaxAbs returns the largest absolute element value.
func MaxAbs(a *Dense) float64 {
	var m float64
	for _, v := range a.data {
		if av := math.Abs(v); av > m {
			m = av
		}
	}
	return m
}

// ColMeans returns the per-column mean.
func ColMeans(a *Dense) []float64 {
	out := make([]float64, a.cols)
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			out[j] += a.data[i*a.cols+j]
		}
	}
	for j := range out {
		out[j] /= float64(a.rows)
	}
	return out
}

// CenterColumns returns a copy of a with each column mean-centered.
func CenterColumns(a *Dense) *Dense {
	means := ColMeans(a)
	out := a.Clone()
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			out.data[i*a.cols+j] -= means[j]
		}
	}
	return out
}
