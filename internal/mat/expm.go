package mat

import "math"

// expmClamp bounds entries fed into the matrix exponential. The NOTEARS
// acyclicity penalty exponentiates W∘W; without a clamp a diverging inner
// optimizer can overflow exp and poison the search with +Inf.
const expmClamp = 30.0

// Expm computes e^a for a square matrix via scaling-and-squaring around a
// truncated Taylor series. Entries are clamped to ±expmClamp first.
func Expm(a *Dense) *Dense {
	n := a.rows
	w := a.Clone()
	for i := range w.data {
		if w.data[i] > expmClamp {
			w.data[i] = expmClamp
		} else if w.data[i] < -expmClamp {
			w.data[i] = -expmClamp
		}
	}

	// Scale so the max norm is small enough for a short Taylor series.
	norm := MaxAbs(w) * float64(n)
	squarings := 0
	if norm > 0.5 {
		squarings = int(math.Ceil(math.Log2(norm / 0.5)))
		w = Scale(1/math.Pow(2, float64(squarings)), w)
	}

	// exp(w) ≈ Σ_{k=0}^{taylorOrder} w^k / k!
	const taylorOrder = 14
	result := Identity(n)
	term := Identity(n)
	for k := 1; k <= taylorOrder; k++ {
		next, _ := Mul(term, w) // shapes are square by construction
		term = Scale(1/float64(k), next)
		result, _ = Add(result, term)
	}

	for s := 0; s < squarings; s++ {
		result, _ = Mul(result, result)
	}
	return result
}
