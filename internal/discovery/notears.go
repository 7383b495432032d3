package discovery

import (
	"math"

	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/graph"
	"github.com/darwinlab/causal/internal/mat"
)

// NOTEARSConfig holds the NOTEARS hyperparameters.
type NOTEARSConfig struct {
	// Lambda is the L1 sparsity weight. Default 0.1.
	Lambda float64

	// WThreshold zeroes final weights below this magnitude. Default 0.3.
	WThreshold float64

	// HTolerance is the acceptable residual of the acyclicity constraint
	// h(W) = tr(exp(W∘W)) − d. Default 1e-8.
	HTolerance float64

	// MaxOuterIter caps augmented-Lagrangian dual updates. Default 100.
	MaxOuterIter int

	// MaxInnerIter caps proximal-gradient steps per subproblem. Default 500.
	MaxInnerIter int

	// StepSize is the proximal-gradient step. Default 0.05, tuned for
	// column-standardized data.
	StepSize float64

	// RhoMax bounds the quadratic penalty coefficient; growing ρ past this
	// only amplifies rounding noise. Default 1e16.
	RhoMax float64
}

func (c NOTEARSConfig) withDefaults() NOTEARSConfig {
	if c.Lambda == 0 {
		c.Lambda = 0.1
	}
	if c.WThreshold == 0 {
		c.WThreshold = 0.3
	}
	if c.HTolerance == 0 {
		c.HTolerance = 1e-8
	}
	if c.MaxOuterIter == 0 {
		c.MaxOuterIter = 100
	}
	if c.MaxInnerIter == 0 {
		c.MaxInnerIter = 500
	}
	if c.StepSize == 0 {
		c.StepSize = 0.05
	}
	if c.RhoMax == 0 {
		c.RhoMax = 1e16
	}
	return c
}

// NOTEARS learns a weighted adjacency by continuous optimization: minimize
// ‖X−XW‖²/(2n) + λ‖W‖₁ subject to h(W)=0, via an augmented-Lagrangian outer
// loop (dual update, growing penalty) around a proximal-gradient inner loop.
type NOTEARS struct {
	cfg NOTEARSConfig
}

// NewNOTEARS creates a NOTEARS learner; zero-valued config fields take
// defaults.
func NewNOTEARS(cfg NOTEARSConfig) *NOTEARS {
	return &NOTEARS{cfg: cfg.withDefaults()}
}

// Name implements Algorithm.
func (nt *NOTEARS) Name() string { return "notears" }

// Discover implements Algorithm. Failing to reach the acyclicity tolerance
// within the iteration budget, or thresholding to a still-cyclic edge set,
// is a ConvergenceError, never an accepted-but-cyclic graph.
func (nt *NOTEARS) Discover(d *dataset.Dataset) (*graph.CausalGraph, error) {
	names := d.Names()
	p := len(names)
	x := standardize(d.Matrix())
	n := float64(x.Rows())

	w := mat.NewDense(p, p)
	rho, alpha := 1.0, 0.0
	h := math.Inf(1)

	outer := 0
	for ; outer < nt.cfg.MaxOuterIter; outer++ {
		var wNew *mat.Dense
		var hNew float64
		for {
			wNew = nt.solveSubproblem(x, w, n, rho, alpha)
			hNew = acyclicity(wNew)
			if hNew > 0.25*h && rho < nt.cfg.RhoMax {
				rho *= 10
				continue
			}
			break
		}
		w, h = wNew, hNew
		alpha += rho * h
		if h <= nt.cfg.HTolerance || rho >= nt.cfg.RhoMax {
			break
		}
	}

	if h > nt.cfg.HTolerance {
		return nil, &ConvergenceError{
			Algorithm:  "notears",
			Achieved:   h,
			Required:   nt.cfg.HTolerance,
			Iterations: outer,
		}
	}

	g, err := graph.New(names)
	if err != nil {
		return nil, err
	}
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			if i == j || math.Abs(w.At(i, j)) < nt.cfg.WThreshold {
				continue
			}
			if err := g.AddEdge(names[i], names[j]); err != nil {
				if graph.IsCycle(err) {
					return nil, &ConvergenceError{
						Algorithm:  "notears",
						Achieved:   h,
						Required:   nt.cfg.HTolerance,
						Iterations: outer,
						Err:        err,
					}
				}
				return nil, err
			}
		}
	}
	return g, nil
}

// solveSubproblem minimizes the augmented Lagrangian at fixed (ρ, α) by
// proximal gradient with L1 soft-thresholding and a zeroed diagonal.
func (nt *NOTEARS) solveSubproblem(x, w0 *mat.Dense, n, rho, alpha float64) *mat.Dense {
	w := w0.Clone()
	p := w.Rows()
	const stepTol = 1e-7

	for iter := 0; iter < nt.cfg.MaxInnerIter; iter++ {
		grad := lossGrad(x, w, n)
		h := acyclicity(w)
		hg := acyclicityGrad(w)
		coef := alpha + rho*h
		next := mat.NewDense(p, p)
		var maxMove float64
		for i := 0; i < p; i++ {
			for j := 0; j < p; j++ {
				if i == j {
					continue
				}
				g := grad.At(i, j) + coef*hg.At(i, j)
				v := softThreshold(w.At(i, j)-nt.cfg.StepSize*g, nt.cfg.StepSize*nt.cfg.Lambda)
				next.Set(i, j, v)
				if move := math.Abs(v - w.At(i, j)); move > maxMove {
					maxMove = move
				}
			}
		}
		w = next
		if maxMove < stepTol {
			break
		}
	}
	return w
}

// lossGrad returns ∇[‖X−XW‖²/(2n)] = Xᵀ(XW−X)/n.
func lossGrad(x, w *mat.Dense, n float64) *mat.Dense {
	xw, _ := mat.Mul(x, w)
	diff, _ := mat.Sub(xw, x)
	g, _ := mat.Mul(x.Transpose(), diff)
	return mat.Scale(1/n, g)
}

// acyclicity evaluates h(W) = tr(exp(W∘W)) − d, zero iff W's support is a DAG.
func acyclicity(w *mat.Dense) float64 {
	ww, _ := mat.Hadamard(w, w)
	return mat.Trace(mat.Expm(ww)) - float64(w.Rows())
}

// acyclicityGrad returns ∇h(W) = exp(W∘W)ᵀ ∘ 2W.
func acyclicityGrad(w *mat.Dense) *mat.Dense {
	ww, _ := mat.Hadamard(w, w)
	e := mat.Expm(ww).Transpose()
	g, _ := mat.Hadamard(e, mat.Scale(2, w))
	return g
}

func softThreshold(v, t float64) float64 {
	switch {
	case v > t:
		return v - t
	case v < -t:
		return v + t
	default:
		return 0
	}
}

// standardize mean-centers and unit-scales every column. Constant columns
// stay centered at zero.
func standardize(x *mat.Dense) *mat.Dense {
	out := mat.CenterColumns(x)
	n, p := out.Rows(), out.Cols()
	for j := 0; j < p; j++ {
		var ss float64
		for i := 0; i < n; i++ {
			v := out.At(i, j)
			ss += v * v
		}
		sd := math.Sqrt(ss / float64(n))
		if sd == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			out.Set(i, j, out.At(i, j)/sd)
		}
	}
	return out
}
