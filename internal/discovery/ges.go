package discovery

import (
	"math"

	"github.com/darwinlab/causal/internal/dataset"
	"github.com/darwinlab/causal/internal/graph"
	"github.com/darwinlab/causal/internal/stats"
)

// GESConfig holds the GES hyperparameters.
type GESConfig struct {
	// Penalty scales the BIC complexity term. Default 1 (classic BIC).
	Penalty float64

	// MaxIter caps total forward plus backward moves. Default p² per phase.
	MaxIter int
}

// GES is greedy equivalence search: a BIC-scored local search that first
// greedily adds the single acyclicity-preserving edge most improving the
// penalized Gaussian log-likelihood, then greedily removes edges the same
// way, each phase to convergence.
type GES struct {
	cfg GESConfig
}

// NewGES creates a GES learner; zero-valued config fields take defaults.
func NewGES(cfg GESConfig) *GES {
	if cfg.Penalty == 0 {
		cfg.Penalty = 1
	}
	return &GES{cfg: cfg}
}

// Name implements Algorithm.
func (g *GES) Name() string { return "ges" }

// Discover implements Algorithm.
func (g *GES) Discover(d *dataset.Dataset) (*graph.CausalGraph, error) {
	names := d.Names()
	cg, err := graph.New(names)
	if err != nil {
		return nil, err
	}
	sc, err := newBICScorer(d, g.cfg.Penalty)
	if err != nil {
		return nil, err
	}

	maxIter := g.cfg.MaxIter
	if maxIter == 0 {
		maxIter = len(names) * len(names)
	}

	// Forward phase: add the best-scoring admissible edge while the best
	// delta stays positive.
	for iter := 0; iter < maxIter; iter++ {
		bestFrom, bestTo, bestDelta := "", "", 0.0
		for _, from := range names {
			for _, to := range names {
				if from == to || cg.HasDirected(from, to) || cg.HasDirected(to, from) {
					continue
				}
				if wouldCycle(cg, from, to) {
					continue
				}
				delta, err := sc.addDelta(cg, from, to)
				if err != nil {
					continue // collinear parent set: not a usable move
				}
				if delta > bestDelta {
					bestFrom, bestTo, bestDelta = from, to, delta
				}
			}
		}
		if bestFrom == "" {
			break
		}
		if err := cg.AddEdge(bestFrom, bestTo); err != nil {
			return nil, err
		}
	}

	// Backward phase: remove the edge whose deletion most improves the
	// score, to convergence.
	for iter := 0; iter < maxIter; iter++ {
		bestFrom, bestTo, bestDelta := "", "", 0.0
		for _, e := range cg.DirectedEdges() {
			delta, err := sc.removeDelta(cg, e[0], e[1])
			if err != nil {
				continue
			}
			if delta > bestDelta {
				bestFrom, bestTo, bestDelta = e[0], e[1], delta
			}
		}
		if bestFrom == "" {
			break
		}
		if err := cg.RemoveEdge(bestFrom, bestTo); err != nil {
			return nil, err
		}
	}
	return cg, nil
}

// wouldCycle reports whether adding from → to closes a directed cycle.
func wouldCycle(g *graph.CausalGraph, from, to string) bool {
	desc, err := g.Descendants(to)
	if err != nil {
		return true
	}
	for _, d := range desc {
		if d == from {
			return true
		}
	}
	return false
}

// bicScorer computes decomposable local BIC scores: the score of a graph is
// the sum over nodes of the Gaussian log-likelihood of node-given-parents
// minus a complexity penalty.
type bicScorer struct {
	d       *dataset.Dataset
	n       float64
	penalty float64
}

func newBICScorer(d *dataset.Dataset, penalty float64) (*bicScorer, error) {
	if d.N() < 2 {
		return nil, &stats.InsufficientDataError{Op: "ges", Need: 2, Got: d.N()}
	}
	return &bicScorer{d: d, n: float64(d.N()), penalty: penalty}, nil
}

// local scores node given a parent set: −(n/2)·log(RSS/n) − penalty·k·log(n)/2
// with k the parameter count. Higher is better.
func (s *bicScorer) local(node string, parents []string) (float64, error) {
	y, err := s.d.Column(node)
	if err != nil {
		return 0, err
	}
	var rss float64
	if len(parents) == 0 {
		m := stats.Mean(y)
		for _, v := range y {
			rss += (v - m) * (v - m)
		}
	} else {
		cols, err := s.d.Columns(parents...)
		if err != nil {
			return 0, err
		}
		design, err := stats.Design(len(y), cols...)
		if err != nil {
			return 0, err
		}
		fit, err := stats.FitOLS(design, y)
		if err != nil {
			return 0, err
		}
		for _, r := range fit.Residuals {
			rss += r * r
		}
	}
	if rss <= 0 {
		rss = 1e-12 // perfectly deterministic column; avoid log(0)
	}
	k := float64(len(parents) + 1)
	return -0.5*s.n*math.Log(rss/s.n) - 0.5*s.penalty*k*math.Log(s.n), nil
}

func (s *bicScorer) addDelta(g *graph.CausalGraph, from, to string) (float64, error) {
	parents, err := g.Parents(to)
	if err != nil {
		return 0, err
	}
	before, err := s.local(to, parents)
	if err != nil {
		return 0, err
	}
	after, err := s.local(to, append(parents, from))
	if err != nil {
		return 0, err
	}
	return after - before, nil
}

func (s *bicScorer) removeDelta(g *graph.CausalGraph, from, to string) (float64, error) {
	parents, err := g.Parents(to)
	if err != nil {
		return 0, err
	}
	var without []string
	for _, p := range parents {
		if p != from {
			without = append(without, p)
		}
	}
	before, err := s.local(to, parents)
	if err != nil {
		return 0, err
	}
	after, err := s.local(to, without)
	if err != nil {
		return 0, err
	}
	return after - before, nil
}
