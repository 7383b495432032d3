package graph

import (
	"fmt"
	"math/rand"
)

// Equation is a structural equation: it maps the node's parent values plus
// an exogenous noise draw to the node's value.
type Equation func(parents map[string]float64, noise float64) float64

// Noise draws one exogenous noise value. Implementations must use only the
// supplied rng so sampling stays reproducible under a caller seed.
type Noise func(rng *rand.Rand) float64

// GaussianNoise returns a Noise drawing from N(mean, sd²).
func GaussianNoise(mean, sd float64) Noise {
	return func(rng *rand.Rand) float64 {
		return mean + sd*rng.NormFloat64()
	}
}

// NoNoise returns a Noise that is constantly zero, used for intervened nodes.
func NoNoise() Noise {
	return func(*rand.Rand) float64 { return 0 }
}

// LinearEquation builds an additive-noise linear structural equation
// value = intercept + Σ coef[p]·parent[p] + noise.
func LinearEquation(intercept float64, coefs map[string]float64) Equation {
	// Copy to guard against caller mutation.
	c := make(map[string]float64, len(coefs))
	for k, v := range coefs {
		c[k] = v
	}
	return func(parents map[string]float64, noise float64) float64 {
		v := intercept + noise
		for name, coef := range c {
			v += coef * parents[name]
		}
		return v
	}
}

// ConstantEquation always returns v, ignoring parents and noise. Intervened
// nodes get this equation.
func ConstantEquation(v float64) Equation {
	return func(map[string]float64, float64) float64 { return v }
}

// SCM is a structural causal model: a causal graph plus one structural
// equation and one noise distribution per node. Equations are evaluated in
// topological order, so the graph must be a DAG.
//
// SCMs are immutable once built; Intervene returns a new model.
type SCM struct {
	graph     *CausalGraph
	equations map[string]Equation
	noises    map[string]Noise
	order     []string // cached topological order
}

// NewSCM builds an SCM. Every node of g must have both an equation and a
// noise distribution, and g must be acyclic.
func NewSCM(g *CausalGraph, equations map[string]Equation, noises map[string]Noise) (*SCM, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}
	for _, name := range g.names {
		if equations[name] == nil {
			return nil, fmt.Errorf("graph: scm: node %q has no structural equation", name)
		}
		if noises[name] == nil {
			return nil, fmt.Errorf("graph: scm: node %q has no noise distribution", name)
		}
	}
	eqs := make(map[string]Equation, len(equations))
	nss := make(map[string]Noise, len(noises))
	for _, name := range g.names {
		eqs[name] = equations[name]
		nss[name] = noises[name]
	}
	return &SCM{graph: g.Clone(), equations: eqs, noises: nss, order: order}, nil
}

// Graph returns a copy of the model's causal graph.
func (s *SCM) Graph() *CausalGraph { return s.graph.Clone() }

// Equation returns the structural equation of a node.
func (s *SCM) Equation(name string) (Equation, error) {
	eq, ok := s.equations[name]
	if !ok {
		return nil, &UnknownNodeError{Name: name}
	}
	return eq, nil
}

// Samples holds draws from an SCM: one column per node, in the graph's
// declaration order.
type Samples struct {
	Names []string
	Data  [][]float64 // Data[row][col]
}

// Column returns the column for a node name.
func (s *Samples) Column(name string) ([]float64, error) {
	for j, n := range s.Names {
		if n == name {
			out := make([]float64, len(s.Data))
			for i := range s.Data {
				out[i] = s.Data[i][j]
			}
			return out, nil
		}
	}
	return nil, &UnknownNodeError{Name: name}
}

// Sample draws n joint observations by evaluating each structural equation
// in topological order with fresh exogenous noise.
func (s *SCM) Sample(n int, rng *rand.Rand) (*Samples, error) {
	if n <= 0 {
		return nil, fmt.Errorf("graph: scm: sample count must be positive, got %d", n)
	}
	names := s.graph.Names()
	col := make(map[string]int, len(names))
	for j, name := range names {
		col[name] = j
	}

	parentsOf := make(map[string][]string, len(names))
	for _, name := range s.order {
		parents, err := s.graph.Parents(name)
		if err != nil {
			return nil, err
		}
		parentsOf[name] = parents
	}

	data := make([][]float64, n)
	values := make(map[string]float64, len(names))
	for i := 0; i < n; i++ {
		row := make([]float64, len(names))
		for k := range values {
			delete(values, k)
		}
		for _, name := range s.order {
			pv := make(map[string]float64, len(parentsOf[name]))
			for _, p := range parentsOf[name] {
				pv[p] = values[p]
			}
			v := s.equations[name](pv, s.noises[name](rng))
			values[name] = v
			row[col[name]] = v
		}
		data[i] = row
	}
	return &Samples{Names: names, Data: data}, nil
}

// InterventionSpec maps node names to the fixed values of a do() operation.
type InterventionSpec map[string]float64

// Intervene applies the do-operator: it returns a new SCM in which every
// intervened node has its incoming edges removed and its equation replaced by
// a constant. The receiver is never mutated.
func (s *SCM) Intervene(spec InterventionSpec) (*SCM, error) {
	g := s.graph.Clone()
	eqs := make(map[string]Equation, len(s.equations))
	nss := make(map[string]Noise, len(s.noises))
	for name, eq := range s.equations {
		eqs[name] = eq
	}
	for name, ns := range s.noises {
		nss[name] = ns
	}

	for name, value := range spec {
		parents, err := g.Parents(name)
		if err != nil {
			return nil, err
		}
		for _, p := range parents {
			if err := g.RemoveEdge(p, name); err != nil {
				return nil, err
			}
		}
		eqs[name] = ConstantEquation(value)
		nss[name] = NoNoise()
	}
	return NewSCM(g, eqs, nss)
}
