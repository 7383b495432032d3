package pipeline

import (
	"fmt"

	"github.com/darwinlab/causal/internal/graph"
)

// Identify selects an identification strategy for the effect of treatment on
// outcome under g, considering only the observed variables as candidates for
// adjustment sets, mediators, and instruments. Strategies are tried in fixed
// order: backdoor, frontdoor, instrument. If none applies the result is a
// NotIdentifiableError.
func Identify(g *graph.CausalGraph, treatment, outcome string, observed []string) (*IdentifiedEstimand, error) {
	// Observed variables outside the graph cannot participate in any
	// strategy; drop them up front.
	nodes := toSet(g.Names())
	kept := make([]string, 0, len(observed))
	for _, name := range observed {
		if nodes[name] {
			kept = append(kept, name)
		}
	}
	observed = kept

	if adj, ok, err := backdoorSet(g, treatment, outcome, observed); err != nil {
		return nil, err
	} else if ok {
		return &IdentifiedEstimand{
			Kind:       EstimandBackdoor,
			Treatment:  treatment,
			Outcome:    outcome,
			Adjustment: adj,
		}, nil
	}

	if m, ok, err := frontdoorMediator(g, treatment, outcome, observed); err != nil {
		return nil, err
	} else if ok {
		return &IdentifiedEstimand{
			Kind:      EstimandFrontdoor,
			Treatment: treatment,
			Outcome:   outcome,
			Mediator:  m,
		}, nil
	}

	if iv, ok, err := validInstrument(g, treatment, outcome, observed); err != nil {
		return nil, err
	} else if ok {
		return &IdentifiedEstimand{
			Kind:       EstimandInstrumental,
			Treatment:  treatment,
			Outcome:    outcome,
			Instrument: iv,
		}, nil
	}

	return nil, &NotIdentifiableError{
		Treatment: treatment,
		Outcome:   outcome,
		Reason:    "no backdoor adjustment set, frontdoor mediator, or valid instrument among observed variables",
	}
}

// backdoorSet searches for an observed adjustment set satisfying the
// backdoor criterion: with treatment's outgoing edges removed, the set
// d-separates treatment from outcome. Candidates are tried largest first:
// all observed non-descendants of the treatment, then the treatment's
// observed parents, then the empty set. The fallbacks matter when an
// observed non-descendant is a collider on a backdoor path; conditioning on
// it would open the path, but a smaller set (possibly empty) still blocks
// everything.
func backdoorSet(g *graph.CausalGraph, treatment, outcome string, observed []string) ([]string, bool, error) {
	desc, err := g.Descendants(treatment)
	if err != nil {
		return nil, false, err
	}
	descSet := toSet(desc)

	var nonDesc []string
	for _, name := range observed {
		if name == treatment || name == outcome || descSet[name] {
			continue
		}
		nonDesc = append(nonDesc, name)
	}

	parents, err := g.Parents(treatment)
	if err != nil {
		return nil, false, err
	}
	obsSet := toSet(observed)
	var obsParents []string
	for _, p := range parents {
		if obsSet[p] && p != outcome {
			obsParents = append(obsParents, p)
		}
	}

	back, err := withoutOutgoing(g, treatment)
	if err != nil {
		return nil, false, err
	}
	for _, cand := range [][]string{nonDesc, obsParents, nil} {
		sep, err := back.IsDSeparated(treatment, outcome, cand)
		if err != nil {
			return nil, false, err
		}
		if sep {
			return cand, true, nil
		}
	}
	return nil, false, nil
}

// frontdoorMediator looks for an observed m with treatment → m → outcome
// that intercepts every directed treatment→outcome path and whose only
// parent is the treatment, so the treatment–mediator link is unconfounded
// and the mediator–outcome backdoor is blocked by the treatment.
func frontdoorMediator(g *graph.CausalGraph, treatment, outcome string, observed []string) (string, bool, error) {
	for _, m := range observed {
		if m == treatment || m == outcome {
			continue
		}
		if !g.HasDirected(treatment, m) || !g.HasDirected(m, outcome) {
			continue
		}
		parents, err := g.Parents(m)
		if err != nil {
			return "", false, err
		}
		if len(parents) != 1 || parents[0] != treatment {
			continue
		}
		intercepts, err := interceptsAllPaths(g, treatment, outcome, m)
		if err != nil {
			return "", false, err
		}
		if intercepts {
			return m, true, nil
		}
	}
	return "", false, nil
}

// validInstrument looks for an observed parent of treatment whose every
// directed path to outcome passes through treatment and which is not
// directly adjacent to outcome.
func validInstrument(g *graph.CausalGraph, treatment, outcome string, observed []string) (string, bool, error) {
	parents, err := g.Parents(treatment)
	if err != nil {
		return "", false, err
	}
	obsSet := toSet(observed)

	front, err := withoutOutgoing(g, treatment)
	if err != nil {
		return "", false, err
	}
	for _, iv := range parents {
		if !obsSet[iv] || iv == outcome {
			continue
		}
		if g.HasDirected(iv, outcome) || g.HasDirected(outcome, iv) {
			continue
		}
		desc, err := front.Descendants(iv)
		if err != nil {
			return "", false, err
		}
		if !toSet(desc)[outcome] {
			return iv, true, nil
		}
	}
	return "", false, nil
}

// interceptsAllPaths reports whether every directed path from treatment to
// outcome passes through m, by checking reachability with m's outgoing
// edges removed.
func interceptsAllPaths(g *graph.CausalGraph, treatment, outcome, m string) (bool, error) {
	cut, err := withoutOutgoing(g, m)
	if err != nil {
		return false, err
	}
	desc, err := cut.Descendants(treatment)
	if err != nil {
		return false, err
	}
	return !toSet(desc)[outcome], nil
}

// withoutOutgoing clones g and removes every directed edge leaving node.
func withoutOutgoing(g *graph.CausalGraph, node string) (*graph.CausalGraph, error) {
	out := g.Clone()
	children, err := out.Children(node)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		if err := out.RemoveEdge(node, c); err != nil {
			return nil, fmt.Errorf("pipeline: pruning outgoing edges of %q: %w", node, err)
		}
	}
	return out, nil
}

func toSet(names []string) map[string]bool {
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}
