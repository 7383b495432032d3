package graph

import "fmt"

// IsDSeparated reports whether the conditioning set z d-separates x from y in
// the directed subgraph, via the reachability form of the Bayes-Ball
// algorithm: a path is blocked at a non-collider iff that node is in z, and
// blocked at a collider iff neither the collider nor any of its descendants
// is in z.
//
// x and y must not themselves be members of z.
func (g *CausalGraph) IsDSeparated(x, y string, z []string) (bool, error) {
	xi, err := g.lookup(x)
	if err != nil {
		return false, err
	}
	yi, err := g.lookup(y)
	if err != nil {
		return false, err
	}
	inZ := make([]bool, len(g.names))
	for _, name := range z {
		zi, err := g.lookup(name)
		if err != nil {
			return false, err
		}
		if zi == xi || zi == yi {
			return false, fmt.Errorf("graph: conditioning set contains endpoint %q", name)
		}
		inZ[zi] = true
	}

	// ancZ marks z plus every ancestor of a z node; a collider is active
	// iff it lies in this set.
	ancZ := make([]bool, len(g.names))
	var queue []int
	for i, ok := range inZ {
		if ok {
			ancZ[i] = true
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, p := range g.parentIdx(n) {
			if !ancZ[p] {
				ancZ[p] = true
				queue = append(queue, p)
			}
		}
	}

	// Reachability over (node, direction) states. Direction up means the
	// trail arrived from a child of the node, down means from a parent.
	const (
		up   = 0
		down = 1
	)
	type visit struct {
		node int
		dir  int
	}
	seen := make([][2]bool, len(g.names))
	frontier := []visit{{node: xi, dir: up}}
	seen[xi][up] = true

	push := func(next []visit, n, d int) []visit {
		if !seen[n][d] {
			seen[n][d] = true
			next = append(next, visit{node: n, dir: d})
		}
		return next
	}

	for len(frontier) > 0 {
		v := frontier[0]
		frontier = frontier[1:]
		if v.node == yi {
			return false, nil // active trail reached y
		}
		switch v.dir {
		case up:
			// Arrived against an edge: the trail may continue to
			// parents (still upstream) or turn down through children,
			// unless this node is observed.
			if inZ[v.node] {
				continue
			}
			for _, p := range g.parentIdx(v.node) {
				frontier = push(frontier, p, up)
			}
			for _, c := range g.childIdx(v.node) {
				frontier = push(frontier, c, down)
			}
		case down:
			// Arrived along an edge: continue to children unless
			// observed; bounce to parents iff this node is an active
			// collider (it or a descendant is observed).
			if !inZ[v.node] {
				for _, c := range g.childIdx(v.node) {
					frontier = push(frontier, c, down)
				}
			}
			if ancZ[v.node] {
				for _, p := range g.parentIdx(v.node) {
					frontier = push(frontier, p, up)
				}
			}
		}
	}
	return true, nil
}
