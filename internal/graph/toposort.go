package graph

// TopologicalSort returns the node names in an order where every directed
// edge points forward. It fails with a CycleError naming the offending nodes
// if the directed subgraph is not acyclic.
//
// The sort is deterministic: ties break on declaration order. DFS is
// iterative with an explicit stack, so adversarially deep graphs cannot
// overflow the goroutine stack.
func (g *CausalGraph) TopologicalSort() ([]string, error) {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make([]int, len(g.names))

	type frame struct {
		node int
		next int // next child column to examine
	}

	var post []int
	for root := range g.names {
		if state[root] != unvisited {
			continue
		}
		stack := []frame{{node: root}}
		state[root] = inStack

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			pushed := false
			for top.next < len(g.names) {
				j := top.next
				top.next++
				if g.adj[top.node][j] != EdgeDirected {
					continue
				}
				switch state[j] {
				case inStack:
					return nil, &CycleError{Nodes: []string{g.names[top.node], g.names[j]}}
				case unvisited:
					state[j] = inStack
					stack = append(stack, frame{node: j})
					pushed = true
				}
				if pushed {
					break
				}
			}
			if pushed {
				continue
			}
			state[top.node] = done
			post = append(post, top.node)
			stack = stack[:len(stack)-1]
		}
	}

	order := make([]string, 0, len(g.names))
	for i := len(post) - 1; i >= 0; i-- {
		order = append(order, g.names[post[i]])
	}
	return order, nil
}
