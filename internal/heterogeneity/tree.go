package heterogeneity

import (
	"sort"

	"github.com/darwinlab/causal/internal/stats"
)

// causalTree is a binary tree over covariate thresholds. Leaves store a
// scalar treatment-effect estimate. Nodes live in one slice; children are
// indices, so prediction needs no recursion either.
type causalTree struct {
	nodes []treeNode
}

type treeNode struct {
	leaf      bool
	feature   int
	threshold float64
	left      int
	right     int
	effect    float64
}

// maxSplitCandidates caps thresholds examined per feature; candidates are
// evenly spaced quantiles of the in-node values.
const maxSplitCandidates = 16

// growTree builds one causal tree over the given bootstrap index set. The
// construction is an explicit worklist with a per-item depth counter: no
// recursion, bounded by cfg.MaxDepth.
func growTree(x [][]float64, tr, y []float64, idx []int, cfg ForestConfig) (*causalTree, error) {
	root, err := nodeEffect(tr, y, idx)
	if err != nil {
		return nil, err
	}

	t := &causalTree{}
	t.nodes = append(t.nodes, treeNode{leaf: true, effect: root})

	type workItem struct {
		node  int
		idx   []int
		depth int
	}
	work := []workItem{{node: 0, idx: idx}}

	for len(work) > 0 {
		item := work[len(work)-1]
		work = work[:len(work)-1]

		if item.depth >= cfg.MaxDepth || len(item.idx) < 2*cfg.MinLeafSize {
			continue
		}
		split, ok := bestSplit(x, tr, y, item.idx, cfg.MinLeafSize)
		if !ok {
			continue
		}

		leftEffect, err := nodeEffect(tr, y, split.left)
		if err != nil {
			continue // a child lost an arm; keep the parent as a leaf
		}
		rightEffect, err := nodeEffect(tr, y, split.right)
		if err != nil {
			continue
		}

		li := len(t.nodes)
		t.nodes = append(t.nodes, treeNode{leaf: true, effect: leftEffect})
		ri := len(t.nodes)
		t.nodes = append(t.nodes, treeNode{leaf: true, effect: rightEffect})

		n := &t.nodes[item.node]
		n.leaf = false
		n.feature = split.feature
		n.threshold = split.threshold
		n.left = li
		n.right = ri

		work = append(work,
			workItem{node: li, idx: split.left, depth: item.depth + 1},
			workItem{node: ri, idx: split.right, depth: item.depth + 1},
		)
	}
	return t, nil
}

func (t *causalTree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.leaf {
			return n.effect
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// nodeEffect is the in-node effect estimate: mean outcome difference between
// arms. Fails if either arm is empty.
func nodeEffect(tr, y []float64, idx []int) (float64, error) {
	var sum1, sum0 float64
	var n1, n0 int
	for _, i := range idx {
		if tr[i] == 1 {
			sum1 += y[i]
			n1++
		} else {
			sum0 += y[i]
			n0++
		}
	}
	if n1 == 0 || n0 == 0 {
		return 0, &stats.InsufficientDataError{Op: "tree node: both treatment arms required", Need: 1, Got: 0}
	}
	return sum1/float64(n1) - sum0/float64(n0), nil
}

type splitResult struct {
	feature   int
	threshold float64
	left      []int
	right     []int
}

// bestSplit scans every feature and candidate threshold for the split
// maximizing nL·nR·(τL−τR)², the weighted between-child squared effect
// heterogeneity, subject to both children keeping minLeaf samples and both
// treatment arms.
func bestSplit(x [][]float64, tr, y []float64, idx []int, minLeaf int) (splitResult, bool) {
	var best splitResult
	bestScore := 0.0
	found := false

	nFeatures := len(x[idx[0]])
	values := make([]float64, 0, len(idx))

	for f := 0; f < nFeatures; f++ {
		values = values[:0]
		for _, i := range idx {
			values = append(values, x[i][f])
		}
		sort.Float64s(values)

		for _, threshold := range candidateThresholds(values) {
			var left, right []int
			for _, i := range idx {
				if x[i][f] <= threshold {
					left = append(left, i)
				} else {
					right = append(right, i)
				}
			}
			if len(left) < minLeaf || len(right) < minLeaf {
				continue
			}
			tauL, errL := nodeEffect(tr, y, left)
			tauR, errR := nodeEffect(tr, y, right)
			if errL != nil || errR != nil {
				continue
			}
			d := tauL - tauR
			score := float64(len(left)) * float64(len(right)) * d * d
			if score > bestScore {
				bestScore = score
				best = splitResult{feature: f, threshold: threshold, left: left, right: right}
				found = true
			}
		}
	}
	return best, found
}

// candidateThresholds returns up to maxSplitCandidates distinct midpoints
// between evenly spaced order statistics of sorted values.
func candidateThresholds(sorted []float64) []float64 {
	if len(sorted) < 2 {
		return nil
	}
	var out []float64
	step := len(sorted) / (maxSplitCandidates + 1)
	if step == 0 {
		step = 1
	}
	prev := sorted[0]
	for i := step; i < len(sorted); i += step {
		v := sorted[i]
		if v != prev {
			out = append(out, (v+prev)/2)
			prev = v
		}
	}
	return out
}
