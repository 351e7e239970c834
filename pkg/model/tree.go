package model

import (
	"math"
	"math/rand"
	"sort"
)

// TreeNode is one node of a CART decision tree. Leaf nodes carry a class
// probability distribution; internal nodes split on Feature <= Threshold.
type TreeNode struct {
	Feature   int         `json:"feature"`
	Threshold float64     `json:"threshold"`
	Left      *TreeNode   `json:"left,omitempty"`
	Right     *TreeNode   `json:"right,omitempty"`
	Probs     []float64   `json:"probs,omitempty"`
}

func (n *TreeNode) isLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// predict walks the tree and returns the leaf distribution
func (n *TreeNode) predict(x []float64) []float64 {
	node := n
	for !node.isLeaf() {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Probs
}

type treeBuilder struct {
	X               [][]float64
	y               []int
	nClasses        int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int
	rng             *rand.Rand
}

func (b *treeBuilder) build(indices []int, depth int) *TreeNode {
	if depth >= b.maxDepth || len(indices) < b.minSamplesSplit || b.pure(indices) {
		return b.leaf(indices)
	}

	feature, threshold, ok := b.bestSplit(indices)
	if !ok {
		return b.leaf(indices)
	}

	var left, right []int
	for _, i := range indices {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < b.minSamplesLeaf || len(right) < b.minSamplesLeaf {
		return b.leaf(indices)
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
	}
}

func (b *treeBuilder) leaf(indices []int) *TreeNode {
	probs := make([]float64, b.nClasses)
	for _, i := range indices {
		probs[b.y[i]]++
	}
	total := float64(len(indices))
	if total > 0 {
		for k := range probs {
			probs[k] /= total
		}
	}
	return &TreeNode{Feature: -1, Probs: probs}
}

func (b *treeBuilder) pure(indices []int) bool {
	if len(indices) == 0 {
		return true
	}
	first := b.y[indices[0]]
	for _, i := range indices[1:] {
		if b.y[i] != first {
			return false
		}
	}
	return true
}

// bestSplit searches a random feature subset for the gini-optimal
// threshold among midpoints of adjacent distinct values
func (b *treeBuilder) bestSplit(indices []int) (int, float64, bool) {
	nFeatures := len(b.X[0])
	candidates := b.rng.Perm(nFeatures)[:b.maxFeatures]
	sort.Ints(candidates) // keep evaluation order independent of the permutation

	bestGini := math.Inf(1)
	bestFeature := -1
	bestThreshold := 0.0

	for _, f := range candidates {
		values := make([]float64, 0, len(indices))
		for _, i := range indices {
			values = append(values, b.X[i][f])
		}
		sort.Float64s(values)

		for v := 1; v < len(values); v++ {
			if values[v] == values[v-1] {
				continue
			}
			threshold := (values[v] + values[v-1]) / 2.0

			leftCounts := make([]float64, b.nClasses)
			rightCounts := make([]float64, b.nClasses)
			var nLeft, nRight float64
			for _, i := range indices {
				if b.X[i][f] <= threshold {
					leftCounts[b.y[i]]++
					nLeft++
				} else {
					rightCounts[b.y[i]]++
					nRight++
				}
			}
			if nLeft == 0 || nRight == 0 {
				continue
			}

			gini := (nLeft*giniImpurity(leftCounts, nLeft) + nRight*giniImpurity(rightCounts, nRight)) / (nLeft + nRight)
			if gini < bestGini {
				bestGini = gini
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func giniImpurity(counts []float64, total float64) float64 {
	g := 1.0
	for _, c := range counts {
		p := c / total
		g -= p * p
	}
	return g
}
