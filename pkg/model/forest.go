package model

import (
	"fmt"
	"math"
	"math/rand"
)

// RandomForest is a bagged ensemble of CART trees with per-node random
// feature subsets. The seed fixes bootstrap and feature sampling so two
// fits on the same data produce the same forest.
type RandomForest struct {
	Trees           []*TreeNode `json:"trees"`
	NClasses        int         `json:"nClasses"`
	NEstimators     int         `json:"nEstimators"`
	MaxDepth        int         `json:"maxDepth"`
	MinSamplesSplit int         `json:"minSamplesSplit"`
	MinSamplesLeaf  int         `json:"minSamplesLeaf"`
	Seed            int64       `json:"seed"`
}

// NewRandomForest returns an untrained forest
func NewRandomForest(nEstimators, maxDepth, minSamplesSplit, minSamplesLeaf int, seed int64) *RandomForest {
	return &RandomForest{
		NEstimators:     nEstimators,
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		MinSamplesLeaf:  minSamplesLeaf,
		Seed:            seed,
	}
}

func (rf *RandomForest) Name() string {
	return "RandomForest"
}

// Fit grows NEstimators trees on bootstrap samples of the training rows
func (rf *RandomForest) Fit(X [][]float64, y []int, nClasses int) error {
	if len(X) == 0 || len(X) != len(y) {
		return &FitError{ModelType: rf.Name(), Err: fmt.Errorf("bad training shape: %d rows, %d labels", len(X), len(y))}
	}
	rf.NClasses = nClasses

	nFeatures := len(X[0])
	maxFeatures := int(math.Sqrt(float64(nFeatures)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	rng := rand.New(rand.NewSource(rf.Seed))
	n := len(X)

	rf.Trees = make([]*TreeNode, 0, rf.NEstimators)
	for t := 0; t < rf.NEstimators; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}

		builder := &treeBuilder{
			X:               X,
			y:               y,
			nClasses:        nClasses,
			maxDepth:        rf.MaxDepth,
			minSamplesSplit: rf.MinSamplesSplit,
			minSamplesLeaf:  rf.MinSamplesLeaf,
			maxFeatures:     maxFeatures,
			rng:             rng,
		}
		rf.Trees = append(rf.Trees, builder.build(sample, 0))
	}

	return nil
}

// PredictProba averages the leaf distributions of every tree
func (rf *RandomForest) PredictProba(x []float64) []float64 {
	probs := make([]float64, rf.NClasses)
	for _, tree := range rf.Trees {
		leaf := tree.predict(x)
		for k := range probs {
			probs[k] += leaf[k]
		}
	}
	total := 0.0
	for k := range probs {
		probs[k] /= float64(len(rf.Trees))
		total += probs[k]
	}
	// an empty bootstrap leaf leaves the average short of 1
	if total > 0 && math.Abs(total-1.0) > 1e-9 {
		for k := range probs {
			probs[k] /= total
		}
	}
	return probs
}
