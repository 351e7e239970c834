package model

import "math"

// Accuracy returns the fraction of predictions matching the true labels
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0.0
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

// LogLoss returns the mean negative log-likelihood of the true labels
// under the predicted distributions, with probabilities clipped away
// from 0 and 1.
func LogLoss(yTrue []int, probs [][]float64) float64 {
	if len(yTrue) == 0 {
		return 0.0
	}
	const eps = 1e-15
	var total float64
	for i := range yTrue {
		p := probs[i][yTrue[i]]
		if p < eps {
			p = eps
		} else if p > 1-eps {
			p = 1 - eps
		}
		total -= math.Log(p)
	}
	return total / float64(len(yTrue))
}

// ArgMax returns the index of the largest value, preferring the earliest
// on ties so results do not depend on float noise
func ArgMax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
