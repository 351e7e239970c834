package model

import (
	"fmt"
	"math"
)

// LogisticRegression is a multinomial (softmax) classifier fitted by
// batch gradient descent with L2 regularization. Weights are initialized
// to zero so training is fully deterministic.
type LogisticRegression struct {
	// Weights is nClasses x (nFeatures + 1); the last column is the bias.
	Weights  [][]float64 `json:"weights"`
	NClasses int         `json:"nClasses"`
	MaxIter  int         `json:"maxIter"`
	C        float64     `json:"c"`
}

// NewLogisticRegression returns an untrained classifier
func NewLogisticRegression(maxIter int, c float64) *LogisticRegression {
	return &LogisticRegression{MaxIter: maxIter, C: c}
}

func (lr *LogisticRegression) Name() string {
	return "LogisticRegression"
}

// Fit trains the softmax weights on preprocessed (imputed, scaled) rows.
// y holds class indices in [0, nClasses).
func (lr *LogisticRegression) Fit(X [][]float64, y []int, nClasses int) error {
	if len(X) == 0 || len(X) != len(y) {
		return &FitError{ModelType: lr.Name(), Err: fmt.Errorf("bad training shape: %d rows, %d labels", len(X), len(y))}
	}
	nFeatures := len(X[0])
	lr.NClasses = nClasses
	lr.Weights = make([][]float64, nClasses)
	for k := range lr.Weights {
		lr.Weights[k] = make([]float64, nFeatures+1)
	}

	n := float64(len(X))
	lambda := 1.0 / (lr.C * n)
	learningRate := 0.5

	for iter := 0; iter < lr.MaxIter; iter++ {
		grad := make([][]float64, nClasses)
		for k := range grad {
			grad[k] = make([]float64, nFeatures+1)
		}

		for i := range X {
			probs := lr.scoreRow(X[i])
			for k := 0; k < nClasses; k++ {
				diff := probs[k]
				if y[i] == k {
					diff -= 1.0
				}
				for j := 0; j < nFeatures; j++ {
					grad[k][j] += diff * X[i][j]
				}
				grad[k][nFeatures] += diff
			}
		}

		for k := 0; k < nClasses; k++ {
			for j := 0; j <= nFeatures; j++ {
				g := grad[k][j] / n
				if j < nFeatures {
					g += lambda * lr.Weights[k][j]
				}
				lr.Weights[k][j] -= learningRate * g
				if math.IsNaN(lr.Weights[k][j]) || math.IsInf(lr.Weights[k][j], 0) {
					return &FitError{ModelType: lr.Name(), Err: fmt.Errorf("weights diverged at iteration %d", iter)}
				}
			}
		}

		// mild decay keeps late iterations from oscillating
		if iter > 0 && iter%100 == 0 {
			learningRate *= 0.5
		}
	}

	return nil
}

// PredictProba returns the softmax distribution for one preprocessed row
func (lr *LogisticRegression) PredictProba(x []float64) []float64 {
	return lr.scoreRow(x)
}

func (lr *LogisticRegression) scoreRow(x []float64) []float64 {
	nFeatures := len(x)
	logits := make([]float64, lr.NClasses)
	maxLogit := math.Inf(-1)
	for k := 0; k < lr.NClasses; k++ {
		z := lr.Weights[k][nFeatures] // bias
		for j := 0; j < nFeatures; j++ {
			z += lr.Weights[k][j] * x[j]
		}
		logits[k] = z
		if z > maxLogit {
			maxLogit = z
		}
	}

	// softmax with max subtraction for numerical stability
	var sum float64
	probs := make([]float64, lr.NClasses)
	for k := range logits {
		probs[k] = math.Exp(logits[k] - maxLogit)
		sum += probs[k]
	}
	for k := range probs {
		probs[k] /= sum
	}
	return probs
}
