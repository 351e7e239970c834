package model

import (
	"fmt"
	"math"
	"sort"
)

// Pipeline is the numeric preprocessing applied before every classifier:
// median imputation of missing values followed by standardization.
// Statistics are fitted on training rows only and reused verbatim at
// validation and inference time.
type Pipeline struct {
	Medians []float64 `json:"medians"`
	Means   []float64 `json:"means"`
	Stds    []float64 `json:"stds"`
}

// Fit computes per-column medians (ignoring NaN) and, after notional
// imputation, per-column means and standard deviations.
func (p *Pipeline) Fit(X [][]float64) error {
	if len(X) == 0 {
		return fmt.Errorf("cannot fit pipeline on empty matrix")
	}
	cols := len(X[0])
	p.Medians = make([]float64, cols)
	p.Means = make([]float64, cols)
	p.Stds = make([]float64, cols)

	for j := 0; j < cols; j++ {
		var present []float64
		for i := range X {
			if !math.IsNaN(X[i][j]) {
				present = append(present, X[i][j])
			}
		}
		p.Medians[j] = median(present)

		var sum float64
		for i := range X {
			v := X[i][j]
			if math.IsNaN(v) {
				v = p.Medians[j]
			}
			sum += v
		}
		mean := sum / float64(len(X))
		p.Means[j] = mean

		var ss float64
		for i := range X {
			v := X[i][j]
			if math.IsNaN(v) {
				v = p.Medians[j]
			}
			d := v - mean
			ss += d * d
		}
		std := math.Sqrt(ss / float64(len(X)))
		if std == 0 {
			// constant column, avoid dividing by zero
			std = 1.0
		}
		p.Stds[j] = std
	}
	return nil
}

// Transform imputes and scales a matrix without mutating the input.
func (p *Pipeline) Transform(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i := range X {
		row, err := p.TransformRow(X[i])
		if err != nil {
			return nil, err
		}
		out[i] = row
	}
	return out, nil
}

// TransformRow imputes and scales a single feature vector.
func (p *Pipeline) TransformRow(x []float64) ([]float64, error) {
	if len(x) != len(p.Medians) {
		return nil, fmt.Errorf("pipeline fitted for %d columns, got %d", len(p.Medians), len(x))
	}
	row := make([]float64, len(x))
	for j, v := range x {
		if math.IsNaN(v) {
			v = p.Medians[j]
		}
		row[j] = (v - p.Means[j]) / p.Stds[j]
	}
	return row, nil
}

// median of a slice; 0 when no values are present so that an all-missing
// column imputes to a neutral constant rather than NaN
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}
