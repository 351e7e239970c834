package model

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separableSet builds a toy set where the first feature alone decides the
// label, across the given seasons
func separableSet(seasons []string, perSeason int) *TrainingSet {
	ts := &TrainingSet{Columns: []string{"f0", "f1"}}
	for _, season := range seasons {
		for i := 0; i < perSeason; i++ {
			v := float64(i%2)*10.0 - 5.0
			label := "H"
			if v < 0 {
				label = "A"
			}
			ts.Features = append(ts.Features, []float64{v, float64(i)})
			ts.Labels = append(ts.Labels, label)
			ts.Seasons = append(ts.Seasons, season)
		}
	}
	return ts
}

func TestTrainSelectsAModelOnSeparableData(t *testing.T) {
	ts := separableSet([]string{"2022-2023", "2023-2024"}, 40)

	opts := DefaultTrainOptions()
	opts.ForestTrees = 20

	result, err := Train(ts, opts)
	require.NoError(t, err)

	assert.NotNil(t, result.Bundle)
	assert.Contains(t, []string{"RandomForest", "LogisticRegression"}, result.ModelType)
	assert.Greater(t, result.Accuracy, 0.9)
	assert.Equal(t, 40, result.ValSamples)
	assert.Equal(t, []string{"A", "H"}, result.Bundle.Classes)
}

func TestTrainIsDeterministic(t *testing.T) {
	ts := separableSet([]string{"2022-2023", "2023-2024"}, 30)
	opts := DefaultTrainOptions()
	opts.ForestTrees = 10

	a, err := Train(ts, opts)
	require.NoError(t, err)
	b, err := Train(ts, opts)
	require.NoError(t, err)

	assert.Equal(t, a.ModelType, b.ModelType)
	assert.Equal(t, a.Accuracy, b.Accuracy)
	assert.Equal(t, a.LogLoss, b.LogLoss)

	row := []float64{4.0, 1.0}
	pa, err := a.Bundle.PredictProba(row)
	require.NoError(t, err)
	pb, err := b.Bundle.PredictProba(row)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}

func TestTrainRejectsTooFewSamples(t *testing.T) {
	ts := &TrainingSet{
		Columns:  []string{"f0"},
		Features: [][]float64{{1.0}},
		Labels:   []string{"H"},
		Seasons:  []string{"2023-2024"},
	}

	_, err := Train(ts, DefaultTrainOptions())
	var insufficient *DataInsufficiencyError
	assert.ErrorAs(t, err, &insufficient)
}

func TestTrainRejectsSingleClass(t *testing.T) {
	ts := &TrainingSet{Columns: []string{"f0"}}
	for i := 0; i < 10; i++ {
		ts.Features = append(ts.Features, []float64{float64(i)})
		ts.Labels = append(ts.Labels, "H")
		ts.Seasons = append(ts.Seasons, "2023-2024")
	}

	_, err := Train(ts, DefaultTrainOptions())
	var insufficient *DataInsufficiencyError
	assert.ErrorAs(t, err, &insufficient)
}

func TestSplitBySeasonHoldsOutMostRecent(t *testing.T) {
	seasons := []string{
		"2021-2022", "2021-2022", "2021-2022",
		"2022-2023", "2022-2023",
		"2023-2024", "2023-2024",
	}

	trainIdx, valIdx := splitBySeason(seasons, 0.2)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, trainIdx)
	assert.Equal(t, []int{5, 6}, valIdx)
}

func TestSplitBySeasonFallsBackToChronologicalFraction(t *testing.T) {
	seasons := make([]string, 10)
	for i := range seasons {
		seasons[i] = "2023-2024"
	}

	trainIdx, valIdx := splitBySeason(seasons, 0.2)
	assert.Len(t, trainIdx, 8)
	assert.Len(t, valIdx, 2)
	// Validation rows are the chronological tail
	assert.Equal(t, []int{8, 9}, valIdx)
}

func TestSplitBySeasonOrdersByOpeningYearNotLexicographically(t *testing.T) {
	seasons := []string{"2009-2010", "2010-2011", "999-1000"}
	trainIdx, valIdx := splitBySeason(seasons, 0.2)
	// "2010-2011" is the latest opening year despite sorting after "999..."
	assert.Equal(t, []int{1}, valIdx)
	assert.Equal(t, []int{0, 2}, trainIdx)
}

func TestTrainHandlesNaNFeatures(t *testing.T) {
	ts := separableSet([]string{"2022-2023", "2023-2024"}, 30)
	for i := range ts.Features {
		if i%5 == 0 {
			ts.Features[i][1] = math.NaN()
		}
	}

	opts := DefaultTrainOptions()
	opts.ForestTrees = 10
	result, err := Train(ts, opts)
	require.NoError(t, err)

	probs, err := result.Bundle.PredictProba([]float64{3.0, math.NaN()})
	require.NoError(t, err)

	sum := 0.0
	for _, p := range probs {
		require.False(t, math.IsNaN(p), fmt.Sprintf("NaN probability in %v", probs))
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}
