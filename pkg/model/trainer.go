package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samonide/epl-prediction/internal/logger"
)

// TrainingSet is the flat matrix produced by the feature builder. Rows are
// matches in chronological order; Seasons[i] tags row i with its season so
// the split can hold out whole seasons.
type TrainingSet struct {
	Columns  []string
	Features [][]float64
	Labels   []string
	Seasons  []string
}

// TrainOptions carries the hyperparameters for both candidate models
type TrainOptions struct {
	ForestTrees           int
	ForestMaxDepth        int
	ForestMinSamplesSplit int
	ForestMinSamplesLeaf  int
	ForestSeed            int64
	LogisticMaxIter       int
	LogisticC             float64
	HoldoutFraction       float64
}

// DefaultTrainOptions returns the standard hyperparameters
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		ForestTrees:           200,
		ForestMaxDepth:        10,
		ForestMinSamplesSplit: 5,
		ForestMinSamplesLeaf:  2,
		ForestSeed:            42,
		LogisticMaxIter:       400,
		LogisticC:             1.0,
		HoldoutFraction:       0.2,
	}
}

// TrainResult reports the winning candidate and its validation metrics
type TrainResult struct {
	Bundle     *Bundle
	ModelType  string
	Accuracy   float64
	LogLoss    float64
	ValSamples int
}

type candidate struct {
	clf      Classifier
	accuracy float64
	logLoss  float64
}

// Train fits both candidate classifiers on a season-aware split, evaluates
// them on the held-out rows, and returns a bundle for the winner. Higher
// accuracy wins, log-loss breaks ties, the earlier candidate breaks a
// remaining tie.
func Train(ts *TrainingSet, opts TrainOptions) (*TrainResult, error) {
	n := len(ts.Features)
	if n < 2 {
		return nil, &DataInsufficiencyError{Reason: fmt.Sprintf("%d usable matches, need at least 2 to split train and validation", n)}
	}

	classes := uniqueSorted(ts.Labels)
	if len(classes) < 2 {
		return nil, &DataInsufficiencyError{Reason: fmt.Sprintf("training data contains %d outcome class, need at least 2", len(classes))}
	}
	classIndex := make(map[string]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}
	y := make([]int, n)
	for i, label := range ts.Labels {
		y[i] = classIndex[label]
	}

	trainIdx, valIdx := splitBySeason(ts.Seasons, opts.HoldoutFraction)
	logger.Info("Training split", len(trainIdx), "train rows", len(valIdx), "validation rows")

	pipe := &Pipeline{}
	rawTrain := take(ts.Features, trainIdx)
	if err := pipe.Fit(rawTrain); err != nil {
		return nil, err
	}
	trainX, err := pipe.Transform(rawTrain)
	if err != nil {
		return nil, err
	}
	valX, err := pipe.Transform(take(ts.Features, valIdx))
	if err != nil {
		return nil, err
	}
	trainY := takeInts(y, trainIdx)
	valY := takeInts(y, valIdx)

	candidates := []Classifier{
		NewRandomForest(opts.ForestTrees, opts.ForestMaxDepth, opts.ForestMinSamplesSplit, opts.ForestMinSamplesLeaf, opts.ForestSeed),
		NewLogisticRegression(opts.LogisticMaxIter, opts.LogisticC),
	}

	var results []candidate
	for _, clf := range candidates {
		if err := clf.Fit(trainX, trainY, len(classes)); err != nil {
			return nil, err
		}
		probs := make([][]float64, len(valX))
		preds := make([]int, len(valX))
		for i, row := range valX {
			probs[i] = clf.PredictProba(row)
			preds[i] = ArgMax(probs[i])
		}
		acc := Accuracy(valY, preds)
		ll := LogLoss(valY, probs)
		logger.Info("Candidate evaluated", clf.Name(), "accuracy", acc, "logLoss", ll)
		results = append(results, candidate{clf: clf, accuracy: acc, logLoss: ll})
	}

	best := results[0]
	for _, c := range results[1:] {
		if c.accuracy > best.accuracy || (c.accuracy == best.accuracy && c.logLoss < best.logLoss) {
			best = c
		}
	}

	bundle, err := newBundle(best.clf, pipe, ts.Columns, classes, best.accuracy, best.logLoss, len(valIdx))
	if err != nil {
		return nil, err
	}
	logger.Highlight("Selected model", best.clf.Name(), "accuracy", best.accuracy, "logLoss", best.logLoss)

	return &TrainResult{
		Bundle:     bundle,
		ModelType:  best.clf.Name(),
		Accuracy:   best.accuracy,
		LogLoss:    best.logLoss,
		ValSamples: len(valIdx),
	}, nil
}

// splitBySeason holds out every row of the most recent season when the set
// spans at least two seasons. Otherwise it falls back to a chronological
// fraction split with at least one row on each side.
func splitBySeason(seasons []string, holdout float64) (trainIdx, valIdx []int) {
	distinct := uniqueSorted(seasons)
	var named []string
	for _, s := range distinct {
		if s != "" {
			named = append(named, s)
		}
	}
	if len(named) >= 2 {
		sort.Slice(named, func(i, j int) bool {
			return seasonFirstYear(named[i]) < seasonFirstYear(named[j])
		})
		last := named[len(named)-1]
		for i, s := range seasons {
			if s == last {
				valIdx = append(valIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}
		if len(trainIdx) > 0 && len(valIdx) > 0 {
			return trainIdx, valIdx
		}
		trainIdx, valIdx = nil, nil
	}

	n := len(seasons)
	cut := n - int(float64(n)*holdout)
	if cut >= n {
		cut = n - 1
	}
	if cut < 1 {
		cut = 1
	}
	for i := 0; i < n; i++ {
		if i < cut {
			trainIdx = append(trainIdx, i)
		} else {
			valIdx = append(valIdx, i)
		}
	}
	return trainIdx, valIdx
}

// seasonFirstYear orders season strings like "2023-2024" by their opening
// year, pushing unparseable values first
func seasonFirstYear(season string) int {
	head, _, _ := strings.Cut(season, "-")
	year, err := strconv.Atoi(head)
	if err != nil {
		return 0
	}
	return year
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func take(rows [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

func takeInts(values []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
