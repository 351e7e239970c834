package epl

import (
	"fmt"

	"github.com/samonide/epl-prediction/internal/logger"
	"github.com/samonide/epl-prediction/pkg/model"
)

// FeatureColumns is the fixed feature order. Training records this list
// in the bundle and inference replays it, so the order must never change
// between a training run and the predictions served from its bundle.
var FeatureColumns = []string{
	"elo_diff",
	"home_ppg_last5",
	"away_ppg_last5",
	"home_gd_avg_last5",
	"away_gd_avg_last5",
	"home_gf_avg_last5",
	"home_ga_avg_last5",
	"away_gf_avg_last5",
	"away_ga_avg_last5",
	"home_home_ppg_last5",
	"away_away_ppg_last5",
	"h2h_home_ppg_last5",
	"strength_differential",
	"xg_differential",
	"home_rest_days",
	"away_rest_days",
}

// BuildTrainingSet assembles the flat matrix from every played match.
// Rows keep the chronological order of the input so the season split in
// the trainer sees them in time order.
func BuildTrainingSet(matches []*Match) (*model.TrainingSet, error) {
	ts := &model.TrainingSet{Columns: FeatureColumns}

	classes := map[string]bool{}
	for _, m := range matches {
		if !m.Played() {
			continue
		}
		row, err := m.FeatureVector(FeatureColumns)
		if err != nil {
			return nil, err
		}
		outcome := m.Outcome()
		ts.Features = append(ts.Features, row)
		ts.Labels = append(ts.Labels, outcome)
		ts.Seasons = append(ts.Seasons, m.Season)
		classes[outcome] = true
	}

	if len(ts.Features) == 0 {
		return nil, &DataInsufficiencyError{Reason: "no played matches to train on"}
	}
	if len(classes) < 2 {
		return nil, &DataInsufficiencyError{Reason: fmt.Sprintf("played matches cover %d outcome class, need at least 2", len(classes))}
	}

	logger.Info("Built training matrix", len(ts.Features), "rows", len(FeatureColumns), "columns")
	return ts, nil
}

// ColumnMeans returns the per-column mean over played matches, ignoring
// NaN entries. Inference uses these to fill features that are unknowable
// for future fixtures.
func ColumnMeans(matches []*Match) []float64 {
	sums := make([]float64, len(FeatureColumns))
	counts := make([]int, len(FeatureColumns))

	for _, m := range matches {
		if !m.Played() {
			continue
		}
		for i, col := range FeatureColumns {
			v, err := m.Feature(col)
			if err != nil || v != v {
				continue
			}
			sums[i] += v
			counts[i]++
		}
	}

	means := make([]float64, len(FeatureColumns))
	for i := range means {
		if counts[i] > 0 {
			means[i] = sums[i] / float64(counts[i])
		}
	}
	return means
}
