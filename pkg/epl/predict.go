package epl

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samonide/epl-prediction/internal/logger"
	"github.com/samonide/epl-prediction/pkg/model"
)

// Prediction is one scored fixture
type Prediction struct {
	MatchID       string             `json:"matchId"`
	Season        string             `json:"season"`
	Week          int                `json:"week,omitempty"`
	UTCTime       time.Time          `json:"utcTime"`
	HomeTeam      string             `json:"homeTeam"`
	AwayTeam      string             `json:"awayTeam"`
	Outcome       string             `json:"outcome"`
	Probabilities map[string]float64 `json:"probabilities"`
	ModelType     string             `json:"modelType"`
	MarketBlended bool               `json:"marketBlended"`
	Scoreline     *Scoreline         `json:"scoreline,omitempty"`
	Synthetic     bool               `json:"synthetic,omitempty"`
}

// PredictFixtures scores the upcoming fixtures: unplayed matches dated
// today or later, in chronological order, capped at top. Features that
// are unknowable for a future fixture stay NaN after the feature pass and
// are filled with the dataset's column means before scoring; this is an
// approximation of the training-time imputation, carried over from how
// the system has always scored fixtures.
func PredictFixtures(ds *Dataset, bundle *model.Bundle, top int, now time.Time) ([]*Prediction, error) {
	if top <= 0 {
		top = Config.DefaultTopFixtures
	}
	today := now.UTC().Truncate(24 * time.Hour)
	means := ColumnMeans(ds.Matches)

	var upcoming []*Match
	for _, m := range ds.Matches {
		if m.Played() {
			continue
		}
		if m.HasDate && m.UTCTime.Before(today) {
			continue
		}
		upcoming = append(upcoming, m)
	}
	SortMatches(upcoming)
	if len(upcoming) > top {
		upcoming = upcoming[:top]
	}
	if len(upcoming) == 0 {
		logger.Warn("No upcoming fixtures to predict")
		return nil, nil
	}

	var predictions []*Prediction
	for _, m := range upcoming {
		p, err := predictMatch(m, bundle, means)
		if err != nil {
			logger.Warn("Skipping fixture", m.ID, err)
			continue
		}
		predictions = append(predictions, p)
	}
	return predictions, nil
}

// PredictSingleMatch scores one requested pairing. The fixture lookup
// tries the requested orientation in the upcoming fixtures, then the
// reverse orientation, then any unlabeled fixture between the pair
// regardless of date, then synthesizes a fixture a configured number of
// days ahead. The synthetic path clones the whole dataset and reruns the
// feature pass on the clone, so the real dataset and anything persisted
// from it never see the synthetic row.
func PredictSingleMatch(ds *Dataset, bundle *model.Bundle, homeInput, awayInput string, now time.Time) (*Prediction, error) {
	home, err := ResolveTeam(homeInput, ds.Teams)
	if err != nil {
		return nil, err
	}
	away, err := ResolveTeam(awayInput, ds.Teams)
	if err != nil {
		return nil, err
	}
	if home.ID == away.ID {
		return nil, fmt.Errorf("%s cannot play itself", home.Name)
	}

	today := now.UTC().Truncate(24 * time.Hour)
	means := ColumnMeans(ds.Matches)

	if m := findUpcoming(ds.Matches, home.ID, away.ID, today); m != nil {
		return predictMatch(m, bundle, means)
	}
	if m := findUpcoming(ds.Matches, away.ID, home.ID, today); m != nil {
		logger.Info("Using the reverse fixture", away.Name, "vs", home.Name)
		return predictMatch(m, bundle, means)
	}
	if m := findUnplayed(ds.Matches, home.ID, away.ID); m != nil {
		logger.Info("Using an unresolved past fixture", home.Name, "vs", away.Name)
		return predictMatch(m, bundle, means)
	}
	if m := findUnplayed(ds.Matches, away.ID, home.ID); m != nil {
		logger.Info("Using an unresolved past fixture", away.Name, "vs", home.Name)
		return predictMatch(m, bundle, means)
	}

	logger.Info("No scheduled fixture found, synthesizing one", home.Name, "vs", away.Name)
	synthetic := NewMatch(home.Name, away.Name)
	synthetic.HomeID, synthetic.AwayID = home.ID, away.ID
	synthetic.Season = latestSeason(ds.Matches)
	synthetic.UTCTime = today.AddDate(0, 0, Config.SyntheticLeadDays)
	synthetic.HasDate = true
	synthetic.ID = MatchID(synthetic.Season, synthetic.Week, home.ID, away.ID)

	clone := ds.CloneMatches()
	clone = append(clone, synthetic)
	cloneDs, err := BuildDataset(clone)
	if err != nil {
		return nil, err
	}

	var target *Match
	for _, m := range cloneDs.Matches {
		if m.ID == synthetic.ID && !m.Played() {
			target = m
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("synthetic fixture lost during feature rebuild")
	}

	p, err := predictMatch(target, bundle, ColumnMeans(cloneDs.Matches))
	if err != nil {
		return nil, err
	}
	p.Synthetic = true
	return p, nil
}

func findUpcoming(matches []*Match, homeID, awayID string, today time.Time) *Match {
	for _, m := range matches {
		if m.Played() || m.HomeID != homeID || m.AwayID != awayID {
			continue
		}
		if m.HasDate && m.UTCTime.Before(today) {
			continue
		}
		return m
	}
	return nil
}

// findUnplayed returns the first fixture between the pair that never got
// a result, however old its scheduled date is
func findUnplayed(matches []*Match, homeID, awayID string) *Match {
	for _, m := range matches {
		if !m.Played() && m.HomeID == homeID && m.AwayID == awayID {
			return m
		}
	}
	return nil
}

func latestSeason(matches []*Match) string {
	best := ""
	for _, m := range matches {
		if m.Season != "" && SeasonFirstYear(m.Season) > SeasonFirstYear(best) {
			best = m.Season
		}
	}
	return best
}

// predictMatch scores one match row, blending in market odds when the row
// carries them
func predictMatch(m *Match, bundle *model.Bundle, means []float64) (*Prediction, error) {
	row, err := m.FeatureVector(bundle.FeatureColumns)
	if err != nil {
		return nil, err
	}
	for i, v := range row {
		if math.IsNaN(v) && i < len(means) {
			row[i] = means[i]
		}
	}

	probs, err := bundle.PredictProba(row)
	if err != nil {
		return nil, err
	}

	byClass := map[string]float64{}
	for i, c := range bundle.Classes {
		byClass[c] = probs[i]
	}

	blended := false
	if market, ok := marketProbabilities(m); ok {
		w := Config.OddsModelWeight
		for c := range byClass {
			byClass[c] = w*byClass[c] + (1-w)*market[c]
		}
		blended = true
	}

	outcome := ""
	best := math.Inf(-1)
	for _, c := range bundle.Classes {
		if byClass[c] > best {
			best = byClass[c]
			outcome = c
		}
	}

	m.PredictedOutcome = outcome
	m.HomeWinProb = byClass["H"]
	m.DrawProb = byClass["D"]
	m.AwayWinProb = byClass["A"]

	var score *Scoreline
	if !m.Played() {
		score = PredictScoreline(m)
	}

	return &Prediction{
		MatchID:       m.ID,
		Season:        m.Season,
		Week:          m.Week,
		UTCTime:       m.UTCTime,
		HomeTeam:      m.HomeTeamName,
		AwayTeam:      m.AwayTeamName,
		Outcome:       outcome,
		Probabilities: byClass,
		ModelType:     bundle.ModelType,
		MarketBlended: blended,
		Scoreline:     score,
	}, nil
}

// marketProbabilities converts the row's average odds into an implied
// probability distribution, stripping the overround
func marketProbabilities(m *Match) (map[string]float64, bool) {
	if m.HomeOdds <= 1.0 || m.DrawOdds <= 1.0 || m.AwayOdds <= 1.0 {
		return nil, false
	}
	h, d, a := 1.0/m.HomeOdds, 1.0/m.DrawOdds, 1.0/m.AwayOdds
	total := h + d + a
	return map[string]float64{"H": h / total, "D": d / total, "A": a / total}, true
}

// LoadOrTrainBundle loads the persisted bundle, retraining from scratch
// when no bundle exists or the persisted one cannot serve this dataset
func LoadOrTrainBundle(ds *Dataset) (*model.Bundle, error) {
	bundle, err := model.LoadBundle(Config.BundlePath)
	if err == nil {
		return bundle, nil
	}

	var incompatible *ModelIncompatibilityError
	if !errors.As(err, &incompatible) {
		return nil, err
	}
	logger.Warn("Stored model unusable, retraining", incompatible.Reason)

	return TrainAndSave(ds)
}

// TrainAndSave runs a full training pass over the dataset and persists
// the winning bundle
func TrainAndSave(ds *Dataset) (*model.Bundle, error) {
	ts, err := BuildTrainingSet(ds.Matches)
	if err != nil {
		return nil, err
	}
	result, err := model.Train(ts, trainOptions())
	if err != nil {
		return nil, err
	}
	if err := result.Bundle.Save(Config.BundlePath); err != nil {
		return nil, err
	}
	return result.Bundle, nil
}

func trainOptions() model.TrainOptions {
	return model.TrainOptions{
		ForestTrees:           Config.ForestTrees,
		ForestMaxDepth:        Config.ForestMaxDepth,
		ForestMinSamplesSplit: Config.ForestMinSamplesSplit,
		ForestMinSamplesLeaf:  Config.ForestMinSamplesLeaf,
		ForestSeed:            Config.ForestSeed,
		LogisticMaxIter:       Config.LogisticMaxIter,
		LogisticC:             Config.LogisticC,
		HoldoutFraction:       Config.HoldoutFraction,
	}
}

// EvaluateBundle replays the bundle over every played match and reports
// hit rate and per-class tallies
func EvaluateBundle(ds *Dataset, bundle *model.Bundle) (float64, map[string]int, error) {
	means := ColumnMeans(ds.Matches)

	correct, total := 0, 0
	perOutcome := map[string]int{}

	for _, m := range ds.Matches {
		if !m.Played() {
			continue
		}
		p, err := predictMatch(m, bundle, means)
		if err != nil {
			return 0, nil, err
		}
		total++
		if p.Outcome == m.Outcome() {
			correct++
			perOutcome[p.Outcome]++
		}
	}

	if total == 0 {
		return 0, nil, &DataInsufficiencyError{Reason: "no played matches to evaluate against"}
	}

	accuracy := float64(correct) / float64(total)
	logger.Highlight("Historical accuracy", accuracy, "over", total, "matches")
	return accuracy, perOutcome, nil
}

// SortPredictions orders predictions chronologically for display
func SortPredictions(predictions []*Prediction) {
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].UTCTime.Before(predictions[j].UTCTime)
	})
}
