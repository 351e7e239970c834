package epl

import (
	"math"

	"github.com/atgjack/prob"

	"github.com/samonide/epl-prediction/internal/logger"
)

const maxScorelineGoals = 6

// Scoreline is the most likely exact score for a fixture with its joint
// probability
type Scoreline struct {
	HomeGoals   int     `json:"homeGoals"`
	AwayGoals   int     `json:"awayGoals"`
	Probability float64 `json:"probability"`
	HomeLambda  float64 `json:"homeLambda"`
	AwayLambda  float64 `json:"awayLambda"`
}

// ExpectedGoals estimates each side's goal expectation from the rolling
// attack and defence averages already stamped on the match. Falls back to
// the league-typical 1.35 per side when form is unknown.
func ExpectedGoals(m *Match) (float64, float64) {
	const fallback = 1.35

	home := fallback
	if !math.IsNaN(m.HomeGoalsForAvg) && !math.IsNaN(m.AwayGoalsAgAvg) {
		home = (m.HomeGoalsForAvg + m.AwayGoalsAgAvg) / 2.0
	}
	away := fallback
	if !math.IsNaN(m.AwayGoalsForAvg) && !math.IsNaN(m.HomeGoalsAgAvg) {
		away = (m.AwayGoalsForAvg + m.HomeGoalsAgAvg) / 2.0
	}

	// Small home lift, kept separate from the classifier's home signal
	home *= 1.1
	away *= 0.9

	if home <= 0 {
		home = 0.1
	}
	if away <= 0 {
		away = 0.1
	}
	return home, away
}

// PredictScoreline returns the modal exact score for a fixture under
// independent Poisson goal counts
func PredictScoreline(m *Match) *Scoreline {
	homeLambda, awayLambda := ExpectedGoals(m)

	homeDist := prob.Poisson{Mu: homeLambda}
	awayDist := prob.Poisson{Mu: awayLambda}

	best := &Scoreline{HomeLambda: homeLambda, AwayLambda: awayLambda}
	for h := 0; h <= maxScorelineGoals; h++ {
		ph := homeDist.Pdf(float64(h))
		for a := 0; a <= maxScorelineGoals; a++ {
			p := ph * awayDist.Pdf(float64(a))
			if p > best.Probability {
				best.Probability = p
				best.HomeGoals = h
				best.AwayGoals = a
			}
		}
	}

	logger.Debug("Scoreline", m.HomeTeamName, m.AwayTeamName, best.HomeGoals, best.AwayGoals, best.Probability)
	return best
}
