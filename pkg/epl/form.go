package epl

import (
	"time"
)

// appearance is one played match from a single team's perspective
type appearance struct {
	pts float64
	gd  float64
	gf  float64
	ga  float64
}

type teamFormState struct {
	recent   []appearance
	homePts  []float64
	awayPts  []float64
	lastDate time.Time
	hasDate  bool
}

func (s *teamFormState) push(list []float64, v float64, window int) []float64 {
	list = append(list, v)
	if len(list) > window {
		list = list[len(list)-window:]
	}
	return list
}

func (s *teamFormState) record(a appearance, home bool, window int) {
	s.recent = append(s.recent, a)
	if len(s.recent) > window {
		s.recent = s.recent[len(s.recent)-window:]
	}
	if home {
		s.homePts = s.push(s.homePts, a.pts, window)
	} else {
		s.awayPts = s.push(s.awayPts, a.pts, window)
	}
}

func meanPts(recent []appearance) float64 {
	total := 0.0
	for _, a := range recent {
		total += a.pts
	}
	return total / float64(len(recent))
}

func meanGd(recent []appearance) float64 {
	total := 0.0
	for _, a := range recent {
		total += a.gd
	}
	return total / float64(len(recent))
}

func meanGf(recent []appearance) float64 {
	total := 0.0
	for _, a := range recent {
		total += a.gf
	}
	return total / float64(len(recent))
}

func meanGa(recent []appearance) float64 {
	total := 0.0
	for _, a := range recent {
		total += a.ga
	}
	return total / float64(len(recent))
}

func mean(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// ApplyFormFeatures stamps every match with each side's recent form over
// the trailing window. A match's own result never feeds its own features:
// both sides are stamped from history first, then the result is recorded.
// Form windows advance only on played matches; the rest-day clock advances
// on any dated appearance. Matches must already be in chronological order.
func ApplyFormFeatures(matches []*Match, window int) {
	// State is keyed by team id so renamed clubs keep their form stream
	states := map[string]*teamFormState{}
	state := func(teamID string) *teamFormState {
		s, ok := states[teamID]
		if !ok {
			s = &teamFormState{}
			states[teamID] = s
		}
		return s
	}

	for _, m := range matches {
		hs := state(m.HomeID)
		as := state(m.AwayID)

		if len(hs.recent) > 0 {
			m.HomeFormPts = meanPts(hs.recent)
			m.HomeFormGd = meanGd(hs.recent)
			m.HomeGoalsForAvg = meanGf(hs.recent)
			m.HomeGoalsAgAvg = meanGa(hs.recent)
		}
		if len(as.recent) > 0 {
			m.AwayFormPts = meanPts(as.recent)
			m.AwayFormGd = meanGd(as.recent)
			m.AwayGoalsForAvg = meanGf(as.recent)
			m.AwayGoalsAgAvg = meanGa(as.recent)
		}

		if len(hs.homePts) > 0 {
			m.HomeHomePpg = mean(hs.homePts)
		}
		if len(as.awayPts) > 0 {
			m.AwayAwayPpg = mean(as.awayPts)
		}

		if m.HasDate {
			if hs.hasDate {
				m.HomeRestDays = m.UTCTime.Sub(hs.lastDate).Hours() / 24.0
			}
			if as.hasDate {
				m.AwayRestDays = m.UTCTime.Sub(as.lastDate).Hours() / 24.0
			}
		}

		if m.Played() {
			gd := float64(m.HomeGoals - m.AwayGoals)
			hs.record(appearance{
				pts: m.HomePoints(),
				gd:  gd,
				gf:  float64(m.HomeGoals),
				ga:  float64(m.AwayGoals),
			}, true, window)
			as.record(appearance{
				pts: m.AwayPoints(),
				gd:  -gd,
				gf:  float64(m.AwayGoals),
				ga:  float64(m.HomeGoals),
			}, false, window)
		}

		if m.HasDate {
			hs.lastDate, hs.hasDate = m.UTCTime, true
			as.lastDate, as.hasDate = m.UTCTime, true
		}
	}
}
