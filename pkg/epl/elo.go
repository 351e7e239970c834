package epl

import "math"

// EloRatings tracks team ratings over a chronological pass of the match
// list. Every team starts at the configured initial rating. The home
// advantage enters the expectation only, never the stored ratings, and
// each update moves both teams by the same amount in opposite directions.
type EloRatings struct {
	ratings map[string]float64
	k       float64
	homeAdv float64
	initial float64
}

// NewEloRatings builds an empty rating table from the global config
func NewEloRatings() *EloRatings {
	return &EloRatings{
		ratings: map[string]float64{},
		k:       Config.EloKFactor,
		homeAdv: Config.EloHomeAdvantage,
		initial: Config.EloInitialRating,
	}
}

// Rating returns the current rating for a team id, seeding it on first
// sight. Ratings are keyed by id, not display name, so a club that
// renames keeps its history.
func (e *EloRatings) Rating(teamID string) float64 {
	if r, ok := e.ratings[teamID]; ok {
		return r
	}
	e.ratings[teamID] = e.initial
	return e.initial
}

// ExpectedHome returns the home side's expected score including the home
// advantage offset
func (e *EloRatings) ExpectedHome(homeID, awayID string) float64 {
	diff := (e.Rating(awayID) - e.Rating(homeID) - e.homeAdv) / 400.0
	return 1.0 / (1.0 + math.Pow(10, diff))
}

// Update applies one played match result to both ratings
func (e *EloRatings) Update(m *Match) {
	if !m.Played() {
		return
	}
	expected := e.ExpectedHome(m.HomeID, m.AwayID)

	var actual float64
	switch m.Outcome() {
	case "H":
		actual = 1.0
	case "D":
		actual = 0.5
	case "A":
		actual = 0.0
	}

	delta := e.k * (actual - expected)
	e.ratings[m.HomeID] = e.Rating(m.HomeID) + delta
	e.ratings[m.AwayID] = e.Rating(m.AwayID) - delta
}

// ApplyEloFeatures runs the chronological pass, stamping each match with
// the ratings both teams held before kick-off. Matches must already be in
// chronological order.
func ApplyEloFeatures(matches []*Match) {
	elo := NewEloRatings()
	for _, m := range matches {
		m.HomeElo = elo.Rating(m.HomeID)
		m.AwayElo = elo.Rating(m.AwayID)
		m.EloDiff = m.HomeElo - m.AwayElo
		elo.Update(m)
	}
}
