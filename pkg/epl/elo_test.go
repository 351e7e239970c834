package epl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEloUpdatesAreZeroSum(t *testing.T) {
	elo := NewEloRatings()
	m := playedMatch("2023-2024", 1, "Arsenal", "Chelsea", 3, 0)

	elo.Update(m)

	total := elo.Rating("arsenal") + elo.Rating("chelsea")
	assert.InDelta(t, 2*Config.EloInitialRating, total, 1e-9)
	assert.Greater(t, elo.Rating("arsenal"), Config.EloInitialRating)
	assert.Less(t, elo.Rating("chelsea"), Config.EloInitialRating)
}

func TestEloHomeAdvantageOnlyInExpectation(t *testing.T) {
	elo := NewEloRatings()

	// Equal ratings: home side is still favoured in the expectation
	expected := elo.ExpectedHome("arsenal", "chelsea")
	assert.Greater(t, expected, 0.5)

	// But the stored ratings themselves stay at the initial value
	assert.Equal(t, Config.EloInitialRating, elo.Rating("arsenal"))
	assert.Equal(t, Config.EloInitialRating, elo.Rating("chelsea"))
}

func TestEloIgnoresUnplayedMatches(t *testing.T) {
	elo := NewEloRatings()
	m := fixtureMatch("2023-2024", 1, "Arsenal", "Chelsea")

	elo.Update(m)

	assert.Equal(t, Config.EloInitialRating, elo.Rating("arsenal"))
	assert.Equal(t, Config.EloInitialRating, elo.Rating("chelsea"))
}

func TestApplyEloFeaturesStampsPreMatchRatings(t *testing.T) {
	matches := []*Match{
		playedMatch("2023-2024", 1, "Arsenal", "Chelsea", 2, 0),
		playedMatch("2023-2024", 8, "Chelsea", "Arsenal", 1, 1),
	}

	ApplyEloFeatures(matches)

	// The first match sees both teams at the initial rating
	assert.Equal(t, Config.EloInitialRating, matches[0].HomeElo)
	assert.Equal(t, Config.EloInitialRating, matches[0].AwayElo)
	assert.Equal(t, 0.0, matches[0].EloDiff)

	// The second match sees the ratings moved by the first result only
	assert.Less(t, matches[1].HomeElo, Config.EloInitialRating)
	assert.Greater(t, matches[1].AwayElo, Config.EloInitialRating)
	assert.InDelta(t, matches[1].HomeElo-matches[1].AwayElo, matches[1].EloDiff, 1e-9)
}

func TestEloRatingsFollowTeamIdsNotNames(t *testing.T) {
	first := playedMatch("2022-2023", 1, "Leeds", "Chelsea", 3, 0)
	first.HomeID = "leeds-united"
	renamed := playedMatch("2023-2024", 1, "Leeds United", "Chelsea", 0, 0)
	renamed.HomeID = "leeds-united"

	ApplyEloFeatures([]*Match{first, renamed})

	// The renamed club carries the rating earned under its old name
	assert.Greater(t, renamed.HomeElo, Config.EloInitialRating)

	// A different club that happens to share a display name starts fresh
	elo := NewEloRatings()
	elo.Update(first)
	assert.Greater(t, elo.Rating("leeds-united"), Config.EloInitialRating)
	assert.Equal(t, Config.EloInitialRating, elo.Rating("leeds"))
}

func TestEloDrawMovesRatingsTowardTheStrongerSide(t *testing.T) {
	elo := NewEloRatings()
	// A draw with equal ratings still punishes the home side a little,
	// because the expectation included the home advantage
	m := playedMatch("2023-2024", 1, "Arsenal", "Chelsea", 1, 1)
	elo.Update(m)

	assert.Less(t, elo.Rating("arsenal"), Config.EloInitialRating)
	assert.Greater(t, elo.Rating("chelsea"), Config.EloInitialRating)
}
